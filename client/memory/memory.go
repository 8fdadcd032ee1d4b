// Package memory implements authstate.Client in process. It stands in for
// the external authentication service during development, demos and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Option customizes a Client.
type Option func(*Client)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithTokenSecret sets the HS256 secret used to sign session tokens.
func WithTokenSecret(secret []byte) Option {
	return func(c *Client) {
		if len(secret) > 0 {
			c.signer.secret = append([]byte(nil), secret...)
		}
	}
}

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.signer.ttl = ttl
		}
	}
}

// WithBcryptCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(c *Client) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			c.cost = cost
		}
	}
}

// WithDeterministicIDs derives user IDs from the email with hashid instead
// of random UUIDs, so the same email always maps to the same ID.
func WithDeterministicIDs() Option {
	return func(c *Client) {
		c.deterministicIDs = true
	}
}

type account struct {
	user         authstate.RawUser
	passwordHash string
}

type session struct {
	user      authstate.RawUser
	token     string
	expiresAt time.Time
}

// Client is an in-process authstate.Client.
type Client struct {
	now              func() time.Time
	signer           tokenSigner
	cost             int
	deterministicIDs bool

	mu         sync.Mutex
	accounts   map[string]*account
	current    *session
	observers  map[int]chan authstate.SessionSnapshot
	nextID     int
	signOutErr error
	closed     bool
}

var _ authstate.Client = (*Client)(nil)

// New creates an empty Client.
func New(opts ...Option) *Client {
	c := &Client{
		now: time.Now,
		signer: tokenSigner{
			secret: []byte(uuid.NewString()),
			issuer: defaultIssuer,
			ttl:    24 * time.Hour,
		},
		cost:      bcrypt.DefaultCost,
		accounts:  map[string]*account{},
		observers: map[int]chan authstate.SessionSnapshot{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// ObserveSession returns a latest-value stream holding the current session
// and then every change until ctx is done or the client is closed.
func (c *Client) ObserveSession(ctx context.Context) (<-chan authstate.SessionSnapshot, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}

	ch := make(chan authstate.SessionSnapshot, 1)
	id := c.nextID
	c.nextID++
	c.observers[id] = ch

	offer(ch, c.snapshotLocked())
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		if obs, ok := c.observers[id]; ok {
			delete(c.observers, id)
			close(obs)
		}
		c.mu.Unlock()
	}()

	return ch, nil
}

// SignUp creates an account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*authstate.SessionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	input := signUpInput{Email: email, Password: password}
	if err := input.Validate(); err != nil {
		return nil, invalidSignUp(err)
	}

	hash, err := hashPassword(password, c.cost)
	if err != nil {
		return nil, err
	}

	id, err := c.newUserID(email)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	if _, exists := c.accounts[email]; exists {
		return nil, ErrEmailTaken
	}

	now := c.now()
	acc := &account{
		user: authstate.RawUser{
			ID:        id,
			Email:     email,
			CreatedAt: &now,
			UpdatedAt: &now,
		},
		passwordHash: hash,
	}
	c.accounts[email] = acc

	return c.startSessionLocked(acc.user, now)
}

// SignIn verifies the credentials and starts a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*authstate.SessionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	acc, ok := c.accounts[email]
	c.mu.Unlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := comparePassword(password, acc.passwordHash); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	return c.startSessionLocked(acc.user, c.now())
}

// SignOut ends the current session. Signing out without a session is not
// an error.
func (c *Client) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	if c.signOutErr != nil {
		return c.signOutErr
	}

	c.current = nil
	c.broadcastLocked()
	return nil
}

// Expire drops the current session as if the service had invalidated it.
func (c *Client) Expire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.current == nil {
		return
	}

	c.current = nil
	c.broadcastLocked()
}

// FailSignOut makes every following SignOut return err. A nil err restores
// normal behavior.
func (c *Client) FailSignOut(err error) {
	c.mu.Lock()
	c.signOutErr = err
	c.mu.Unlock()
}

// Rename updates the display name of an account and broadcasts the change
// when it is the signed in user.
func (c *Client) Rename(email, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, ok := c.accounts[normalizeEmail(email)]
	if !ok {
		return false
	}

	now := c.now()
	acc.user.Name = name
	acc.user.UpdatedAt = &now

	if c.current != nil && c.current.user.ID == acc.user.ID {
		c.current.user = acc.user
		c.broadcastLocked()
	}

	return true
}

// Close ends every observer stream. Later calls fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	for id, ch := range c.observers {
		delete(c.observers, id)
		close(ch)
	}

	return nil
}

func (c *Client) startSessionLocked(user authstate.RawUser, now time.Time) (*authstate.SessionResult, error) {
	token, expiresAt, err := c.signer.mint(user.ID, now)
	if err != nil {
		return nil, err
	}

	c.current = &session{
		user:      user,
		token:     token,
		expiresAt: expiresAt,
	}
	c.broadcastLocked()

	u := user
	exp := expiresAt
	return &authstate.SessionResult{
		User:      &u,
		Token:     token,
		ExpiresAt: &exp,
	}, nil
}

func (c *Client) snapshotLocked() authstate.SessionSnapshot {
	if c.current == nil {
		return authstate.SessionSnapshot{}
	}

	u := c.current.user
	return authstate.SessionSnapshot{
		Data: &authstate.SessionData{
			User: &u,
			Session: map[string]any{
				"token":      c.current.token,
				"expires_at": c.current.expiresAt,
			},
		},
	}
}

func (c *Client) broadcastLocked() {
	for _, ch := range c.observers {
		offer(ch, c.snapshotLocked())
	}
}

func (c *Client) newUserID(email string) (string, error) {
	if !c.deterministicIDs {
		return uuid.NewString(), nil
	}

	id, err := hashid.NewUUID(email)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// offer replaces any buffered value so observers only ever see the newest
// snapshot. Callers hold c.mu, which makes the drain and send atomic.
func offer(ch chan authstate.SessionSnapshot, snap authstate.SessionSnapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

type signUpInput struct {
	Email    string
	Password string
}

func (in signUpInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, 0)),
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
