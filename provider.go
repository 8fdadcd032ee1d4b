package authstate

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Option customizes a Provider.
type Option func(*Provider)

// WithLogger overrides the logger used for action failures and sync events.
func WithLogger(logger Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithActivitySink sets the sink that receives sync and action events.
func WithActivitySink(sink ActivitySink) Option {
	return func(p *Provider) {
		p.activitySink = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(p *Provider) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithActionTimeout bounds each client call made by Login, Register and
// Logout. Zero disables the bound.
func WithActionTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d >= 0 {
			p.actionTimeout = d
		}
	}
}

// Provider mirrors the session of an external Client into a State snapshot
// and exposes the login, register and logout actions.
type Provider struct {
	client        Client
	logger        Logger
	activitySink  ActivitySink
	now           func() time.Time
	actionTimeout time.Duration

	mu              sync.RWMutex
	user            *User
	pending         int
	upstreamLoading bool
	mounted         bool
	closed          bool
	version         uint64
	cancel          context.CancelFunc
	done            chan struct{}

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int

	// deliverMu serializes listener calls so snapshots arrive in version order.
	deliverMu sync.Mutex
	delivered uint64
}

// NewProvider creates a Provider for the given client.
func NewProvider(client Client, opts ...Option) *Provider {
	p := &Provider{
		client:       client,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
		listeners:    map[int]func(State){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Mount subscribes to the upstream session and returns ctx scoped with the
// provider. Cancelling ctx tears the provider down like Close. On error the
// returned context is the caller's ctx, unscoped; use it only when err is nil.
func (p *Provider) Mount(ctx context.Context) (context.Context, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ctx, ErrProviderClosed
	}
	if p.mounted {
		p.mu.Unlock()
		return ctx, ErrProviderMounted
	}
	p.mounted = true
	p.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	updates, err := p.client.ObserveSession(subCtx)
	if err != nil {
		cancel()
		p.mu.Lock()
		p.mounted = false
		p.mu.Unlock()
		p.logger.Error("observe session failed", "error", err)
		return ctx, wrapSubscribeError(err)
	}

	done := make(chan struct{})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return ctx, ErrProviderClosed
	}
	p.upstreamLoading = true
	p.cancel = cancel
	p.done = done
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)

	go p.run(subCtx, updates, done)

	return WithProvider(ctx, p), nil
}

func (p *Provider) run(ctx context.Context, updates <-chan SessionSnapshot, done chan struct{}) {
	defer close(done)
	defer p.markClosed()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				p.logger.Debug("upstream session stream closed")
				p.setUpstreamLoading(false)
				<-ctx.Done()
				return
			}
			p.HandleSnapshot(snap)
		}
	}
}

// HandleSnapshot applies one upstream emission: with a user payload the
// projected user is published, otherwise the state becomes anonymous.
// Applying the same snapshot twice yields the same state.
func (p *Provider) HandleSnapshot(snap SessionSnapshot) {
	var raw *RawUser
	if snap.HasUser() {
		raw = snap.Data.User
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.upstreamLoading = snap.IsLoading
	p.user = projectUser(raw, p.user, p.now())
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)

	event := ActivityEvent{
		EventType:     ActivityEventSessionSynced,
		Authenticated: st.IsAuthenticated,
	}
	if st.User != nil {
		event.UserID = st.User.ID
		event.Email = st.User.Email
	}
	p.recordActivity(context.Background(), event)
}

// Login signs in through the client. A user carried by the result is
// published right away, ahead of the next upstream emission. Failures leave
// the state untouched and are returned as is.
func (p *Provider) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	return p.authenticate(ctx, ActionLogin, email, password, p.client.SignIn)
}

// Register signs up through the client, with the same contract as Login.
func (p *Provider) Register(ctx context.Context, email, password string) (*SessionResult, error) {
	return p.authenticate(ctx, ActionRegister, email, password, p.client.SignUp)
}

type credentialsFunc func(ctx context.Context, email, password string) (*SessionResult, error)

func (p *Provider) authenticate(ctx context.Context, action Action, email, password string, call credentialsFunc) (*SessionResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	p.beginAction()
	defer p.endAction()

	ctx, cancel := p.actionContext(ctx)
	defer cancel()

	result, err := call(ctx, email, password)
	if err != nil {
		p.logger.Error(string(action)+" error", "error", err)
		p.recordActivity(ctx, ActivityEvent{
			EventType: failureEvent(action),
			Action:    action,
			Email:     email,
			Err:       err,
		})
		return nil, err
	}

	event := ActivityEvent{
		EventType: successEvent(action),
		Action:    action,
		Email:     email,
	}

	if result != nil && result.User != nil {
		if user := p.publishUser(result.User); user != nil {
			event.UserID = user.ID
			event.Authenticated = true
		}
	}

	p.recordActivity(ctx, event)

	return result, nil
}

// Logout signs out through the client and clears the user. A failed sign
// out is logged and the state is left as it was.
func (p *Provider) Logout(ctx context.Context) {
	ctx, cancel := p.actionContext(ctx)
	defer cancel()

	if err := p.client.SignOut(ctx); err != nil {
		p.logger.Error("logout error", "error", err)
		p.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLogoutFailure,
			Action:    ActionLogout,
			Err:       err,
		})
		return
	}

	userID := ""
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.user != nil {
		userID = p.user.ID
	}
	p.user = nil
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)

	p.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLogoutSuccess,
		Action:    ActionLogout,
		UserID:    userID,
	})
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stateLocked()
}

// User returns a copy of the current user, nil when anonymous.
func (p *Provider) User() *User {
	return p.State().User
}

// Loading reports whether an action is in flight or the upstream session is
// still resolving.
func (p *Provider) Loading() bool {
	return p.State().Loading
}

// IsAuthenticated reports whether a user is signed in.
func (p *Provider) IsAuthenticated() bool {
	return p.State().IsAuthenticated
}

// OnChange registers a listener called with every published snapshot. The
// returned func removes it. Listeners are called one at a time in publish
// order and must not call Login, Register, Logout or HandleSnapshot
// synchronously.
func (p *Provider) OnChange(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}

	p.listenersMu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.listenersMu.Unlock()

	return func() {
		p.listenersMu.Lock()
		delete(p.listeners, id)
		p.listenersMu.Unlock()
	}
}

// Close stops the upstream subscription. Publishes after Close are no-ops.
// Closing a provider that was never mounted makes later Mount calls fail
// with ErrProviderClosed.
func (p *Provider) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	if cancel == nil {
		p.closed = true
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	return nil
}

// Closed reports whether the provider was torn down.
func (p *Provider) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Provider) markClosed() {
	p.mu.Lock()
	p.closed = true
	p.upstreamLoading = false
	p.mu.Unlock()
}

func (p *Provider) setUpstreamLoading(loading bool) {
	p.mu.Lock()
	if p.closed || p.upstreamLoading == loading {
		p.mu.Unlock()
		return
	}
	p.upstreamLoading = loading
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)
}

func (p *Provider) publishUser(raw *RawUser) *User {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.user = projectUser(raw, p.user, p.now())
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)
	return st.User
}

func (p *Provider) beginAction() {
	p.mu.Lock()
	p.pending++
	if p.closed {
		p.mu.Unlock()
		return
	}
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)
}

func (p *Provider) endAction() {
	p.mu.Lock()
	if p.pending > 0 {
		p.pending--
	}
	if p.closed {
		p.mu.Unlock()
		return
	}
	st, version := p.snapshotLocked()
	p.mu.Unlock()

	p.notify(st, version)
}

func (p *Provider) actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.actionTimeout > 0 {
		return context.WithTimeout(ctx, p.actionTimeout)
	}
	return ctx, func() {}
}

func (p *Provider) stateLocked() State {
	user := p.user.clone()
	return State{
		User:            user,
		Loading:         p.pending > 0 || p.upstreamLoading,
		IsAuthenticated: user != nil,
	}
}

// snapshotLocked must be called with mu held for writing. Every call bumps
// the version so listeners can drop stale snapshots.
func (p *Provider) snapshotLocked() (State, uint64) {
	p.version++
	return p.stateLocked(), p.version
}

func (p *Provider) notify(st State, version uint64) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	if version <= p.delivered {
		return
	}
	p.delivered = version

	p.listenersMu.Lock()
	listeners := make([]func(State), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

func (p *Provider) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}

	sink := normalizeActivitySink(p.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		p.logger.Warn("activity sink error", "error", err, "event", string(event.EventType))
	}
}

func successEvent(action Action) ActivityEventType {
	switch action {
	case ActionRegister:
		return ActivityEventRegisterSuccess
	case ActionLogout:
		return ActivityEventLogoutSuccess
	default:
		return ActivityEventLoginSuccess
	}
}

func failureEvent(action Action) ActivityEventType {
	switch action {
	case ActionRegister:
		return ActivityEventRegisterFailure
	case ActionLogout:
		return ActivityEventLogoutFailure
	default:
		return ActivityEventLoginFailure
	}
}
