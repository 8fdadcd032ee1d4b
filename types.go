package authstate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging contract used across the package. Arguments are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Client is the external authentication client the Provider mirrors.
type Client interface {
	// ObserveSession returns a stream of session snapshots. The stream ends
	// when ctx is done or the client closes it.
	ObserveSession(ctx context.Context) (<-chan SessionSnapshot, error)
	SignIn(ctx context.Context, email, password string) (*SessionResult, error)
	SignUp(ctx context.Context, email, password string) (*SessionResult, error)
	SignOut(ctx context.Context) error
}

// RawUser is the user payload as delivered by the external client.
type RawUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// SessionData is the resolved upstream session.
type SessionData struct {
	User    *RawUser       `json:"user,omitempty"`
	Session map[string]any `json:"session,omitempty"`
}

// SessionSnapshot is one emission of the upstream session observable.
type SessionSnapshot struct {
	Data      *SessionData `json:"data"`
	IsLoading bool         `json:"is_loading"`
}

// HasUser reports whether the snapshot carries a user payload.
func (s SessionSnapshot) HasUser() bool {
	return s.Data != nil && s.Data.User != nil
}

// SessionResult is returned by sign in and sign up.
type SessionResult struct {
	User      *RawUser       `json:"user,omitempty"`
	Token     string         `json:"token,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println("[DBG] AUTHSTATE " + formatLine(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println("[INF] AUTHSTATE " + formatLine(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println("[WRN] AUTHSTATE " + formatLine(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println("[ERR] AUTHSTATE " + formatLine(msg, args...))
}

func formatLine(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger discards every message.
func NoopLogger() Logger {
	return noopLogger{}
}
