package authstate

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSessionSynced   ActivityEventType = "session.synced"
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventRegisterSuccess ActivityEventType = "auth.register.success"
	ActivityEventRegisterFailure ActivityEventType = "auth.register.failure"
	ActivityEventLogoutSuccess   ActivityEventType = "auth.logout.success"
	ActivityEventLogoutFailure   ActivityEventType = "auth.logout.failure"
)

// Action names the imperative operations exposed by the Provider.
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionLogout   Action = "logout"
)

// ActivityEvent captures audit-friendly information about a sync or action.
type ActivityEvent struct {
	EventType     ActivityEventType
	Action        Action
	UserID        string
	Email         string
	Authenticated bool
	Err           error
	Metadata      map[string]any
	OccurredAt    time.Time
}

// Succeeded reports whether the event describes a successful outcome.
func (e ActivityEvent) Succeeded() bool {
	return e.Err == nil
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiSink fans an event out to every sink. All sinks run; the first error
// is returned.
func MultiSink(sinks ...ActivitySink) ActivitySink {
	return ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		var first error
		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			if err := sink.Record(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
