package authstate_test

import (
	"context"
	"fmt"
	"sync"

	authstate "github.com/goliatone/go-auth-state"
	"github.com/stretchr/testify/mock"
)

// MockClient implements authstate.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) ObserveSession(ctx context.Context) (<-chan authstate.SessionSnapshot, error) {
	args := m.Called(ctx)
	switch ch := args.Get(0).(type) {
	case chan authstate.SessionSnapshot:
		return ch, args.Error(1)
	case <-chan authstate.SessionSnapshot:
		return ch, args.Error(1)
	default:
		return nil, args.Error(1)
	}
}

func (m *MockClient) SignIn(ctx context.Context, email, password string) (*authstate.SessionResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*authstate.SessionResult)
	return res, args.Error(1)
}

func (m *MockClient) SignUp(ctx context.Context, email, password string) (*authstate.SessionResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*authstate.SessionResult)
	return res, args.Error(1)
}

func (m *MockClient) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }

func (l *recordingLogger) find(level, msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

func (e logEntry) value(key string) any {
	for i := 0; i+1 < len(e.args); i += 2 {
		if fmt.Sprint(e.args[i]) == key {
			return e.args[i+1]
		}
	}
	return nil
}

// recordingSink captures activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []authstate.ActivityEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, event authstate.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Events() []authstate.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]authstate.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) last() authstate.ActivityEvent {
	events := s.Events()
	if len(events) == 0 {
		return authstate.ActivityEvent{}
	}
	return events[len(events)-1]
}

// stateRecorder collects every snapshot delivered to an OnChange listener.
type stateRecorder struct {
	mu     sync.Mutex
	states []authstate.State
}

func (r *stateRecorder) listen(st authstate.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *stateRecorder) States() []authstate.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]authstate.State, len(r.states))
	copy(out, r.states)
	return out
}
