package authstate_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	authstate "github.com/goliatone/go-auth-state"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type routeRecorder struct {
	routes []string
}

func (r *routeRecorder) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	r.routes = append(r.routes, "GET "+path)
	return nil
}

func (r *routeRecorder) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	r.routes = append(r.routes, "POST "+path)
	return nil
}

func newControllerContext(p *authstate.Provider) *router.MockContext {
	ctx := router.NewMockContext()
	ctx.LocalsMock[authstate.DefaultLocalsKey] = p
	ctx.On("Context").Return(context.Background())
	return ctx
}

func TestHTTPControllerRegisterRoutes(t *testing.T) {
	rec := &routeRecorder{}
	authstate.NewHTTPController(authstate.HTTPConfig{}).RegisterRoutes(rec)

	assert.Equal(t, []string{
		"GET /session",
		"POST /login",
		"POST /register",
		"POST /logout",
	}, rec.routes)
}

func TestHTTPControllerSession(t *testing.T) {
	p := newTestProvider(t, &MockClient{})
	p.HandleSnapshot(userSnapshot("1", "a@x.com", ""))

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctx := newControllerContext(p)

	var payload authstate.State
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(authstate.State)
	}).Return(nil)

	require.NoError(t, ctrl.Session(ctx))
	require.NotNil(t, payload.User)
	assert.Equal(t, "a", payload.User.Name)
	assert.True(t, payload.IsAuthenticated)
}

func TestHTTPControllerSessionOutsideProvider(t *testing.T) {
	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctx := router.NewMockContext()

	var payload map[string]string
	ctx.On("JSON", router.StatusInternalServerError, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, ctrl.Session(ctx))
	assert.Equal(t, authstate.TextCodeOutsideProvider, payload["code"])
	assert.Contains(t, payload["error"], "within a Provider")
}

func TestHTTPControllerLogin(t *testing.T) {
	client := &MockClient{}
	p := newTestProvider(t, client)
	client.On("SignIn", mock.Anything, "ann@x.com", "secret").
		Return(&authstate.SessionResult{User: &authstate.RawUser{ID: "u1", Email: "ann@x.com", Name: "Ann"}}, nil)

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctx := newControllerContext(p)
	ctx.On("FormValue", "email").Return("ann@x.com")
	ctx.On("FormValue", "password").Return("secret")

	var payload authstate.State
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(authstate.State)
	}).Return(nil)

	require.NoError(t, ctrl.Login(ctx))
	require.NotNil(t, payload.User)
	assert.Equal(t, "Ann", payload.User.Name)
	assert.True(t, payload.IsAuthenticated)
	assert.False(t, payload.Loading)
	ctx.AssertExpectations(t)
}

func TestHTTPControllerLoginInvalidCredentials(t *testing.T) {
	client := &MockClient{}
	p := newTestProvider(t, client)

	invalid := goerrors.New("invalid email or password", goerrors.CategoryAuth).
		WithTextCode(authstate.TextCodeInvalidCredentials).
		WithCode(goerrors.CodeUnauthorized)
	client.On("SignIn", mock.Anything, "ann@x.com", "wrong").Return(nil, invalid)

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctx := newControllerContext(p)
	ctx.On("FormValue", "email").Return("ann@x.com")
	ctx.On("FormValue", "password").Return("wrong")

	var payload map[string]string
	ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, ctrl.Login(ctx))
	assert.Equal(t, authstate.TextCodeInvalidCredentials, payload["code"])
	assert.False(t, p.IsAuthenticated())
}

func TestHTTPControllerRegisterMissingCredentials(t *testing.T) {
	client := &MockClient{}
	p := newTestProvider(t, client)

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{
		EmailField:    "user_email",
		PasswordField: "user_password",
	})
	ctx := newControllerContext(p)
	ctx.On("FormValue", "user_email").Return("")
	ctx.On("FormValue", "user_password").Return("secret")

	var payload map[string]string
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(map[string]string)
	}).Return(nil)

	require.NoError(t, ctrl.Register(ctx))
	assert.Equal(t, authstate.TextCodeMissingCredentials, payload["code"])
	client.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTPControllerLogoutAlwaysAnswersWithState(t *testing.T) {
	client := &MockClient{}
	p := newTestProvider(t, client)
	p.HandleSnapshot(userSnapshot("1", "a@x.com", ""))
	client.On("SignOut", mock.Anything).Return(errors.New("offline"))

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctx := newControllerContext(p)

	var payload authstate.State
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(authstate.State)
	}).Return(nil)

	require.NoError(t, ctrl.Logout(ctx))
	assert.True(t, payload.IsAuthenticated, "failed sign out keeps the session")
}

func TestHTTPControllerCustomStatusMapping(t *testing.T) {
	client := &MockClient{}
	p := newTestProvider(t, client)
	client.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{
		StatusForError: func(err error) int { return http.StatusTooManyRequests },
	})
	ctx := newControllerContext(p)
	ctx.On("FormValue", "email").Return("ann@x.com")
	ctx.On("FormValue", "password").Return("secret")
	ctx.On("JSON", http.StatusTooManyRequests, mock.Anything).Return(nil)

	require.NoError(t, ctrl.Login(ctx))
	ctx.AssertExpectations(t)
}

func TestStatusForError(t *testing.T) {
	withCode := func(code string) error {
		return goerrors.New("test", goerrors.CategoryBadInput).WithTextCode(code)
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing credentials", err: authstate.ErrMissingCredentials, want: http.StatusBadRequest},
		{name: "invalid credentials", err: withCode(authstate.TextCodeInvalidCredentials), want: http.StatusUnauthorized},
		{name: "email taken", err: withCode(authstate.TextCodeEmailTaken), want: http.StatusConflict},
		{name: "invalid sign up", err: withCode(authstate.TextCodeInvalidSignUp), want: http.StatusBadRequest},
		{name: "outside provider", err: authstate.ErrOutsideProvider, want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authstate.StatusForError(tt.err))
		})
	}
}
