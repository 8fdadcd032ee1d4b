package authstate_test

import (
	"testing"

	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateHelpers(t *testing.T) {
	helpers := authstate.TemplateHelpers()

	isAuthenticated, ok := helpers["is_authenticated"].(func(any) bool)
	require.True(t, ok, "is_authenticated should be func(any) bool")

	displayName, ok := helpers["display_name"].(func(any) string)
	require.True(t, ok, "display_name should be func(any) string")

	user := &authstate.User{ID: "1", Email: "ann@x.com", Name: "Ann"}

	assert.False(t, isAuthenticated(nil))
	assert.False(t, isAuthenticated((*authstate.User)(nil)))
	assert.True(t, isAuthenticated(user))
	assert.True(t, isAuthenticated(*user))
	assert.True(t, isAuthenticated(authstate.State{User: user, IsAuthenticated: true}))
	assert.False(t, isAuthenticated(&authstate.State{}))
	assert.True(t, isAuthenticated(map[string]any{"id": "1"}))
	assert.False(t, isAuthenticated("user"))

	assert.Equal(t, "Ann", displayName(user))
	assert.Equal(t, "", displayName((*authstate.User)(nil)))
	assert.Equal(t, "bob", displayName(map[string]any{"email": "bob@x.com"}))
	assert.Equal(t, "Bee", displayName(map[string]any{"name": "Bee", "email": "b@x.com"}))
	assert.Equal(t, "", displayName(42))
}

func TestTemplateHelpersWithState(t *testing.T) {
	user := &authstate.User{ID: "1", Email: "ann@x.com", Name: "Ann"}
	st := authstate.State{User: user, IsAuthenticated: true}

	helpers := authstate.TemplateHelpersWithState(st)
	assert.Equal(t, user, helpers[authstate.TemplateUserKey])
	assert.Equal(t, st, helpers[authstate.TemplateStateKey])

	anonymous := authstate.TemplateHelpersWithState(authstate.State{})
	assert.NotContains(t, anonymous, authstate.TemplateUserKey)
	assert.Contains(t, anonymous, authstate.TemplateStateKey)
}

func TestTemplateHelpersWithRouter(t *testing.T) {
	p := newTestProvider(t, &MockClient{})
	p.HandleSnapshot(userSnapshot("1", "a@x.com", ""))

	ctx := router.NewMockContext()
	ctx.LocalsMock[authstate.DefaultLocalsKey] = p

	helpers := authstate.TemplateHelpersWithRouter(ctx, "")
	user, ok := helpers[authstate.TemplateUserKey].(*authstate.User)
	require.True(t, ok)
	assert.Equal(t, "a", user.Name)

	empty := authstate.TemplateHelpersWithRouter(router.NewMockContext(), "")
	assert.NotContains(t, empty, authstate.TemplateUserKey)
	assert.Contains(t, empty, "is_authenticated")
}
