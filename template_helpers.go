package authstate

import (
	"github.com/goliatone/go-router"
)

// Template data keys filled by TemplateHelpersWithState.
var (
	TemplateUserKey  = "current_user"
	TemplateStateKey = "auth_state"
)

// TemplateHelpers returns helper functions for go-template's WithGlobalData.
//
// In templates, you can then use:
//
//	{% if is_authenticated(current_user) %}
//	Hello {{ display_name(current_user) }}
//	{% if auth_state.loading %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"display_name":     displayName,
	}
}

// TemplateHelpersWithState adds the snapshot and its user to the helpers.
func TemplateHelpersWithState(st State) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateStateKey] = st
	if st.User != nil {
		helpers[TemplateUserKey] = st.User
	}
	return helpers
}

// TemplateHelpersWithRouter reads the provider stored by ProviderMiddleware
// under key and adds its current snapshot. Without a provider only the
// helper functions are returned.
func TemplateHelpersWithRouter(ctx router.Context, key string) map[string]any {
	p, err := ProviderFromRouterContext(ctx, key)
	if err != nil {
		return TemplateHelpers()
	}
	return TemplateHelpersWithState(p.State())
}

func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case State:
		return u.IsAuthenticated
	case *State:
		return u != nil && u.IsAuthenticated
	case map[string]any:
		// JSON-converted user objects
		return len(u) > 0
	default:
		return false
	}
}

func displayName(user any) string {
	switch u := user.(type) {
	case *User:
		if u == nil {
			return ""
		}
		return u.Name
	case User:
		return u.Name
	case map[string]any:
		if name, ok := u["name"].(string); ok && name != "" {
			return name
		}
		if email, ok := u["email"].(string); ok {
			return DisplayName(email)
		}
	}
	return ""
}
