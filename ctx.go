package authstate

import (
	"context"

	"github.com/goliatone/go-router"
)

// DefaultLocalsKey is the router locals key used by ProviderMiddleware.
const DefaultLocalsKey = "auth_state"

var providerCtxKey = &contextKey{"auth_state"}

type contextKey struct {
	name string
}

// WithProvider scopes the provider into the given context. A nil provider
// leaves the context untouched.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, providerCtxKey, p)
}

// UseAuth returns the provider scoped into ctx, or ErrOutsideProvider.
func UseAuth(ctx context.Context) (*Provider, error) {
	if ctx == nil {
		return nil, ErrOutsideProvider
	}
	p, ok := ctx.Value(providerCtxKey).(*Provider)
	if !ok || p == nil {
		return nil, ErrOutsideProvider
	}
	return p, nil
}

// MustUseAuth is like UseAuth but panics outside a provider scope.
func MustUseAuth(ctx context.Context) *Provider {
	p, err := UseAuth(ctx)
	if err != nil {
		panic(err)
	}
	return p
}

// ProviderMiddleware stores the provider in the router locals under key.
func ProviderMiddleware(p *Provider, key string) router.MiddlewareFunc {
	if key == "" {
		key = DefaultLocalsKey
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			ctx.Locals(key, p)
			return next(ctx)
		}
	}
}

// ProviderFromRouterContext finds the provider stored by ProviderMiddleware.
func ProviderFromRouterContext(ctx router.Context, key string) (*Provider, error) {
	if key == "" {
		key = DefaultLocalsKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, ErrOutsideProvider
	}
	p, ok := raw.(*Provider)
	if !ok || p == nil {
		return nil, ErrOutsideProvider
	}
	return p, nil
}
