package authstate

import (
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// LocalsKey is the router locals key set by ProviderMiddleware (default: "auth_state")
	LocalsKey string

	// EmailField is the form field holding the email (default: "email")
	EmailField string

	// PasswordField is the form field holding the password (default: "password")
	PasswordField string

	// StatusForError overrides how errors map to HTTP status codes (optional)
	StatusForError func(err error) int
}

// HTTPController exposes the provider state and actions as JSON endpoints.
type HTTPController struct {
	config HTTPConfig
}

// NewHTTPController creates a controller with defaults applied.
func NewHTTPController(cfg HTTPConfig) *HTTPController {
	if cfg.LocalsKey == "" {
		cfg.LocalsKey = DefaultLocalsKey
	}
	if cfg.EmailField == "" {
		cfg.EmailField = "email"
	}
	if cfg.PasswordField == "" {
		cfg.PasswordField = "password"
	}
	if cfg.StatusForError == nil {
		cfg.StatusForError = StatusForError
	}

	return &HTTPController{config: cfg}
}

// RegisterRoutes registers the session routes. The provider must be made
// available with ProviderMiddleware, either on the group or per route.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/session", c.Session, mw...)
	group.Post("/login", c.Login, mw...)
	group.Post("/register", c.Register, mw...)
	group.Post("/logout", c.Logout, mw...)
}

// Session returns the current state snapshot.
func (c *HTTPController) Session(ctx router.Context) error {
	p, err := ProviderFromRouterContext(ctx, c.config.LocalsKey)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, p.State())
}

// Login signs in with the posted credentials and returns the new state.
func (c *HTTPController) Login(ctx router.Context) error {
	p, err := ProviderFromRouterContext(ctx, c.config.LocalsKey)
	if err != nil {
		return c.handleError(ctx, err)
	}

	email := ctx.FormValue(c.config.EmailField)
	password := ctx.FormValue(c.config.PasswordField)

	if _, err := p.Login(ctx.Context(), email, password); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, p.State())
}

// Register signs up with the posted credentials and returns the new state.
func (c *HTTPController) Register(ctx router.Context) error {
	p, err := ProviderFromRouterContext(ctx, c.config.LocalsKey)
	if err != nil {
		return c.handleError(ctx, err)
	}

	email := ctx.FormValue(c.config.EmailField)
	password := ctx.FormValue(c.config.PasswordField)

	if _, err := p.Register(ctx.Context(), email, password); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, p.State())
}

// Logout signs out. It always answers with the resulting state since a
// failed sign out is not reported to callers.
func (c *HTTPController) Logout(ctx router.Context) error {
	p, err := ProviderFromRouterContext(ctx, c.config.LocalsKey)
	if err != nil {
		return c.handleError(ctx, err)
	}

	p.Logout(ctx.Context())

	return ctx.JSON(router.StatusOK, p.State())
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	return ctx.JSON(c.config.StatusForError(err), map[string]string{
		"error": err.Error(),
		"code":  TextCode(err),
	})
}

// StatusForError maps known text codes to HTTP status codes.
func StatusForError(err error) int {
	switch TextCode(err) {
	case TextCodeMissingCredentials:
		return router.StatusBadRequest
	case TextCodeInvalidCredentials:
		return router.StatusUnauthorized
	case TextCodeEmailTaken:
		return router.StatusConflict
	case TextCodeInvalidSignUp:
		return router.StatusBadRequest
	default:
		return router.StatusInternalServerError
	}
}
