package authstate

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeOutsideProvider    = "AUTH_PROVIDER_SCOPE"
	TextCodeMissingCredentials = "AUTH_MISSING_CREDENTIALS"
	TextCodeProviderMounted    = "AUTH_PROVIDER_MOUNTED"
	TextCodeProviderClosed     = "AUTH_PROVIDER_CLOSED"
	TextCodeSubscribeFailed    = "SESSION_SUBSCRIBE_FAILED"
)

// Text codes clients can attach to their errors so the HTTP controller maps
// them to a status code.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeEmailTaken         = "EMAIL_TAKEN"
	TextCodeInvalidSignUp      = "INVALID_SIGN_UP"
)

// ErrOutsideProvider is returned when the auth state is read from a context
// that was never scoped with a Provider.
var ErrOutsideProvider = goerrors.New("useAuth must be used within a Provider", goerrors.CategoryInternal).
	WithTextCode(TextCodeOutsideProvider).
	WithCode(goerrors.CodeInternal)

// ErrMissingCredentials is returned by Login and Register when email or
// password are empty.
var ErrMissingCredentials = goerrors.New("email and password are required", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrProviderMounted is returned when Mount is called twice.
var ErrProviderMounted = goerrors.New("provider is already mounted", goerrors.CategoryConflict).
	WithTextCode(TextCodeProviderMounted).
	WithCode(goerrors.CodeConflict)

// ErrProviderClosed is returned when mounting a provider that was torn down.
var ErrProviderClosed = goerrors.New("provider is closed", goerrors.CategoryOperation).
	WithTextCode(TextCodeProviderClosed).
	WithCode(goerrors.CodeConflict)

// TextCode returns the go-errors text code carried by err, if any.
func TextCode(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return richErr.TextCode
	}
	return ""
}

func wrapSubscribeError(err error) error {
	wrapped := goerrors.New("failed to observe upstream session", goerrors.CategoryInternal).
		WithTextCode(TextCodeSubscribeFailed).
		WithCode(goerrors.CodeInternal)
	wrapped.Source = err
	return wrapped
}
