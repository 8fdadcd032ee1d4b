package memory

import (
	authstate "github.com/goliatone/go-auth-state"
	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is returned when the email is unknown or the password
// does not match.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(authstate.TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailTaken is returned when signing up with an email already in use.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(authstate.TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrClientClosed is returned by every call after Close.
var ErrClientClosed = goerrors.New("memory client is closed", goerrors.CategoryOperation).
	WithTextCode("CLIENT_CLOSED").
	WithCode(goerrors.CodeInternal)

func invalidSignUp(err error) error {
	richErr := goerrors.New("invalid sign up", goerrors.CategoryValidation).
		WithTextCode(authstate.TextCodeInvalidSignUp).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"validation": err.Error()})
	richErr.Source = err
	return richErr
}
