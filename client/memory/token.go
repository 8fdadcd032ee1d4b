package memory

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const defaultIssuer = "go-auth-state/memory"

type tokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// mint issues an HS256 session token for userID.
func (s tokenSigner) mint(userID string, issuedAt time.Time) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, goerrors.New("token secret is required", goerrors.CategoryBadInput)
	}
	if s.ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return token, expiresAt, nil
}

// ParseToken validates a token minted by a Client using secret and returns
// its claims.
func ParseToken(token string, secret []byte) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
