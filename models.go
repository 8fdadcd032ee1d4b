package authstate

import (
	"strings"
	"time"
)

// User is the normalized user exposed to consumers. It is always derived
// from the upstream payload and never stored by this package.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// State is the snapshot published to consumers.
type State struct {
	User            *User `json:"user"`
	Loading         bool  `json:"loading"`
	IsAuthenticated bool  `json:"is_authenticated"`
}

// Anonymous reports whether no user is signed in.
func (s State) Anonymous() bool {
	return s.User == nil
}

// DisplayName returns the local part of an email address, or the full value
// when it has no "@".
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// ProjectUser maps a raw payload into a User. Missing timestamps fall back
// to now. Returns nil for a nil payload.
func ProjectUser(raw *RawUser, now time.Time) *User {
	return projectUser(raw, nil, now)
}

// projectUser reuses the fallback timestamps of prev when it describes the
// same user, so re-delivering a payload yields the same projection.
func projectUser(raw *RawUser, prev *User, now time.Time) *User {
	if raw == nil {
		return nil
	}

	user := &User{
		ID:    raw.ID,
		Email: raw.Email,
		Name:  raw.Name,
	}

	if user.Name == "" {
		user.Name = DisplayName(raw.Email)
	}

	sameUser := prev != nil && prev.ID == raw.ID

	switch {
	case raw.CreatedAt != nil:
		user.CreatedAt = *raw.CreatedAt
	case sameUser:
		user.CreatedAt = prev.CreatedAt
	default:
		user.CreatedAt = now
	}

	switch {
	case raw.UpdatedAt != nil:
		user.UpdatedAt = *raw.UpdatedAt
	case sameUser:
		user.UpdatedAt = prev.UpdatedAt
	default:
		user.UpdatedAt = now
	}

	return user
}
