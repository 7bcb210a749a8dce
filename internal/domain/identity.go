// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const (
	MaxUserIDLen      = 36
	MaxDisplayNameLen = 64
)

var (
	ErrUserIDEmpty        = errors.New("user id empty")
	ErrUserIDTooLong      = errors.New("user id too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
	ErrDisplayNameTooLong = errors.New("display name too long")
)

type UserID string

// Identity is the authenticated user a connection claims to represent.
// It is supplied by the client at authenticate time and trusted as-is;
// verification happens upstream of this process.
type Identity struct {
	UserID    UserID `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"image"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(id UserID, name, avatarURL string) (*Identity, error) {
	if len(id) == 0 {
		return nil, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	if len(name) == 0 {
		return nil, ErrDisplayNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &Identity{UserID: id, Name: name, AvatarURL: avatarURL}, nil
}
