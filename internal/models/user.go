package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// PublicUser is the client-facing projection of a user. The password hash
// never leaves the service in any response.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// TokenKind distinguishes access tokens from refresh tokens. The kind is
// signed into the claims so a refresh token can never pass an access guard.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims defines the structure of the JWT claims.
//
// Fresh marks tokens minted directly from a password check; tokens minted by
// the refresh flow always carry Fresh=false. CSRF holds the double-submit
// value that must be echoed in the X-CSRF-TOKEN header.
type Claims struct {
	Username string    `json:"username"`
	Kind     TokenKind `json:"kind"`
	Fresh    bool      `json:"fresh"`
	CSRF     string    `json:"csrf"`
	jwt.RegisteredClaims
}
