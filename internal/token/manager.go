package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jwtauthenticator/internal/models"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry deadline.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers everything else: bad structure, wrong signing
	// method, tampered signature, missing claims.
	ErrTokenMalformed = errors.New("token malformed")
)

// Manager issues and decodes signed tokens. Tokens are self-contained:
// decoding needs only the token bytes, the secret and the clock, so no
// locking or server-side lookup is involved.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret []byte, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issued is a freshly minted token together with its CSRF companion value.
// The same value is signed into the claims and handed to the client in a
// readable cookie, binding the pair 1:1.
type Issued struct {
	Token string
	CSRF  string
}

// Issue mints a signed token for the given username. The TTL follows the
// kind; fresh should be true only when the caller has just verified the
// user's password.
func (m *Manager) Issue(username string, kind models.TokenKind, fresh bool) (*Issued, error) {
	csrf, err := generateCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	ttl := m.accessTTL
	if kind == models.TokenKindRefresh {
		ttl = m.refreshTTL
	}

	now := time.Now()
	claims := &models.Claims{
		Username: username,
		Kind:     kind,
		Fresh:    fresh,
		CSRF:     csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Issued{Token: tokenString, CSRF: csrf}, nil
}

// Decode verifies the signature and expiry of a token string and returns its
// claims. Expired tokens and malformed/tampered tokens fail with distinct
// errors so callers can tell the two apart.
func (m *Manager) Decode(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if !token.Valid || claims.Username == "" || claims.CSRF == "" {
		return nil, ErrTokenMalformed
	}
	switch claims.Kind {
	case models.TokenKindAccess, models.TokenKindRefresh:
	default:
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
