package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jwtauthenticator/internal/models"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

func newTestManager() *Manager {
	return NewManager(testSecret, time.Hour, 24*time.Hour)
}

func TestIssueAndDecodeRoundtrip(t *testing.T) {
	m := newTestManager()

	issued, err := m.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.CSRF)

	claims, err := m.Decode(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.TokenKindAccess, claims.Kind)
	assert.True(t, claims.Fresh)
	// The CSRF companion value is signed into the claims themselves.
	assert.Equal(t, issued.CSRF, claims.CSRF)
}

func TestIssueGeneratesDistinctCSRFValues(t *testing.T) {
	m := newTestManager()

	first, err := m.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)
	second, err := m.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)

	assert.NotEqual(t, first.CSRF, second.CSRF)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestRefreshKindAndFreshness(t *testing.T) {
	m := newTestManager()

	issued, err := m.Issue("alice", models.TokenKindRefresh, false)
	require.NoError(t, err)

	claims, err := m.Decode(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindRefresh, claims.Kind)
	assert.False(t, claims.Fresh)
}

func TestDecodeExpiredToken(t *testing.T) {
	// Negative TTLs produce tokens that are already past their deadline.
	m := NewManager(testSecret, -time.Minute, -time.Minute)

	issued, err := m.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)

	_, err = m.Decode(issued.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeTamperedToken(t *testing.T) {
	m := newTestManager()

	issued, err := m.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)

	// Swap the signature for one made with a different secret.
	other := NewManager([]byte("other-secret-other-secret-other-sec!"), time.Hour, time.Hour)
	forged, err := other.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	forgedParts := strings.Split(forged.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + forgedParts[2]

	_, err = m.Decode(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestDecodeTamperedBeatsExpired(t *testing.T) {
	// A bad signature is malformed even when the embedded expiry has passed.
	other := NewManager([]byte("other-secret-other-secret-other-sec!"), -time.Minute, -time.Minute)
	issued, err := other.Issue("alice", models.TokenKindAccess, true)
	require.NoError(t, err)

	m := newTestManager()
	_, err = m.Decode(issued.Token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestDecodeGarbage(t *testing.T) {
	m := newTestManager()

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := m.Decode(input)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	}
}
