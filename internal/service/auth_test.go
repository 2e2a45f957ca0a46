package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jwtauthenticator/internal/crypto"
	"jwtauthenticator/internal/models"
	"jwtauthenticator/internal/repository"
	"jwtauthenticator/internal/token"
)

// fakeAuthRepository keeps users in memory and mimics the UNIQUE constraint
// of the real store.
type fakeAuthRepository struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeAuthRepository() *fakeAuthRepository {
	return &fakeAuthRepository{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeAuthRepository) CreateUser(user *models.User) error {
	if _, exists := f.users[user.Username]; exists {
		return repository.ErrDuplicateUsername
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeAuthRepository) GetUserByUsername(username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeAuthRepository) ListUsers() ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for id := int64(1); id < f.nextID; id++ {
		for _, u := range f.users {
			if u.ID == id {
				users = append(users, *u)
			}
		}
	}
	return users, nil
}

func newTestService(t *testing.T) (AuthService, *token.Manager) {
	t.Helper()
	tokens := token.NewManager([]byte("test-secret-test-secret-test-secret!"), time.Hour, 24*time.Hour)
	svc := NewAuthService(newFakeAuthRepository(), crypto.NewPasswordHasher(4), tokens, zap.NewNop())
	return svc, tokens
}

func TestRegisterThenLogin(t *testing.T) {
	svc, tokens := newTestService(t)

	user, err := svc.Register("test", "Password123@")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "Password123@", user.PasswordHash)

	session, err := svc.Login("test", "Password123@")
	require.NoError(t, err)
	assert.Equal(t, "test", session.User.Username)
	require.NotNil(t, session.Access)
	require.NotNil(t, session.Refresh)

	access, err := tokens.Decode(session.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindAccess, access.Kind)
	assert.True(t, access.Fresh)

	refresh, err := tokens.Decode(session.Refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindRefresh, refresh.Kind)
	assert.False(t, refresh.Fresh)
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	svc, _ := newTestService(t)

	for _, password := range []string{
		"",
		"password3@",   // no upper case
		"PASSWORD3@",   // no lower case
		"Passwordist@", // no digit
		"Password123",  // no special character
		"Pw1@",         // too short
	} {
		_, err := svc.Register("user-"+password, password)
		assert.ErrorIs(t, err, ErrInvalidPassword, "password %q", password)
	}

	// Exactly eight characters covering every class is acceptable.
	_, err := svc.Register("minimal", "Short1@A")
	assert.NoError(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("test", "Password123@")
	require.NoError(t, err)

	_, err = svc.Register("test", "Password123@")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginEnumerationResistance(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register("test", "Password123@")
	require.NoError(t, err)

	// Wrong password and unknown username fail with the same error.
	_, wrongPassword := svc.Login("test", "password123@")
	_, unknownUser := svc.Login("wrongUsername", "Password123@")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestFreshLoginIssuesOnlyAccessToken(t *testing.T) {
	svc, tokens := newTestService(t)

	_, err := svc.Register("test", "Password123@")
	require.NoError(t, err)

	session, err := svc.FreshLogin("test", "Password123@")
	require.NoError(t, err)
	require.NotNil(t, session.Access)
	assert.Nil(t, session.Refresh)

	claims, err := tokens.Decode(session.Access.Token)
	require.NoError(t, err)
	assert.True(t, claims.Fresh)
}

func TestRefreshDowngradesFreshness(t *testing.T) {
	svc, tokens := newTestService(t)

	_, err := svc.Register("test", "Password123@")
	require.NoError(t, err)
	session, err := svc.Login("test", "Password123@")
	require.NoError(t, err)

	refreshClaims, err := tokens.Decode(session.Refresh.Token)
	require.NoError(t, err)

	access, err := svc.Refresh(refreshClaims)
	require.NoError(t, err)

	claims, err := tokens.Decode(access.Token)
	require.NoError(t, err)
	assert.Equal(t, "test", claims.Username)
	assert.Equal(t, models.TokenKindAccess, claims.Kind)
	// Refreshed tokens are never fresh, even though the login token was.
	assert.False(t, claims.Fresh)
}

func TestListUsersOrderedWithoutPasswords(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := svc.Register(name, "Password123@")
		require.NoError(t, err)
	}

	users, err := svc.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
	for i := 1; i < len(users); i++ {
		assert.Greater(t, users[i].ID, users[i-1].ID)
	}
}
