package auth

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/user"
)

// memUsers is an in-memory UserRepository
type memUsers struct {
	mu sync.Mutex
	// ids reported taken by Create, to simulate a concurrent registration
	raced   map[string]bool
	users   map[string]*user.User
	creates int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*user.User{}, raced: map[string]bool{}}
}

func (m *memUsers) ListIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memUsers) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *memUsers) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.raced[u.ID] {
		delete(m.raced, u.ID)
		m.users[u.ID] = &user.User{ID: u.ID, Email: "racer-" + u.ID + "@example.com"}
		return user.ErrDuplicateID
	}
	if _, ok := m.users[u.ID]; ok {
		return user.ErrDuplicateID
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Delete(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	delete(m.users, id)
	return u, nil
}

type testAuth struct {
	svc    *Service
	users  *memUsers
	mr     *miniredis.Miniredis
	repo   *RedisRepository
	tokens TokenService
}

func newTestService(t *testing.T) testAuth {
	t.Helper()

	mr, repo := newTestRedis(t)
	tokens, err := NewJWTService(testJWTSecret)
	require.NoError(t, err)
	users := newMemUsers()

	svc := NewService(users, repo, repo, tokens, logging.Discard(), 15*time.Minute, 24*time.Hour)
	return testAuth{svc: svc, users: users, mr: mr, repo: repo, tokens: tokens}
}

func TestService_RegisterNumbersUsers(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	u1, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	u2, err := ta.svc.Register(ctx, "bob@example.com", "password2")
	require.NoError(t, err)

	assert.Equal(t, "user_1", u1.ID)
	assert.Equal(t, "user_2", u2.ID)
	assert.NotEqual(t, "password1", u1.PasswordHash)
	_, err = time.Parse(time.RFC3339, u1.CreatedAt)
	assert.NoError(t, err)
}

func TestService_RegisterValidation(t *testing.T) {
	ta := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"missing email", "", "password1", ErrEmailRequired},
		{"bad email", "not-an-email", "password1", ErrInvalidEmailFormat},
		{"missing password", "ada@example.com", "", ErrPasswordRequired},
		{"short password", "ada@example.com", "short", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ta.svc.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, ta.users.creates)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	_, err = ta.svc.Register(ctx, "ada@example.com", "password2")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestService_RegisterRetriesOnIDRace(t *testing.T) {
	ta := newTestService(t)
	ta.users.raced["user_1"] = true

	u, err := ta.svc.Register(context.Background(), "ada@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "user_2", u.ID)
	assert.Equal(t, 2, ta.users.creates)
}

func TestService_RegisterGivesUpAfterBoundedRetries(t *testing.T) {
	ta := newTestService(t)
	for i := 1; i <= registerMaxAttempts; i++ {
		ta.users.raced["user_"+strconv.Itoa(i)] = true
	}

	_, err := ta.svc.Register(context.Background(), "ada@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserIDExhausted)
	assert.Equal(t, registerMaxAttempts, ta.users.creates)
}

func TestService_Login(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	tokens, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int64(900), tokens.ExpiresIn)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := ta.tokens.VerifyToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)

	_, err = ta.svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ta.svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ta.svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RefreshRotatesToken(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	first, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	second, err := ta.svc.RefreshAccessToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = ta.svc.RefreshAccessToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	_, err = ta.svc.RefreshAccessToken(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	tokens, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, ta.svc.RevokeRefreshToken(ctx, tokens.RefreshToken))

	_, err = ta.svc.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestService_DeleteAccountRevokesEverything(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	tokens, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	claims, err := ta.tokens.VerifyToken(tokens.AccessToken)
	require.NoError(t, err)

	deleted, err := ta.svc.DeleteAccount(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", deleted.Email)

	_, err = ta.svc.Me(ctx, "user_1")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = ta.svc.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	revoked, err := ta.repo.AccessTokenRevoked(ctx, "user_1", claims.IssuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = ta.svc.DeleteAccount(ctx, "user_1")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_DeletedHighestUserIDIsReused(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	_, err = ta.svc.DeleteAccount(ctx, "user_1")
	require.NoError(t, err)

	u, err := ta.svc.Register(ctx, "bob@example.com", "password2")
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.ID)
}

func TestService_DeleteAccountKeptWhenRevocationFails(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	ta.mr.Close()
	_, err = ta.svc.DeleteAccount(ctx, "user_1")
	require.Error(t, err)
	require.NoError(t, ta.mr.Restart())

	// the id was not freed, so nobody else can be handed user_1
	u, err := ta.svc.Me(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	bob, err := ta.svc.Register(ctx, "bob@example.com", "password2")
	require.NoError(t, err)
	assert.Equal(t, "user_2", bob.ID)
}

func TestService_ReusedUserIDDoesNotInheritTokens(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()
	mw := NewMiddleware(ta.tokens, ta.repo)

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	ada, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	_, err = ta.svc.DeleteAccount(ctx, "user_1")
	require.NoError(t, err)

	u, err := ta.svc.Register(ctx, "bob@example.com", "password2")
	require.NoError(t, err)
	require.Equal(t, "user_1", u.ID)
	bob, err := ta.svc.Login(ctx, "bob@example.com", "password2")
	require.NoError(t, err)

	rec, seen := serveProtected(t, mw, "Bearer "+ada.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen)

	// issued moments after the deletion, usually within the same second
	rec, seen = serveProtected(t, mw, "Bearer "+bob.AccessToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user_1", seen)

	_, err = ta.svc.RefreshAccessToken(ctx, ada.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
	_, err = ta.svc.RefreshAccessToken(ctx, bob.RefreshToken)
	assert.NoError(t, err)
}

func TestService_RefreshRejectsTokenIssuedBeforeRevocation(t *testing.T) {
	ta := newTestService(t)
	ctx := context.Background()

	_, err := ta.svc.Register(ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	tokens, err := ta.svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	// a refresh token that escaped RevokeAllUserTokens is still blocked by the marker
	require.NoError(t, ta.repo.RevokeAccessTokens(ctx, "user_1", time.Hour))

	_, err = ta.svc.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}
