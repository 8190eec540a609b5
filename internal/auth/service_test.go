package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

type mockUsers struct {
	byID    map[int64]users.User
	byEmail map[string]users.User
}

func (m *mockUsers) Get(ctx context.Context, id int64) (*users.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (m *mockUsers) GetByIDs(ctx context.Context, ids []int64) (map[int64]users.User, error) {
	return m.byID, nil
}

func newTestService(t *testing.T) (*Service, *TokenStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := users.User{
		ID: 1, Email: "admin@example.com", Name: "Admin",
		Role: users.RoleAdmin, PasswordHash: string(hash), IsActive: true,
	}
	client10 := users.User{
		ID: 10, Email: "dana@example.com", Name: "Dana", CompanyName: "Dana Construction",
		Role: users.RoleClient, PasswordHash: string(hash), IsActive: true,
	}
	inactive := users.User{
		ID: 20, Email: "gone@example.com", Name: "Gone",
		Role: users.RoleClient, PasswordHash: string(hash), IsActive: false,
	}

	repo := &mockUsers{
		byID:    map[int64]users.User{1: admin, 10: client10, 20: inactive},
		byEmail: map[string]users.User{admin.Email: admin, client10.Email: client10, inactive.Email: inactive},
	}

	tokens := NewTokenStore(client, time.Hour)
	return NewService(repo, tokens), tokens
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Authenticate(ctx, "dana@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(10), user.ID)

	caller, err := svc.ResolveCaller(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(10), caller.UserID)
	assert.Equal(t, "Dana", caller.Name)
	assert.False(t, caller.Admin)
}

func TestAuthenticateAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	_, token, err := svc.Authenticate(context.Background(), "admin@example.com", "correct horse")
	require.NoError(t, err)

	caller, err := svc.ResolveCaller(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, caller.Admin)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Authenticate(context.Background(), "dana@example.com", "wrong password")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Authenticate(context.Background(), "gone@example.com", "correct horse")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, token, err := svc.Authenticate(ctx, "dana@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveCaller(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveCaller(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStoreIssueResolve(t *testing.T) {
	_, tokens := newTestService(t)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, 42)
	require.NoError(t, err)

	userID, err := tokens.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, tokens.Revoke(ctx, token))
	_, err = tokens.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
