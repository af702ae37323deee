package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-store/atelier/internal/shared"
)

type memoryUsers struct {
	byEmail   map[string]User
	byID      map[uuid.UUID]User
	nameCalls int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]User{}, byID: map[uuid.UUID]User{}}
}

func (m *memoryUsers) add(u User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (User, error) {
	u, ok := m.byID[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) DisplayNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	m.nameCalls++
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			names[id] = u.FullName
		}
	}
	return names, nil
}

func testUser(t *testing.T, email, password string, active bool) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     "Test Operator",
		Role:         "admin",
		PasswordHash: string(hash),
		IsActive:     active,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newMemoryUsers()
	u := testUser(t, "ops@example.com", "correct horse", true)
	repo.add(u)
	svc := NewService(repo, NewNameCache(8))

	got, err := svc.Authenticate(context.Background(), "ops@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newMemoryUsers()
	repo.add(testUser(t, "ops@example.com", "correct horse", true))
	svc := NewService(repo, NewNameCache(8))

	_, err := svc.Authenticate(context.Background(), "ops@example.com", "battery staple")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newMemoryUsers(), NewNameCache(8))

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newMemoryUsers()
	repo.add(testUser(t, "former@example.com", "correct horse", false))
	svc := NewService(repo, NewNameCache(8))

	_, err := svc.Authenticate(context.Background(), "former@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestDisplayNamesServesCacheOnSecondCall(t *testing.T) {
	repo := newMemoryUsers()
	u := testUser(t, "ops@example.com", "correct horse", true)
	repo.add(u)
	svc := NewService(repo, NewNameCache(8))

	first, err := svc.DisplayNames(context.Background(), []uuid.UUID{u.ID})
	require.NoError(t, err)
	require.Equal(t, "Test Operator", first[u.ID])
	require.Equal(t, 1, repo.nameCalls)

	second, err := svc.DisplayNames(context.Background(), []uuid.UUID{u.ID})
	require.NoError(t, err)
	require.Equal(t, "Test Operator", second[u.ID])
	require.Equal(t, 1, repo.nameCalls)
}
