package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-store/atelier/internal/shared"
)

// Service authenticates operators and resolves acting users.
type Service struct {
	repo  Repository
	cache *NameCache
}

// NewService builds Service. The name cache is owned by the caller.
func NewService(repo Repository, cache *NameCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Authenticate verifies credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentActor resolves the signed-in user from the request context.
func (s *Service) CurrentActor(ctx context.Context) (User, error) {
	id, err := shared.ActorID(ctx)
	if err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// DisplayNames resolves display names for the given user IDs, serving cached
// entries and fetching only the misses.
func (s *Service) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		if name, ok := s.cache.Get(id); ok {
			names[id] = name
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := s.repo.DisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range fetched {
		names[id] = name
		s.cache.Add(id, name)
	}
	return names, nil
}
