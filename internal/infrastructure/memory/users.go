// Package memory holds map-backed implementations of the store contracts.
// They back local development (STORAGE_PROVIDER=memory) and service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type UserStore struct {
	mu     sync.Mutex
	users  map[string]entity.User
	assets *AssetStore // optional, used to join Image on reads

	// SetImageErr, when set, is returned by SetImage without mutating anything.
	SetImageErr error
}

func NewUserStore(assets *AssetStore) *UserStore {
	return &UserStore{users: map[string]entity.User{}, assets: assets}
}

func (s *UserStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Login == u.Login {
			return apperror.New(apperror.KindConflictingLogin, "login already taken")
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	cp.Image = nil
	s.users[u.ID] = cp
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	return s.join(ctx, u), nil
}

func (s *UserStore) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == login {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "user not found")
}

func (s *UserStore) Update(ctx context.Context, id string, patch repository.UserPatch) (*entity.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	if patch.Login != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Login == *patch.Login {
				s.mu.Unlock()
				return nil, apperror.New(apperror.KindConflictingLogin, "login already taken")
			}
		}
		u.Login = *patch.Login
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.PasswordSalt != nil {
		u.PasswordSalt = *patch.PasswordSalt
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Country != nil {
		u.Country = *patch.Country
	}
	if patch.DateOfBirth != nil {
		u.DateOfBirth = *patch.DateOfBirth
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	s.mu.Unlock()
	return s.join(ctx, u), nil
}

func (s *UserStore) SetImage(_ context.Context, userID string, imageID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetImageErr != nil {
		return s.SetImageErr
	}
	u, ok := s.users[userID]
	if !ok {
		return apperror.New(apperror.KindNotFound, "user not found")
	}
	if imageID != nil {
		for otherID, other := range s.users {
			if otherID != userID && other.ImageID != nil && *other.ImageID == *imageID {
				return apperror.New(apperror.KindInternal, "asset already linked to another user")
			}
		}
		id := *imageID
		u.ImageID = &id
	} else {
		u.ImageID = nil
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return nil
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) join(ctx context.Context, u entity.User) *entity.User {
	u.Image = nil
	if u.ImageID != nil && s.assets != nil {
		if a, err := s.assets.GetByID(ctx, *u.ImageID); err == nil {
			u.Image = a
		}
	}
	return &u
}

var _ repository.UserRepository = (*UserStore)(nil)
