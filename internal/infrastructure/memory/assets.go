package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type AssetStore struct {
	mu     sync.Mutex
	assets map[string]entity.Asset

	// CreateErr and DeleteErr are returned instead of touching the map when set.
	CreateErr error
	DeleteErr error
}

func NewAssetStore() *AssetStore {
	return &AssetStore{assets: map[string]entity.Asset{}}
}

func (s *AssetStore) Create(_ context.Context, a *entity.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.assets[a.ID] = *a
	return nil
}

func (s *AssetStore) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "asset not found")
	}
	return &a, nil
}

func (s *AssetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.assets[id]; !ok {
		return apperror.New(apperror.KindNotFound, "asset not found")
	}
	delete(s.assets, id)
	return nil
}

// Put stores a row as is, bypassing CreateErr.
func (s *AssetStore) Put(a entity.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
}

func (s *AssetStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

var _ repository.AssetRepository = (*AssetStore)(nil)
