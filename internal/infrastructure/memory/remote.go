package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/internal/infrastructure/objectstore"
)

// RemoteStore keeps uploaded objects in memory and counts calls.
type RemoteStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte

	Uploads int
	Deletes int

	// UploadErr and DeleteErr make the matching call fail once set.
	UploadErr error
	DeleteErr error
}

func NewRemoteStore(baseURL string) *RemoteStore {
	if baseURL == "" {
		baseURL = "memory://assets"
	}
	return &RemoteStore{baseURL: baseURL, objects: map[string][]byte{}}
}

func (s *RemoteStore) Upload(_ context.Context, r io.Reader, opts repository.UploadOptions) (*entity.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads++
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	format := objectstore.FormatFor(opts.ContentType)
	key := objectstore.ObjectKey(opts.Folder, opts.ID, format)
	s.objects[key] = data
	return &entity.UploadResult{
		RemoteID:     key,
		URL:          s.baseURL + "/" + key,
		Format:       format,
		ResourceType: objectstore.ResourceTypeFor(opts.ContentType),
		CreatedAt:    time.Now().UTC(),
		Provider:     map[string]string{"api_key": "memory", "size": fmt.Sprint(len(data))},
	}, nil
}

func (s *RemoteStore) Delete(_ context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.objects[remoteID]; !ok {
		return errors.New("object not found: " + remoteID)
	}
	delete(s.objects, remoteID)
	return nil
}

// Object returns the stored bytes for remoteID.
func (s *RemoteStore) Object(remoteID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[remoteID]
	return b, ok
}

func (s *RemoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

var _ repository.RemoteAssetStore = (*RemoteStore)(nil)
