package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type BookStore struct {
	mu     sync.Mutex
	nextID int64
	books  map[int64]entity.Book
}

func NewBookStore() *BookStore {
	return &BookStore{books: map[int64]entity.Book{}}
}

func (s *BookStore) List(_ context.Context, offset, limit int) ([]entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []entity.Book{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *BookStore) GetByID(_ context.Context, id int64) (*entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "book not found")
	}
	return &b, nil
}

func (s *BookStore) Create(_ context.Context, b *entity.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.books[b.ID] = *b
	return nil
}

func (s *BookStore) Update(_ context.Context, id int64, patch repository.BookPatch) (*entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "book not found")
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.AuthorID != nil {
		b.AuthorID = *patch.AuthorID
	}
	if patch.ReleaseDate != nil {
		b.ReleaseDate = *patch.ReleaseDate
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	b.UpdatedAt = time.Now().UTC()
	s.books[id] = b
	return &b, nil
}

func (s *BookStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return apperror.New(apperror.KindNotFound, "book not found")
	}
	delete(s.books, id)
	return nil
}

// Search does a case-insensitive substring match on title and description.
func (s *BookStore) Search(_ context.Context, q string, size int) ([]entity.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	out := []entity.Book{}
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Description), q) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if size > 0 && size < len(out) {
		out = out[:size]
	}
	return out, nil
}

var _ repository.BookRepository = (*BookStore)(nil)

// Index and Remove are no-ops: the store searches its own rows.
func (s *BookStore) Index(context.Context, *entity.Book) error { return nil }

func (s *BookStore) Remove(context.Context, int64) error { return nil }

var _ repository.BookIndex = (*BookStore)(nil)
