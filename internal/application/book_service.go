package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	repo "github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type BookService struct {
	Books  repo.BookRepository
	Index  repo.BookIndex // optional; search is unavailable without it
	Logger *logrus.Logger
}

func NewBookService(books repo.BookRepository, index repo.BookIndex, logger *logrus.Logger) *BookService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &BookService{Books: books, Index: index, Logger: logger}
}

type CreateBookInput struct {
	Title       string
	ReleaseDate time.Time
	Description string
}

type UpdateBookInput struct {
	ID          int64
	Title       *string
	AuthorID    *string
	ReleaseDate *time.Time
	Description *string
}

// List returns one page of books ordered by id. page starts at 1.
func (s *BookService) List(ctx context.Context, page, limit int) ([]entity.Book, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.Books.List(ctx, (page-1)*limit, limit)
}

func (s *BookService) Get(ctx context.Context, id int64) (*entity.Book, error) {
	return s.Books.GetByID(ctx, id)
}

// Create stores a book written by authorID.
func (s *BookService) Create(ctx context.Context, authorID string, in CreateBookInput) (*entity.Book, error) {
	b := &entity.Book{
		Title:       in.Title,
		AuthorID:    authorID,
		ReleaseDate: in.ReleaseDate,
		Description: in.Description,
	}
	if err := s.Books.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Update(ctx context.Context, in UpdateBookInput) (*entity.Book, error) {
	patch := repo.BookPatch{
		Title:       in.Title,
		AuthorID:    in.AuthorID,
		ReleaseDate: in.ReleaseDate,
		Description: in.Description,
	}
	if patch.Empty() {
		return nil, apperror.New(apperror.KindInvalidBody, "Invalid form data: nothing to update")
	}
	b, err := s.Books.Update(ctx, in.ID, patch)
	if err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	if err := s.Books.Delete(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("book_id", id).Warn("search index remove failed")
		}
	}
	return nil
}

// Search runs a full-text query over titles and descriptions.
func (s *BookService) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	if s.Index == nil {
		return nil, apperror.New(apperror.KindInternal, "search is not configured")
	}
	books, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "search failed", err)
	}
	return books, nil
}

// index keeps the search index current; failures are logged, the row is the source of truth.
func (s *BookService) index(ctx context.Context, b *entity.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		s.Logger.WithError(err).WithField("book_id", b.ID).Warn("search index update failed")
	}
}
