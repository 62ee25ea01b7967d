package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
)

type BookPatch struct {
	Title       *string
	AuthorID    *string
	ReleaseDate *time.Time
	Description *string
}

func (p BookPatch) Empty() bool {
	return p.Title == nil && p.AuthorID == nil && p.ReleaseDate == nil && p.Description == nil
}

type BookRepository interface {
	List(ctx context.Context, offset, limit int) ([]entity.Book, error)
	GetByID(ctx context.Context, id int64) (*entity.Book, error)
	Create(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, id int64, patch BookPatch) (*entity.Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookIndex is a full-text index over books.
type BookIndex interface {
	Index(ctx context.Context, b *entity.Book) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, q string, size int) ([]entity.Book, error)
}
