package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type failingIndex struct {
	*memory.BookStore
	calls int
}

func (f *failingIndex) Index(context.Context, *entity.Book) error {
	f.calls++
	return errors.New("es unavailable")
}

func seedBooks(t *testing.T, svc *BookService, titles ...string) {
	t.Helper()
	for _, title := range titles {
		_, err := svc.Create(context.Background(), "author-1", CreateBookInput{Title: title, Description: title + " desc"})
		require.NoError(t, err)
	}
}

func TestBookService_ListPages(t *testing.T) {
	store := memory.NewBookStore()
	svc := NewBookService(store, store, nil)
	seedBooks(t, svc, "A", "B", "C")

	page, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].Title)

	all, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBookService_Update(t *testing.T) {
	store := memory.NewBookStore()
	svc := NewBookService(store, store, nil)
	seedBooks(t, svc, "Dune")
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateBookInput{ID: 1})
	assert.ErrorIs(t, err, apperror.ErrInvalidBody)

	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
	b, err := svc.Update(ctx, UpdateBookInput{ID: 1, ReleaseDate: &date})
	require.NoError(t, err)
	assert.Equal(t, date, b.ReleaseDate)
	assert.Equal(t, "Dune", b.Title)

	title := "x"
	_, err = svc.Update(ctx, UpdateBookInput{ID: 99, Title: &title})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBookService_Delete(t *testing.T) {
	store := memory.NewBookStore()
	svc := NewBookService(store, store, nil)
	seedBooks(t, svc, "Dune")

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), apperror.ErrNotFound)
}

func TestBookService_IndexFailureDoesNotFailWrite(t *testing.T) {
	store := memory.NewBookStore()
	idx := &failingIndex{BookStore: store}
	svc := NewBookService(store, idx, nil)

	b, err := svc.Create(context.Background(), "author-1", CreateBookInput{Title: "Emma"})
	require.NoError(t, err)
	assert.Equal(t, "author-1", b.AuthorID)
	assert.Equal(t, 1, idx.calls)
}

func TestBookService_Search(t *testing.T) {
	store := memory.NewBookStore()
	svc := NewBookService(store, store, nil)
	seedBooks(t, svc, "Dune", "Emma")

	hits, err := svc.Search(context.Background(), "emma", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	_, err = NewBookService(store, nil, nil).Search(context.Background(), "emma", 10)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}
