package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) List(ctx context.Context, offset, limit int) ([]entity.Book, error) {
	var books []entity.Book
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&books).Error
	if err != nil {
		return nil, mapError(err, "book")
	}
	return books, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	b := &entity.Book{}
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(b).Error; err != nil {
		return nil, mapError(err, "book")
	}
	return b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	return mapError(r.db.WithContext(ctx).Create(b).Error, "book")
}

func (r *BookRepository) Update(ctx context.Context, id int64, patch repository.BookPatch) (*entity.Book, error) {
	if !patch.Empty() {
		res := r.db.WithContext(ctx).Model(&entity.Book{}).Where("id = ?", id).Updates(bookColumns(patch))
		if res.Error != nil {
			return nil, mapError(res.Error, "book")
		}
		if res.RowsAffected == 0 {
			return nil, apperror.New(apperror.KindNotFound, "book not found")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Book{})
	if res.Error != nil {
		return mapError(res.Error, "book")
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "book not found")
	}
	return nil
}

func bookColumns(p repository.BookPatch) map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.AuthorID != nil {
		m["author_id"] = *p.AuthorID
	}
	if p.ReleaseDate != nil {
		m["release_date"] = *p.ReleaseDate
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	return m
}

var _ repository.BookRepository = (*BookRepository)(nil)
