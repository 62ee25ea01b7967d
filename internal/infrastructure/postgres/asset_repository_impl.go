package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(ctx context.Context, a *entity.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return mapError(r.db.WithContext(ctx).Create(a).Error, "asset")
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	a := &entity.Asset{}
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(a).Error; err != nil {
		return nil, mapError(err, "asset")
	}
	return a, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Asset{})
	if res.Error != nil {
		return mapError(res.Error, "asset")
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "asset not found")
	}
	return nil
}

var _ repository.AssetRepository = (*AssetRepository)(nil)
