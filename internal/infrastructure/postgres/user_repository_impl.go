package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return mapError(r.db.WithContext(ctx).Omit("Image").Create(u).Error, "user")
}

// GetByID loads the user joined with its profile image, if any.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	u := &entity.User{}
	if err := r.db.WithContext(ctx).Preload("Image").Where("id = ?", id).First(u).Error; err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	u := &entity.User{}
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(u).Error; err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*entity.User, error) {
	if !patch.Empty() {
		res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(userColumns(patch))
		if res.Error != nil {
			return nil, mapError(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) SetImage(ctx context.Context, userID string, imageID *string) error {
	var value any = gorm.Expr("NULL")
	if imageID != nil {
		value = *imageID
	}
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", userID).Update("image_id", value)
	if res.Error != nil {
		return mapError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "user not found")
	}
	return nil
}

func userColumns(p repository.UserPatch) map[string]any {
	m := map[string]any{}
	if p.Login != nil {
		m["login"] = *p.Login
	}
	if p.PasswordHash != nil {
		m["password_hash"] = *p.PasswordHash
	}
	if p.PasswordSalt != nil {
		m["password_salt"] = *p.PasswordSalt
	}
	if p.FullName != nil {
		m["full_name"] = *p.FullName
	}
	if p.Country != nil {
		m["country"] = *p.Country
	}
	if p.DateOfBirth != nil {
		m["date_of_birth"] = *p.DateOfBirth
	}
	return m
}

var _ repository.UserRepository = (*UserRepository)(nil)
