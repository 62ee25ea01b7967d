package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-library-api/internal/domain/entity"
)

// UserPatch carries the columns to change; nil fields are left untouched.
type UserPatch struct {
	Login        *string
	PasswordHash *string
	PasswordSalt *string
	FullName     *string
	Country      *string
	DateOfBirth  *time.Time
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Login == nil && p.PasswordHash == nil && p.PasswordSalt == nil &&
		p.FullName == nil && p.Country == nil && p.DateOfBirth == nil
}

// UserRepository defines the interface for user-related database operations.
// Lookups fail with apperror.ErrNotFound; writes that collide on login fail
// with apperror.ErrConflictingLogin.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*entity.User, error)
	// SetImage points the user at imageID, or clears the link when imageID is nil.
	SetImage(ctx context.Context, userID string, imageID *string) error
}
