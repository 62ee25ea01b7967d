package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// PasswordHash/PasswordSalt come from helpers.HashPassword and are never serialised.
// ImageID is written only by the profile image lifecycle.
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Login        string    `gorm:"uniqueIndex:users_login_key;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	PasswordSalt string    `gorm:"column:password_salt;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Country      string    `gorm:"not null"`
	DateOfBirth  time.Time `gorm:"column:date_of_birth;type:date"`
	ImageID      *string   `gorm:"column:image_id;type:uuid"`
	Image        *Asset    `gorm:"foreignKey:ImageID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// HasImage reports whether the user currently links an asset.
func (u *User) HasImage() bool {
	return u.ImageID != nil && *u.ImageID != ""
}
