package entity

import "time"

type Book struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"not null"`
	AuthorID    string    `gorm:"column:author_id;type:uuid;not null"`
	ReleaseDate time.Time `gorm:"column:release_date;type:date"`
	Description string    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Book) TableName() string { return "books" }
