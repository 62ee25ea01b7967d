package main

import (
	"database/sql"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-library-api/config"
	"github.com/oksasatya/go-library-api/pkg/helpers"
)

type seedBook struct {
	title, release, description string
}

var books = []seedBook{
	{"The Left Hand of Darkness", "1969-03-01", "An envoy visits a planet whose people have no fixed sex."},
	{"The Dispossessed", "1974-05-01", "A physicist travels between an anarchist moon and its capitalist planet."},
	{"A Wizard of Earthsea", "1968-11-01", "A young mage unleashes a shadow and must hunt it down."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	login := "demo"
	password := "password123"
	hash, salt, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (login, password_hash, password_salt, full_name, country, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (login) DO UPDATE SET updated_at = now()
		RETURNING id
	`, login, hash, salt, "Demo Reader", "ID", "1990-01-01").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	log.Printf("seeded user: id=%s login=%s password=%s", id, login, password)

	for _, b := range books {
		res, err := db.Exec(`
			INSERT INTO books (title, author_id, release_date, description)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (SELECT 1 FROM books WHERE title = $1 AND author_id = $2)
		`, b.title, id, b.release, b.description)
		if err != nil {
			log.Fatalf("failed to seed book %q: %v", b.title, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("seeded book: %s", b.title)
		}
	}
}
