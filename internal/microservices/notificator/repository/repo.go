package repository

import "github.com/jmoiron/sqlx"

type Repository struct {
	OutboxRepo OutboxRepositoryInterface
}

func New(db *sqlx.DB) *Repository {
	return &Repository{
		OutboxRepo: NewOutboxRepository(db),
	}
}
