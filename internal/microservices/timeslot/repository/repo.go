package repository

import "github.com/jmoiron/sqlx"

type Repository struct {
	SlotRepo SlotRepositoryInterface
}

func New(db *sqlx.DB) *Repository {
	return &Repository{
		SlotRepo: NewSlotRepository(db),
	}
}
