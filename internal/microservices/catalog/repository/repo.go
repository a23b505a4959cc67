package repository

import "github.com/jmoiron/sqlx"

type Repository struct {
	CakeRepo CakeRepositoryInterface
}

func New(db *sqlx.DB) *Repository {
	return &Repository{
		CakeRepo: NewCakeRepository(db),
	}
}
