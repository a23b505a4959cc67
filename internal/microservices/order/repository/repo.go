package repository

import (
	"github.com/jmoiron/sqlx"

	"cakeshop/internal/microservices/order/domain/dao"
)

type Options struct {
	StockPolicy     dao.StockPolicy
	RequireOpenSlot bool
}

type Repository struct {
	OrderRepo OrderRepositoryInterface
}

func New(db *sqlx.DB, opts Options) *Repository {
	return &Repository{
		OrderRepo: NewOrderRepository(db, opts),
	}
}
