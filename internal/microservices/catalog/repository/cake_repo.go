package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/connections/database"
	"cakeshop/internal/microservices/catalog/domain/dao"
)

type CakeRepositoryInterface interface {
	List(ctx context.Context) ([]dao.Cake, error)
	Get(ctx context.Context, id int) (dao.Cake, error)
	Create(ctx context.Context, cake dao.Cake) (dao.Cake, error)
	Update(ctx context.Context, cake dao.Cake) (dao.Cake, error)
	Delete(ctx context.Context, id int) error
}

type CakeRepository struct {
	db *sqlx.DB
}

func NewCakeRepository(db *sqlx.DB) CakeRepositoryInterface {
	return &CakeRepository{db: db}
}

func (r *CakeRepository) List(ctx context.Context) ([]dao.Cake, error) {
	var cakes []dao.Cake
	if err := r.db.SelectContext(ctx, &cakes,
		`SELECT id, name, description, image FROM cakes ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select cakes")
	}
	var sizes []dao.CakeSize
	if err := r.db.SelectContext(ctx, &sizes,
		`SELECT id, cake_id, size, price, stock FROM cake_sizes ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "select cake sizes")
	}

	byCake := make(map[int][]dao.CakeSize, len(cakes))
	for _, s := range sizes {
		byCake[s.CakeID] = append(byCake[s.CakeID], s)
	}
	for i := range cakes {
		cakes[i].Sizes = byCake[cakes[i].ID]
		if cakes[i].Sizes == nil {
			cakes[i].Sizes = []dao.CakeSize{}
		}
	}
	if cakes == nil {
		cakes = []dao.Cake{}
	}
	return cakes, nil
}

func (r *CakeRepository) Get(ctx context.Context, id int) (dao.Cake, error) {
	return getCake(ctx, r.db, id)
}

func (r *CakeRepository) Create(ctx context.Context, cake dao.Cake) (dao.Cake, error) {
	var out dao.Cake
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO cakes (name, description, image) VALUES ($1, $2, $3) RETURNING id`,
			cake.Name, cake.Description, cake.Image,
		).Scan(&id); err != nil {
			return errors.Wrap(err, "insert cake")
		}
		for _, s := range cake.Sizes {
			if err := insertSize(ctx, tx, id, s); err != nil {
				return err
			}
		}
		var err error
		out, err = getCake(ctx, tx, id)
		return err
	})
	return out, err
}

// Update rewrites the cake row and reconciles its sizes by label.
func (r *CakeRepository) Update(ctx context.Context, cake dao.Cake) (dao.Cake, error) {
	var out dao.Cake
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE cakes SET name = $1, description = $2, image = $3, updated_at = now() WHERE id = $4`,
			cake.Name, cake.Description, cake.Image, cake.ID)
		if err != nil {
			return errors.Wrap(err, "update cake")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("cake %d not found", cake.ID)
		}

		var existing []dao.CakeSize
		if err := tx.SelectContext(ctx, &existing,
			`SELECT id, cake_id, size, price, stock FROM cake_sizes WHERE cake_id = $1 FOR UPDATE`, cake.ID); err != nil {
			return errors.Wrap(err, "lock cake sizes")
		}

		if err := applySizeDiff(ctx, tx, cake.ID, dao.DiffSizes(existing, cake.Sizes)); err != nil {
			return err
		}

		out, err = getCake(ctx, tx, cake.ID)
		return err
	})
	return out, err
}

func (r *CakeRepository) Delete(ctx context.Context, id int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cake_sizes WHERE cake_id = $1`, id); err != nil {
			return errors.Wrap(err, "delete cake sizes")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM cakes WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "delete cake")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("cake %d not found", id)
		}
		return nil
	})
}

// applySizeDiff writes a size reconciliation; an empty diff is a no-op.
func applySizeDiff(ctx context.Context, tx *sqlx.Tx, cakeID int, diff dao.SizeDiff) error {
	if diff.Empty() {
		return nil
	}
	if len(diff.Delete) > 0 {
		q, args, err := sqlx.In(`DELETE FROM cake_sizes WHERE id IN (?)`, diff.Delete)
		if err != nil {
			return errors.Wrap(err, "build size delete")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return errors.Wrap(err, "delete cake sizes")
		}
	}
	for _, s := range diff.Update {
		if _, err := tx.ExecContext(ctx,
			`UPDATE cake_sizes SET price = $1, stock = $2 WHERE id = $3`, s.Price, s.Stock, s.ID); err != nil {
			return errors.Wrapf(err, "update size %s", s.Size)
		}
	}
	for _, s := range diff.Insert {
		if err := insertSize(ctx, tx, cakeID, s); err != nil {
			return err
		}
	}
	return nil
}

func insertSize(ctx context.Context, tx *sqlx.Tx, cakeID int, s dao.CakeSize) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cake_sizes (cake_id, size, price, stock) VALUES ($1, $2, $3, $4)`,
		cakeID, s.Size, s.Price, s.Stock)
	return errors.Wrapf(err, "insert size %s", s.Size)
}

func getCake(ctx context.Context, q sqlx.QueryerContext, id int) (dao.Cake, error) {
	var cake dao.Cake
	err := sqlx.GetContext(ctx, q, &cake, `SELECT id, name, description, image FROM cakes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dao.Cake{}, apperr.NotFound("cake %d not found", id)
	}
	if err != nil {
		return dao.Cake{}, errors.Wrap(err, "select cake")
	}
	cake.Sizes = []dao.CakeSize{}
	if err := sqlx.SelectContext(ctx, q, &cake.Sizes,
		`SELECT id, cake_id, size, price, stock FROM cake_sizes WHERE cake_id = $1 ORDER BY id`, id); err != nil {
		return dao.Cake{}, errors.Wrap(err, "select cake sizes")
	}
	return cake, nil
}
