package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/order/domain/dao"
)

// snapshotPrice reads the current catalog price of a cake size.
func snapshotPrice(ctx context.Context, tx *sqlx.Tx, cakeID int, size string) (int, error) {
	var price int
	err := tx.GetContext(ctx, &price,
		`SELECT price FROM cake_sizes WHERE cake_id = $1 AND size = $2`, cakeID, size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Validation("cake %d has no size %q", cakeID, size)
	}
	return price, errors.Wrap(err, "select size price")
}

func applyStock(ctx context.Context, tx *sqlx.Tx, changes []dao.StockChange, policy dao.StockPolicy) error {
	for _, c := range changes {
		var err error
		switch {
		case c.Delta > 0:
			err = restoreStock(ctx, tx, c.StockKey, c.Delta)
		case policy == dao.StockClamp:
			err = clampDeduct(ctx, tx, c.StockKey, -c.Delta)
		default:
			err = strictDeduct(ctx, tx, c.StockKey, -c.Delta)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func restoreStock(ctx context.Context, tx *sqlx.Tx, k dao.StockKey, n int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE cake_sizes SET stock = stock + $1 WHERE cake_id = $2 AND size = $3`, n, k.CakeID, k.Size)
	return errors.Wrapf(err, "restore stock cake %d size %s", k.CakeID, k.Size)
}

func clampDeduct(ctx context.Context, tx *sqlx.Tx, k dao.StockKey, n int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE cake_sizes SET stock = GREATEST(stock - $1, 0) WHERE cake_id = $2 AND size = $3`, n, k.CakeID, k.Size)
	return errors.Wrapf(err, "deduct stock cake %d size %s", k.CakeID, k.Size)
}

// strictDeduct takes n units only if they are all there. A size that no
// longer exists in the catalog is skipped.
func strictDeduct(ctx context.Context, tx *sqlx.Tx, k dao.StockKey, n int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cake_sizes SET stock = stock - $1 WHERE cake_id = $2 AND size = $3 AND stock >= $1`,
		n, k.CakeID, k.Size)
	if err != nil {
		return errors.Wrapf(err, "deduct stock cake %d size %s", k.CakeID, k.Size)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}

	var left int
	err = tx.GetContext(ctx, &left,
		`SELECT stock FROM cake_sizes WHERE cake_id = $1 AND size = $2`, k.CakeID, k.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read stock")
	}
	return apperr.InsufficientStock("cake %d size %s: %d requested, %d in stock", k.CakeID, k.Size, n, left)
}
