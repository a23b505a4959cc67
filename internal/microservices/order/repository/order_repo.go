package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/connections/database"
	"cakeshop/internal/microservices/order/domain/dao"
	notify "cakeshop/internal/microservices/notificator/domain/dao"
)

type OrderRepositoryInterface interface {
	Create(ctx context.Context, order dao.Order) (dao.Order, error)
	Update(ctx context.Context, order dao.Order) (dao.Order, error)
	UpdateStatus(ctx context.Context, id int, status dao.Status) (dao.Status, error)
	Get(ctx context.Context, id int) (dao.Order, error)
	List(ctx context.Context, search string) ([]dao.Order, error)
}

type OrderRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewOrderRepository(db *sqlx.DB, opts Options) OrderRepositoryInterface {
	if opts.StockPolicy == "" {
		opts.StockPolicy = dao.StockStrict
	}
	return &OrderRepository{db: db, opts: opts}
}

const orderColumns = `o.id_order, o.first_name, o.last_name, o.tel, o.email,
	to_char(o.date, 'YYYY-MM-DD') AS date, o.pickup_hour, o.message, o.status, o.created_at`

// Create stores the order and its lines, takes the stock and queues the
// confirmation email, all in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order dao.Order) (dao.Order, error) {
	var out dao.Order
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if r.opts.RequireOpenSlot {
			if err := ensureSlotOpen(ctx, tx, order.Date, order.PickupHour); err != nil {
				return err
			}
		}

		var id int
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO orders (first_name, last_name, tel, email, date, pickup_hour, message, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id_order`,
			order.FirstName, order.LastName, order.Tel, order.Email,
			order.Date, order.PickupHour, order.Message, order.Status,
		).Scan(&id); err != nil {
			return errors.Wrap(err, "insert order")
		}

		lines := make([]dao.OrderCake, 0, len(order.Cakes))
		for _, l := range order.Cakes {
			price, err := snapshotPrice(ctx, tx, l.CakeID, l.Size)
			if err != nil {
				return err
			}
			l.Price = price
			if err := insertLine(ctx, tx, id, l); err != nil {
				return err
			}
			lines = append(lines, l)
		}

		changes := dao.StockAdjustments(dao.StatusCancelled, nil, order.Status, lines)
		if err := applyStock(ctx, tx, changes, r.opts.StockPolicy); err != nil {
			return err
		}

		var err error
		if out, err = getOrder(ctx, tx, id); err != nil {
			return err
		}
		return enqueueEmail(ctx, tx, notify.KindConfirmation, out)
	})
	return out, err
}

// Update is the full admin edit: fields, lines (by set difference) and the
// stock movements the edit implies.
func (r *OrderRepository) Update(ctx context.Context, order dao.Order) (dao.Order, error) {
	var out dao.Order
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		prev, err := lockStatus(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		existing, err := loadLines(ctx, tx, order.ID)
		if err != nil {
			return err
		}

		diff, ok := dao.DiffLines(existing, order.Cakes)
		if !ok {
			return apperr.Validation("order %d: unknown or repeated line id", order.ID)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET first_name = $1, last_name = $2, tel = $3, email = $4,
			    date = $5, pickup_hour = $6, message = $7, status = $8, updated_at = now()
			WHERE id_order = $9`,
			order.FirstName, order.LastName, order.Tel, order.Email,
			order.Date, order.PickupHour, order.Message, order.Status, order.ID,
		); err != nil {
			return errors.Wrap(err, "update order")
		}

		if err := applyLineDiff(ctx, tx, order.ID, diff); err != nil {
			return err
		}

		current, err := loadLines(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		changes := dao.StockAdjustments(prev, existing, order.Status, current)
		if err := applyStock(ctx, tx, changes, r.opts.StockPolicy); err != nil {
			return err
		}

		if out, err = getOrder(ctx, tx, order.ID); err != nil {
			return err
		}
		return enqueueEmail(ctx, tx, notify.KindUpdate, out)
	})
	return out, err
}

// UpdateStatus moves the order to status and returns the previous one.
// Entering cancelled gives the stock back and queues a cancellation email;
// leaving it takes the stock again.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status dao.Status) (dao.Status, error) {
	var prev dao.Status
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		if prev, err = lockStatus(ctx, tx, id); err != nil {
			return err
		}
		if prev == status {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = now() WHERE id_order = $2`, status, id); err != nil {
			return errors.Wrap(err, "update order status")
		}

		lines, err := loadLines(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyStock(ctx, tx, dao.StockAdjustments(prev, lines, status, lines), r.opts.StockPolicy); err != nil {
			return err
		}

		if status == dao.StatusCancelled {
			order, err := getOrder(ctx, tx, id)
			if err != nil {
				return err
			}
			return enqueueEmail(ctx, tx, notify.KindCancellation, order)
		}
		return nil
	})
	return prev, err
}

func (r *OrderRepository) Get(ctx context.Context, id int) (dao.Order, error) {
	return getOrder(ctx, r.db, id)
}

// List returns orders newest first. search matches the customer name, a
// phone substring or an exact order id.
func (r *OrderRepository) List(ctx context.Context, search string) ([]dao.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		id, err := strconv.Atoi(search)
		if err != nil {
			id = -1
		}
		query += ` WHERE LOWER(o.first_name || o.last_name) LIKE $1
			OR LOWER(o.first_name || ' ' || o.last_name) LIKE $1
			OR o.tel LIKE $1
			OR o.id_order = $2`
		args = append(args, like, id)
	}
	query += ` ORDER BY o.id_order DESC`

	var orders []dao.Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	if len(orders) == 0 {
		return []dao.Order{}, nil
	}

	ids := make([]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := loadLines(ctx, r.db, ids...)
	if err != nil {
		return nil, err
	}
	byOrder := map[int][]dao.OrderCake{}
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range orders {
		orders[i].Cakes = byOrder[orders[i].ID]
		if orders[i].Cakes == nil {
			orders[i].Cakes = []dao.OrderCake{}
		}
	}
	return orders, nil
}

func lockStatus(ctx context.Context, tx *sqlx.Tx, id int) (dao.Status, error) {
	var status dao.Status
	err := tx.GetContext(ctx, &status, `SELECT status FROM orders WHERE id_order = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound("order %d not found", id)
	}
	return status, errors.Wrap(err, "lock order")
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, id int) (dao.Order, error) {
	var order dao.Order
	err := sqlx.GetContext(ctx, q, &order, `SELECT `+orderColumns+` FROM orders o WHERE o.id_order = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return dao.Order{}, apperr.NotFound("order %d not found", id)
	}
	if err != nil {
		return dao.Order{}, errors.Wrap(err, "select order")
	}
	if order.Cakes, err = loadLines(ctx, q, id); err != nil {
		return dao.Order{}, err
	}
	return order, nil
}

// loadLines returns the lines of the given orders joined with the cake name
// and the current stock of their size.
func loadLines(ctx context.Context, q sqlx.QueryerContext, orderIDs ...int) ([]dao.OrderCake, error) {
	query, args, err := sqlx.In(`
		SELECT oc.id, oc.order_id, oc.cake_id, COALESCE(c.name, '') AS name, oc.size,
		       oc.amount, oc.price, oc.message_cake, COALESCE(cs.stock, 0) AS stock
		FROM order_cakes oc
		LEFT JOIN cakes c ON c.id = oc.cake_id
		LEFT JOIN cake_sizes cs ON cs.cake_id = oc.cake_id AND cs.size = oc.size
		WHERE oc.order_id IN (?)
		ORDER BY oc.id`, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "build line query")
	}
	lines := []dao.OrderCake{}
	if err := sqlx.SelectContext(ctx, q, &lines, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return nil, errors.Wrap(err, "select order lines")
	}
	return lines, nil
}

func insertLine(ctx context.Context, tx *sqlx.Tx, orderID int, l dao.OrderCake) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_cakes (order_id, cake_id, size, amount, price, message_cake)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, l.CakeID, l.Size, l.Amount, l.Price, l.MessageCake)
	return errors.Wrapf(err, "insert line cake %d size %s", l.CakeID, l.Size)
}

func applyLineDiff(ctx context.Context, tx *sqlx.Tx, orderID int, diff dao.LineDiff) error {
	if len(diff.Delete) > 0 {
		q, args, err := sqlx.In(`DELETE FROM order_cakes WHERE order_id = ? AND id IN (?)`, orderID, diff.Delete)
		if err != nil {
			return errors.Wrap(err, "build line delete")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return errors.Wrap(err, "delete lines")
		}
	}
	for _, u := range diff.Update {
		l := u.Line
		if u.Reprice {
			price, err := snapshotPrice(ctx, tx, l.CakeID, l.Size)
			if err != nil {
				return err
			}
			l.Price = price
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE order_cakes SET cake_id = $1, size = $2, amount = $3, price = $4, message_cake = $5
			WHERE id = $6 AND order_id = $7`,
			l.CakeID, l.Size, l.Amount, l.Price, l.MessageCake, l.ID, orderID); err != nil {
			return errors.Wrapf(err, "update line %d", l.ID)
		}
	}
	for _, l := range diff.Insert {
		price, err := snapshotPrice(ctx, tx, l.CakeID, l.Size)
		if err != nil {
			return err
		}
		l.Price = price
		if err := insertLine(ctx, tx, orderID, l); err != nil {
			return err
		}
	}
	return nil
}

func ensureSlotOpen(ctx context.Context, tx *sqlx.Tx, date, hour string) error {
	var open bool
	err := tx.GetContext(ctx, &open, `
		SELECT EXISTS (
			SELECT 1 FROM day_time_slots s
			JOIN days d ON d.id = s.day_id
			JOIN times t ON t.id = s.time_id
			WHERE d.date = $1 AND t.time_value = $2
		)`, date, hour)
	if err != nil {
		return errors.Wrap(err, "check slot")
	}
	if !open {
		return apperr.Validation("pickup slot %s %s is not open", date, hour)
	}
	return nil
}
