package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/connections/database"
	"cakeshop/internal/microservices/timeslot/domain/dao"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// timeLinkedMsg is the conflict message for deleting a time that days still open.
const timeLinkedMsg = "Não é possível excluir este horário pois ele está vinculado a dias existentes."

type SlotRepositoryInterface interface {
	ListTimes(ctx context.Context) ([]dao.Time, error)
	AddTime(ctx context.Context, value string) (int, error)
	DeleteTime(ctx context.Context, id int) error
	ListDays(ctx context.Context) ([]dao.Day, error)
	ListSlots(ctx context.Context, f dao.SlotFilter) ([]dao.Slot, error)
	DeleteSlot(ctx context.Context, id int) error
	BatchOpen(ctx context.Context, dates, times []string) (dao.BatchResult, error)
	ReconcileMonth(ctx context.Context, m dao.Month, days map[string][]string) (dao.MonthResult, error)
}

type SlotRepository struct {
	db *sqlx.DB
}

func NewSlotRepository(db *sqlx.DB) SlotRepositoryInterface {
	return &SlotRepository{db: db}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (r *SlotRepository) ListTimes(ctx context.Context) ([]dao.Time, error) {
	times := []dao.Time{}
	err := r.db.SelectContext(ctx, &times, `SELECT id, time_value FROM times ORDER BY time_value`)
	return times, errors.Wrap(err, "select times")
}

func (r *SlotRepository) AddTime(ctx context.Context, value string) (int, error) {
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO times (time_value) VALUES ($1) RETURNING id`, value).Scan(&id)
	if pgCode(err) == pgUniqueViolation {
		return 0, apperr.Validation("time %s already exists", value)
	}
	return id, errors.Wrap(err, "insert time")
}

// DeleteTime refuses to remove a time that any day still opens.
func (r *SlotRepository) DeleteTime(ctx context.Context, id int) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var links int
		if err := tx.GetContext(ctx, &links,
			`SELECT COUNT(*) FROM day_time_slots WHERE time_id = $1`, id); err != nil {
			return errors.Wrap(err, "count time links")
		}
		if links > 0 {
			return apperr.Conflict(timeLinkedMsg)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM times WHERE id = $1`, id)
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.Conflict(timeLinkedMsg)
		}
		if err != nil {
			return errors.Wrap(err, "delete time")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("time %d not found", id)
		}
		return nil
	})
}

func (r *SlotRepository) ListDays(ctx context.Context) ([]dao.Day, error) {
	days := []dao.Day{}
	err := r.db.SelectContext(ctx, &days,
		`SELECT id, to_char(date, 'YYYY-MM-DD') AS date FROM days ORDER BY date`)
	return days, errors.Wrap(err, "select days")
}

func (r *SlotRepository) ListSlots(ctx context.Context, f dao.SlotFilter) ([]dao.Slot, error) {
	query := `
		SELECT s.id, to_char(d.date, 'YYYY-MM-DD') AS date, t.time_value AS time
		FROM day_time_slots s
		JOIN days d ON d.id = s.day_id
		JOIN times t ON t.id = s.time_id`
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		args = append(args, f.Date)
		where = append(where, "d.date = ?")
	}
	if f.Month != nil {
		first, next := f.Month.Bounds()
		args = append(args, first, next)
		where = append(where, "d.date >= ? AND d.date < ?")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.date, t.time_value"

	slots := []dao.Slot{}
	err := r.db.SelectContext(ctx, &slots, r.db.Rebind(query), args...)
	return slots, errors.Wrap(err, "select slots")
}

func (r *SlotRepository) DeleteSlot(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM day_time_slots WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete slot")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("slot %d not found", id)
	}
	return nil
}

func (r *SlotRepository) BatchOpen(ctx context.Context, dates, times []string) (dao.BatchResult, error) {
	var res dao.BatchResult
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		res, err = batchOpen(ctx, tx, dates, times)
		return err
	})
	return res, err
}

// ReconcileMonth makes the month's open slots equal days in one
// transaction: links that are no longer wanted are removed, then each group
// of days sharing a time set is batch-opened.
func (r *SlotRepository) ReconcileMonth(ctx context.Context, m dao.Month, days map[string][]string) (dao.MonthResult, error) {
	var res dao.MonthResult
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		first, next := m.Bounds()
		var existing []dao.Slot
		if err := tx.SelectContext(ctx, &existing, `
			SELECT s.id, to_char(d.date, 'YYYY-MM-DD') AS date, t.time_value AS time
			FROM day_time_slots s
			JOIN days d ON d.id = s.day_id
			JOIN times t ON t.id = s.time_id
			WHERE d.date >= $1 AND d.date < $2
			FOR UPDATE OF s`, first, next); err != nil {
			return errors.Wrap(err, "lock month slots")
		}

		wanted := map[[2]string]bool{}
		for date, times := range days {
			for _, t := range times {
				wanted[[2]string{date, strings.TrimSpace(t)}] = true
			}
		}
		var stale []int
		for _, s := range existing {
			if !wanted[[2]string{s.Date, s.Time}] {
				stale = append(stale, s.ID)
			}
		}
		if len(stale) > 0 {
			q, args, err := sqlx.In(`DELETE FROM day_time_slots WHERE id IN (?)`, stale)
			if err != nil {
				return errors.Wrap(err, "build slot delete")
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
				return errors.Wrap(err, "delete stale slots")
			}
		}
		res.Removed = len(stale)

		groups := dao.GroupByTimeSet(days)
		res.Groups = len(groups)
		for _, g := range groups {
			b, err := batchOpen(ctx, tx, g.Dates, g.Times)
			if err != nil {
				return err
			}
			res.Inserted += b.Inserted
			res.Skipped += b.Skipped
		}
		return nil
	})
	return res, err
}

// batchOpen links every (date, time) pair. Unknown time labels and pairs
// that are already open are counted as skipped.
func batchOpen(ctx context.Context, tx *sqlx.Tx, dates, times []string) (dao.BatchResult, error) {
	var res dao.BatchResult
	if len(dates) == 0 || len(times) == 0 {
		return res, nil
	}

	q, args, err := sqlx.In(`SELECT id, time_value FROM times WHERE time_value IN (?)`, times)
	if err != nil {
		return res, errors.Wrap(err, "build time lookup")
	}
	var known []dao.Time
	if err := tx.SelectContext(ctx, &known, tx.Rebind(q), args...); err != nil {
		return res, errors.Wrap(err, "select times")
	}
	timeIDs := make(map[string]int, len(known))
	for _, t := range known {
		timeIDs[t.Value] = t.ID
	}

	for _, date := range dates {
		var dayID int
		if err := tx.QueryRowxContext(ctx, `
			INSERT INTO days (date) VALUES ($1)
			ON CONFLICT (date) DO UPDATE SET date = EXCLUDED.date
			RETURNING id`, date).Scan(&dayID); err != nil {
			return res, errors.Wrapf(err, "upsert day %s", date)
		}

		for _, t := range times {
			timeID, ok := timeIDs[t]
			if !ok {
				res.Skipped++
				continue
			}
			r, err := tx.ExecContext(ctx, `
				INSERT INTO day_time_slots (day_id, time_id) VALUES ($1, $2)
				ON CONFLICT (day_id, time_id) DO NOTHING`, dayID, timeID)
			if err != nil {
				return res, errors.Wrapf(err, "open %s %s", date, t)
			}
			if n, _ := r.RowsAffected(); n > 0 {
				res.Inserted++
			} else {
				res.Skipped++
			}
		}
	}
	return res, nil
}
