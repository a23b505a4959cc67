package service

import (
	"context"
	"strings"
	"time"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/microservices/timeslot/domain/dao"
	"cakeshop/internal/microservices/timeslot/repository"
)

type SlotServiceInterface interface {
	ListTimes(ctx context.Context) ([]dao.Time, error)
	AddTime(ctx context.Context, value string) (int, error)
	DeleteTime(ctx context.Context, id int) error
	ListDays(ctx context.Context) ([]dao.Day, error)
	ListSlots(ctx context.Context, date, month string) ([]dao.Slot, error)
	DeleteSlot(ctx context.Context, id int) error
	BatchOpen(ctx context.Context, dates, times []string) (dao.BatchResult, error)
	SaveMonth(ctx context.Context, month string, days map[string][]string) (dao.MonthResult, error)
}

type SlotService struct {
	repo repository.SlotRepositoryInterface
	lg   *logger.Logger
}

func NewSlotService(repo repository.SlotRepositoryInterface, lg *logger.Logger) SlotServiceInterface {
	return &SlotService{repo: repo, lg: lg}
}

func (s *SlotService) ListTimes(ctx context.Context) ([]dao.Time, error) { return s.repo.ListTimes(ctx) }

func (s *SlotService) AddTime(ctx context.Context, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, apperr.Validation("time_value is required")
	}
	return s.repo.AddTime(ctx, value)
}

func (s *SlotService) DeleteTime(ctx context.Context, id int) error { return s.repo.DeleteTime(ctx, id) }

func (s *SlotService) ListDays(ctx context.Context) ([]dao.Day, error) { return s.repo.ListDays(ctx) }

func (s *SlotService) ListSlots(ctx context.Context, date, month string) ([]dao.Slot, error) {
	var f dao.SlotFilter
	if date != "" {
		if !validDate(date) {
			return nil, apperr.Validation("invalid date %q: want YYYY-MM-DD", date)
		}
		f.Date = date
	}
	if month != "" {
		m, err := dao.ParseMonth(month)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		f.Month = &m
	}
	return s.repo.ListSlots(ctx, f)
}

func (s *SlotService) DeleteSlot(ctx context.Context, id int) error { return s.repo.DeleteSlot(ctx, id) }

func (s *SlotService) BatchOpen(ctx context.Context, dates, times []string) (dao.BatchResult, error) {
	dates, times = compact(dates), compact(times)
	if len(dates) == 0 || len(times) == 0 {
		return dao.BatchResult{}, apperr.Validation("dates and times are both required")
	}
	for _, d := range dates {
		if !validDate(d) {
			return dao.BatchResult{}, apperr.Validation("invalid date %q: want YYYY-MM-DD", d)
		}
	}

	res, err := s.repo.BatchOpen(ctx, dates, times)
	if err != nil {
		return dao.BatchResult{}, err
	}
	s.lg.For(ctx).Info("slots_batch_opened", map[string]any{
		"dates": len(dates), "inserted": res.Inserted, "skipped": res.Skipped,
	})
	return res, nil
}

// SaveMonth replaces the open slots of month with days. Every date must
// fall inside that month; an empty map closes the whole month.
func (s *SlotService) SaveMonth(ctx context.Context, month string, days map[string][]string) (dao.MonthResult, error) {
	m, err := dao.ParseMonth(month)
	if err != nil {
		return dao.MonthResult{}, apperr.Validation("%v", err)
	}
	clean := make(map[string][]string, len(days))
	for date, times := range days {
		date = strings.TrimSpace(date)
		if !m.Contains(date) {
			return dao.MonthResult{}, apperr.Validation("date %q is not in %s", date, m)
		}
		clean[date] = compact(times)
	}

	res, err := s.repo.ReconcileMonth(ctx, m, clean)
	if err != nil {
		return dao.MonthResult{}, err
	}
	s.lg.For(ctx).Info("slots_month_saved", map[string]any{
		"month":    m.String(),
		"removed":  res.Removed,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"groups":   res.Groups,
	})
	return res, nil
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// compact trims values and drops blanks and repeats, keeping order.
func compact(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
