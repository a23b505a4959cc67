package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/microservices/order/domain/dao"
	"cakeshop/internal/microservices/order/domain/dto"
	"cakeshop/internal/microservices/order/repository"
)

type OrderServiceInterface interface {
	AddOrder(ctx context.Context, req dto.OrderRequest) (dto.CreateOrderResponse, error)
	UpdateOrder(ctx context.Context, id int, req dto.OrderRequest) (dao.Order, error)
	UpdateStatus(ctx context.Context, id int, status string) (dao.Status, error)
	GetOrder(ctx context.Context, id int) (dao.Order, error)
	ListOrders(ctx context.Context, search string) ([]dao.Order, error)
}

type OrderService struct {
	repo repository.OrderRepositoryInterface
	lg   *logger.Logger
}

func NewOrderService(repo repository.OrderRepositoryInterface, lg *logger.Logger) OrderServiceInterface {
	return &OrderService{repo: repo, lg: lg}
}

func (s *OrderService) AddOrder(ctx context.Context, req dto.OrderRequest) (dto.CreateOrderResponse, error) {
	order, err := toOrder(req, dao.StatusOnline)
	if err != nil {
		return dto.CreateOrderResponse{}, err
	}
	for _, c := range order.Cakes {
		if c.ID != 0 {
			return dto.CreateOrderResponse{}, apperr.Validation("a new order cannot reference line ids")
		}
	}

	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return dto.CreateOrderResponse{}, err
	}
	s.lg.For(ctx).Info("order_created", map[string]any{
		"order_id": saved.ID,
		"total":    saved.Total(),
		"lines":    len(saved.Cakes),
	})
	return dto.CreateOrderResponse{ID: saved.ID, Total: saved.Total()}, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, id int, req dto.OrderRequest) (dao.Order, error) {
	order, err := toOrder(req, "")
	if err != nil {
		return dao.Order{}, err
	}
	order.ID = id

	saved, err := s.repo.Update(ctx, order)
	if err != nil {
		return dao.Order{}, err
	}
	s.lg.For(ctx).Info("order_updated", map[string]any{"order_id": id, "status": saved.Status})
	return saved, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int, status string) (dao.Status, error) {
	st := dao.Status(strings.TrimSpace(status))
	if !st.Valid() {
		return "", apperr.Validation("invalid status %q: want one of a, b, c, d, e", status)
	}
	prev, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return "", err
	}
	s.lg.For(ctx).Info("order_status_changed", map[string]any{
		"order_id": id,
		"from":     prev,
		"to":       st,
	})
	return prev, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int) (dao.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, search string) ([]dao.Order, error) {
	return s.repo.List(ctx, search)
}

// toOrder validates a request. An empty status falls back to def; a full
// edit passes no default, so the status is required there.
func toOrder(req dto.OrderRequest, def dao.Status) (dao.Order, error) {
	order := dao.Order{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Tel:        strings.TrimSpace(req.Tel),
		Email:      strings.TrimSpace(req.Email),
		Date:       strings.TrimSpace(req.Date),
		PickupHour: strings.TrimSpace(req.PickupHour),
		Message:    req.Message,
		Status:     dao.Status(strings.TrimSpace(req.Status)),
		Cakes:      dto.ConvertItems(req.Cakes),
	}

	required := []struct{ name, value string }{
		{"first_name", order.FirstName},
		{"last_name", order.LastName},
		{"tel", order.Tel},
		{"email", order.Email},
		{"date", order.Date},
		{"pickupHour", order.PickupHour},
	}
	for _, f := range required {
		if f.value == "" {
			return dao.Order{}, apperr.Validation("%s is required", f.name)
		}
	}
	if _, err := mail.ParseAddress(order.Email); err != nil {
		return dao.Order{}, apperr.Validation("invalid email %q", order.Email)
	}
	if _, err := time.Parse(time.DateOnly, order.Date); err != nil {
		return dao.Order{}, apperr.Validation("invalid date %q: want YYYY-MM-DD", order.Date)
	}

	if order.Status == "" {
		order.Status = def
	}
	if !order.Status.Valid() {
		return dao.Order{}, apperr.Validation("invalid status %q: want one of a, b, c, d, e", req.Status)
	}

	if len(order.Cakes) == 0 {
		return dao.Order{}, apperr.Validation("at least one cake is required")
	}
	for i := range order.Cakes {
		c := &order.Cakes[i]
		c.Size = strings.TrimSpace(c.Size)
		if c.CakeID <= 0 || c.Size == "" {
			return dao.Order{}, apperr.Validation("cake %d: cake_id and size are required", i+1)
		}
		if c.Amount <= 0 {
			return dao.Order{}, apperr.Validation("cake %d: amount must be positive", i+1)
		}
	}
	return order, nil
}
