package service

import (
	"context"
	"strings"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/catalog/domain/dao"
	"cakeshop/internal/microservices/catalog/domain/dto"
	"cakeshop/internal/microservices/catalog/repository"
)

type CakeServiceInterface interface {
	List(ctx context.Context) ([]dao.Cake, error)
	Get(ctx context.Context, id int) (dao.Cake, error)
	Create(ctx context.Context, req dto.CakeRequest) (dao.Cake, error)
	Update(ctx context.Context, id int, req dto.CakeRequest) (dao.Cake, error)
	Delete(ctx context.Context, id int) error
}

type CakeService struct {
	repo repository.CakeRepositoryInterface
}

func NewCakeService(repo repository.CakeRepositoryInterface) CakeServiceInterface {
	return &CakeService{repo: repo}
}

func (s *CakeService) List(ctx context.Context) ([]dao.Cake, error) { return s.repo.List(ctx) }

func (s *CakeService) Get(ctx context.Context, id int) (dao.Cake, error) { return s.repo.Get(ctx, id) }

func (s *CakeService) Create(ctx context.Context, req dto.CakeRequest) (dao.Cake, error) {
	cake, err := toCake(req)
	if err != nil {
		return dao.Cake{}, err
	}
	return s.repo.Create(ctx, cake)
}

func (s *CakeService) Update(ctx context.Context, id int, req dto.CakeRequest) (dao.Cake, error) {
	cake, err := toCake(req)
	if err != nil {
		return dao.Cake{}, err
	}
	cake.ID = id
	return s.repo.Update(ctx, cake)
}

func (s *CakeService) Delete(ctx context.Context, id int) error { return s.repo.Delete(ctx, id) }

// toCake validates the payload; sizes with an empty label are skipped.
func toCake(req dto.CakeRequest) (dao.Cake, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return dao.Cake{}, apperr.Validation("cake name is required")
	}

	cake := dao.Cake{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Image:       strings.TrimSpace(req.Image),
		Sizes:       make([]dao.CakeSize, 0, len(req.Sizes)),
	}
	seen := make(map[string]bool, len(req.Sizes))
	for _, in := range req.Sizes {
		label := dao.NormalizeLabel(in.Size)
		if label == "" {
			continue
		}
		if seen[label] {
			return dao.Cake{}, apperr.Validation("size %q is listed twice", label)
		}
		if in.Price < 0 || in.Stock < 0 {
			return dao.Cake{}, apperr.Validation("size %q: price and stock must not be negative", label)
		}
		seen[label] = true
		cake.Sizes = append(cake.Sizes, dao.CakeSize{Size: label, Price: in.Price, Stock: in.Stock})
	}
	return cake, nil
}
