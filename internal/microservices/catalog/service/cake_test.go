package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/catalog/domain/dao"
	"cakeshop/internal/microservices/catalog/domain/dto"
	"cakeshop/internal/microservices/catalog/repository"
)

var _ repository.CakeRepositoryInterface = &mockCakeRepo{}

type mockCakeRepo struct {
	store  map[int]dao.Cake
	nextID int
}

func newMockCakeRepo() *mockCakeRepo { return &mockCakeRepo{store: map[int]dao.Cake{}, nextID: 1} }

func (m *mockCakeRepo) List(ctx context.Context) ([]dao.Cake, error) {
	out := make([]dao.Cake, 0, len(m.store))
	for _, c := range m.store {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCakeRepo) Get(ctx context.Context, id int) (dao.Cake, error) {
	c, ok := m.store[id]
	if !ok {
		return dao.Cake{}, apperr.NotFound("cake %d not found", id)
	}
	return c, nil
}

func (m *mockCakeRepo) Create(ctx context.Context, cake dao.Cake) (dao.Cake, error) {
	cake.ID = m.nextID
	m.nextID++
	m.store[cake.ID] = cake
	return cake, nil
}

func (m *mockCakeRepo) Update(ctx context.Context, cake dao.Cake) (dao.Cake, error) {
	if _, ok := m.store[cake.ID]; !ok {
		return dao.Cake{}, apperr.NotFound("cake %d not found", cake.ID)
	}
	m.store[cake.ID] = cake
	return cake, nil
}

func (m *mockCakeRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.store[id]; !ok {
		return apperr.NotFound("cake %d not found", id)
	}
	delete(m.store, id)
	return nil
}

func TestCreateCake(t *testing.T) {
	repo := newMockCakeRepo()
	svc := NewCakeService(repo)
	ctx := context.Background()

	t.Run("requires a name", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CakeRequest{Name: "  "})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Empty(t, repo.store)
	})

	t.Run("skips empty size labels", func(t *testing.T) {
		cake, err := svc.Create(ctx, dto.CakeRequest{
			Name: "Shortcake",
			Sizes: []dto.SizeInput{
				{Size: "M", Price: 1500, Stock: 5},
				{Size: " ", Price: 999, Stock: 1},
				{Size: "L ", Price: 2000, Stock: 2},
			},
		})
		require.NoError(t, err)
		require.Len(t, cake.Sizes, 2)
		assert.Equal(t, "M", cake.Sizes[0].Size)
		assert.Equal(t, "L", cake.Sizes[1].Size)
	})

	t.Run("rejects duplicate labels", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CakeRequest{
			Name:  "Tart",
			Sizes: []dto.SizeInput{{Size: "M"}, {Size: "M"}},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := svc.Create(ctx, dto.CakeRequest{
			Name:  "Tart",
			Sizes: []dto.SizeInput{{Size: "M", Stock: -1}},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestUpdateAndDeleteMissingCake(t *testing.T) {
	svc := NewCakeService(newMockCakeRepo())
	ctx := context.Background()

	_, err := svc.Update(ctx, 42, dto.CakeRequest{Name: "Roll"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Update(ctx, 42, dto.CakeRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "name is checked before existence")

	assert.True(t, apperr.Is(svc.Delete(ctx, 42), apperr.KindNotFound))
}
