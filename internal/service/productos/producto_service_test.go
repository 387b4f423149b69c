package productos

import (
	"context"
	"testing"

	"github.com/ChivatosDeveloper/noir-tienda/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context) ([]domain.Producto, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Producto), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Producto, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Producto), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProducts(ctx context.Context) ([]domain.Producto, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Producto), args.Error(1)
}

func (m *MockCache) SetProducts(ctx context.Context, products []domain.Producto) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func catalog() []domain.Producto {
	return []domain.Producto{
		{ID: 1, Nombre: "Blazer Oversized", Precio: 89.99, Categoria: "mujer"},
		{ID: 5, Nombre: "Camisa Lino Premium", Precio: 49.99, Categoria: "hombre"},
		{ID: 9, Nombre: "Bolso Elegante", Precio: 129.99, Categoria: "accesorios"},
	}
}

func TestService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockProductRepository{}
	mockCache := &MockCache{}
	service := NewService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockCache.On("GetProducts", ctx).Return(nil, nil).Once()
	mockRepo.On("List", ctx).Return(catalog(), nil).Once()
	mockCache.On("SetProducts", ctx, catalog()).Return(nil).Once()

	products, err := service.List(ctx, "")

	require.NoError(t, err)
	assert.Len(t, products, 3)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestService_List_CacheHit(t *testing.T) {
	mockRepo := &MockProductRepository{}
	mockCache := &MockCache{}
	service := NewService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockCache.On("GetProducts", ctx).Return(catalog(), nil).Once()

	products, err := service.List(ctx, "Hombre")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(5), products[0].ID)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestService_List_CacheErrorFallsBackToRepo(t *testing.T) {
	mockRepo := &MockProductRepository{}
	mockCache := &MockCache{}
	service := NewService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockCache.On("GetProducts", ctx).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("List", ctx).Return(catalog(), nil).Once()
	mockCache.On("SetProducts", ctx, mock.Anything).Return(errors.New("redis down")).Once()

	products, err := service.List(ctx, "todos")

	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestService_List_WithoutCache(t *testing.T) {
	mockRepo := &MockProductRepository{}
	service := NewService(mockRepo, nil, nil)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(catalog(), nil).Once()

	products, err := service.List(ctx, "premium")

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestService_List_RepoError(t *testing.T) {
	mockRepo := &MockProductRepository{}
	service := NewService(mockRepo, nil, nil)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, errors.New("db error")).Once()

	products, err := service.List(ctx, "")

	assert.Nil(t, products)
	assert.True(t, errors.Is(err, domain.ErrStore))
}

func TestService_GetByID(t *testing.T) {
	mockRepo := &MockProductRepository{}
	service := NewService(mockRepo, nil, nil)
	ctx := context.Background()
	expected := &catalog()[0]

	mockRepo.On("GetByID", ctx, int64(1)).Return(expected, nil).Once()
	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrProductNotFound).Once()

	p, err := service.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, expected, p)

	_, err = service.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
