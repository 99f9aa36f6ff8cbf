package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"order_service/internal/cache"
	"order_service/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByIDNotDeleted(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) SoftDeleteOrder(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestOrderUseCase(repo domain.OrderRepository) domain.OrderUseCase {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewOrderUseCase(repo, cache.NewOrderCache(), logger)
}

func laptopProducts() []domain.Product {
	return []domain.Product{{Name: "Laptop", Price: 1500.0, Quantity: 2}}
}

func TestOrderUseCase_CreateOrder(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(&domain.Order{
			OrderID:      1,
			CustomerName: "alice",
			Status:       domain.StatusPending,
			TotalPrice:   3000.0,
			Products:     laptopProducts(),
		}, nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			assert.Equal(t, "alice", order.CustomerName)
			assert.Equal(t, domain.StatusPending, order.Status)
			assert.Equal(t, 3000.0, order.TotalPrice)
			assert.False(t, order.IsDeleted)
			assert.Len(t, order.Products, 1)
		})

	order, err := useCase.CreateOrder(ctx, "alice", "PENDING", laptopProducts())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(1), order.OrderID)
	assert.Equal(t, 3000.0, order.TotalPrice)
	assert.False(t, order.IsDeleted)

	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_CreateOrder_InvalidStatus(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	order, err := useCase.CreateOrder(context.Background(), "alice", "SHIPPED", laptopProducts())

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_CreateOrder_EmptyProducts(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	order, err := useCase.CreateOrder(context.Background(), "alice", "PENDING", nil)

	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_UpdateOrder_ReadYourWrite(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	existing := &domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}
	mockRepo.On("GetOrderByID", mock.Anything, int64(1)).Return(existing, nil)
	mockRepo.On("UpdateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(&domain.Order{
			OrderID:      1,
			CustomerName: "alice",
			Status:       domain.StatusConfirmed,
			TotalPrice:   150.0,
			Products:     []domain.Product{{Name: "Mouse", Price: 50.0, Quantity: 3}},
		}, nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*domain.Order)
			assert.Equal(t, domain.StatusConfirmed, order.Status)
			assert.Equal(t, 150.0, order.TotalPrice)
			assert.Equal(t, "Mouse", order.Products[0].Name)
		})

	updated, err := useCase.UpdateOrder(ctx, 1, "alice", "CONFIRMED", []domain.Product{{Name: "Mouse", Price: 50.0, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, 150.0, updated.TotalPrice)

	// An immediate read must observe the committed update without hitting the store.
	got, err := useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, 150.0, got.TotalPrice)

	mockRepo.AssertNotCalled(t, "GetOrderByIDNotDeleted", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_UpdateOrder_InvalidStatusPerformsNoWrite(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	order, err := useCase.UpdateOrder(context.Background(), 1, "alice", "SHIPPED", laptopProducts())

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_UpdateOrder_EmptyProducts(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	order, err := useCase.UpdateOrder(context.Background(), 1, "alice", "CONFIRMED", []domain.Product{})

	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_UpdateOrder_NotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("GetOrderByID", mock.Anything, int64(404)).Return(nil, domain.ErrOrderNotFound)

	order, err := useCase.UpdateOrder(context.Background(), 404, "alice", "CONFIRMED", laptopProducts())

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_UpdateOrder_AccessDenied(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("GetOrderByID", mock.Anything, int64(1)).Return(&domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}, nil)

	order, err := useCase.UpdateOrder(context.Background(), 1, "bob", "CONFIRMED", laptopProducts())

	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Nil(t, order)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_UpdateOrder_StoreFailureLeavesCacheCold(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	existing := &domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}
	mockRepo.On("GetOrderByID", mock.Anything, int64(1)).Return(existing, nil)
	mockRepo.On("UpdateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(nil, errors.New("failed to commit order update transaction"))

	updated, err := useCase.UpdateOrder(ctx, 1, "alice", "CONFIRMED", []domain.Product{{Name: "Mouse", Price: 50.0, Quantity: 3}})
	require.Error(t, err)
	assert.Nil(t, updated)

	// A write that never committed must not be readable: the next read has to
	// go back to the store instead of a cached entry.
	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(1)).Return(existing, nil).Once()

	got, err := useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	mockRepo.AssertNumberOfCalls(t, "GetOrderByIDNotDeleted", 1)
}

func TestOrderUseCase_GetOrderByID_SecondCallServedFromCache(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	stored := &domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}
	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(1)).Return(stored, nil).Once()

	first, err := useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)

	second, err := useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mockRepo.AssertNumberOfCalls(t, "GetOrderByIDNotDeleted", 1)
	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_GetOrderByID_NotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(404)).Return(nil, domain.ErrOrderNotFound)

	order, err := useCase.GetOrderByID(context.Background(), 404, "alice")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestOrderUseCase_GetOrderByID_AccessDenied(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	stored := &domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}
	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(1)).Return(stored, nil)

	order, err := useCase.GetOrderByID(ctx, 1, "bob")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Nil(t, order)

	// The owner populates the cache; the denial must hold on the cached path too.
	_, err = useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)

	order, err = useCase.GetOrderByID(ctx, 1, "bob")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Nil(t, order)
}

func TestOrderUseCase_SoftDeleteOrder_InvalidatesCache(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)
	ctx := context.Background()

	stored := &domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
		TotalPrice:   3000.0,
		Products:     laptopProducts(),
	}
	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(1)).Return(stored, nil).Once()
	mockRepo.On("GetOrderByID", mock.Anything, int64(1)).Return(stored, nil)
	mockRepo.On("SoftDeleteOrder", mock.Anything, int64(1)).Return(nil)
	mockRepo.On("GetOrderByIDNotDeleted", mock.Anything, int64(1)).Return(nil, domain.ErrOrderNotFound).Once()

	// Populate the cache via a read, then delete.
	_, err := useCase.GetOrderByID(ctx, 1, "alice")
	require.NoError(t, err)

	require.NoError(t, useCase.SoftDeleteOrder(ctx, 1, "alice"))

	// The cached entry is gone and the store no longer serves the order.
	_, err = useCase.GetOrderByID(ctx, 1, "alice")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_SoftDeleteOrder_NotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("GetOrderByID", mock.Anything, int64(404)).Return(nil, domain.ErrOrderNotFound)

	err := useCase.SoftDeleteOrder(context.Background(), 404, "alice")

	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	mockRepo.AssertNotCalled(t, "SoftDeleteOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_SoftDeleteOrder_AccessDenied(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("GetOrderByID", mock.Anything, int64(1)).Return(&domain.Order{
		OrderID:      1,
		CustomerName: "alice",
		Status:       domain.StatusPending,
	}, nil)

	err := useCase.SoftDeleteOrder(context.Background(), 1, "bob")

	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	mockRepo.AssertNotCalled(t, "SoftDeleteOrder", mock.Anything, mock.Anything)
}

func TestOrderUseCase_ListOrders_BuildsConjunctiveFilter(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	status := "confirmed"
	minPrice := 200.0
	maxPrice := 5000.0

	confirmed := []domain.Order{
		{OrderID: 2, CustomerName: "alice", Status: domain.StatusConfirmed, TotalPrice: 500.0},
		{OrderID: 3, CustomerName: "bob", Status: domain.StatusConfirmed, TotalPrice: 5000.0},
	}
	mockRepo.On("ListOrders", mock.Anything, mock.AnythingOfType("domain.OrderFilter")).
		Return(confirmed, nil).
		Run(func(args mock.Arguments) {
			filter := args.Get(1).(domain.OrderFilter)
			require.NotNil(t, filter.Status)
			assert.Equal(t, domain.StatusConfirmed, *filter.Status)
			require.NotNil(t, filter.MinPrice)
			assert.Equal(t, 200.0, *filter.MinPrice)
			require.NotNil(t, filter.MaxPrice)
			assert.Equal(t, 5000.0, *filter.MaxPrice)
		})

	orders, err := useCase.ListOrders(context.Background(), &status, &minPrice, &maxPrice)

	require.NoError(t, err)
	assert.Len(t, orders, 2)
	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_ListOrders_NoFilters(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	mockRepo.On("ListOrders", mock.Anything, domain.OrderFilter{}).Return([]domain.Order{}, nil)

	orders, err := useCase.ListOrders(context.Background(), nil, nil, nil)

	require.NoError(t, err)
	assert.Empty(t, orders)
	mockRepo.AssertExpectations(t)
}

func TestOrderUseCase_ListOrders_InvalidStatusFilter(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	useCase := newTestOrderUseCase(mockRepo)

	status := "SHIPPED"
	orders, err := useCase.ListOrders(context.Background(), &status, nil, nil)

	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.Nil(t, orders)
	mockRepo.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything)
}
