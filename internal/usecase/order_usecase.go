package usecase

import (
	"context"
	"fmt"

	"order_service/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

// OrderCache is the coherence contract the lifecycle service relies on.
// Put must unconditionally overwrite; Get must never return an entry older
// than the last Put/Invalidate for that ID.
type OrderCache interface {
	Get(id int64) (*domain.Order, bool)
	Put(id int64, order *domain.Order)
	Invalidate(id int64)
}

type orderUseCase struct {
	orderRepo domain.OrderRepository
	cache     OrderCache
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, cache OrderCache, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		cache:     cache,
		log:       logger,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, username, statusCode string, products []domain.Product) (*domain.Order, error) {
	status, err := domain.ParseStatus(statusCode)
	if err != nil {
		uc.log.Warnf("Use Case: create order rejected, unknown status %q", statusCode)
		return nil, err
	}
	if len(products) == 0 {
		uc.log.Warnf("Use Case: create order rejected for user %s, no products", username)
		return nil, domain.ErrEmptyOrder
	}

	order := &domain.Order{
		CustomerName: username,
		Status:       status,
		TotalPrice:   domain.CalculateTotalPrice(products),
		IsDeleted:    false,
		Products:     products,
	}

	createdOrder, err := uc.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: repository failed to create order for user %s: %v", username, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	uc.log.Infof("Use Case: order %d created for user %s, total %.2f", createdOrder.OrderID, username, createdOrder.TotalPrice)
	return createdOrder, nil
}

func (uc *orderUseCase) UpdateOrder(ctx context.Context, id int64, username, statusCode string, products []domain.Product) (*domain.Order, error) {
	// Validate the full request before touching the store so a failed update
	// never leaves a partially applied product replacement behind.
	status, err := domain.ParseStatus(statusCode)
	if err != nil {
		uc.log.Warnf("Use Case: update of order %d rejected, unknown status %q", id, statusCode)
		return nil, err
	}
	if len(products) == 0 {
		uc.log.Warnf("Use Case: update of order %d rejected, no products", id)
		return nil, domain.ErrEmptyOrder
	}

	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: could not load order %d for update: %v", id, err)
		return nil, err
	}
	if err := uc.validateAccessToOrder(order, username); err != nil {
		return nil, err
	}

	order.Status = status
	order.Products = products
	order.TotalPrice = domain.CalculateTotalPrice(products)

	updatedOrder, err := uc.orderRepo.UpdateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: repository failed to update order %d: %v", id, err)
		return nil, err
	}

	// Overwrite with the post-commit result so a subsequent read never
	// observes a value older than this write.
	uc.cache.Put(id, updatedOrder)

	uc.log.Infof("Use Case: order %d updated by user %s, status %s, total %.2f", id, username, updatedOrder.Status, updatedOrder.TotalPrice)
	return updatedOrder, nil
}

func (uc *orderUseCase) GetOrderByID(ctx context.Context, id int64, username string) (*domain.Order, error) {
	if cached, ok := uc.cache.Get(id); ok {
		// A deleted order must stay invisible to single-item reads even if
		// an update slipped it back into the cache.
		if cached.IsDeleted {
			return nil, domain.ErrOrderNotFound
		}
		if err := uc.validateAccessToOrder(cached, username); err != nil {
			return nil, err
		}
		uc.log.Debugf("Use Case: order %d served from cache", id)
		return cached, nil
	}

	order, err := uc.orderRepo.GetOrderByIDNotDeleted(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: could not get order %d: %v", id, err)
		return nil, err
	}
	if err := uc.validateAccessToOrder(order, username); err != nil {
		return nil, err
	}

	uc.cache.Put(id, order)
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, status *string, minPrice, maxPrice *float64) ([]domain.Order, error) {
	filter := domain.OrderFilter{
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
	if status != nil {
		parsed, err := domain.ParseStatus(*status)
		if err != nil {
			uc.log.Warnf("Use Case: list orders rejected, unknown status filter %q", *status)
			return nil, domain.ErrInvalidFilter
		}
		filter.Status = &parsed
	}

	orders, err := uc.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: repository failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}

	uc.log.Infof("Use Case: retrieved %d orders", len(orders))
	return orders, nil
}

func (uc *orderUseCase) SoftDeleteOrder(ctx context.Context, id int64, username string) error {
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: could not load order %d for delete: %v", id, err)
		return err
	}
	if err := uc.validateAccessToOrder(order, username); err != nil {
		return err
	}

	if err := uc.orderRepo.SoftDeleteOrder(ctx, id); err != nil {
		uc.log.Errorf("Use Case: repository failed to soft-delete order %d: %v", id, err)
		return err
	}

	uc.cache.Invalidate(id)
	uc.log.Infof("Use Case: order %d soft-deleted by user %s", id, username)
	return nil
}

func (uc *orderUseCase) validateAccessToOrder(order *domain.Order, username string) error {
	if order.CustomerName != username {
		uc.log.Warnf("Use Case: user %s denied access to order %d owned by %s", username, order.OrderID, order.CustomerName)
		return domain.ErrAccessDenied
	}
	return nil
}
