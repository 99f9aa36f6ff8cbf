package cache

import (
	"sync"

	"order_service/internal/domain"
)

// OrderCache is a read-through, write-through cache keyed by order ID.
// It stores copies so callers can never mutate a cached entry through a
// returned pointer. The cache is unbounded; coherence with the store is the
// responsibility of the order use case (put after commit, invalidate on delete).
type OrderCache struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
}

func NewOrderCache() *OrderCache {
	return &OrderCache{
		orders: make(map[int64]*domain.Order),
	}
}

func (c *OrderCache) Get(id int64) (*domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, false
	}
	return copyOrder(order), true
}

// Put unconditionally overwrites the entry for the order's ID.
func (c *OrderCache) Put(id int64, order *domain.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders[id] = copyOrder(order)
}

func (c *OrderCache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.orders, id)
}

func (c *OrderCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.orders)
}

func copyOrder(order *domain.Order) *domain.Order {
	orderCopy := *order
	if order.Products != nil {
		orderCopy.Products = make([]domain.Product, len(order.Products))
		copy(orderCopy.Products, order.Products)
	}
	return &orderCopy
}
