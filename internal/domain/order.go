package domain

import (
	"context"
	"strings"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseStatus maps a textual status code to its canonical value.
// Matching is case-insensitive; an unknown code is a validation failure,
// never a stored empty value.
func ParseStatus(text string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(text))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

type Product struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	OrderID      int64       `json:"orderId"`
	CustomerName string      `json:"customerName"`
	Status       OrderStatus `json:"status"`
	TotalPrice   float64     `json:"totalPrice"`
	IsDeleted    bool        `json:"isDeleted"`
	Products     []Product   `json:"products"`
}

// CalculateTotalPrice sums price*quantity over all products.
// An empty list yields 0.
func CalculateTotalPrice(products []Product) float64 {
	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	return total
}

// OrderFilter carries the optional listing conditions. Nil fields impose
// no constraint; soft-deleted orders are always excluded by the store.
type OrderFilter struct {
	Status   *OrderStatus
	MinPrice *float64
	MaxPrice *float64
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	GetOrderByIDNotDeleted(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
	SoftDeleteOrder(ctx context.Context, id int64) error
}

type OrderUseCase interface {
	CreateOrder(ctx context.Context, username, statusCode string, products []Product) (*Order, error)
	UpdateOrder(ctx context.Context, id int64, username, statusCode string, products []Product) (*Order, error)
	GetOrderByID(ctx context.Context, id int64, username string) (*Order, error)
	ListOrders(ctx context.Context, status *string, minPrice, maxPrice *float64) ([]Order, error)
	SoftDeleteOrder(ctx context.Context, id int64, username string) error
}
