package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

// CreateOrder uses named returns so the deferred commit can surface its
// failure to the caller instead of reporting a write that never landed.
func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (created *domain.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Failed to commit transaction: %v", cErr)
				created = nil
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	orderQuery := `
        INSERT INTO orders (customer_name, status, total_price, is_deleted)
        VALUES ($1, $2, $3, $4)
        RETURNING order_id
    `
	err = tx.QueryRowContext(ctx, orderQuery, order.CustomerName, order.Status, order.TotalPrice, order.IsDeleted).
		Scan(&order.OrderID)
	if err != nil {
		r.log.Errorf("Failed to insert order for customer %s: %v", order.CustomerName, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}

	if err = r.insertProductsTx(ctx, tx, order.OrderID, order.Products); err != nil {
		return nil, err
	}

	r.log.Infof("Order %d created with %d products", order.OrderID, len(order.Products))
	return order, nil
}

// UpdateOrder uses named returns for the same reason as CreateOrder: a
// failed commit must propagate, otherwise the caller would cache a value
// that no committed write produced.
func (r *postgresOrderRepository) UpdateOrder(ctx context.Context, order *domain.Order) (updated *domain.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction for order update: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("UpdateOrder: failed to rollback transaction: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				updated = nil
				err = fmt.Errorf("failed to commit order update transaction: %w", cErr)
				r.log.Errorf("UpdateOrder: %v", err)
			}
		}
	}()

	query := `
        UPDATE orders
        SET status = $1, total_price = $2
        WHERE order_id = $3
    `
	result, err := tx.ExecContext(ctx, query, order.Status, order.TotalPrice, order.OrderID)
	if err != nil {
		r.log.Errorf("Failed to update order %d: %v", order.OrderID, err)
		return nil, fmt.Errorf("could not update order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not check updated rows: %w", err)
	}
	if affected == 0 {
		err = domain.ErrOrderNotFound
		return nil, err
	}

	// Products are replaced wholesale, never patched row by row.
	if _, err = tx.ExecContext(ctx, `DELETE FROM products WHERE order_id = $1`, order.OrderID); err != nil {
		r.log.Errorf("Failed to clear products for order %d: %v", order.OrderID, err)
		return nil, fmt.Errorf("could not replace order products: %w", err)
	}
	if err = r.insertProductsTx(ctx, tx, order.OrderID, order.Products); err != nil {
		return nil, err
	}

	r.log.Infof("Order %d updated, %d products replaced", order.OrderID, len(order.Products))
	return order, nil
}

func (r *postgresOrderRepository) insertProductsTx(ctx context.Context, tx *sql.Tx, orderID int64, products []domain.Product) error {
	productQuery := `
        INSERT INTO products (order_id, name, price, quantity)
        VALUES ($1, $2, $3, $4)
        RETURNING product_id
    `
	stmt, err := tx.PrepareContext(ctx, productQuery)
	if err != nil {
		r.log.Errorf("Failed to prepare product statement: %v", err)
		return fmt.Errorf("could not prepare product statement: %w", err)
	}
	defer stmt.Close()

	for i := range products {
		product := &products[i]
		if err := stmt.QueryRowContext(ctx, orderID, product.Name, product.Price, product.Quantity).Scan(&product.ProductID); err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
				return fmt.Errorf("invalid product data (name: %s): %s", product.Name, pqErr.Message)
			}
			r.log.Errorf("Failed to insert product %q for order %d: %v", product.Name, orderID, err)
			return fmt.Errorf("could not create order product %q: %w", product.Name, err)
		}
	}
	return nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, false)
}

func (r *postgresOrderRepository) GetOrderByIDNotDeleted(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, true)
}

func (r *postgresOrderRepository) getOrder(ctx context.Context, id int64, excludeDeleted bool) (*domain.Order, error) {
	order := &domain.Order{}
	query := `
        SELECT order_id, customer_name, status, total_price, is_deleted
        FROM orders
        WHERE order_id = $1
    `
	if excludeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.OrderID,
		&order.CustomerName,
		&order.Status,
		&order.TotalPrice,
		&order.IsDeleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, domain.ErrOrderNotFound
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	products, err := r.getOrderProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Products = products
	return order, nil
}

func (r *postgresOrderRepository) getOrderProducts(ctx context.Context, orderID int64) ([]domain.Product, error) {
	productsQuery := `
        SELECT product_id, name, price, quantity
        FROM products
        WHERE order_id = $1
        ORDER BY product_id
    `
	rows, err := r.db.QueryContext(ctx, productsQuery, orderID)
	if err != nil {
		r.log.Errorf("Failed to query products for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ProductID, &product.Name, &product.Price, &product.Quantity); err != nil {
			r.log.Errorf("Failed to scan product row for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order product: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during product iteration for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order products: %w", err)
	}
	return products, nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	where, args := buildOrderPredicate(filter)
	ordersQuery := `
        SELECT order_id, customer_name, status, total_price, is_deleted
        FROM orders
        ` + where + `
        ORDER BY order_id
    `
	rows, err := r.db.QueryContext(ctx, ordersQuery, args...)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	orderIDs := []int64{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.OrderID,
			&order.CustomerName,
			&order.Status,
			&order.TotalPrice,
			&order.IsDeleted,
		); err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.OrderID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	productsQuery := `
        SELECT order_id, product_id, name, price, quantity
        FROM products
        WHERE order_id = ANY($1::bigint[])
        ORDER BY product_id
    `
	productRows, err := r.db.QueryContext(ctx, productsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query products for orders %v: %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order products for list: %w", err)
	}
	defer productRows.Close()

	productsMap := make(map[int64][]domain.Product)
	for productRows.Next() {
		var product domain.Product
		var orderID int64
		if err := productRows.Scan(&orderID, &product.ProductID, &product.Name, &product.Price, &product.Quantity); err != nil {
			r.log.Errorf("Failed to scan product row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order product data for list: %w", err)
		}
		productsMap[orderID] = append(productsMap[orderID], product)
	}
	if err = productRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order products iteration: %v", err)
		return nil, fmt.Errorf("error iterating order products for list: %w", err)
	}

	for i := range orders {
		if products, ok := productsMap[orders[i].OrderID]; ok {
			orders[i].Products = products
		} else {
			orders[i].Products = []domain.Product{}
		}
	}

	r.log.Infof("Retrieved %d orders", len(orders))
	return orders, nil
}

func (r *postgresOrderRepository) SoftDeleteOrder(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET is_deleted = TRUE WHERE order_id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to soft-delete order %d: %v", id, err)
		return fmt.Errorf("could not soft-delete order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check deleted rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	r.log.Infof("Order %d soft-deleted", id)
	return nil
}
