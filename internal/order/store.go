package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/delivery"
)

// ErrNotFound is returned when the order does not exist.
var ErrNotFound = errors.New("order not found")

// Store persists orders with pgx.
type Store struct {
	Pool *pgxpool.Pool
}

const insertOrderSQL = `
INSERT INTO orders (id, customer_name, customer_phone, region, destination, total_price, delivery_cost, discount, total_products, coupon_code, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const insertItemSQL = `
INSERT INTO order_items (order_id, product_id, title, size_label, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const selectOrderSQL = `
SELECT id, customer_name, customer_phone, region, destination, total_price::text, delivery_cost::text, discount::text, total_products, COALESCE(coupon_code, ''), status, created_at
FROM orders WHERE id = $1`

const selectItemsSQL = `
SELECT product_id, title, COALESCE(size_label, ''), quantity, unit_price::text, total_price::text
FROM order_items WHERE order_id = $1 ORDER BY id`

// Create writes the order and its items in one transaction. The caller has
// already computed the authoritative pricing; the store never recalculates.
func (s Store) Create(ctx context.Context, o Order) (Order, error) {
	if s.Pool == nil {
		return Order{}, errors.New("order store not configured")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusCreated
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerName, o.CustomerPhone, string(o.Region), o.Destination,
		o.TotalPrice, o.DeliveryCost, o.Discount, o.TotalProducts,
		nullable(o.CouponCode), o.Status, o.CreatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, insertItemSQL,
			o.ID, item.ProductID, item.Title, nullable(item.SizeLabel),
			item.Qty, item.UnitPrice, item.TotalPrice,
		); err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit order: %w", err)
	}
	return o, nil
}

// GetByID loads an order with its items.
func (s Store) GetByID(ctx context.Context, id string) (Order, error) {
	if s.Pool == nil {
		return Order{}, errors.New("order store not configured")
	}
	var (
		o                                Order
		region                           string
		totalPrice, deliveryCost, discnt string
	)
	row := s.Pool.QueryRow(ctx, selectOrderSQL, id)
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &region, &o.Destination,
		&totalPrice, &deliveryCost, &discnt, &o.TotalProducts, &o.CouponCode, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("load order: %w", err)
	}
	o.Region = regionFromString(region)
	if o.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return Order{}, fmt.Errorf("parse total_price: %w", err)
	}
	if o.DeliveryCost, err = decimal.NewFromString(deliveryCost); err != nil {
		return Order{}, fmt.Errorf("parse delivery_cost: %w", err)
	}
	if o.Discount, err = decimal.NewFromString(discnt); err != nil {
		return Order{}, fmt.Errorf("parse discount: %w", err)
	}

	rows, err := s.Pool.Query(ctx, selectItemsSQL, id)
	if err != nil {
		return Order{}, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			item                 Item
			unitPrice, itemTotal string
		)
		if err := rows.Scan(&item.ProductID, &item.Title, &item.SizeLabel, &item.Qty, &unitPrice, &itemTotal); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return Order{}, fmt.Errorf("parse item unit_price: %w", err)
		}
		if item.TotalPrice, err = decimal.NewFromString(itemTotal); err != nil {
			return Order{}, fmt.Errorf("parse item total_price: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("iterate order items: %w", err)
	}
	return o, nil
}

func regionFromString(value string) delivery.Region {
	if value == string(delivery.RegionProvince) {
		return delivery.RegionProvince
	}
	return delivery.RegionLima
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
