package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderms/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, order_id, customer_id, items, total)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (order_id) DO NOTHING`

	countByCustomerSQL = `SELECT COUNT(*) FROM orders WHERE customer_id = $1`

	findPageByCustomerSQL = `SELECT id, order_id, customer_id, items, total, created_at
	FROM orders
	WHERE customer_id = $1
	ORDER BY created_at, id
	LIMIT $2 OFFSET $3`

	sumTotalsByCustomerSQL = `SELECT SUM(total) FROM orders WHERE customer_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are stored as JSONB; totals live in a NUMERIC column so the decimal
// scale survives the round trip.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert persists a new order under a generated storage key. A conflicting
// order_id means the event was already ingested; the insert is a no-op then.
func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrapf(err, "marshal items of order %d", o.OrderID)
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.OrderID, o.CustomerID, itemsJSON, o.Total,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %d", o.OrderID)
	}

	return nil
}

// FindPageByCustomer returns page `page` (0-based) of size `size` of the
// customer's orders, ordered by (created_at, id) so repeated reads with
// unchanged data see the same slices. Limit and offset are passed to the
// store as given; the store rejects out-of-range values itself.
func (r *OrderRepository) FindPageByCustomer(ctx context.Context, customerID int64, page, size int) (*order.Page, error) {
	var totalElements int64
	if err := r.pool.QueryRow(ctx, countByCustomerSQL, customerID).Scan(&totalElements); err != nil {
		return nil, errors.Wrapf(err, "count orders of customer %d", customerID)
	}

	rows, err := r.pool.Query(ctx, findPageByCustomerSQL, customerID, size, page*size)
	if err != nil {
		return nil, errors.Wrapf(err, "query orders of customer %d", customerID)
	}
	defer rows.Close()

	content := make([]order.Order, 0, max(size, 0))
	for rows.Next() {
		var (
			o         order.Order
			itemsJSON []byte
		)
		if err := rows.Scan(&o.ID, &o.OrderID, &o.CustomerID, &itemsJSON, &o.Total, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order row")
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, errors.Wrapf(err, "unmarshal items of order %d", o.OrderID)
		}
		content = append(content, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read orders of customer %d", customerID)
	}

	return &order.Page{
		Content:       content,
		Number:        page,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    pageCount(totalElements, size),
	}, nil
}

// pageCount is the number of pages needed to hold totalElements rows in
// slices of size rows each.
func pageCount(totalElements int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((totalElements + int64(size) - 1) / int64(size))
}

// SumTotalsByCustomer sums the total column across all of the customer's
// orders server-side. SUM over zero rows yields NULL, surfaced as an invalid
// NullDecimal; mapping that to zero is the service's business rule, not ours.
func (r *OrderRepository) SumTotalsByCustomer(ctx context.Context, customerID int64) (decimal.NullDecimal, error) {
	var sum decimal.NullDecimal
	if err := r.pool.QueryRow(ctx, sumTotalsByCustomerSQL, customerID).Scan(&sum); err != nil {
		return decimal.NullDecimal{}, errors.Wrapf(err, "sum totals of customer %d", customerID)
	}
	return sum, nil
}
