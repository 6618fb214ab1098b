package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a persisted customer order. ID is the generated storage key;
// OrderID is the source-supplied identifier carried by the event. Total is
// computed once at ingestion time and never recomputed from Items.
type Order struct {
	ID         string
	OrderID    int64
	CustomerID int64
	Items      []OrderItem
	Total      decimal.Decimal
	CreatedAt  time.Time
}

// OrderItem is a single line item of an order.
type OrderItem struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Page is one slice of a customer's orders plus its position within the full
// ordered set. Number is 0-based.
type Page struct {
	Content       []Order
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Insert persists a new order. Re-inserting an already ingested OrderID
	// is a no-op, so ingestion stays safe under at-least-once delivery.
	Insert(ctx context.Context, o *Order) error
	// FindPageByCustomer returns page `page` of size `size` of the customer's
	// orders. Ordering is stable across calls with unchanged data.
	FindPageByCustomer(ctx context.Context, customerID int64, page, size int) (*Page, error)
	// SumTotalsByCustomer sums Total across all of the customer's orders.
	// The result is invalid (not zero) when the customer has no orders.
	SumTotalsByCustomer(ctx context.Context, customerID int64) (decimal.NullDecimal, error)
}

// InvalidEventError indicates an inbound event violating the order
// invariants. Such events are not retried; the listener dead-letters them.
type InvalidEventError struct {
	OrderID int64
	Reason  string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid order event %d: %s", e.OrderID, e.Reason)
}

// PersistenceError indicates the store rejected or failed an ingestion write.
type PersistenceError struct {
	OrderID int64
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order %d: %v", e.OrderID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// QueryError indicates a store failure during either read of a customer
// query. Op names the failed read.
type QueryError struct {
	CustomerID int64
	Op         string
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s for customer %d: %v", e.Op, e.CustomerID, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
