package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// QueryResult combines the two independent reads of a customer query: the
// requested page and the customer-wide total across all orders. The two
// reads are not atomic with each other; under concurrent ingestion they may
// observe slightly different snapshots, which is accepted.
type QueryResult struct {
	Page          *Page
	TotalOnOrders decimal.Decimal
}

// Service orchestrates order ingestion and customer queries on top of the
// Repository. It holds no other state.
type Service struct {
	orders Repository
}

// NewService creates a Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Ingest maps an order-created event to an Order and persists it. Malformed
// events fail with *InvalidEventError, store failures with
// *PersistenceError. Ingestion is not retried here; redelivery is owned by
// the event source, and Insert is idempotent per OrderID.
func (s *Service) Ingest(ctx context.Context, e OrderCreatedEvent) error {
	o, err := OrderFromEvent(e)
	if err != nil {
		return err
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		return &PersistenceError{OrderID: o.OrderID, Err: err}
	}

	return nil
}

// Query returns one page of the customer's orders along with the total
// across all of the customer's orders. A customer with no orders yields an
// empty page and an exact zero total. Either read failing fails the whole
// query with *QueryError; there is no partial result.
func (s *Service) Query(ctx context.Context, customerID int64, page, pageSize int) (*QueryResult, error) {
	p, err := s.orders.FindPageByCustomer(ctx, customerID, page, pageSize)
	if err != nil {
		return nil, &QueryError{CustomerID: customerID, Op: "find orders page", Err: err}
	}

	sum, err := s.orders.SumTotalsByCustomer(ctx, customerID)
	if err != nil {
		return nil, &QueryError{CustomerID: customerID, Op: "sum order totals", Err: err}
	}

	// No orders means the aggregation yields no row. That maps to an exact
	// zero total, not an error.
	total := decimal.Zero
	if sum.Valid {
		total = sum.Decimal
	}

	return &QueryResult{Page: p, TotalOnOrders: total}, nil
}
