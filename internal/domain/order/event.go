package order

import (
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is the inbound message describing a newly created order.
type OrderCreatedEvent struct {
	CustomerOrderID int64            `json:"customerOrderId"`
	CustomerID      int64            `json:"customerId"`
	Items           []OrderItemEvent `json:"items"`
}

// OrderItemEvent is a single line item of an order-created event.
type OrderItemEvent struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderFromEvent maps an order-created event to a persistable Order,
// computing Total as the exact decimal sum of quantity×unitPrice over all
// items. The input scale is preserved; no float conversion happens anywhere.
//
// The checks below are precondition checks: the upstream producer already
// guarantees well-formed events, and a violation means the event must be
// dead-lettered rather than corrected.
func OrderFromEvent(e OrderCreatedEvent) (*Order, error) {
	if len(e.Items) == 0 {
		return nil, &InvalidEventError{OrderID: e.CustomerOrderID, Reason: "items required"}
	}

	items := make([]OrderItem, len(e.Items))
	total := decimal.Zero
	for i, item := range e.Items {
		if item.Product == "" {
			return nil, &InvalidEventError{
				OrderID: e.CustomerOrderID,
				Reason:  "product name required",
			}
		}
		if item.Quantity <= 0 {
			return nil, &InvalidEventError{
				OrderID: e.CustomerOrderID,
				Reason:  "quantity must be greater than 0 for product " + item.Product,
			}
		}
		if item.UnitPrice.IsNegative() {
			return nil, &InvalidEventError{
				OrderID: e.CustomerOrderID,
				Reason:  "unit price must not be negative for product " + item.Product,
			}
		}

		items[i] = OrderItem{
			Product:   item.Product,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return &Order{
		OrderID:    e.CustomerOrderID,
		CustomerID: e.CustomerID,
		Items:      items,
		Total:      total,
	}, nil
}
