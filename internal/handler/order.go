package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/orderms/internal/domain/order"
)

const (
	defaultPage     = 0
	defaultPageSize = 10
)

// ListOrders handles GET /customers/{customerID}/orders. It combines the
// requested page of the customer's orders with the customer-wide total and
// answers 200 even when the customer has no orders at all.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "customerID must be an integer")
		return
	}

	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := queryInt(r, "pageSize", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pageSize must be an integer")
		return
	}

	res, err := h.orders.Query(ctx, customerID, page, pageSize)
	if err != nil {
		zctx.From(ctx).Error("Customer order query failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "order query failed")
		return
	}

	writeJSON(w, http.StatusOK, encodeSummary(res))
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// encodeSummary shapes the response: the page reduced to order summaries,
// pagination metadata taken verbatim from the page, and the aggregate total.
// Decimals are emitted as JSON numbers from their exact string form.
func encodeSummary(res *order.QueryResult) *jx.Encoder {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("data", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, o := range res.Page.Content {
					e.Obj(func(e *jx.Encoder) {
						e.Field("orderId", func(e *jx.Encoder) { e.Int64(o.OrderID) })
						e.Field("customerId", func(e *jx.Encoder) { e.Int64(o.CustomerID) })
						e.Field("total", func(e *jx.Encoder) { encodeDecimal(e, o.Total) })
					})
				}
			})
		})
		e.Field("pagination", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("page", func(e *jx.Encoder) { e.Int(res.Page.Number) })
				e.Field("pageSize", func(e *jx.Encoder) { e.Int(res.Page.Size) })
				e.Field("totalElements", func(e *jx.Encoder) { e.Int64(res.Page.TotalElements) })
				e.Field("totalPages", func(e *jx.Encoder) { e.Int(res.Page.TotalPages) })
			})
		})
		e.Field("summary", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("totalOnOrders", func(e *jx.Encoder) { encodeDecimal(e, res.TotalOnOrders) })
			})
		})
	})
	return e
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}
