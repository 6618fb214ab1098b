// Package handler exposes the order query API over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/jx"

	"github.com/xenking/orderms/internal/domain/order"
)

// OrderQuerier is the slice of the order service the handler needs.
type OrderQuerier interface {
	Query(ctx context.Context, customerID int64, page, pageSize int) (*order.QueryResult, error)
}

// Handler serves customer order queries, delegating to the order service.
type Handler struct {
	orders OrderQuerier
}

// NewHandler constructs a Handler around the given order service.
func NewHandler(orders OrderQuerier) *Handler {
	return &Handler{orders: orders}
}

// Routes builds the router for the order API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/customers/{customerID}/orders", h.ListOrders)

	return r
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, e)
}
