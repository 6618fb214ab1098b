package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/orderms/internal/domain/order"
)

type mockQuerier struct {
	res *order.QueryResult
	err error

	gotCustomerID int64
	gotPage       int
	gotPageSize   int
}

func (m *mockQuerier) Query(_ context.Context, customerID int64, page, pageSize int) (*order.QueryResult, error) {
	m.gotCustomerID = customerID
	m.gotPage = page
	m.gotPageSize = pageSize
	if m.err != nil {
		return nil, m.err
	}
	return m.res, nil
}

type summaryResponse struct {
	Data []struct {
		OrderID    int64       `json:"orderId"`
		CustomerID int64       `json:"customerId"`
		Total      json.Number `json:"total"`
	} `json:"data"`
	Pagination struct {
		Page          int   `json:"page"`
		PageSize      int   `json:"pageSize"`
		TotalElements int64 `json:"totalElements"`
		TotalPages    int   `json:"totalPages"`
	} `json:"pagination"`
	Summary struct {
		TotalOnOrders json.Number `json:"totalOnOrders"`
	} `json:"summary"`
}

func getOrders(t *testing.T, q OrderQuerier, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	NewHandler(q).Routes().ServeHTTP(rec, req)
	return rec
}

func decodeSummary(t *testing.T, rec *httptest.ResponseRecorder) summaryResponse {
	t.Helper()
	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListOrders_OneOrder(t *testing.T) {
	q := &mockQuerier{res: &order.QueryResult{
		Page: &order.Page{
			Content: []order.Order{{
				OrderID:    1,
				CustomerID: 2,
				Items:      []order.OrderItem{{Product: "notebook", Quantity: 1, UnitPrice: decimal.RequireFromString("20.50")}},
				Total:      decimal.RequireFromString("20.50"),
			}},
			Number:        0,
			Size:          10,
			TotalElements: 1,
			TotalPages:    1,
		},
		TotalOnOrders: decimal.RequireFromString("20.50"),
	}}

	rec := getOrders(t, q, "/customers/2/orders?page=0&pageSize=10")

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeSummary(t, rec)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Data[0].OrderID)
	assert.Equal(t, int64(2), resp.Data[0].CustomerID)
	assert.Equal(t, json.Number("20.5"), resp.Data[0].Total)

	assert.Equal(t, 0, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.PageSize)
	assert.Equal(t, int64(1), resp.Pagination.TotalElements)
	assert.Equal(t, 1, resp.Pagination.TotalPages)

	assert.Equal(t, json.Number("20.5"), resp.Summary.TotalOnOrders)

	assert.Equal(t, int64(2), q.gotCustomerID)
	assert.Equal(t, 0, q.gotPage)
	assert.Equal(t, 10, q.gotPageSize)
}

func TestListOrders_NoOrdersIsStillOK(t *testing.T) {
	q := &mockQuerier{res: &order.QueryResult{
		Page:          &order.Page{Content: []order.Order{}, Number: 0, Size: 10},
		TotalOnOrders: decimal.Zero,
	}}

	rec := getOrders(t, q, "/customers/404/orders")

	require.Equal(t, 200, rec.Code)

	resp := decodeSummary(t, rec)
	assert.Empty(t, resp.Data)
	assert.Equal(t, int64(0), resp.Pagination.TotalElements)
	assert.Equal(t, json.Number("0"), resp.Summary.TotalOnOrders)
}

func TestListOrders_PaginationEchoesRequest(t *testing.T) {
	q := &mockQuerier{res: &order.QueryResult{
		Page:          &order.Page{Content: []order.Order{}, Number: 3, Size: 5, TotalElements: 40, TotalPages: 8},
		TotalOnOrders: decimal.RequireFromString("123.45"),
	}}

	rec := getOrders(t, q, "/customers/2/orders?page=3&pageSize=5")

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 3, q.gotPage)
	assert.Equal(t, 5, q.gotPageSize)

	resp := decodeSummary(t, rec)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Equal(t, 5, resp.Pagination.PageSize)
}

func TestListOrders_DefaultPaging(t *testing.T) {
	q := &mockQuerier{res: &order.QueryResult{
		Page:          &order.Page{Content: []order.Order{}, Number: 0, Size: 10},
		TotalOnOrders: decimal.Zero,
	}}

	getOrders(t, q, "/customers/2/orders")

	assert.Equal(t, 0, q.gotPage)
	assert.Equal(t, 10, q.gotPageSize)
}

func TestListOrders_BadCustomerID(t *testing.T) {
	rec := getOrders(t, &mockQuerier{}, "/customers/abc/orders")
	assert.Equal(t, 400, rec.Code)
}

func TestListOrders_BadPageParams(t *testing.T) {
	rec := getOrders(t, &mockQuerier{}, "/customers/2/orders?page=x")
	assert.Equal(t, 400, rec.Code)

	rec = getOrders(t, &mockQuerier{}, "/customers/2/orders?pageSize=x")
	assert.Equal(t, 400, rec.Code)
}

func TestListOrders_QueryFailure(t *testing.T) {
	q := &mockQuerier{err: &order.QueryError{
		CustomerID: 2,
		Op:         "find orders page",
		Err:        errors.New("store down"),
	}}

	rec := getOrders(t, q, "/customers/2/orders")

	require.Equal(t, 500, rec.Code)
	assert.Contains(t, rec.Body.String(), "order query failed")
}
