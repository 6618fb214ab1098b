package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenking/orderms/db"
)

// The idempotency and ordering contracts live in the SQL itself; without a
// database daemon these tests pin the clauses that carry them.

func TestInsertOrderSQL_IdempotentOnOrderID(t *testing.T) {
	assert.Contains(t, insertOrderSQL, "ON CONFLICT (order_id) DO NOTHING")
}

func TestFindPageSQL_StableOrdering(t *testing.T) {
	assert.Contains(t, findPageByCustomerSQL, "ORDER BY created_at, id")
	assert.Contains(t, findPageByCustomerSQL, "LIMIT $2 OFFSET $3")
}

func TestSchema_UniqueOrderID(t *testing.T) {
	assert.Contains(t, db.Schema, "order_id    BIGINT NOT NULL UNIQUE")
}

func TestSumTotalsSQL_SpansAllRows(t *testing.T) {
	assert.Contains(t, sumTotalsByCustomerSQL, "SUM(total)")
	assert.NotContains(t, sumTotalsByCustomerSQL, "LIMIT")
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name          string
		totalElements int64
		size          int
		want          int
	}{
		{"no rows", 0, 10, 0},
		{"exact fit", 20, 10, 2},
		{"partial last page", 21, 10, 3},
		{"single row", 1, 10, 1},
		{"size one", 3, 1, 3},
		{"zero size", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageCount(tt.totalElements, tt.size))
		})
	}
}
