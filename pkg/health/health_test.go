package health

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestReadyEndpoint_NotReadyByDefault(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 503, rec.Code)
}

func TestReadyEndpoint_ReadyWithPassingChecks(t *testing.T) {
	h := New()
	h.AddReadinessCheck("store", time.Second, func(context.Context) error { return nil })
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"ok"`)
}

func TestReadyEndpoint_FailingCheck(t *testing.T) {
	h := New()
	h.AddReadinessCheck("store", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestReadyEndpoint_DrainsOnSetReadyFalse(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest("GET", "/readyz", nil))

	assert.Equal(t, 503, rec.Code)
}

func TestLiveEndpoint_HealthyWithoutChecks(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest("GET", "/livez", nil))

	assert.Equal(t, 200, rec.Code)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
