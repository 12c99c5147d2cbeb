package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/infrastructure/cache"
)

func newIdempotencyRouter(t *testing.T) (*gin.Engine, shared.IdempotencyStore) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	router.Use(Idempotency(store, shared.DefaultIdempotencyConfig(), zap.NewNop()))
	router.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return router, store
}

func TestIdempotency(t *testing.T) {
	t.Run("passes requests without a key", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rejects a replayed key", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t)

		first := httptest.NewRecorder()
		req1 := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req1.Header.Set(IdempotencyKeyHeader, "order-abc")
		router.ServeHTTP(first, req1)
		assert.Equal(t, http.StatusCreated, first.Code)

		second := httptest.NewRecorder()
		req2 := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req2.Header.Set(IdempotencyKeyHeader, "order-abc")
		router.ServeHTTP(second, req2)
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), "ERR_DUPLICATE_REQUEST")
	})

	t.Run("distinct keys do not collide", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t)

		for _, key := range []string{"k1", "k2", "k3"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			req.Header.Set(IdempotencyKeyHeader, key)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusCreated, w.Code)
		}
	})

	t.Run("rejects oversized keys", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t)

		key := make([]byte, maxIdempotencyKeyLength+1)
		for i := range key {
			key[i] = 'x'
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set(IdempotencyKeyHeader, string(key))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
