package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apptrade "github.com/shopops/backend/internal/application/trade"
	"github.com/shopops/backend/internal/domain/catalog"
	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/shared/valueobject"
	"github.com/shopops/backend/internal/domain/trade"
	"github.com/shopops/backend/internal/interfaces/http/middleware"
)

// memoryOrderRepo is a minimal in-memory OrderRepository for handler tests
type memoryOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[uuid.UUID]*trade.Order)}
}

func (r *memoryOrderRepo) Create(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepo) Save(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[order.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != order.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memoryOrderRepo) FindAll(_ context.Context, filter shared.Filter) ([]*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*trade.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if want, ok := filter.Filters["customer_id"]; ok {
			id, isID := want.(uuid.UUID)
			if !isID || o.CustomerID == nil || *o.CustomerID != id {
				continue
			}
		}
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memoryOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	orders, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(orders)), nil
}

func (r *memoryOrderRepo) GetStats(_ context.Context, _ trade.DateRange) (*trade.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &trade.OrderStats{TotalRevenue: decimal.Zero}
	for _, o := range r.orders {
		stats.TotalOrders++
		switch o.Status {
		case trade.OrderStatusDraft:
			stats.Draft++
		case trade.OrderStatusConfirmed:
			stats.Confirmed++
		case trade.OrderStatusCompleted:
			stats.Completed++
		case trade.OrderStatusCancelled:
			stats.Cancelled++
		}
		if o.Status.CountsAsFulfilled() {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.FinalAmount)
		}
	}
	return stats, nil
}

type orderHandlerFixture struct {
	router   *gin.Engine
	products *memoryProductRepo
	orders   *memoryOrderRepo
}

func newOrderFixture(t *testing.T) *orderHandlerFixture {
	t.Helper()
	products := newMemoryProductRepo()
	orders := newMemoryOrderRepo()
	scope := apptrade.NewNoOpTransactionScope(products, orders, nil)
	svc := apptrade.NewOrderService(scope, zap.NewNop())
	h := NewOrderHandler(svc, zap.NewNop())

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, uuid.New().String())
	})
	router.POST("/orders", h.Create)
	router.GET("/orders/stats", h.GetStats)
	router.GET("/orders/:id", h.Get)
	router.PUT("/orders/:id/status", h.UpdateStatus)
	router.POST("/orders/:id/cancel", h.Cancel)
	router.GET("/customers/:id/orders", h.ListByCustomer)
	return &orderHandlerFixture{router: router, products: products, orders: orders}
}

func (f *orderHandlerFixture) seedProduct(t *testing.T, sku string, stock int64) uuid.UUID {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), sku, "Seeded "+sku, "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetPrices(
		valueobject.NewMoneyVNDFromFloat(20000),
		valueobject.NewMoneyVNDFromFloat(12000),
	))
	product.StockQuantity = stock
	require.NoError(t, f.products.Create(context.Background(), product))
	return product.ID
}

func (f *orderHandlerFixture) createOrder(t *testing.T, productID uuid.UUID, quantity int64) uuid.UUID {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": quantity},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func (f *orderHandlerFixture) updateStatus(orderID uuid.UUID, status string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"status": status})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("creates a draft order with frozen prices", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 3)

		stored, err := f.orders.FindByID(context.Background(), orderID)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusDraft, stored.Status)

		// Creation must not touch the counter.
		product, err := f.products.FindByID(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), product.StockQuantity)
	})

	t.Run("rejects empty item lists with 400", func(t *testing.T) {
		f := newOrderFixture(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte(`{"items":[]}`)))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product returns 404", func(t *testing.T) {
		f := newOrderFixture(t)
		payload, _ := json.Marshal(map[string]interface{}{
			"items": []map[string]interface{}{
				{"product_id": uuid.New(), "quantity": 1},
			},
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("confirming deducts stock", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 3)

		w := f.updateStatus(orderID, "confirmed")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		product, err := f.products.FindByID(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), product.StockQuantity)
	})

	t.Run("confirming beyond stock returns 422", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 8)

		// Drain stock behind the order's back.
		product, err := f.products.FindByID(context.Background(), productID)
		require.NoError(t, err)
		require.NoError(t, product.DeductStock(5))
		require.NoError(t, f.products.SaveStockWithLock(context.Background(), product))

		w := f.updateStatus(orderID, "confirmed")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INSUFFICIENT_STOCK")
	})

	t.Run("invalid status string returns 400", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 1)

		w := f.updateStatus(orderID, "shipped")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("illegal transition returns 422", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 1)

		w := f.updateStatus(orderID, "completed")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INVALID_STATE")
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	t.Run("cancelling a confirmed order restores stock", func(t *testing.T) {
		f := newOrderFixture(t)
		productID := f.seedProduct(t, "SKU-1", 10)
		orderID := f.createOrder(t, productID, 4)

		require.Equal(t, http.StatusOK, f.updateStatus(orderID, "confirmed").Code)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil)
		f.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		product, err := f.products.FindByID(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), product.StockQuantity)
	})
}

func TestOrderHandler_GetStats(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.seedProduct(t, "SKU-1", 100)
	first := f.createOrder(t, productID, 2)
	f.createOrder(t, productID, 3)
	require.Equal(t, http.StatusOK, f.updateStatus(first, "confirmed").Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/stats", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalOrders int64 `json:"total_orders"`
			Draft       int64 `json:"draft"`
			Confirmed   int64 `json:"confirmed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.TotalOrders)
	assert.Equal(t, int64(1), resp.Data.Draft)
	assert.Equal(t, int64(1), resp.Data.Confirmed)
}

func TestOrderHandler_ListByCustomer(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.seedProduct(t, "SKU-1", 100)
	customerID := uuid.New()

	payload, err := json.Marshal(map[string]interface{}{
		"customer_id": customerID,
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 1},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A walk-in order that must not show up for the customer.
	f.createOrder(t, productID, 2)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/customers/"+customerID.String()+"/orders", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			CustomerID *uuid.UUID `json:"customer_id"`
		} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].CustomerID)
	assert.Equal(t, customerID, *resp.Data[0].CustomerID)
	assert.Equal(t, int64(1), resp.Meta.Total)
}
