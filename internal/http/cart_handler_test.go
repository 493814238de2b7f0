package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddIssuesSessionAndPrices(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": "42"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	view := decodeJSON[CartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(6000).Equal(view.Subtotal))
	assert.True(t, decimal.NewFromInt(3500).Equal(view.Waybill))
	assert.False(t, view.CheckoutAllowed)
	assert.Equal(t, "Minimum order is ₦10,000", view.Message)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": "42"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	view = decodeJSON[CartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(12000).Equal(view.Subtotal))
	assert.True(t, decimal.NewFromInt(4000).Equal(view.Waybill))
	assert.True(t, decimal.NewFromInt(16000).Equal(view.Total))
	assert.True(t, view.CheckoutAllowed)
	assert.Empty(t, view.Message)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeJSON[CartView](t, rec)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestCart_RemoveUsesNormalizedVariant(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": ""}, nil)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/p1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[CartView](t, rec).Items)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": "42"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/p1", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/p1?variant=42", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[CartView](t, rec).Items)
}

func TestCart_Clear(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "quantity": 3}, nil)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cookie)
	view := decodeJSON[CartView](t, rec)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.TotalItems)
}

func TestCart_AddValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing product", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"negative quantity", map[string]any{"productId": "p1", "quantity": -1}, http.StatusBadRequest},
		{"too many", map[string]any{"productId": "p1", "quantity": 100}, http.StatusBadRequest},
		{"unknown product", map[string]any{"productId": "ghost"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/cart/items", tt.body, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCart_CatalogFailure(t *testing.T) {
	env := newTestEnv(t)
	h := NewCartHandler(env.sessions, stubCatalog{err: errors.New("db locked")}, nil, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"productId":"p1"}`))
	rec := httptest.NewRecorder()
	h.AddItem(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeJSON[ErrorResponse](t, rec).Code)
}
