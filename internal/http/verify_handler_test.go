package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Joebakid/Gudrix/internal/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verifyBody = `{"reference":"ref-1","cart":[{"productId":"p1","variant":"42","quantity":2,"unitPrice":6000}],"subtotal":12000,"waybill":4000,"total":16000,"customer":{"fullName":"Ada Obi","email":"ada@example.com","phone":"0803","address":"1 Marina"}}`

func TestVerify_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := env.do(t, method, VerifyPath, nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
		assert.False(t, decodeJSON[successResponse](t, rec).Success)
	}
	assert.Empty(t, env.verifier.requests)
}

func TestVerify_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, VerifyPath, "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeJSON[successResponse](t, rec).Success)
	assert.Empty(t, env.verifier.requests)
}

func TestVerify_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, VerifyPath, verifyBody, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeJSON[successResponse](t, rec).Success)
	require.Len(t, env.verifier.requests, 1)
	req := env.verifier.requests[0]
	assert.Equal(t, "ref-1", req.Reference)
	assert.Equal(t, "42", req.Cart[0].VariantValue())
	assert.Equal(t, "16000", req.Total.String())
	assert.Equal(t, "1 Marina", req.Customer.Address)
}

func TestVerify_SuccessClearsSessionCart(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": "42", "quantity": 2}, nil)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, VerifyPath, verifyBody, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cookie)
	assert.Empty(t, decodeJSON[CartView](t, rec).Items)
}

func TestVerify_SuccessKeepsUnpaidRows(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "variant": "42", "quantity": 2}, nil)
	cookie := sessionCookie(t, rec)
	env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "cheap", "quantity": 1}, cookie)

	rec = env.do(t, http.MethodPost, VerifyPath, verifyBody, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cookie)
	items := decodeJSON[CartView](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "cheap", items[0].ProductID)
}

func TestVerify_FailureKeepsSessionCart(t *testing.T) {
	env := newTestEnv(t)
	env.verifier.err = verification.ErrAmountMismatch
	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1", "quantity": 2}, nil)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, VerifyPath, verifyBody, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", nil, cookie)
	assert.Len(t, decodeJSON[CartView](t, rec).Items, 1)
}

func TestVerify_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{verification.ErrMissingReference, http.StatusBadRequest},
		{verification.ErrTotalsMismatch, http.StatusBadRequest},
		{fmt.Errorf("%w: status failed", verification.ErrProviderRejected), http.StatusBadRequest},
		{verification.ErrAmountMismatch, http.StatusBadRequest},
		{fmt.Errorf("%w: connection refused", verification.ErrInternal), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			env := newTestEnv(t)
			env.verifier.err = tt.err

			rec := env.do(t, http.MethodPost, VerifyPath, verifyBody, nil)

			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, decodeJSON[successResponse](t, rec).Success)
		})
	}
}
