package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Joebakid/Gudrix/internal/cart"
	"github.com/Joebakid/Gudrix/internal/checkout"
	"github.com/Joebakid/Gudrix/internal/pricing"
	"github.com/Joebakid/Gudrix/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminSecret = "test-admin-secret"

type testEnv struct {
	handler    http.Handler
	handlerSet Handlers
	sessions   *cart.Sessions
	verifier   *stubVerifier
	orders     *repository.MemoryOrderStore
}

func newTestEnv(t *testing.T) *testEnv {
	sessions := cart.NewSessions(time.Hour)
	t.Cleanup(func() { sessions.Close() })

	guard := checkout.NewGuard(pricing.NewEngine(pricing.DefaultSchedule()), decimal.NewFromInt(10000), "₦")
	cat := stubCatalog{prices: map[string]decimal.Decimal{
		"p1":    decimal.NewFromInt(6000),
		"cheap": decimal.NewFromInt(500),
	}}
	verifier := &stubVerifier{}
	orders := repository.NewMemoryOrderStore()
	log := zap.NewNop()

	h := Handlers{
		Cart:     NewCartHandler(sessions, cat, guard, 5*time.Second),
		Checkout: NewCheckoutHandler(sessions, guard, "NGN"),
		Verify:   NewVerifyHandler(verifier, sessions, 1<<20, 5*time.Second, log),
		Orders:   NewOrdersHandler(orders, 5*time.Second),
	}
	cfg := RouterConfig{
		RequestTimeout:  10 * time.Second,
		AllowedOrigins:  []string{"*"},
		AdminJWTSecret:  []byte(testAdminSecret),
		VerifyRateLimit: 100,
	}
	return &testEnv{
		handler:    NewRouter(cfg, h, log),
		handlerSet: h,
		sessions:   sessions,
		verifier:   verifier,
		orders:     orders,
	}
}

// do sends a request, carrying cookie when non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
