package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Joebakid/Gudrix/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.paystack.co"

var (
	// ErrProviderUnavailable covers transport failures, 5xx answers, bodies
	// that cannot be decoded and an open breaker. Callers must fail closed.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrNotSuccessful means the provider answered but did not report the
	// transaction as successful.
	ErrNotSuccessful = errors.New("transaction not successful")
	ErrEmptyReference = errors.New("empty reference")
)

// Transaction is the part of the provider's verification payload we rely on.
// Amount is in minor units.
type Transaction struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at,omitempty"`
}

func (t Transaction) Successful() bool {
	return t.Status == "success"
}

type verifyResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// Client calls the provider's transaction verification API.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Transaction]
	log     *zap.Logger
}

func NewClient(baseURL, secret string, timeout time.Duration, log *zap.Logger) *Client {
	cfg := circuitbreaker.DefaultConfig("paystack")
	// a declined transaction is a healthy provider
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotSuccessful)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[*Transaction](cfg, log),
		log:     log,
	}
}

// VerifyTransaction returns the transaction only when the provider reports it
// successful. Every other outcome is an error.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrEmptyReference
	}

	tx, err := c.breaker.Execute(func() (*Transaction, error) {
		return c.verify(ctx, reference)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) verify(ctx context.Context, reference string) (*Transaction, error) {
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK || !body.Status || !body.Data.Successful() {
		c.log.Info("provider rejected transaction",
			zap.String("reference", reference),
			zap.Int("http_status", resp.StatusCode),
			zap.String("tx_status", body.Data.Status),
			zap.String("message", body.Message))
		return nil, fmt.Errorf("%w: %s", ErrNotSuccessful, statusOf(body))
	}

	if body.Data.Reference != "" && body.Data.Reference != reference {
		return nil, fmt.Errorf("%w: reference %s answered for %s", ErrNotSuccessful, body.Data.Reference, reference)
	}

	tx := body.Data
	tx.Reference = reference
	return &tx, nil
}

func statusOf(body verifyResponse) string {
	if body.Data.Status != "" {
		return body.Data.Status
	}
	if body.Message != "" {
		return body.Message
	}
	return "unknown"
}
