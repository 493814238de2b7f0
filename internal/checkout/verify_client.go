package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// VerifyError is returned when the verification endpoint answers with a failure.
type VerifyError struct {
	StatusCode int
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verification endpoint returned status %d", e.StatusCode)
}

// VerifyClient posts verification requests to the storefront's verification endpoint.
type VerifyClient struct {
	url    string
	client *http.Client
}

func NewVerifyClient(url string, timeout time.Duration) *VerifyClient {
	return &VerifyClient{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *VerifyClient) Verify(ctx context.Context, req domain.VerificationRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal verification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build verification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call verification endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &VerifyError{StatusCode: resp.StatusCode}
	}

	var out domain.VerificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode verification response: %w", err)
	}
	if !out.Success {
		return &VerifyError{StatusCode: resp.StatusCode}
	}
	return nil
}
