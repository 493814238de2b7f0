package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errBoom = errors.New("boom")

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.OpenTimeout = time.Minute
	cb := New[int](cfg, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestBreaker_IgnoresErrorsMarkedSuccessful(t *testing.T) {
	errDeclined := errors.New("declined")
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errDeclined)
	}
	cb := New[int](cfg, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errDeclined })
		require.ErrorIs(t, err, errDeclined)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
