package repository

import (
	"context"
	"errors"

	"github.com/Joebakid/Gudrix/internal/domain"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateReference = errors.New("order for this reference already exists")
)

// OrderStore persists verified checkout orders. Create must be atomic per
// reference: when two callers race, exactly one succeeds and the other gets
// ErrDuplicateReference.
type OrderStore interface {
	FindByReference(ctx context.Context, reference string) (*domain.CheckoutOrder, error)
	Create(ctx context.Context, order *domain.CheckoutOrder) error
	// List returns orders newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.CheckoutOrder, error)
	Close() error
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
