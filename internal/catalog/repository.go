package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPrice marks a price the payment provider cannot charge exactly.
	ErrInvalidPrice = errors.New("product price is negative or finer than the minor unit")
)

// Repository reads product prices so cart lines carry server-side prices,
// not whatever the browser sent.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, created_at
		FROM products
		WHERE id = ?
	`

	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	if p.Price.IsNegative() || !p.Price.Equal(p.Price.Round(2)) {
		return nil, fmt.Errorf("%w: %s costs %s", ErrInvalidPrice, p.ID, p.Price)
	}
	return p, nil
}

// LineItem snapshots the product's current price, name and image into a cart line.
func (r *Repository) LineItem(ctx context.Context, productID string, variant *string, quantity int) (domain.LineItem, error) {
	p, err := r.GetProduct(ctx, productID)
	if err != nil {
		return domain.LineItem{}, err
	}
	return domain.LineItem{
		ProductID: p.ID,
		Variant:   domain.NormalizeVariant(variant),
		Quantity:  quantity,
		UnitPrice: p.Price,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
	}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
