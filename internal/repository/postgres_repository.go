package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const orderColumns = `id, reference, cart, subtotal, waybill, total, currency, customer, status, payment_method, created_at`

type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(cred *Credentials) (*PostgresOrderStore, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return NewPostgresOrderStoreFromDB(db), nil
}

func NewPostgresOrderStoreFromDB(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

func (r *PostgresOrderStore) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "checkout_orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
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

// Create relies on the unique constraint on reference; a racing insert
// surfaces as ErrDuplicateReference.
func (r *PostgresOrderStore) Create(ctx context.Context, order *domain.CheckoutOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	cartJSON, err := json.Marshal(order.Cart)
	if err != nil {
		return fmt.Errorf("marshal order cart: %w", err)
	}
	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("marshal order customer: %w", err)
	}

	query := `INSERT INTO checkout_orders (` + orderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Reference,
		cartJSON,
		order.Subtotal,
		order.ShippingFee,
		order.Total,
		order.Currency,
		customerJSON,
		order.Status.String(),
		order.PaymentMethod,
		order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderStore) FindByReference(ctx context.Context, reference string) (*domain.CheckoutOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM checkout_orders WHERE reference = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by reference: %w", err)
	}
	return order, nil
}

func (r *PostgresOrderStore) List(ctx context.Context, limit int) ([]*domain.CheckoutOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM checkout_orders ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.CheckoutOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *PostgresOrderStore) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.CheckoutOrder, error) {
	var (
		order        domain.CheckoutOrder
		status       string
		cartJSON     []byte
		customerJSON []byte
	)
	err := row.Scan(
		&order.ID,
		&order.Reference,
		&cartJSON,
		&order.Subtotal,
		&order.ShippingFee,
		&order.Total,
		&order.Currency,
		&customerJSON,
		&status,
		&order.PaymentMethod,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)

	if err := json.Unmarshal(cartJSON, &order.Cart); err != nil {
		return nil, fmt.Errorf("unmarshal order cart: %w", err)
	}
	if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal order customer: %w", err)
	}
	return &order, nil
}
