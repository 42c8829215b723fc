package product

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the product schema migrations embedded in the binary.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// PGStore persists the catalog in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a Postgres-backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const productColumns = "id, name, supply_price, shop_price, created_at, updated_at"

// Create inserts a new product.
func (s *PGStore) Create(ctx context.Context, in CreateInput) (Product, error) {
	row := s.pool.QueryRow(ctx,
		"INSERT INTO products (id, name, supply_price, shop_price) VALUES ($1, $2, $3, $4) RETURNING "+productColumns,
		uuid.NewString(), in.Name, in.SupplyPrice, in.ShopPrice,
	)
	return scanProduct(row)
}

// List returns newest-first products matching the optional name query.
func (s *PGStore) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	query := strings.TrimSpace(params.Query)

	var total int64
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM products WHERE $1 = '' OR name ILIKE '%' || $1 || '%'",
		query,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	sql := "SELECT " + productColumns + " FROM products WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ORDER BY created_at DESC"
	args := []any{query}
	if params.Limit > 0 {
		sql += " LIMIT $2 OFFSET $3"
		args = append(args, params.Limit, params.Offset)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return products, total, nil
}

// Get returns a single product by id.
func (s *PGStore) Get(ctx context.Context, id string) (Product, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Update applies non-nil fields to an existing product.
func (s *PGStore) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE products
		 SET name = COALESCE($2, name),
		     supply_price = COALESCE($3, supply_price),
		     shop_price = COALESCE($4, shop_price),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, in.Name, in.SupplyPrice, in.ShopPrice,
	)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Delete removes a product by id.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p         Product
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SupplyPrice, &p.ShopPrice, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, pgx.ErrNoRows
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
