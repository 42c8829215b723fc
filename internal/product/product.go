package product

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no product matches the requested id.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry. Prices are kept as 2-decimal strings end to end
// so that no binary floating point ever touches a monetary value.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SupplyPrice string    `json:"supplyPrice"`
	ShopPrice   *string   `json:"shopPrice"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput captures the payload for creating a product.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	SupplyPrice string  `json:"supplyPrice" validate:"required,price"`
	ShopPrice   *string `json:"shopPrice" validate:"omitempty,price"`
}

// UpdateInput captures the payload for partially updating a product.
// Nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	SupplyPrice *string `json:"supplyPrice" validate:"omitempty,price"`
	ShopPrice   *string `json:"shopPrice" validate:"omitempty,price"`
}

// ListParams filters and paginates catalog listings.
// A non-positive Limit disables pagination.
type ListParams struct {
	Query  string
	Offset int
	Limit  int
}

// Store abstracts product persistence so the service can run against either
// Postgres or the JSON file backend.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Product, error)
	List(ctx context.Context, params ListParams) ([]Product, int64, error)
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (Product, error)
	Delete(ctx context.Context, id string) error
}
