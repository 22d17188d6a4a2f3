package repository

import (
	"context"
	"errors"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when a product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines catalog persistence.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDForShare reads the product holding a shared row lock until the
	// surrounding transaction ends, so its price cannot change underneath an order.
	FindByIDForShare(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
