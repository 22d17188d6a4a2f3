package usecase

import (
	"context"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput defines the editable fields of a catalog product.
type ProductInput struct {
	SKU         string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Active      bool
}

// ProductUsecase defines catalog management.
type ProductUsecase interface {
	CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}
