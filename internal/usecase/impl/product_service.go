package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// productService implements the ProductUsecase interface.
type productService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
	now         func() time.Time
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	ProductRepo repository.ProductRepository
	Logger      *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		productRepo: params.ProductRepo,
		logger:      params.Logger,
		now:         time.Now,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func validateProductInput(input *usecase.ProductInput) error {
	switch {
	case strings.TrimSpace(input.SKU) == "":
		return domainerrors.ErrValidationFailed.WithDetails("sku is required")
	case strings.TrimSpace(input.Name) == "":
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	case !input.Price.IsPositive():
		return domainerrors.ErrValidationFailed.WithDetails("price must be greater than zero")
	case input.Stock < 0:
		return domainerrors.ErrValidationFailed.WithDetails("stock cannot be negative")
	default:
		return nil
	}
}

// CreateProduct adds a product to the catalog.
func (srv *productService) CreateProduct(ctx context.Context, input *usecase.ProductInput) (*entity.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := srv.now().UTC()
	product := &entity.Product{
		ID:          uuid.New(),
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		Active:      input.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.productRepo.Create(ctx, product); err != nil {
		srv.log(ctx).Warn("Failed to create product", slog.String("sku", product.SKU), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create product")
	}
	srv.log(ctx).Info("Product created", slog.Any("product_id", product.ID), slog.String("sku", product.SKU))

	return product, nil
}

// GetProduct returns one product.
func (srv *productService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err, "failed to find product")
	}

	return product, nil
}

// ListProducts returns products matching the filter.
func (srv *productService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	products, err := srv.productRepo.List(ctx, filter)
	if err != nil {
		srv.log(ctx).Error("Failed to list products", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

// UpdateProduct replaces the editable fields of a product. Existing orders keep their price snapshot.
func (srv *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput) (*entity.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err, "failed to find product")
	}

	product.SKU = strings.TrimSpace(input.SKU)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Category = input.Category
	product.Price = input.Price.Round(2)
	product.Stock = input.Stock
	product.Active = input.Active
	product.UpdatedAt = srv.now().UTC()

	if err := srv.productRepo.Update(ctx, product); err != nil {
		return nil, mapProductErr(err, "failed to update product")
	}
	srv.log(ctx).Info("Product updated", slog.Any("product_id", id))

	return product, nil
}

// DeleteProduct removes a product that no order references.
func (srv *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := srv.productRepo.Delete(ctx, id); err != nil {
		return mapProductErr(err, "failed to delete product")
	}
	srv.log(ctx).Info("Product deleted", slog.Any("product_id", id))

	return nil
}

func mapProductErr(err error, message string) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return errors.Wrap(domainerrors.ErrProductNotFound, message)
	}

	return errors.Wrap(err, message)
}
