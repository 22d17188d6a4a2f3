package impl

import (
	"context"
	"net/http"
	"testing"

	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productInput(sku, price string) *usecase.ProductInput {
	return &usecase.ProductInput{
		SKU:      sku,
		Name:     "Aceite 3L",
		Category: "abarrotes",
		Price:    decimal.RequireFromString(price),
		Stock:    40,
		Active:   true,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, productInput("  ACE-3L ", "24990.499"))
	require.NoError(t, err)
	assert.Equal(t, "ACE-3L", product.SKU)
	assert.Equal(t, "24990.5", product.Price.String())

	got, err := f.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)

	_, err = f.products.CreateProduct(ctx, productInput("ACE-3L", "10"))
	requireAppError(t, err, http.StatusConflict, "CONFLICT")
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *usecase.ProductInput)
	}{
		{name: "missing sku", mutate: func(in *usecase.ProductInput) { in.SKU = " " }},
		{name: "missing name", mutate: func(in *usecase.ProductInput) { in.Name = "" }},
		{name: "zero price", mutate: func(in *usecase.ProductInput) { in.Price = decimal.Zero }},
		{name: "negative price", mutate: func(in *usecase.ProductInput) { in.Price = decimal.NewFromInt(-1) }},
		{name: "negative stock", mutate: func(in *usecase.ProductInput) { in.Stock = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			input := productInput("SKU-1", "10")
			tt.mutate(input)

			_, err := f.products.CreateProduct(context.Background(), input)

			requireAppError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			assert.Empty(t, f.store.products)
		})
	}
}

func TestProductService_UpdateProduct_KeepsOrderSnapshot(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	product := f.store.addProduct("100", 10)
	order := createOrder(t, f, product.ID, 2)

	updated, err := f.products.UpdateProduct(ctx, product.ID, productInput(product.SKU, "150"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(updated.Price))

	stored, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.Total))
	assert.True(t, decimal.NewFromInt(100).Equal(stored.UnitPrice))

	_, err = f.products.UpdateProduct(ctx, uuid.New(), productInput("X", "1"))
	require.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	free := f.store.addProduct("100", 10)
	ordered := f.store.addProduct("100", 10)
	createOrder(t, f, ordered.ID, 1)

	require.NoError(t, f.products.DeleteProduct(ctx, free.ID))
	require.ErrorIs(t, f.products.DeleteProduct(ctx, free.ID), domainerrors.ErrProductNotFound)

	err := f.products.DeleteProduct(ctx, ordered.ID)
	requireAppError(t, err, http.StatusConflict, "CONFLICT")
}

func TestProductService_ListProducts(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	_, err := f.products.CreateProduct(ctx, productInput("A-1", "10"))
	require.NoError(t, err)
	inactive := productInput("A-2", "10")
	inactive.Active = false
	inactive.Name = "Harina 1kg"
	_, err = f.products.CreateProduct(ctx, inactive)
	require.NoError(t, err)

	all, err := f.products.ListProducts(ctx, entity.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.products.ListProducts(ctx, entity.ProductFilter{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A-1", active[0].SKU)

	search, err := f.products.ListProducts(ctx, entity.ProductFilter{Search: "harina"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "A-2", search[0].SKU)
}
