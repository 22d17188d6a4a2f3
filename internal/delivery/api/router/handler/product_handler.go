package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"ventas/internal/delivery/api/response"
	"ventas/internal/domain/entity"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// ProductHandlerParams holds dependencies for ProductHandler, injected by Fx.
type ProductHandlerParams struct {
	fx.In

	ProductUC usecase.ProductUsecase
	Logger    *slog.Logger
}

// ProductHandler serves the catalog.
type ProductHandler struct {
	productUC usecase.ProductUsecase
	logger    *slog.Logger
}

// NewProductHandler is the constructor for ProductHandler.
func NewProductHandler(params ProductHandlerParams) *ProductHandler {
	return &ProductHandler{
		productUC: params.ProductUC,
		logger:    params.Logger,
	}
}

// ProductRequest is the body for both creating and replacing a product.
// Price accepts a JSON number or a decimal string.
type ProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      *bool           `json:"active"`
}

func (r *ProductRequest) toInput() *usecase.ProductInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return &usecase.ProductInput{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Active:      active,
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productUC.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newProductResponse(product))
}

// ListProducts supports ?category=, ?q=, ?active=, ?limit= and ?offset=.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	onlyActive, _ := strconv.ParseBool(c.QueryParam("active"))

	products, err := h.productUC.ListProducts(c.Request().Context(), entity.ProductFilter{
		Category:   c.QueryParam("category"),
		Search:     c.QueryParam("q"),
		OnlyActive: onlyActive,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, mapSlice(products, newProductResponse))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productUC.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productUC.UpdateProduct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.productUC.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]any{"deleted": true})
}
