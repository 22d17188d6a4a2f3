package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/constants"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	gateway   service.PaymentGateway
	qrCode    service.QRCodeService
	publisher service.EventPublisher
	notifier  service.NotificationService
	metrics   service.MetricsRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Gateway   service.PaymentGateway
	QRCode    service.QRCodeService
	Publisher service.EventPublisher
	Notifier  service.NotificationService
	Metrics   service.MetricsRecorder
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		gateway:   params.Gateway,
		qrCode:    params.QRCode,
		publisher: params.Publisher,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder prices and inserts an order in one transaction. The product row is
// share-locked so the snapshotted price is the one in the catalog at commit time.
func (srv *orderService) CreateOrder(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	// 1. Validate quantity before any store work.
	if input.Quantity <= 0 {
		return nil, errors.Wrapf(domainerrors.ErrInvalidQuantity, "got %d", input.Quantity)
	}

	var order *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// 2. Current price, locked for the rest of the transaction.
		product, err := repoFactory.ProductRepo().FindByIDForShare(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "product lookup failed")
			}

			return errors.Wrap(err, "failed to find product")
		}
		if !product.Price.IsPositive() {
			return errors.Wrap(domainerrors.ErrProductNotFound, "product has no price")
		}

		// 3. Total at currency precision.
		now := srv.now().UTC()
		order = &entity.Order{
			ID:            uuid.New(),
			ClientName:    input.ClientName,
			ClientPhone:   input.ClientPhone,
			ProductID:     product.ID,
			Quantity:      input.Quantity,
			UnitPrice:     product.Price,
			Total:         product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2),
			PaymentStatus: entity.PaymentStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		// 4. Insert.
		if err := repoFactory.OrderRepo().Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		return nil
	})
	if err != nil {
		if appErr, ok := errors.AsType[domainerrors.AppError](err); ok && appErr.HTTPCode() < 500 {
			srv.log(ctx).Warn("Order rejected", slog.Any("product_id", input.ProductID), slog.Any("error", err))
		} else {
			srv.log(ctx).Error("Failed to execute create order transaction", slog.Any("product_id", input.ProductID), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to execute create order transaction")
	}

	srv.metrics.OrderCreated()
	srv.log(ctx).Info("Order created",
		slog.Any("order_id", order.ID),
		slog.Any("product_id", order.ProductID),
		slog.Int("quantity", order.Quantity),
		slog.String("total", order.Total.StringFixed(2)),
	)

	publishBestEffort(ctx, srv.publisher, srv.log(ctx), constants.EventOrderCreated, orderEventPayload(order))
	notifyBestEffort(ctx, srv.notifier, srv.log(ctx), constants.TopicNewOrders,
		"New order",
		order.ClientName+" ordered "+order.Total.StringFixed(2),
		map[string]string{"order_id": order.ID.String()},
	)

	return order, nil
}

func orderEventPayload(order *entity.Order) map[string]any {
	return map[string]any{
		"order_id":       order.ID,
		"client_name":    order.ClientName,
		"client_phone":   order.ClientPhone,
		"product_id":     order.ProductID,
		"quantity":       order.Quantity,
		"total":          order.Total.StringFixed(2),
		"payment_status": order.PaymentStatus,
	}
}

// GetOrder returns one order.
func (srv *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return order, nil
}

// ListOrders returns orders newest first.
func (srv *orderService) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidPaymentStatus, "got %q", filter.PaymentStatus)
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	orders, err := srv.orderRepo.List(ctx, filter)
	if err != nil {
		srv.log(ctx).Error("Failed to list orders", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

// UpdatePaymentStatus records a manual payment status change.
func (srv *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (*entity.Order, error) {
	if !status.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidPaymentStatus, "got %q", status)
	}

	if err := srv.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order lookup failed")
		}
		srv.log(ctx).Error("Failed to update payment status", slog.Any("order_id", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to update payment status")
	}

	order, err := srv.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Payment status updated", slog.Any("order_id", id), slog.String("status", string(status)))

	publishBestEffort(ctx, srv.publisher, srv.log(ctx), constants.EventPaymentStatusChanged, map[string]any{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
		"source":         "manual",
	})

	return order, nil
}

// DeleteOrder removes an order and, by cascade, its payments.
func (srv *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := srv.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return errors.Wrap(domainerrors.ErrOrderNotFound, "order lookup failed")
		}
		srv.log(ctx).Error("Failed to delete order", slog.Any("order_id", id), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete order")
	}
	srv.log(ctx).Info("Order deleted", slog.Any("order_id", id))

	return nil
}

// GetPaymentLink returns the signed checkout link for an unpaid order.
func (srv *orderService) GetPaymentLink(ctx context.Context, id uuid.UUID) (string, error) {
	order, err := srv.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	if order.PaymentStatus == entity.PaymentStatusPaid {
		return "", errors.Wrap(domainerrors.ErrConflict.WithDetails("order is already paid"), "payment link refused")
	}

	link, err := srv.gateway.CheckoutURL(order.ID, order.Total)
	if err != nil {
		srv.log(ctx).Error("Failed to build checkout url", slog.Any("order_id", id), slog.Any("error", err))

		return "", errors.Wrap(err, "failed to build checkout url")
	}

	return link, nil
}

// GetPaymentQR renders the checkout link as a QR code.
func (srv *orderService) GetPaymentQR(ctx context.Context, id uuid.UUID) (*usecase.PaymentQROutput, error) {
	link, err := srv.GetPaymentLink(ctx, id)
	if err != nil {
		return nil, err
	}

	png, err := srv.qrCode.Generate(link)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render payment qr")
	}

	return &usecase.PaymentQROutput{URL: link, PNG: png}, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
