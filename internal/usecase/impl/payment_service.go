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
	"go.uber.org/fx"
)

const (
	wompiTransactionUpdated = "transaction.updated"

	webhookSourceWompi    = "wompi"
	webhookSourceWhatsApp = "whatsapp"

	webhookResultProcessed = "processed"
	webhookResultIgnored   = "ignored"
	webhookResultRejected  = "rejected"
	webhookResultFailed    = "failed"
)

// paymentService implements the PaymentUsecase interface.
type paymentService struct {
	txManager   repository.TransactionManager
	paymentRepo repository.PaymentRepository
	gateway     service.PaymentGateway
	publisher   service.EventPublisher
	metrics     service.MetricsRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// PaymentServiceParams holds dependencies for PaymentService, injected by Fx.
type PaymentServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	PaymentRepo repository.PaymentRepository
	Gateway     service.PaymentGateway
	Publisher   service.EventPublisher
	Metrics     service.MetricsRecorder
	Logger      *slog.Logger
}

// NewPaymentService is the constructor for paymentService.
func NewPaymentService(params PaymentServiceParams) usecase.PaymentUsecase {
	return &paymentService{
		txManager:   params.TxManager,
		paymentRepo: params.PaymentRepo,
		gateway:     params.Gateway,
		publisher:   params.Publisher,
		metrics:     params.Metrics,
		logger:      params.Logger,
		now:         time.Now,
	}
}

func (srv *paymentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// HandleWompiEvent applies a signed transaction update to its order.
func (srv *paymentService) HandleWompiEvent(ctx context.Context, body []byte) (*usecase.PaymentEventOutput, error) {
	// 1. Verify and decode.
	event, err := srv.gateway.ParseEvent(body)
	if err != nil {
		srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultRejected)
		srv.log(ctx).Warn("Rejected payment webhook", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to parse payment event")
	}

	// 2. Only transaction updates with a known status change anything.
	if event.EventType != wompiTransactionUpdated || event.PaymentStatus == "" {
		srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultIgnored)
		srv.log(ctx).Info("Ignoring payment webhook",
			slog.String("event_type", event.EventType),
			slog.String("provider_status", event.Status),
		)

		return &usecase.PaymentEventOutput{Ignored: true}, nil
	}

	orderID, err := uuid.Parse(event.Reference)
	if err != nil {
		srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultRejected)

		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("reference is not an order id"), "invalid payment reference")
	}

	now := srv.now().UTC()
	payment := &entity.Payment{
		ID:                uuid.New(),
		OrderID:           orderID,
		Provider:          constants.PaymentProviderWompi,
		ProviderReference: event.TransactionID,
		AmountInCents:     event.AmountInCents,
		Currency:          event.Currency,
		Status:            event.PaymentStatus,
		ProviderStatus:    event.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 3. Payment record and order status move together. A paid order only
	// leaves that state through its approving transaction.
	var stale, orderKept bool
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "payment references unknown order")
			}

			return errors.Wrap(err, "failed to find order")
		}

		if order.PaymentStatus == entity.PaymentStatusPaid && payment.Status != entity.PaymentStatusPaid {
			approving, err := approvedBy(ctx, repoFactory.PaymentRepo(), orderID, payment.ProviderReference)
			if err != nil {
				return err
			}
			if approving && payment.Status == entity.PaymentStatusPending {
				stale = true

				return nil
			}
			orderKept = !approving
		}

		if err := repoFactory.PaymentRepo().Upsert(ctx, payment); err != nil {
			return errors.Wrap(err, "failed to upsert payment")
		}
		if orderKept {
			return nil
		}

		if err := orderRepo.UpdatePaymentStatus(ctx, orderID, payment.Status); err != nil {
			return errors.Wrap(err, "failed to update order payment status")
		}

		return nil
	})
	if err != nil {
		srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultFailed)
		srv.log(ctx).Error("Failed to execute payment event transaction",
			slog.Any("order_id", orderID),
			slog.String("transaction_id", event.TransactionID),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to execute payment event transaction")
	}

	if stale {
		srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultIgnored)
		srv.log(ctx).Info("Ignoring stale payment webhook",
			slog.Any("order_id", orderID),
			slog.String("transaction_id", event.TransactionID),
			slog.String("provider_status", event.Status),
		)

		return &usecase.PaymentEventOutput{Ignored: true}, nil
	}

	srv.metrics.WebhookEvent(webhookSourceWompi, webhookResultProcessed)
	if orderKept {
		srv.log(ctx).Warn("Payment recorded on an order that is already paid",
			slog.Any("order_id", orderID),
			slog.String("transaction_id", event.TransactionID),
			slog.String("status", string(payment.Status)),
		)

		return &usecase.PaymentEventOutput{OrderKept: true, Payment: payment}, nil
	}

	srv.log(ctx).Info("Payment status applied",
		slog.Any("order_id", orderID),
		slog.String("transaction_id", event.TransactionID),
		slog.String("status", string(payment.Status)),
	)

	publishBestEffort(ctx, srv.publisher, srv.log(ctx), constants.EventPaymentStatusChanged, map[string]any{
		"order_id":        orderID,
		"payment_id":      payment.ID,
		"payment_status":  payment.Status,
		"provider_status": payment.ProviderStatus,
		"amount_in_cents": payment.AmountInCents,
		"source":          webhookSourceWompi,
	})

	return &usecase.PaymentEventOutput{Payment: payment}, nil
}

// approvedBy reports whether transactionID is the provider transaction that paid the order.
func approvedBy(ctx context.Context, payments repository.PaymentRepository, orderID uuid.UUID, transactionID string) (bool, error) {
	existing, err := payments.List(ctx, &orderID)
	if err != nil {
		return false, errors.Wrap(err, "failed to list order payments")
	}

	for _, payment := range existing {
		if payment.Status == entity.PaymentStatusPaid && payment.ProviderReference == transactionID {
			return true, nil
		}
	}

	return false, nil
}

// GetPayment returns one payment.
func (srv *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := srv.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPaymentNotFound, "payment lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find payment")
	}

	return payment, nil
}

// ListPayments returns payments newest first, optionally for one order.
func (srv *paymentService) ListPayments(ctx context.Context, orderID *uuid.UUID) ([]*entity.Payment, error) {
	payments, err := srv.paymentRepo.List(ctx, orderID)
	if err != nil {
		srv.log(ctx).Error("Failed to list payments", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list payments")
	}

	return payments, nil
}
