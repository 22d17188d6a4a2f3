package postgres

import (
	"context"

	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the domain.PaymentRepository interface.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository is the constructor for paymentRepository.
func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// Upsert inserts the payment or refreshes the row of the same provider transaction.
// Providers retry webhooks, so the same event may arrive more than once.
func (repo *paymentRepository) Upsert(ctx context.Context, payment *entity.Payment) error {
	paymentM := fromPaymentDomain(payment)

	err := repo.db.WithContext(ctx).
		Omit("Order").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider"}, {Name: "provider_reference"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"provider_status",
				"amount_in_cents",
				"currency",
				"updated_at",
			}),
		}).
		Create(paymentM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrOrderNotFound.WrapMessage("invalid order reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert payment")
	}

	payment.ID = paymentM.ID
	payment.CreatedAt = paymentM.CreatedAt
	payment.UpdatedAt = paymentM.UpdatedAt

	return nil
}

// FindByID retrieves a payment by its unique ID.
func (repo *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var paymentM model.PaymentModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&paymentM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPaymentNotFound
		}

		return nil, errors.Wrap(err, "failed to find payment by id")
	}

	return toPaymentDomain(&paymentM), nil
}

// List returns payments newest first, optionally for a single order.
func (repo *paymentRepository) List(ctx context.Context, orderID *uuid.UUID) ([]*entity.Payment, error) {
	query := repo.db.WithContext(ctx).Model(&model.PaymentModel{})
	if orderID != nil {
		query = query.Where("order_id = ?", *orderID)
	}

	var paymentModels []*model.PaymentModel
	if err := query.Order("created_at DESC").Find(&paymentModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list payments")
	}

	payments := make([]*entity.Payment, 0, len(paymentModels))
	for _, paymentM := range paymentModels {
		payments = append(payments, toPaymentDomain(paymentM))
	}

	return payments, nil
}

// --- Mapper Functions ---

func toPaymentDomain(data *model.PaymentModel) *entity.Payment {
	if data == nil {
		return nil
	}

	return &entity.Payment{
		ID:                data.ID,
		OrderID:           data.OrderID,
		Provider:          data.Provider,
		ProviderReference: data.ProviderReference,
		AmountInCents:     data.AmountInCents,
		Currency:          data.Currency,
		Status:            entity.PaymentStatus(data.Status),
		ProviderStatus:    data.ProviderStatus,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

func fromPaymentDomain(data *entity.Payment) *model.PaymentModel {
	if data == nil {
		return nil
	}

	return &model.PaymentModel{
		ID:                data.ID,
		OrderID:           data.OrderID,
		Provider:          data.Provider,
		ProviderReference: data.ProviderReference,
		AmountInCents:     data.AmountInCents,
		Currency:          data.Currency,
		Status:            string(data.Status),
		ProviderStatus:    data.ProviderStatus,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}
