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
)

// orderRepository implements the domain.OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Omit("Product").Create(orderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrProductNotFound.WrapMessage("invalid product reference")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrInvalidQuantity.WrapMessage("order violates check constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

// FindByID retrieves an order by its unique ID.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return toOrderDomain(&orderM), nil
}

// List returns orders newest first.
func (repo *orderRepository) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	query := repo.db.WithContext(ctx).Model(&model.OrderModel{})

	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orderModels []*model.OrderModel
	if err := query.Order("created_at DESC").Find(&orderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		orders = append(orders, toOrderDomain(orderM))
	}

	return orders, nil
}

// UpdatePaymentStatus sets the payment status of an order.
func (repo *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", id).
		Update("payment_status", string(status))
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order payment status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// Delete removes an order together with its payments.
func (repo *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.OrderModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	return &entity.Order{
		ID:            data.ID,
		ClientName:    data.ClientName,
		ClientPhone:   data.ClientPhone,
		ProductID:     data.ProductID,
		Quantity:      data.Quantity,
		UnitPrice:     data.UnitPrice,
		Total:         data.Total,
		PaymentStatus: entity.PaymentStatus(data.PaymentStatus),
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	status := data.PaymentStatus
	if status == "" {
		status = entity.PaymentStatusPending
	}

	return &model.OrderModel{
		ID:            data.ID,
		ClientName:    data.ClientName,
		ClientPhone:   data.ClientPhone,
		ProductID:     data.ProductID,
		Quantity:      data.Quantity,
		UnitPrice:     data.UnitPrice,
		Total:         data.Total,
		PaymentStatus: string(status),
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
