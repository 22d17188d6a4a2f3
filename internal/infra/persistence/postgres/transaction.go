package postgres

import (
	"context"

	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"

	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager returns a TransactionManager whose units of work run
// on the primary inside a single GORM transaction.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// txRepositories hands out repositories bound to one open transaction.
type txRepositories struct {
	tx *gorm.DB
}

func (f *txRepositories) UserRepo() repository.UserRepository       { return NewUserRepository(f.tx) }
func (f *txRepositories) SessionRepo() repository.SessionRepository { return NewSessionRepository(f.tx) }
func (f *txRepositories) ProductRepo() repository.ProductRepository { return NewProductRepository(f.tx) }
func (f *txRepositories) OrderRepo() repository.OrderRepository     { return NewOrderRepository(f.tx) }
func (f *txRepositories) PaymentRepo() repository.PaymentRepository { return NewPaymentRepository(f.tx) }

// Execute commits when fn returns nil and rolls back otherwise. Errors from fn
// are returned as-is so callers can still match domain errors. Failing to open
// or commit the transaction surfaces as ErrTransactionFailed.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrapf(domainerrors.ErrTransactionFailed, "begin: %v", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&txRepositories{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrapf(domainerrors.ErrTransactionFailed, "commit: %v", err)
	}

	return nil
}
