package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// RollbackService reverses a completed sell: the user's shares come back at
// the cost basis recorded on the original transaction and the sale proceeds
// are reclaimed from the balance. The whole reversal is one atomic attempt;
// if the user no longer has the proceeds, nothing changes and the original
// transaction stays COMPLETED.
type RollbackService struct {
	db        *gorm.DB
	locks     *LockTable
	accounts  AccountLedger
	portfolio PortfolioBook
	translog  TransactionLog
	activity  ActivityAuditLog
}

func NewRollbackService(db *gorm.DB, locks *LockTable) *RollbackService {
	return &RollbackService{db: db, locks: locks}
}

// Rollback reverses the completed SELL identified by transactionID on behalf
// of adminID. Only type=SELL, status=COMPLETED transactions qualify; anything
// else fails with ErrRollbackNotAllowed, which also makes a second rollback
// of the same transaction fail.
func (r *RollbackService) Rollback(ctx context.Context, transactionID, adminID uint, reason string) (*models.Transaction, error) {
	db := r.db.WithContext(ctx)

	txn, err := r.translog.Get(db, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Type != models.TransactionSell || txn.Status != models.StatusCompleted {
		return nil, ErrRollbackNotAllowed
	}

	// Same lock as ordinary orders, so a rollback never interleaves with a
	// concurrent buy or sell on the account.
	unlock, err := r.locks.Acquire(ctx, accountKey(txn.UserID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock; the status may have moved before we got it.
		txn, err = r.translog.Get(tx, transactionID)
		if err != nil {
			return err
		}
		if txn.Type != models.TransactionSell || txn.Status != models.StatusCompleted {
			return ErrRollbackNotAllowed
		}

		if _, err := r.accounts.Debit(tx, txn.UserID, txn.Total); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return ErrRollbackInsufficientFunds
			}
			return err
		}
		if _, err := r.portfolio.RestoreSell(tx, txn.UserID, txn.StockID, txn.Quantity, txn.AveragePrice); err != nil {
			return err
		}
		if err := r.translog.Transition(tx, txn, models.StatusRolledBack); err != nil {
			return err
		}

		cancellation := models.TradeCancellation{
			TransactionID:    txn.ID,
			UserID:           txn.UserID,
			AdminID:          adminID,
			Reason:           reason,
			RollbackExecuted: true,
			CancelledAt:      time.Now(),
		}
		if err := tx.Create(&cancellation).Error; err != nil {
			return fmt.Errorf("%w: recording cancellation: %v", ErrServiceUnavailable, err)
		}

		details := fmt.Sprintf("Rolled back transaction #%d, reclaimed %s. Reason: %s",
			txn.ID, txn.Total.StringFixed(2), reason)
		return r.activity.Append(tx, adminID, ActionRollback, details)
	})
	if txErr != nil {
		return nil, txErr
	}
	return txn, nil
}

// Cancellations lists rollback records, most recent first.
func (r *RollbackService) Cancellations(ctx context.Context) ([]models.TradeCancellation, error) {
	var cancellations []models.TradeCancellation
	err := r.db.WithContext(ctx).Order("cancelled_at DESC, id DESC").Find(&cancellations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading cancellations: %v", ErrServiceUnavailable, err)
	}
	return cancellations, nil
}
