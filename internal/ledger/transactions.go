package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// TransactionLog is the append-only record of order attempts. Rows are never
// deleted; the only permitted mutation is a forward status transition.
type TransactionLog struct{}

func (TransactionLog) Get(tx *gorm.DB, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := tx.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: loading transaction %d: %v", ErrServiceUnavailable, id, err)
	}
	return &txn, nil
}

// Record appends one transaction row. Every order attempt produces exactly
// one record, whether it completed or failed.
func (TransactionLog) Record(tx *gorm.DB, txn *models.Transaction) error {
	if err := tx.Create(txn).Error; err != nil {
		return fmt.Errorf("%w: recording transaction: %v", ErrServiceUnavailable, err)
	}
	return nil
}

// Transition moves txn to a new status, enforcing the one-directional graph:
// PENDING may become COMPLETED or FAILED; a COMPLETED SELL may become
// ROLLED_BACK. Everything else is illegal.
func (TransactionLog) Transition(tx *gorm.DB, txn *models.Transaction, to models.TransactionStatus) error {
	if !transitionAllowed(txn, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalStatusTransition, txn.Status, to)
	}
	if err := tx.Model(txn).Update("status", to).Error; err != nil {
		return fmt.Errorf("%w: transitioning transaction %d: %v", ErrServiceUnavailable, txn.ID, err)
	}
	txn.Status = to
	return nil
}

func transitionAllowed(txn *models.Transaction, to models.TransactionStatus) bool {
	switch txn.Status {
	case models.StatusPending:
		return to == models.StatusCompleted || to == models.StatusFailed
	case models.StatusCompleted:
		return to == models.StatusRolledBack && txn.Type == models.TransactionSell
	default:
		return false
	}
}

func (TransactionLog) ByUser(tx *gorm.DB, userID uint, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	q := tx.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("%w: loading transactions for user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return txns, nil
}

func (TransactionLog) All(tx *gorm.DB) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := tx.Order("created_at DESC, id DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("%w: loading transactions: %v", ErrServiceUnavailable, err)
	}
	return txns, nil
}

func (TransactionLog) CountByUser(tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	if err := tx.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: counting transactions for user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return count, nil
}
