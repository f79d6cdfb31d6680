package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/logger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// OrderExecutor runs buy and sell orders. Each order takes the account lock,
// captures a single price quote, and applies balance, holding, transaction
// record and activity entry inside one database transaction. A rejected
// order still leaves a FAILED transaction behind, so the audit trail covers
// every attempt.
type OrderExecutor struct {
	db        *gorm.DB
	locks     *LockTable
	accounts  AccountLedger
	portfolio PortfolioBook
	catalog   StockCatalog
	translog  TransactionLog
	activity  ActivityAuditLog
}

func NewOrderExecutor(db *gorm.DB, locks *LockTable) *OrderExecutor {
	return &OrderExecutor{db: db, locks: locks}
}

// Buy purchases qty shares of stockID for userID at the current quote.
// The quote is read once before any mutation and a concurrent admin price
// change does not affect an order already in flight.
func (e *OrderExecutor) Buy(ctx context.Context, userID, stockID uint, qty int64) (*models.Transaction, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	unlock, err := e.locks.Acquire(ctx, accountKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	quote, err := e.catalog.GetQuote(e.db.WithContext(ctx), stockID)
	if err != nil {
		if errors.Is(err, ErrStockNotFound) {
			return e.recordFailed(ctx, userID, stockID, models.TransactionBuy, qty, decimal.Zero, err)
		}
		return nil, err
	}
	if quote.Suspended {
		return e.recordFailed(ctx, userID, stockID, models.TransactionBuy, qty, quote.Price, ErrStockSuspended)
	}

	total := quote.Price.Mul(decimal.NewFromInt(qty))

	var txn *models.Transaction
	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := e.accounts.Debit(tx, userID, total); err != nil {
			return err
		}
		holding, err := e.portfolio.ApplyBuy(tx, userID, stockID, qty, quote.Price)
		if err != nil {
			return err
		}
		txn = &models.Transaction{
			UserID:       userID,
			StockID:      stockID,
			Type:         models.TransactionBuy,
			Quantity:     qty,
			Price:        quote.Price,
			Total:        total,
			AveragePrice: holding.AveragePrice,
			Status:       models.StatusCompleted,
		}
		if err := e.translog.Record(tx, txn); err != nil {
			return err
		}
		details := fmt.Sprintf("Bought %d shares of %s at %s", qty, quote.Symbol, quote.Price.StringFixed(2))
		return e.activity.Append(tx, userID, ActionBuy, details)
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInsufficientFunds) {
			return e.recordFailed(ctx, userID, stockID, models.TransactionBuy, qty, quote.Price, ErrInsufficientFunds)
		}
		return nil, txErr
	}
	return txn, nil
}

// Sell disposes qty shares of stockID held by userID at the current quote.
// A suspended stock rejects sells the same way it rejects buys.
func (e *OrderExecutor) Sell(ctx context.Context, userID, stockID uint, qty int64) (*models.Transaction, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	unlock, err := e.locks.Acquire(ctx, accountKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	quote, err := e.catalog.GetQuote(e.db.WithContext(ctx), stockID)
	if err != nil {
		if errors.Is(err, ErrStockNotFound) {
			return e.recordFailed(ctx, userID, stockID, models.TransactionSell, qty, decimal.Zero, err)
		}
		return nil, err
	}
	if quote.Suspended {
		return e.recordFailed(ctx, userID, stockID, models.TransactionSell, qty, quote.Price, ErrStockSuspended)
	}

	total := quote.Price.Mul(decimal.NewFromInt(qty))

	var txn *models.Transaction
	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		avg, err := e.portfolio.ApplySell(tx, userID, stockID, qty)
		if err != nil {
			return err
		}
		if _, err := e.accounts.Credit(tx, userID, total); err != nil {
			return err
		}
		txn = &models.Transaction{
			UserID:       userID,
			StockID:      stockID,
			Type:         models.TransactionSell,
			Quantity:     qty,
			Price:        quote.Price,
			Total:        total,
			AveragePrice: avg,
			Status:       models.StatusCompleted,
		}
		if err := e.translog.Record(tx, txn); err != nil {
			return err
		}
		details := fmt.Sprintf("Sold %d shares of %s at %s", qty, quote.Symbol, quote.Price.StringFixed(2))
		return e.activity.Append(tx, userID, ActionSell, details)
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInsufficientHoldings) {
			return e.recordFailed(ctx, userID, stockID, models.TransactionSell, qty, quote.Price, ErrInsufficientHoldings)
		}
		return nil, txErr
	}
	return txn, nil
}

// recordFailed persists the FAILED transaction for a rejected attempt outside
// the (already rolled back) order transaction and returns the business error
// that caused the rejection.
func (e *OrderExecutor) recordFailed(
	ctx context.Context,
	userID, stockID uint,
	typ models.TransactionType,
	qty int64,
	price decimal.Decimal,
	cause error,
) (*models.Transaction, error) {
	txn := &models.Transaction{
		UserID:       userID,
		StockID:      stockID,
		Type:         typ,
		Quantity:     qty,
		Price:        price,
		Total:        price.Mul(decimal.NewFromInt(qty)),
		AveragePrice: decimal.Zero,
		Status:       models.StatusFailed,
	}
	if err := e.translog.Record(e.db.WithContext(ctx), txn); err != nil {
		logger.Log.Warn("failed to record rejected order",
			zap.Uint("userID", userID),
			zap.Uint("stockID", stockID),
			zap.Error(err))
		return nil, cause
	}
	return txn, cause
}
