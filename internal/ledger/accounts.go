package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// AccountLedger owns user balances. Debit and Credit must run while the
// caller holds the account's lock and inside the caller's database
// transaction, which together make balance mutations linearizable per
// account.
type AccountLedger struct{}

func (AccountLedger) Get(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: loading user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return &user, nil
}

// Debit subtracts amount from the user's balance. Fails with
// ErrInsufficientFunds when amount exceeds the balance; the balance never
// goes negative. Returns the new balance.
func (l AccountLedger) Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	user, err := l.Get(tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if user.Balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}
	newBalance := user.Balance.Sub(amount)
	if err := tx.Model(user).Update("balance", newBalance).Error; err != nil {
		return decimal.Zero, fmt.Errorf("%w: debiting user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return newBalance, nil
}

// Credit adds amount to the user's balance and returns the new balance.
func (l AccountLedger) Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	user, err := l.Get(tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	newBalance := user.Balance.Add(amount)
	if err := tx.Model(user).Update("balance", newBalance).Error; err != nil {
		return decimal.Zero, fmt.Errorf("%w: crediting user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return newBalance, nil
}
