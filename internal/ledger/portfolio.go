package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// PortfolioBook owns per-(user, stock) holdings: share quantity and the
// quantity-weighted average purchase price.
type PortfolioBook struct{}

func (PortfolioBook) find(tx *gorm.DB, userID, stockID uint) (*models.Holding, error) {
	var holding models.Holding
	err := tx.Where("user_id = ? AND stock_id = ?", userID, stockID).First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: loading holding (%d,%d): %v", ErrServiceUnavailable, userID, stockID, err)
	}
	return &holding, nil
}

// Get returns the holding for (userID, stockID), or nil when the user holds
// no shares of that stock.
func (p PortfolioBook) Get(tx *gorm.DB, userID, stockID uint) (*models.Holding, error) {
	holding, err := p.find(tx, userID, stockID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return holding, err
}

// Holdings returns every open position for the user.
func (PortfolioBook) Holdings(tx *gorm.DB, userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := tx.Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("%w: loading holdings for user %d: %v", ErrServiceUnavailable, userID, err)
	}
	return holdings, nil
}

// ApplyBuy adds qty shares bought at price. A first buy creates the holding
// with averagePrice = price; later buys recompute the weighted average:
// (oldQty*oldAvg + qty*price) / (oldQty + qty).
func (p PortfolioBook) ApplyBuy(tx *gorm.DB, userID, stockID uint, qty int64, price decimal.Decimal) (*models.Holding, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	holding, err := p.find(tx, userID, stockID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		holding = &models.Holding{
			UserID:       userID,
			StockID:      stockID,
			Quantity:     qty,
			AveragePrice: price,
		}
		if err := tx.Create(holding).Error; err != nil {
			return nil, fmt.Errorf("%w: creating holding (%d,%d): %v", ErrServiceUnavailable, userID, stockID, err)
		}
		return holding, nil
	}
	if err != nil {
		return nil, err
	}

	holding.AveragePrice = weightedAverage(holding.Quantity, holding.AveragePrice, qty, price)
	holding.Quantity += qty
	updates := map[string]any{"quantity": holding.Quantity, "average_price": holding.AveragePrice}
	if err := tx.Model(holding).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: updating holding (%d,%d): %v", ErrServiceUnavailable, userID, stockID, err)
	}
	return holding, nil
}

// ApplySell removes qty shares. The average price is unchanged by a sell;
// when the quantity reaches zero the holding row is deleted so the stored
// average does not leak into a future position. Returns the holding's
// average price at the time of the sale.
func (p PortfolioBook) ApplySell(tx *gorm.DB, userID, stockID uint, qty int64) (decimal.Decimal, error) {
	if qty <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	holding, err := p.find(tx, userID, stockID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, ErrInsufficientHoldings
	}
	if err != nil {
		return decimal.Zero, err
	}
	if holding.Quantity < qty {
		return decimal.Zero, ErrInsufficientHoldings
	}

	avg := holding.AveragePrice
	holding.Quantity -= qty
	if holding.Quantity == 0 {
		if err := tx.Unscoped().Delete(holding).Error; err != nil {
			return decimal.Zero, fmt.Errorf("%w: deleting holding (%d,%d): %v", ErrServiceUnavailable, userID, stockID, err)
		}
		return avg, nil
	}
	if err := tx.Model(holding).Update("quantity", holding.Quantity).Error; err != nil {
		return decimal.Zero, fmt.Errorf("%w: updating holding (%d,%d): %v", ErrServiceUnavailable, userID, stockID, err)
	}
	return avg, nil
}

// RestoreSell puts qty shares back after a rollback. A fully liquidated
// holding is recreated at priorAvg, the average recorded on the original
// sell transaction; an existing holding absorbs the restored shares at
// priorAvg through the usual weighted average, which keeps the cost basis
// consistent with buys made since the sale.
func (p PortfolioBook) RestoreSell(tx *gorm.DB, userID, stockID uint, qty int64, priorAvg decimal.Decimal) (*models.Holding, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	return p.ApplyBuy(tx, userID, stockID, qty, priorAvg)
}

// ProfitLoss is (currentPrice - averagePrice) * quantity. Pure computation.
func (PortfolioBook) ProfitLoss(holding *models.Holding, currentPrice decimal.Decimal) decimal.Decimal {
	return currentPrice.Sub(holding.AveragePrice).Mul(decimal.NewFromInt(holding.Quantity))
}

func weightedAverage(oldQty int64, oldAvg decimal.Decimal, qty int64, price decimal.Decimal) decimal.Decimal {
	oldValue := oldAvg.Mul(decimal.NewFromInt(oldQty))
	newValue := price.Mul(decimal.NewFromInt(qty))
	return oldValue.Add(newValue).Div(decimal.NewFromInt(oldQty + qty)).Round(4)
}
