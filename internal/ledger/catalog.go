package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// StockCatalog owns per-stock price, change percent and the suspension flag.
// Prices are only ever changed through SetPrice; order execution reads a
// snapshot quote and never writes back.
type StockCatalog struct{}

// Quote is a snapshot of a stock at one point in time. It is not locked
// against later admin changes; an order captures its quote once and uses it
// for the whole operation.
type Quote struct {
	StockID   uint
	Symbol    string
	Price     decimal.Decimal
	Suspended bool
}

func (StockCatalog) Get(tx *gorm.DB, stockID uint) (*models.Stock, error) {
	var stock models.Stock
	if err := tx.First(&stock, stockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStockNotFound
		}
		return nil, fmt.Errorf("%w: loading stock %d: %v", ErrServiceUnavailable, stockID, err)
	}
	return &stock, nil
}

func (c StockCatalog) GetQuote(tx *gorm.DB, stockID uint) (*Quote, error) {
	stock, err := c.Get(tx, stockID)
	if err != nil {
		return nil, err
	}
	return &Quote{
		StockID:   stock.ID,
		Symbol:    stock.Symbol,
		Price:     stock.Price,
		Suspended: stock.Suspended,
	}, nil
}

// SetPrice replaces the stock's price and recomputes the change percent
// relative to the previous price. Allowed even while the stock is suspended.
func (c StockCatalog) SetPrice(tx *gorm.DB, stockID uint, newPrice decimal.Decimal) (*models.Stock, error) {
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	stock, err := c.Get(tx, stockID)
	if err != nil {
		return nil, err
	}

	changePercent := 0.0
	if stock.Price.GreaterThan(decimal.Zero) {
		changePercent = newPrice.Sub(stock.Price).
			Div(stock.Price).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}

	stock.Price = newPrice
	stock.ChangePercent = changePercent
	updates := map[string]any{"price": newPrice, "change_percent": changePercent}
	if err := tx.Model(stock).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: updating stock %d price: %v", ErrServiceUnavailable, stockID, err)
	}
	return stock, nil
}

// SetSuspension toggles the suspension flag without touching the price.
func (c StockCatalog) SetSuspension(tx *gorm.DB, stockID uint, suspended bool) (*models.Stock, error) {
	stock, err := c.Get(tx, stockID)
	if err != nil {
		return nil, err
	}
	stock.Suspended = suspended
	if err := tx.Model(stock).Update("suspended", suspended).Error; err != nil {
		return nil, fmt.Errorf("%w: updating stock %d suspension: %v", ErrServiceUnavailable, stockID, err)
	}
	return stock, nil
}
