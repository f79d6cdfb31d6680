package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	gorm.Model
	Username string          `gorm:"uniqueIndex;size:50;not null"`
	Password string          `gorm:"size:255"`
	Balance  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Role     UserRole        `gorm:"size:10;not null;default:USER"`
	Active   bool            `gorm:"not null;default:true"`
}

type Stock struct {
	gorm.Model
	Symbol        string          `gorm:"uniqueIndex;size:10;not null"`
	Name          string          `gorm:"size:100;not null"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ChangePercent float64         `gorm:"not null;default:0"`
	Suspended     bool            `gorm:"not null;default:false"`
}

// Holding is a user's position in one stock. AveragePrice is the
// quantity-weighted purchase price; sells leave it unchanged. The row is
// deleted when quantity reaches zero, so a later buy starts a fresh average.
type Holding struct {
	gorm.Model
	UserID       uint            `gorm:"uniqueIndex:idx_holdings_user_stock;not null"`
	StockID      uint            `gorm:"uniqueIndex:idx_holdings_user_stock;not null"`
	Quantity     int64           `gorm:"not null"`
	AveragePrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusRolledBack TransactionStatus = "ROLLED_BACK"
)

// Transaction is one order attempt, success or failure. Price is the quote
// taken at execution time; AveragePrice is the holding's average cost at that
// moment, kept so a rollback can restore a fully liquidated position without
// recomputing the cost basis.
type Transaction struct {
	gorm.Model
	UserID       uint              `gorm:"index;not null"`
	StockID      uint              `gorm:"index;not null"`
	Type         TransactionType   `gorm:"size:4;not null"`
	Quantity     int64             `gorm:"not null"`
	Price        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Total        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	AveragePrice decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Status       TransactionStatus `gorm:"size:12;index;not null"`
}

// ActivityLog rows are append-only and never updated or deleted by the
// application, hence no gorm.Model.
type ActivityLog struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index"`
	ActionType string `gorm:"size:32;index;not null"`
	Details    string `gorm:"size:500"`
	LoggedAt   time.Time
}

// TradeCancellation records an administrative rollback of a completed sell.
type TradeCancellation struct {
	ID               uint   `gorm:"primarykey"`
	TransactionID    uint   `gorm:"index;not null"`
	UserID           uint   `gorm:"index;not null"`
	AdminID          uint   `gorm:"not null"`
	Reason           string `gorm:"size:255"`
	RollbackExecuted bool   `gorm:"not null"`
	CancelledAt      time.Time
}

// StockSuspension is the history of suspend/resume actions on a stock.
type StockSuspension struct {
	ID        uint   `gorm:"primarykey"`
	StockID   uint   `gorm:"index;not null"`
	AdminID   uint   `gorm:"not null"`
	Suspended bool   `gorm:"not null"`
	Reason    string `gorm:"size:255"`
	ChangedAt time.Time
}
