package ledger

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/logger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Stock{},
		&models.Holding{},
		&models.Transaction{},
		&models.ActivityLog{},
		&models.TradeCancellation{},
		&models.StockSuspension{},
	)
	if err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// ledgerSuite is the shared fixture: a fresh in-memory database and core per
// test, plus helpers to create rows and compare decimals.
type ledgerSuite struct {
	suite.Suite
	db   *gorm.DB
	core *Ledger
}

func (s *ledgerSuite) SetupTest() {
	logger.InitNop()
	s.db = openTestDB(s.T())
	s.core = New(s.db, time.Second)
}

var userSeq atomic.Int64

func (s *ledgerSuite) user(balance string) *models.User {
	user := &models.User{
		Username: fmt.Sprintf("trader%d", userSeq.Add(1)),
		Balance:  decimal.RequireFromString(balance),
		Role:     models.RoleUser,
		Active:   true,
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *ledgerSuite) admin() *models.User {
	user := &models.User{
		Username: fmt.Sprintf("admin%d", userSeq.Add(1)),
		Balance:  decimal.Zero,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *ledgerSuite) stock(symbol, price string) *models.Stock {
	stock := &models.Stock{
		Symbol: symbol,
		Name:   symbol + " Corp.",
		Price:  decimal.RequireFromString(price),
	}
	s.Require().NoError(s.db.Create(stock).Error)
	return stock
}

func (s *ledgerSuite) balanceOf(userID uint) decimal.Decimal {
	var user models.User
	s.Require().NoError(s.db.First(&user, userID).Error)
	return user.Balance
}

func (s *ledgerSuite) holdingOf(userID, stockID uint) *models.Holding {
	var holding models.Holding
	err := s.db.Where("user_id = ? AND stock_id = ?", userID, stockID).First(&holding).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	s.Require().NoError(err)
	return &holding
}

func (s *ledgerSuite) assertDecimal(expected string, actual decimal.Decimal) {
	s.T().Helper()
	s.True(decimal.RequireFromString(expected).Equal(actual),
		"expected %s, got %s", expected, actual)
}

func (s *ledgerSuite) lastActivity() *models.ActivityLog {
	var entry models.ActivityLog
	s.Require().NoError(s.db.Order("id DESC").First(&entry).Error)
	return &entry
}
