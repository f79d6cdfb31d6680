package seed

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/logger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/store"
)

const (
	seedPassword   = "password123"
	adminUsername  = "admin"
	initialBalance = "10000.00"
)

var testUsers = []string{"trader1", "trader2", "trader3"}

var starterStocks = []struct {
	Symbol string
	Name   string
	Price  string
}{
	{"AAPL", "Apple Inc.", "185.00"},
	{"GOOGL", "Alphabet Inc.", "140.50"},
	{"MSFT", "Microsoft Corporation", "410.25"},
	{"AMZN", "Amazon.com Inc.", "175.80"},
	{"TSLA", "Tesla Inc.", "248.00"},
}

func Run() {
	db := store.DB
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", adminUsername).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("failed to hash seed password", zap.Error(err))
	}
	hashed := string(hash)

	err = db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Username: adminUsername,
			Password: hashed,
			Balance:  decimal.Zero,
			Role:     models.RoleAdmin,
			Active:   true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		balance := decimal.RequireFromString(initialBalance)
		for _, username := range testUsers {
			user := models.User{
				Username: username,
				Password: hashed,
				Balance:  balance,
				Role:     models.RoleUser,
				Active:   true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		}

		for _, s := range starterStocks {
			stock := models.Stock{
				Symbol: s.Symbol,
				Name:   s.Name,
				Price:  decimal.RequireFromString(s.Price),
			}
			if err := tx.Create(&stock).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded admin, 3 test users and starter stocks", zap.String("password", seedPassword))
}
