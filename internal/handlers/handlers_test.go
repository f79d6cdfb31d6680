package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/syedwasif978-cmd/stock-trading-app/configs"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/handlers"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/ledger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/logger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/routes"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/store"
)

type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router http.Handler
	trader models.User
	admin  models.User
	stock  models.Stock
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	logger.InitNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Stock{},
		&models.Holding{},
		&models.Transaction{},
		&models.ActivityLog{},
		&models.TradeCancellation{},
		&models.StockSuspension{},
	))

	s.db = db
	store.DB = db
	configs.AppConfig.JWT.SECRET = "handlers-test-secret"

	handlers.Init(ledger.New(db, time.Second))
	s.router = routes.NewRoutes()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.trader = models.User{
		Username: "trader",
		Password: string(hash),
		Balance:  decimal.RequireFromString("1000.00"),
		Role:     models.RoleUser,
		Active:   true,
	}
	s.Require().NoError(db.Create(&s.trader).Error)

	s.admin = models.User{
		Username: "boss",
		Password: string(hash),
		Balance:  decimal.Zero,
		Role:     models.RoleAdmin,
		Active:   true,
	}
	s.Require().NoError(db.Create(&s.admin).Error)

	s.stock = models.Stock{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("50.00")}
	s.Require().NoError(db.Create(&s.stock).Error)
}

func (s *HandlersTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) login(username string) string {
	rec := s.do(http.MethodPost, "/auth/login", "", handlers.LoginRequest{Username: username, Password: "hunter2"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *HandlersTestSuite) TestLoginAndBuy() {
	token := s.login("trader")

	rec := s.do(http.MethodPost, "/transactions/buy", token, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 10})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.OrderResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("COMPLETED", resp.Status)
	s.Equal("500.00", resp.Total)

	var user models.User
	s.Require().NoError(s.db.First(&user, s.trader.ID).Error)
	s.True(user.Balance.Equal(decimal.RequireFromString("500.00")), "balance %s", user.Balance)
}

func (s *HandlersTestSuite) TestLoginRejectsBadPassword() {
	rec := s.do(http.MethodPost, "/auth/login", "", handlers.LoginRequest{Username: "trader", Password: "wrong"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersTestSuite) TestBuyRequiresToken() {
	rec := s.do(http.MethodPost, "/transactions/buy", "", handlers.OrderRequest{StockID: s.stock.ID, Quantity: 1})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersTestSuite) TestBuyInsufficientFundsIsBadRequest() {
	token := s.login("trader")

	rec := s.do(http.MethodPost, "/transactions/buy", token, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 1000})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersTestSuite) TestSellRoundTrip() {
	token := s.login("trader")

	rec := s.do(http.MethodPost, "/transactions/buy", token, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 10})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/transactions/sell", token, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 4})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.OrderResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("200.00", resp.Total)
}

func (s *HandlersTestSuite) TestAdminRouteForbiddenForTrader() {
	token := s.login("trader")

	rec := s.do(http.MethodGet, "/admin/transactions", token, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlersTestSuite) TestAdminRollbackEndToEnd() {
	traderToken := s.login("trader")
	adminToken := s.login("boss")

	rec := s.do(http.MethodPost, "/transactions/buy", traderToken, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 10})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/transactions/sell", traderToken, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 5})
	s.Require().Equal(http.StatusOK, rec.Code)

	var sellResp handlers.OrderResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &sellResp))

	path := "/admin/transactions/rollback/" + itoa(sellResp.TransactionID)
	rec = s.do(http.MethodPost, path, adminToken, handlers.RollbackRequest{Reason: "manual review"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var txn models.Transaction
	s.Require().NoError(s.db.First(&txn, sellResp.TransactionID).Error)
	s.Equal(models.StatusRolledBack, txn.Status)
}

func (s *HandlersTestSuite) TestDashboardSummary() {
	token := s.login("trader")

	rec := s.do(http.MethodPost, "/transactions/buy", token, handlers.OrderRequest{StockID: s.stock.ID, Quantity: 10})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/dashboard/summary", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var summary ledger.DashboardSummary
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &summary))
	s.True(summary.PortfolioValue.Equal(decimal.RequireFromString("500.00")), "portfolio %s", summary.PortfolioValue)
	s.Equal(int64(1), summary.TotalTransactions)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
