package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

const recentTransactionLimit = 10

// Queries serves the read-only projections consumed by the presentation
// layer. Nothing here mutates state.
type Queries struct {
	db        *gorm.DB
	accounts  AccountLedger
	portfolio PortfolioBook
	catalog   StockCatalog
	translog  TransactionLog
	activity  ActivityAuditLog
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

type HoldingView struct {
	StockID      uint            `json:"stockId"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	TotalValue   decimal.Decimal `json:"totalValue"`
	ProfitLoss   decimal.Decimal `json:"profitLoss"`
}

type DashboardSummary struct {
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	PortfolioValue    decimal.Decimal `json:"portfolioValue"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	TotalTransactions int64           `json:"totalTransactions"`
	Portfolio         []HoldingView   `json:"portfolio"`
}

type TransactionView struct {
	ID        uint                     `json:"id"`
	UserID    uint                     `json:"userId"`
	Username  string                   `json:"username,omitempty"`
	StockID   uint                     `json:"stockId"`
	Symbol    string                   `json:"stockSymbol"`
	Type      models.TransactionType   `json:"type"`
	Quantity  int64                    `json:"quantity"`
	Price     decimal.Decimal          `json:"price"`
	Total     decimal.Decimal          `json:"total"`
	Status    models.TransactionStatus `json:"status"`
	CreatedAt time.Time                `json:"createdAt"`
}

type ActivityView struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	Username   string    `json:"username"`
	ActionType string    `json:"actionType"`
	Details    string    `json:"details"`
	LoggedAt   time.Time `json:"loggedAt"`
}

// DashboardSummary aggregates the user's balance, open positions and their
// profit/loss against current catalog prices.
func (q *Queries) DashboardSummary(ctx context.Context, userID uint) (*DashboardSummary, error) {
	db := q.db.WithContext(ctx)

	user, err := q.accounts.Get(db, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := q.portfolio.Holdings(db, userID)
	if err != nil {
		return nil, err
	}
	count, err := q.translog.CountByUser(db, userID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalBalance:      user.Balance,
		PortfolioValue:    decimal.Zero,
		ProfitLoss:        decimal.Zero,
		TotalTransactions: count,
		Portfolio:         make([]HoldingView, 0, len(holdings)),
	}
	for i := range holdings {
		h := &holdings[i]
		stock, err := q.catalog.Get(db, h.StockID)
		if err != nil {
			return nil, err
		}
		value := stock.Price.Mul(decimal.NewFromInt(h.Quantity))
		pl := q.portfolio.ProfitLoss(h, stock.Price)
		summary.PortfolioValue = summary.PortfolioValue.Add(value)
		summary.ProfitLoss = summary.ProfitLoss.Add(pl)
		summary.Portfolio = append(summary.Portfolio, HoldingView{
			StockID:      h.StockID,
			Symbol:       stock.Symbol,
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			CurrentPrice: stock.Price,
			TotalValue:   value,
			ProfitLoss:   pl,
		})
	}
	return summary, nil
}

// RecentTransactions returns the user's latest attempts, newest first.
func (q *Queries) RecentTransactions(ctx context.Context, userID uint) ([]TransactionView, error) {
	txns, err := q.translog.ByUser(q.db.WithContext(ctx), userID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	return q.transactionViews(ctx, txns, false)
}

// UserTransactions returns the user's full transaction history.
func (q *Queries) UserTransactions(ctx context.Context, userID uint) ([]TransactionView, error) {
	txns, err := q.translog.ByUser(q.db.WithContext(ctx), userID, 0)
	if err != nil {
		return nil, err
	}
	return q.transactionViews(ctx, txns, false)
}

// AllTransactions is the administrative view over every user's history.
func (q *Queries) AllTransactions(ctx context.Context) ([]TransactionView, error) {
	txns, err := q.translog.All(q.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return q.transactionViews(ctx, txns, true)
}

func (q *Queries) transactionViews(ctx context.Context, txns []models.Transaction, withUsernames bool) ([]TransactionView, error) {
	db := q.db.WithContext(ctx)

	symbols, err := q.stockSymbols(db, stockIDs(txns))
	if err != nil {
		return nil, err
	}
	var usernames map[uint]string
	if withUsernames {
		if usernames, err = q.usernames(db, userIDs(txns)); err != nil {
			return nil, err
		}
	}

	views := make([]TransactionView, 0, len(txns))
	for i := range txns {
		t := &txns[i]
		views = append(views, TransactionView{
			ID:        t.ID,
			UserID:    t.UserID,
			Username:  usernames[t.UserID],
			StockID:   t.StockID,
			Symbol:    symbols[t.StockID],
			Type:      t.Type,
			Quantity:  t.Quantity,
			Price:     t.Price,
			Total:     t.Total,
			Status:    t.Status,
			CreatedAt: t.CreatedAt,
		})
	}
	return views, nil
}

// ActivityLogs lists audit entries matching the filter, enriched with
// usernames for display.
func (q *Queries) ActivityLogs(ctx context.Context, filter ActivityFilter) ([]ActivityView, error) {
	db := q.db.WithContext(ctx)

	logs, err := q.activity.Search(db, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(logs))
	for i := range logs {
		ids = append(ids, logs[i].UserID)
	}
	usernames, err := q.usernames(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ActivityView, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		name, ok := usernames[l.UserID]
		if !ok {
			name = "Unknown"
		}
		views = append(views, ActivityView{
			ID:         l.ID,
			UserID:     l.UserID,
			Username:   name,
			ActionType: l.ActionType,
			Details:    l.Details,
			LoggedAt:   l.LoggedAt,
		})
	}
	return views, nil
}

// ListStocks returns the catalog, optionally sorted by price, symbol or
// change percent.
func (q *Queries) ListStocks(ctx context.Context, sortBy, order string) ([]models.Stock, error) {
	column := ""
	switch sortBy {
	case "price":
		column = "price"
	case "symbol":
		column = "symbol"
	case "change":
		column = "change_percent"
	}

	db := q.db.WithContext(ctx)
	if column != "" {
		dir := "ASC"
		if order == "desc" {
			dir = "DESC"
		}
		db = db.Order(column + " " + dir)
	} else {
		db = db.Order("id")
	}

	var stocks []models.Stock
	if err := db.Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("%w: listing stocks: %v", ErrServiceUnavailable, err)
	}
	return stocks, nil
}

func (q *Queries) Stock(ctx context.Context, stockID uint) (*models.Stock, error) {
	return q.catalog.Get(q.db.WithContext(ctx), stockID)
}

func (q *Queries) stockSymbols(db *gorm.DB, ids []uint) (map[uint]string, error) {
	if len(ids) == 0 {
		return map[uint]string{}, nil
	}
	var stocks []models.Stock
	if err := db.Where("id IN ?", ids).Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("%w: loading stock symbols: %v", ErrServiceUnavailable, err)
	}
	symbols := make(map[uint]string, len(stocks))
	for i := range stocks {
		symbols[stocks[i].ID] = stocks[i].Symbol
	}
	return symbols, nil
}

func (q *Queries) usernames(db *gorm.DB, ids []uint) (map[uint]string, error) {
	if len(ids) == 0 {
		return map[uint]string{}, nil
	}
	var users []models.User
	if err := db.Unscoped().Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: loading usernames: %v", ErrServiceUnavailable, err)
	}
	names := make(map[uint]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].Username
	}
	return names, nil
}

func stockIDs(txns []models.Transaction) []uint {
	ids := make([]uint, 0, len(txns))
	for i := range txns {
		ids = append(ids, txns[i].StockID)
	}
	return ids
}

func userIDs(txns []models.Transaction) []uint {
	ids := make([]uint, 0, len(txns))
	for i := range txns {
		ids = append(ids, txns[i].UserID)
	}
	return ids
}
