package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

type RollbackServiceTestSuite struct {
	ledgerSuite
}

func TestRollbackServiceSuite(t *testing.T) {
	suite.Run(t, new(RollbackServiceTestSuite))
}

// Buy 10 @ 50, price moves to 60, sell 5; rolling the sell back returns the
// balance and position to their post-buy state.
func (s *RollbackServiceTestSuite) TestRollbackCompletedSell() {
	admin := s.admin()
	user := s.user("1000.00")
	stock := s.stock("AAPL", "50.00")

	_, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)
	_, err = s.core.Admin.FluctuatePrice(context.Background(), admin.ID, stock.ID, decimal.RequireFromString("60.00"), "rally")
	s.Require().NoError(err)

	sellTxn, err := s.core.Executor.Sell(context.Background(), user.ID, stock.ID, 5)
	s.Require().NoError(err)
	s.assertDecimal("800.00", s.balanceOf(user.ID))

	rolled, err := s.core.Rollback.Rollback(context.Background(), sellTxn.ID, admin.ID, "disputed trade")
	s.Require().NoError(err)

	s.Equal(models.StatusRolledBack, rolled.Status)
	s.assertDecimal("500.00", s.balanceOf(user.ID))

	holding := s.holdingOf(user.ID, stock.ID)
	s.Require().NotNil(holding)
	s.Equal(int64(10), holding.Quantity)
	s.assertDecimal("50.00", holding.AveragePrice)

	var cancellation models.TradeCancellation
	s.Require().NoError(s.db.Where("transaction_id = ?", sellTxn.ID).First(&cancellation).Error)
	s.Equal(admin.ID, cancellation.AdminID)
	s.True(cancellation.RollbackExecuted)

	entry := s.lastActivity()
	s.Equal(ActionRollback, entry.ActionType)
	s.Equal(admin.ID, entry.UserID)
}

func (s *RollbackServiceTestSuite) TestRollbackTwiceFails() {
	admin := s.admin()
	user := s.user("1000.00")
	stock := s.stock("AAPL", "50.00")

	_, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)
	sellTxn, err := s.core.Executor.Sell(context.Background(), user.ID, stock.ID, 5)
	s.Require().NoError(err)

	_, err = s.core.Rollback.Rollback(context.Background(), sellTxn.ID, admin.ID, "first")
	s.Require().NoError(err)

	_, err = s.core.Rollback.Rollback(context.Background(), sellTxn.ID, admin.ID, "second")
	s.Require().ErrorIs(err, ErrRollbackNotAllowed)
}

func (s *RollbackServiceTestSuite) TestRollbackBuyNotAllowed() {
	admin := s.admin()
	user := s.user("1000.00")
	stock := s.stock("AAPL", "50.00")

	buyTxn, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)

	_, err = s.core.Rollback.Rollback(context.Background(), buyTxn.ID, admin.ID, "oops")
	s.Require().ErrorIs(err, ErrRollbackNotAllowed)
}

func (s *RollbackServiceTestSuite) TestRollbackFailedTransactionNotAllowed() {
	admin := s.admin()
	user := s.user("100.00")
	stock := s.stock("AAPL", "50.00")

	failedTxn, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 100)
	s.Require().ErrorIs(err, ErrInsufficientFunds)

	_, err = s.core.Rollback.Rollback(context.Background(), failedTxn.ID, admin.ID, "no")
	s.Require().ErrorIs(err, ErrRollbackNotAllowed)
}

func (s *RollbackServiceTestSuite) TestRollbackUnknownTransaction() {
	_, err := s.core.Rollback.Rollback(context.Background(), 424242, s.admin().ID, "ghost")
	s.Require().ErrorIs(err, ErrTransactionNotFound)
}

// The user spent the proceeds; the reversal must leave everything untouched
// and the original sell stays COMPLETED.
func (s *RollbackServiceTestSuite) TestRollbackInsufficientFundsLeavesStateUntouched() {
	admin := s.admin()
	user := s.user("1000.00")
	stock := s.stock("AAPL", "50.00")

	_, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)
	sellTxn, err := s.core.Executor.Sell(context.Background(), user.ID, stock.ID, 5)
	s.Require().NoError(err)

	drained := decimal.RequireFromString("10.00")
	_, err = s.core.Admin.EditUser(context.Background(), admin.ID, user.ID, EditUserArgs{Balance: &drained})
	s.Require().NoError(err)

	_, err = s.core.Rollback.Rollback(context.Background(), sellTxn.ID, admin.ID, "dispute")
	s.Require().ErrorIs(err, ErrRollbackInsufficientFunds)

	s.assertDecimal("10.00", s.balanceOf(user.ID))
	s.Equal(int64(5), s.holdingOf(user.ID, stock.ID).Quantity)

	fresh, err := s.core.Rollback.translog.Get(s.db, sellTxn.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, fresh.Status)
}

// A fully liquidated position is recreated at the cost basis recorded on the
// original sell, not at the current catalog price.
func (s *RollbackServiceTestSuite) TestRollbackRecreatesLiquidatedHolding() {
	admin := s.admin()
	user := s.user("1000.00")
	stock := s.stock("AAPL", "50.00")

	_, err := s.core.Executor.Buy(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)
	_, err = s.core.Admin.FluctuatePrice(context.Background(), admin.ID, stock.ID, decimal.RequireFromString("80.00"), "rally")
	s.Require().NoError(err)

	sellTxn, err := s.core.Executor.Sell(context.Background(), user.ID, stock.ID, 10)
	s.Require().NoError(err)
	s.Nil(s.holdingOf(user.ID, stock.ID))

	_, err = s.core.Rollback.Rollback(context.Background(), sellTxn.ID, admin.ID, "dispute")
	s.Require().NoError(err)

	holding := s.holdingOf(user.ID, stock.ID)
	s.Require().NotNil(holding)
	s.Equal(int64(10), holding.Quantity)
	s.assertDecimal("50.00", holding.AveragePrice)
}
