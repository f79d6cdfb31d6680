package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/httputil"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/ledger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/logger"
)

var core *ledger.Ledger

// Init wires the handlers to the trading core. Must be called before the
// router serves traffic.
func Init(l *ledger.Ledger) {
	core = l
}

// writeLedgerError maps core errors onto HTTP statuses. Business rejections
// are client errors; lock contention is a conflict; storage trouble is 503.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrStockNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientHoldings),
		errors.Is(err, ledger.ErrStockSuspended),
		errors.Is(err, ledger.ErrRollbackNotAllowed),
		errors.Is(err, ledger.ErrRollbackInsufficientFunds):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrServiceUnavailable):
		logger.Log.Error("storage failure", zap.Error(err))
		httputil.WriteError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		logger.Log.Error("unexpected error", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
