package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/httputil"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/middleware"
)

type OrderRequest struct {
	StockID  uint  `json:"stockId"`
	Quantity int64 `json:"quantity"`
}

type OrderResponse struct {
	TransactionID uint   `json:"transactionId"`
	Status        string `json:"status"`
	Total         string `json:"total"`
}

func BuyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := core.Executor.Buy(r.Context(), userID, req.StockID, req.Quantity)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OrderResponse{
		TransactionID: txn.ID,
		Status:        string(txn.Status),
		Total:         txn.Total.StringFixed(2),
	})
}

func SellHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := core.Executor.Sell(r.Context(), userID, req.StockID, req.Quantity)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, OrderResponse{
		TransactionID: txn.ID,
		Status:        string(txn.Status),
		Total:         txn.Total.StringFixed(2),
	})
}

func TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := core.Queries.UserTransactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func RecentTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := core.Queries.RecentTransactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func DashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := core.Queries.DashboardSummary(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func ListStocksHandler(w http.ResponseWriter, r *http.Request) {
	stocks, err := core.Queries.ListStocks(r.Context(), r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stocks)
}

func GetStockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	stock, err := core.Queries.Stock(r.Context(), uint(id))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stock)
}
