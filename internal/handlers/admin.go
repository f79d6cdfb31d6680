package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/httputil"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/ledger"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/middleware"
	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

type FluctuateRequest struct {
	StockID  uint            `json:"stockId"`
	NewPrice decimal.Decimal `json:"newPrice"`
	Reason   string          `json:"reason"`
}

func FluctuateHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req FluctuateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stock, err := core.Admin.FluctuatePrice(r.Context(), adminID, req.StockID, req.NewPrice, req.Reason)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stock)
}

type SuspendRequest struct {
	StockID uint   `json:"stockId"`
	Suspend bool   `json:"suspend"`
	Reason  string `json:"reason"`
}

func SuspendHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stock, err := core.Admin.ToggleSuspension(r.Context(), adminID, req.StockID, req.Suspend, req.Reason)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stock)
}

type RollbackRequest struct {
	Reason string `json:"reason"`
}

func RollbackHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	txnID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req RollbackRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	txn, err := core.Rollback.Rollback(r.Context(), uint(txnID), adminID, req.Reason)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txn)
}

func AllTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	views, err := core.Queries.AllTransactions(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func ActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ActivityFilter{
		Username:   r.URL.Query().Get("username"),
		ActionType: r.URL.Query().Get("actionType"),
	}
	views, err := core.Queries.ActivityLogs(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

type CreateUserRequest struct {
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Role           models.UserRole `json:"role"`
}

func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := core.Admin.CreateUser(r.Context(), adminID, ledger.CreateUserArgs{
		Username: req.Username,
		Password: req.Password,
		Balance:  req.InitialBalance,
		Role:     req.Role,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"userId": user.ID})
}

type EditUserRequest struct {
	Username *string          `json:"username"`
	Password *string          `json:"password"`
	Balance  *decimal.Decimal `json:"balance"`
	Role     *models.UserRole `json:"role"`
	Active   *bool            `json:"isActive"`
}

func EditUserHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req EditUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := core.Admin.EditUser(r.Context(), adminID, uint(userID), ledger.EditUserArgs{
		Username: req.Username,
		Password: req.Password,
		Balance:  req.Balance,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"userId": user.ID})
}

func DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := core.Admin.DeleteUser(r.Context(), adminID, uint(userID)); err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := core.Admin.ListUsers(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}
