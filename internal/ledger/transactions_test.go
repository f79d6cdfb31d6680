package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name    string
		typ     models.TransactionType
		from    models.TransactionStatus
		to      models.TransactionStatus
		allowed bool
	}{
		{"pending to completed", models.TransactionBuy, models.StatusPending, models.StatusCompleted, true},
		{"pending to failed", models.TransactionBuy, models.StatusPending, models.StatusFailed, true},
		{"pending to rolled back", models.TransactionSell, models.StatusPending, models.StatusRolledBack, false},
		{"completed sell to rolled back", models.TransactionSell, models.StatusCompleted, models.StatusRolledBack, true},
		{"completed buy to rolled back", models.TransactionBuy, models.StatusCompleted, models.StatusRolledBack, false},
		{"completed to failed", models.TransactionSell, models.StatusCompleted, models.StatusFailed, false},
		{"completed to pending", models.TransactionSell, models.StatusCompleted, models.StatusPending, false},
		{"failed is terminal", models.TransactionBuy, models.StatusFailed, models.StatusCompleted, false},
		{"rolled back is terminal", models.TransactionSell, models.StatusRolledBack, models.StatusCompleted, false},
		{"cancelled is terminal", models.TransactionSell, models.StatusCancelled, models.StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &models.Transaction{Type: tt.typ, Status: tt.from}
			assert.Equal(t, tt.allowed, transitionAllowed(txn, tt.to))
		})
	}
}
