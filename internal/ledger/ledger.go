// Package ledger is the trading core: it owns balances, holdings, the stock
// catalog and the transaction and activity logs, and executes every
// financial operation as a single atomic unit scoped to the affected
// account. The HTTP layer above it carries no business logic.
package ledger

import (
	"time"

	"gorm.io/gorm"
)

// Ledger bundles the core services over one database handle and one lock
// table, so every component serializes on the same per-entity locks.
type Ledger struct {
	Executor *OrderExecutor
	Rollback *RollbackService
	Admin    *AdminControl
	Queries  *Queries
}

func New(db *gorm.DB, lockTimeout time.Duration) *Ledger {
	locks := NewLockTable(lockTimeout)
	return &Ledger{
		Executor: NewOrderExecutor(db, locks),
		Rollback: NewRollbackService(db, locks),
		Admin:    NewAdminControl(db, locks),
		Queries:  NewQueries(db),
	}
}
