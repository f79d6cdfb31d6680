package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// AdminControl covers the administrative operations: price changes, trading
// suspension and direct user management. Direct balance edits bypass the
// debit/credit path, so every edit is mirrored into the activity audit log.
type AdminControl struct {
	db       *gorm.DB
	locks    *LockTable
	accounts AccountLedger
	catalog  StockCatalog
	activity ActivityAuditLog
}

func NewAdminControl(db *gorm.DB, locks *LockTable) *AdminControl {
	return &AdminControl{db: db, locks: locks}
}

// FluctuatePrice sets a new catalog price for the stock. Orders already in
// flight keep the quote they captured.
func (a *AdminControl) FluctuatePrice(ctx context.Context, adminID, stockID uint, newPrice decimal.Decimal, reason string) (*models.Stock, error) {
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	unlock, err := a.locks.Acquire(ctx, stockKey(stockID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var stock *models.Stock
	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := a.catalog.Get(tx, stockID)
		if err != nil {
			return err
		}
		oldPrice := before.Price

		stock, err = a.catalog.SetPrice(tx, stockID, newPrice)
		if err != nil {
			return err
		}

		details := fmt.Sprintf("Updated %s price from %s to %s. Reason: %s",
			stock.Symbol, oldPrice.StringFixed(2), newPrice.StringFixed(2), reason)
		return a.activity.Append(tx, adminID, ActionPriceChange, details)
	})
	if txErr != nil {
		return nil, txErr
	}
	return stock, nil
}

// ToggleSuspension suspends or resumes trading on the stock and records the
// change in the suspension history.
func (a *AdminControl) ToggleSuspension(ctx context.Context, adminID, stockID uint, suspend bool, reason string) (*models.Stock, error) {
	unlock, err := a.locks.Acquire(ctx, stockKey(stockID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var stock *models.Stock
	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err = a.catalog.SetSuspension(tx, stockID, suspend)
		if err != nil {
			return err
		}

		history := models.StockSuspension{
			StockID:   stockID,
			AdminID:   adminID,
			Suspended: suspend,
			Reason:    reason,
			ChangedAt: time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("%w: recording suspension: %v", ErrServiceUnavailable, err)
		}

		action, verb := ActionSuspend, "Suspended"
		if !suspend {
			action, verb = ActionResume, "Resumed"
		}
		return a.activity.Append(tx, adminID, action, fmt.Sprintf("%s stock %s", verb, stock.Symbol))
	})
	if txErr != nil {
		return nil, txErr
	}
	return stock, nil
}

// CreateUserArgs carries the fields for a new account.
type CreateUserArgs struct {
	Username string
	Password string
	Balance  decimal.Decimal
	Role     models.UserRole
}

func (a *AdminControl) CreateUser(ctx context.Context, adminID uint, args CreateUserArgs) (*models.User, error) {
	if args.Balance.LessThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(args.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	role := args.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username: args.Username,
		Password: string(hash),
		Balance:  args.Balance,
		Role:     role,
		Active:   true,
	}
	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: creating user: %v", ErrServiceUnavailable, err)
		}
		return a.activity.Append(tx, adminID, ActionUserCreate, fmt.Sprintf("Created user %s", args.Username))
	})
	if txErr != nil {
		return nil, txErr
	}
	return user, nil
}

// EditUserArgs holds optional updates; nil fields are left untouched.
type EditUserArgs struct {
	Username *string
	Password *string
	Balance  *decimal.Decimal
	Role     *models.UserRole
	Active   *bool
}

// EditUser applies a partial update to an account, including a direct
// balance overwrite. The edit takes the account lock so it cannot interleave
// with an in-flight order on the same account.
func (a *AdminControl) EditUser(ctx context.Context, adminID, userID uint, args EditUserArgs) (*models.User, error) {
	if args.Balance != nil && args.Balance.LessThan(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	unlock, err := a.locks.Acquire(ctx, accountKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var user *models.User
	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err = a.accounts.Get(tx, userID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if args.Username != nil {
			user.Username = *args.Username
			updates["username"] = *args.Username
		}
		if args.Password != nil && *args.Password != "" {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(*args.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				return fmt.Errorf("hashing password: %w", hashErr)
			}
			user.Password = string(hash)
			updates["password"] = user.Password
		}
		if args.Balance != nil {
			user.Balance = *args.Balance
			updates["balance"] = *args.Balance
		}
		if args.Role != nil {
			user.Role = *args.Role
			updates["role"] = *args.Role
		}
		if args.Active != nil {
			user.Active = *args.Active
			updates["active"] = *args.Active
		}
		if len(updates) > 0 {
			if err := tx.Model(user).Updates(updates).Error; err != nil {
				return fmt.Errorf("%w: updating user %d: %v", ErrServiceUnavailable, userID, err)
			}
		}
		return a.activity.Append(tx, adminID, ActionUserEdit, fmt.Sprintf("Edited user %s", user.Username))
	})
	if txErr != nil {
		return nil, txErr
	}
	return user, nil
}

func (a *AdminControl) DeleteUser(ctx context.Context, adminID, userID uint) error {
	unlock, err := a.locks.Acquire(ctx, accountKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := a.accounts.Get(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return fmt.Errorf("%w: deleting user %d: %v", ErrServiceUnavailable, userID, err)
		}
		return a.activity.Append(tx, adminID, ActionUserDelete, fmt.Sprintf("Deleted user %s", user.Username))
	})
}

func (a *AdminControl) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := a.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: listing users: %v", ErrServiceUnavailable, err)
	}
	return users, nil
}
