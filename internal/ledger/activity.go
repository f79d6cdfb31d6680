package ledger

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/syedwasif978-cmd/stock-trading-app/internal/models"
)

// Action types written to the activity audit log.
const (
	ActionBuy         = "BUY"
	ActionSell        = "SELL"
	ActionRollback    = "ROLLBACK"
	ActionPriceChange = "PRICE_CHANGE"
	ActionSuspend     = "SUSPEND"
	ActionResume      = "RESUME"
	ActionUserCreate  = "USER_CREATE"
	ActionUserEdit    = "USER_EDIT"
	ActionUserDelete  = "USER_DELETE"
)

// ActivityAuditLog is the append-only record of administrative and user
// actions, separate from the financial transaction log.
type ActivityAuditLog struct{}

func (ActivityAuditLog) Append(tx *gorm.DB, userID uint, actionType, details string) error {
	entry := models.ActivityLog{
		UserID:     userID,
		ActionType: actionType,
		Details:    details,
		LoggedAt:   time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("%w: appending activity log: %v", ErrServiceUnavailable, err)
	}
	return nil
}

// ActivityFilter narrows Search results. Zero values mean "no filter".
type ActivityFilter struct {
	Username   string
	ActionType string
}

func (ActivityAuditLog) Search(tx *gorm.DB, filter ActivityFilter) ([]models.ActivityLog, error) {
	q := tx.Model(&models.ActivityLog{}).Order("logged_at DESC, id DESC")

	if filter.Username != "" {
		var userIDs []uint
		err := tx.Model(&models.User{}).
			Where("username LIKE ?", "%"+filter.Username+"%").
			Pluck("id", &userIDs).Error
		if err != nil {
			return nil, fmt.Errorf("%w: resolving username filter: %v", ErrServiceUnavailable, err)
		}
		if len(userIDs) == 0 {
			return []models.ActivityLog{}, nil
		}
		q = q.Where("user_id IN ?", userIDs)
	}
	if filter.ActionType != "" {
		q = q.Where("action_type = ?", filter.ActionType)
	}

	var logs []models.ActivityLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("%w: searching activity logs: %v", ErrServiceUnavailable, err)
	}
	return logs, nil
}

func (a ActivityAuditLog) All(tx *gorm.DB) ([]models.ActivityLog, error) {
	return a.Search(tx, ActivityFilter{})
}

// PurgeOlderThan removes log entries past the retention window. This is the
// only deletion ever performed on the audit log and is reserved for an
// operator-run retention job, not the application flows.
func (ActivityAuditLog) PurgeOlderThan(tx *gorm.DB, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	res := tx.Where("logged_at < ?", cutoff).Delete(&models.ActivityLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: purging activity logs: %v", ErrServiceUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
