package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notion-trade-sync/internal/interfaces"
)

// PassLockRepo keeps pass leases in the pass_locks table so that a watch
// process and a one-off sync against the same file never run a pass for the
// same account at once.
type PassLockRepo struct {
	db  *gorm.DB
	now func() time.Time
}

var _ interfaces.PassLock = (*PassLockRepo)(nil)

func NewPassLockRepo(db *gorm.DB) *PassLockRepo {
	return &PassLockRepo{db: db, now: time.Now}
}

// WithClock replaces time.Now for lease expiry.
func (r *PassLockRepo) WithClock(now func() time.Time) *PassLockRepo {
	r.now = now
	return r
}

// Acquire takes the lease on key for owner. An owner may renew its own lease;
// an expired lease may be taken over by anyone.
func (r *PassLockRepo) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	now := r.now()
	row := PassLockRow{Key: key, Owner: owner, ExpiresAt: now.Add(ttl).UnixMilli()}

	acquired := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			acquired = true
			return nil
		}

		res = tx.Model(&PassLockRow{}).
			Where("lock_key = ? AND (owner = ? OR expires_at < ?)", key, owner, now.UnixMilli()).
			Updates(map[string]interface{}{"owner": owner, "expires_at": row.ExpiresAt})
		if res.Error != nil {
			return res.Error
		}
		acquired = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("acquire pass lock %s: %w", key, err)
	}
	return acquired, nil
}

// Release drops the lease if owner still holds it.
func (r *PassLockRepo) Release(ctx context.Context, key, owner string) error {
	err := r.db.WithContext(ctx).
		Where("lock_key = ? AND owner = ?", key, owner).
		Delete(&PassLockRow{}).Error
	if err != nil {
		return fmt.Errorf("release pass lock %s: %w", key, err)
	}
	return nil
}
