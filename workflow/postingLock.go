package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/kiranakhata/retail_backend/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AcquireUserPostingLock serializes ledger posting per user across instances
// using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the posting transaction. On sqlite the single
// write connection already serializes, so this is a no-op.
func AcquireUserPostingLock(tx *gorm.DB, userId int) error {
	if !config.IsMySQL() {
		return nil
	}
	lockName := fmt.Sprintf("posting:user:%d", userId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for user_id=%d", userId)
	}
	return nil
}

func ReleaseUserPostingLock(tx *gorm.DB, userId int) {
	if !config.IsMySQL() {
		return
	}
	lockName := fmt.Sprintf("posting:user:%d", userId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// postWithUserLock runs fn inside a single transaction with the user's
// advisory lock held on that transaction's connection. GET_LOCK is
// connection-scoped and survives COMMIT, so the release has to run on
// the live tx before gorm commits or rolls back; releasing through the
// pool handle would hit a different connection and leave the lock held.
func postWithUserLock(ctx context.Context, userId int, fn func(tx *gorm.DB) error) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireUserPostingLock(tx, userId); err != nil {
			return err
		}
		defer ReleaseUserPostingLock(tx, userId)
		return fn(tx)
	})
}

// ObtainUserRedisLock is a best-effort distributed lock in front of the
// advisory lock. If Redis is unavailable or the lock cannot be obtained,
// the caller proceeds anyway; the MySQL lock still serializes safely.
// The returned function releases the lock and is safe to call always.
func ObtainUserRedisLock(ctx context.Context, userId int, logger *logrus.Logger) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("lock:user:%d", userId), 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		logger.WithFields(logrus.Fields{
			"field":   "postingLock",
			"user_id": userId,
		}).Warn("could not obtain redis lock; proceeding without redis lock")
		return func() {}
	} else if err != nil {
		logger.WithFields(logrus.Fields{
			"field":   "postingLock",
			"user_id": userId,
		}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
		return func() {}
	}
	return func() {
		_ = lock.Release(ctx)
	}
}
