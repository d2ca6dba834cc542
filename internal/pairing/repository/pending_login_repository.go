package repository

import (
	"errors"
	"time"

	pairingdomain "cubent-backend/internal/pairing/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingLoginRepository defines the interface for pending-login persistence.
// FindLive plus DeleteByID is the documented two-step redemption; Redeem is
// the atomic form and is what the protocol uses.
type PendingLoginRepository interface {
	Insert(login *pairingdomain.PendingLogin) error
	// Replace deletes any prior rows for the device and inserts the new row
	// in one transaction (last writer wins).
	Replace(login *pairingdomain.PendingLogin) error
	// FindLive returns the non-expired row for (deviceID, state), or nil.
	FindLive(deviceID, state string) (*pairingdomain.PendingLogin, error)
	// Redeem atomically deletes and returns the live row for
	// (deviceID, state), or nil when no such row exists.
	Redeem(deviceID, state string) (*pairingdomain.PendingLogin, error)
	DeleteByID(id string) error
	DeleteByDeviceID(deviceID string) error
	// DeleteExpired removes rows whose expiry has passed.
	DeleteExpired() (int64, error)
	// DeleteOlderThan removes rows created before now-maxAge regardless of
	// expiry, catching rows left behind by crashed cleanup runs.
	DeleteOlderThan(maxAge time.Duration) (int64, error)
}

// pendingLoginRepository implements PendingLoginRepository interface
type pendingLoginRepository struct {
	db *gorm.DB
}

// NewPendingLoginRepository creates a new instance of pendingLoginRepository
func NewPendingLoginRepository(db *gorm.DB) PendingLoginRepository {
	return &pendingLoginRepository{
		db: db,
	}
}

func (r *pendingLoginRepository) Insert(login *pairingdomain.PendingLogin) error {
	login.ID = uuid.New().String()
	login.CreatedAt = time.Now()
	return r.db.Create(login).Error
}

func (r *pendingLoginRepository) Replace(login *pairingdomain.PendingLogin) error {
	login.ID = uuid.New().String()
	login.CreatedAt = time.Now()

	// Use a transaction so a concurrent attempt never observes zero rows
	// between the delete and the insert.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", login.DeviceID).Delete(&pairingdomain.PendingLogin{}).Error; err != nil {
			return err
		}
		return tx.Create(login).Error
	})
}

func (r *pendingLoginRepository) FindLive(deviceID, state string) (*pairingdomain.PendingLogin, error) {
	var login pairingdomain.PendingLogin
	err := r.db.Where("device_id = ? AND state = ? AND expires_at > ?", deviceID, state, time.Now()).
		First(&login).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &login, nil
}

func (r *pendingLoginRepository) Redeem(deviceID, state string) (*pairingdomain.PendingLogin, error) {
	// Single DELETE ... RETURNING closes the window where two concurrent
	// redeemers could both see the row before either deletes it.
	var redeemed []pairingdomain.PendingLogin
	result := r.db.Clauses(clause.Returning{}).
		Where("device_id = ? AND state = ? AND expires_at > ?", deviceID, state, time.Now()).
		Delete(&redeemed)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(redeemed) == 0 {
		return nil, nil
	}
	return &redeemed[0], nil
}

func (r *pendingLoginRepository) DeleteByID(id string) error {
	return r.db.Where("id = ?", id).Delete(&pairingdomain.PendingLogin{}).Error
}

func (r *pendingLoginRepository) DeleteByDeviceID(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&pairingdomain.PendingLogin{}).Error
}

func (r *pendingLoginRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&pairingdomain.PendingLogin{})
	return result.RowsAffected, result.Error
}

func (r *pendingLoginRepository) DeleteOlderThan(maxAge time.Duration) (int64, error) {
	result := r.db.Where("created_at < ?", time.Now().Add(-maxAge)).Delete(&pairingdomain.PendingLogin{})
	return result.RowsAffected, result.Error
}
