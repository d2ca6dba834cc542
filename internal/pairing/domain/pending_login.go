package domain

import "time"

// PendingLogin is one in-flight device-pairing attempt. Rows are immutable
// once created; they only ever get deleted (redeemed, superseded, or swept).
type PendingLogin struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	DeviceID  string    `json:"device_id" gorm:"index:idx_pending_logins_device_state;not null"`
	State     string    `json:"state" gorm:"index:idx_pending_logins_device_state;not null"`
	Token     string    `json:"-" gorm:"not null"` // Never expose the token in JSON
	UserID    string    `json:"user_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (p *PendingLogin) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}
