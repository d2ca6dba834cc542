package domain

import "time"

// User is the local mirror of an identity-provider account. Credentials live
// with the provider; this row only carries profile and product state.
type User struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	ProviderID      string     `json:"-" gorm:"uniqueIndex;not null"`
	Email           string     `json:"email" gorm:"index"`
	Name            string     `json:"name"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	TermsAcceptedAt *time.Time `json:"terms_accepted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasAcceptedTerms reports whether the user has recorded terms acceptance.
func (u *User) HasAcceptedTerms() bool {
	return u.TermsAcceptedAt != nil
}
