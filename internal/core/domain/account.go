package domain

import "time"

// Account models a registered principal's credential and profile data.
// The password hash never leaves the service layer.
type Account struct {
	ID           int64     `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal returns the identity half of the account.
func (a *Account) Principal() Principal {
	return Principal{ID: a.ID, Role: a.Role}
}
