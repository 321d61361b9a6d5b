package ports

import (
	"context"

	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// AccountChanges carries a partial profile update. Nil means unchanged.
type AccountChanges struct {
	Name         *string
	PasswordHash *string
}

// CredentialStore defines persistence for accounts and their credentials.
// Emails are unique per role: the same address may register once as a
// manager and once as a customer.
type CredentialStore interface {
	// Insert stores a new account and returns its assigned id.
	// Returns domain.ErrDuplicateEmail when the (role, email) pair exists.
	Insert(ctx context.Context, account *domain.Account) (int64, error)
	// FindByEmail returns domain.ErrAccountNotFound when absent.
	FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.Account, error)
	// FindByID returns domain.ErrAccountNotFound when absent.
	FindByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error)
	// UpdateProfile applies the given changes to one account.
	// Returns domain.ErrAccountNotFound when no row matched.
	UpdateProfile(ctx context.Context, role domain.Role, id int64, changes AccountChanges) error
	// Delete removes an account. Returns domain.ErrAccountNotFound when absent.
	Delete(ctx context.Context, role domain.Role, id int64) error
	// ListByRole returns all accounts of one role, ordered by id.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.Account, error)
}
