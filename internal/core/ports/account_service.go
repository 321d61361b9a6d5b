package ports

import (
	"context"

	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
)

// RegisterInput carries a registration request for either role.
type RegisterInput struct {
	Role     domain.Role
	Name     string
	Email    string
	Password string
}

// LoginResult is a successful authentication: the minted session token and
// the authenticated account.
type LoginResult struct {
	Token   string
	Claims  auth.Claims
	Account *domain.Account
}

// ProfileResult is the "read own profile" payload. FreshToken is the
// explicit refresh-on-read behavior: every profile fetch re-mints a token so
// an active client's session keeps sliding forward.
type ProfileResult struct {
	Account    *domain.Account
	FreshToken string
}

// AccountService implements registration, login and self-service profile
// operations for both principal kinds.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	// Login returns domain.ErrInvalidCredentials for unknown email and bad
	// password alike, and domain.ErrTooManyAttempts when throttled.
	Login(ctx context.Context, role domain.Role, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, claims auth.Claims) (*ProfileResult, error)
	// UpdateProfile changes the caller's name and/or password. Returns
	// domain.ErrNoChanges when both are nil.
	UpdateProfile(ctx context.Context, claims auth.Claims, name, password *string) error
	DeleteAccount(ctx context.Context, claims auth.Claims) error
	// ListManagers is the public manager directory (no credential data).
	ListManagers(ctx context.Context) ([]*domain.Account, error)
}

// LoginThrottle bounds failed login attempts per (role, email) so bulk
// credential guessing trips a limit before it trips anything else.
type LoginThrottle interface {
	// TooMany reports whether the pair is over its failure budget.
	TooMany(ctx context.Context, role domain.Role, email string) (bool, error)
	// RecordFailure counts one failed attempt.
	RecordFailure(ctx context.Context, role domain.Role, email string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, role domain.Role, email string) error
}
