package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feirahub/marketplace-api/internal/api/metrics"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

type accountService struct {
	creds    ports.CredentialStore
	hasher   *auth.PasswordHasher
	issuer   *auth.Issuer
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	clock    auth.Clock
	log      zerolog.Logger
}

// NewAccountService returns an AccountService implementation. Throttle and
// audit may be nil; the service then runs without brute-force limiting or an
// audit trail (useful in tests).
func NewAccountService(
	creds ports.CredentialStore,
	hasher *auth.PasswordHasher,
	issuer *auth.Issuer,
	throttle ports.LoginThrottle,
	audit ports.AuditRecorder,
	clock auth.Clock,
	log zerolog.Logger,
) ports.AccountService {
	if clock == nil {
		clock = auth.SystemClock
	}
	return &accountService{
		creds:    creds,
		hasher:   hasher,
		issuer:   issuer,
		throttle: throttle,
		audit:    audit,
		clock:    clock,
		log:      log,
	}
}

func (s *accountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := domain.ParseRole(in.Role.String()); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Role:         in.Role,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock(),
	}

	id, err := s.creds.Insert(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id

	metrics.RegistrationsTotal.WithLabelValues(in.Role.String()).Inc()
	s.record(domain.AuthEvent{Email: in.Email, Role: in.Role, Kind: domain.AuthEventRegistered, At: s.clock()})
	s.log.Info().Str("role", in.Role.String()).Int64("principal_id", id).Msg("account registered")

	return account, nil
}

func (s *accountService) Login(ctx context.Context, role domain.Role, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// 1. Throttle check before any credential work.
	if s.throttle != nil {
		over, err := s.throttle.TooMany(ctx, role, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if over {
			metrics.LoginsTotal.WithLabelValues(role.String(), "throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	// 2. Look up the credential. Unknown email and wrong password collapse
	// into the same outward error so responses cannot enumerate emails.
	account, err := s.creds.FindByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, s.loginFailed(ctx, role, email)
		}
		return nil, err
	}

	// 3. Verify the password. A corrupt stored hash fails closed and is
	// logged; the caller sees a plain credential failure.
	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		s.log.Error().Err(err).Str("role", role.String()).Int64("principal_id", account.ID).Msg("stored credential hash unreadable")
	}
	if !ok {
		return nil, s.loginFailed(ctx, role, email)
	}

	// 4. Mint the session token. Issuance never touches storage.
	token, claims, err := s.issuer.Issue(account.Principal(), account.Name)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, role, email); err != nil {
			s.log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	metrics.LoginsTotal.WithLabelValues(role.String(), "ok").Inc()
	s.record(domain.AuthEvent{Email: email, Role: role, Kind: domain.AuthEventLoginOK, At: s.clock()})
	s.log.Info().Str("role", role.String()).Int64("principal_id", account.ID).Msg("login succeeded")

	return &ports.LoginResult{Token: token, Claims: claims, Account: account}, nil
}

// loginFailed counts the failure for throttling and audit, then returns the
// single collapsed credential error.
func (s *accountService) loginFailed(ctx context.Context, role domain.Role, email string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, role, email); err != nil {
			s.log.Warn().Err(err).Msg("login throttle record failed")
		}
	}
	metrics.LoginsTotal.WithLabelValues(role.String(), "failed").Inc()
	s.record(domain.AuthEvent{Email: email, Role: role, Kind: domain.AuthEventLoginFailed, At: s.clock()})
	return domain.ErrInvalidCredentials
}

func (s *accountService) Profile(ctx context.Context, claims auth.Claims) (*ports.ProfileResult, error) {
	account, err := s.creds.FindByID(ctx, claims.Role, claims.PrincipalID)
	if err != nil {
		return nil, err
	}

	// Refresh-on-read: every profile fetch re-mints a token so an active
	// session keeps sliding forward. Explicit here, never a side effect of
	// verification.
	fresh, _, err := s.issuer.Issue(account.Principal(), account.Name)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return &ports.ProfileResult{Account: account, FreshToken: fresh}, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, claims auth.Claims, name, password *string) error {
	changes := ports.AccountChanges{Name: name}

	if password != nil {
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}
	if changes.Name == nil && changes.PasswordHash == nil {
		return domain.ErrNoChanges
	}

	account, err := s.creds.FindByID(ctx, claims.Role, claims.PrincipalID)
	if err != nil {
		return err
	}
	if err := s.creds.UpdateProfile(ctx, claims.Role, claims.PrincipalID, changes); err != nil {
		return err
	}

	if changes.PasswordHash != nil {
		s.record(domain.AuthEvent{Email: account.Email, Role: claims.Role, Kind: domain.AuthEventPasswordChanged, At: s.clock()})
	}
	s.log.Info().Str("role", claims.Role.String()).Int64("principal_id", claims.PrincipalID).Msg("profile updated")
	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, claims auth.Claims) error {
	account, err := s.creds.FindByID(ctx, claims.Role, claims.PrincipalID)
	if err != nil {
		return err
	}
	if err := s.creds.Delete(ctx, claims.Role, claims.PrincipalID); err != nil {
		return err
	}

	s.record(domain.AuthEvent{Email: account.Email, Role: claims.Role, Kind: domain.AuthEventAccountDeleted, At: s.clock()})
	s.log.Info().Str("role", claims.Role.String()).Int64("principal_id", claims.PrincipalID).Msg("account deleted")
	return nil
}

func (s *accountService) ListManagers(ctx context.Context) ([]*domain.Account, error) {
	return s.creds.ListByRole(ctx, domain.RoleManager)
}

func (s *accountService) record(event domain.AuthEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
