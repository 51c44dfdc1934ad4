package platforms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nilclear/internal/audit"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/platform/sentinel"
	"nilclear/pkg/requestcontext"
	"nilclear/pkg/secrets"
)

// Store is the registry persistence contract.
type Store interface {
	Create(ctx context.Context, p *Platform) error
	Find(ctx context.Context, id domain.EntityID) (*Platform, error)
	Grant(ctx context.Context, auth Authorization) error
	Revoke(ctx context.Context, platform, athlete domain.EntityID) error
	Granted(ctx context.Context, platform, athlete domain.EntityID) (bool, error)
}

// AuditPublisher records registrations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages platform registration, credentials, and each athlete's
// allow-list of submitting platforms.
type Service struct {
	store   Store
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, auditor AuditPublisher, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("platform store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit publisher is required")
	}
	s := &Service{store: store, auditor: auditor}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a platform and mints its API secret. The plaintext secret
// is returned exactly once; only its hash is stored.
func (s *Service) Register(ctx context.Context, id domain.EntityID, name string) (*Platform, string, error) {
	if id.IsZero() {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "platform id is required")
	}
	if name == "" {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "platform name is required")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate secret")
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash secret")
	}

	p := &Platform{
		ID:         id,
		Name:       name,
		SecretHash: hash,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "platform already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist platform")
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:  audit.ActionPlatformRegistered,
		Entity:  id.String(),
		ActorID: requestcontext.Actor(ctx),
	}); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit registration")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "platform registered", "platform", id, "name", name)
	}
	return p, secret, nil
}

// Authenticate verifies a platform's credentials for token issuance.
func (s *Service) Authenticate(ctx context.Context, id domain.EntityID, secret string) (*Platform, error) {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same failure shape as a bad secret so callers cannot probe for
			// registered platform ids.
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid platform credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform")
	}
	if err := secrets.Verify(secret, p.SecretHash); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid platform credentials")
	}
	return p, nil
}

// AuthorizeAthlete adds the platform to the athlete's allow-list.
func (s *Service) AuthorizeAthlete(ctx context.Context, platform, athlete domain.EntityID) error {
	if platform.IsZero() || athlete.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "platform and athlete ids are required")
	}
	if _, err := s.store.Find(ctx, platform); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "platform not registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform")
	}
	auth := Authorization{
		Platform:  platform,
		Athlete:   athlete,
		GrantedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Grant(ctx, auth); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist authorization")
	}
	return nil
}

// RevokeAthlete removes the platform from the athlete's allow-list. Deals
// already submitted are unaffected.
func (s *Service) RevokeAthlete(ctx context.Context, platform, athlete domain.EntityID) error {
	if err := s.store.Revoke(ctx, platform, athlete); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "authorization not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke authorization")
	}
	return nil
}

// Authorized reports whether the platform may submit deals for the athlete.
func (s *Service) Authorized(ctx context.Context, platform, athlete domain.EntityID) (bool, error) {
	granted, err := s.store.Granted(ctx, platform, athlete)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check authorization")
	}
	return granted, nil
}
