package sanctions

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
)

// Store is the persistence contract for sanction entries.
type Store interface {
	Upsert(ctx context.Context, entry *Entry) error
	Find(ctx context.Context, entity domain.EntityID) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
}

// AuditPublisher records listing changes for the compliance trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns screening and list management. Screening is a pure lookup
// with no external I/O; list updates are ingested asynchronously via the
// admin surface, never fetched during a check.
type Service struct {
	store  Store
	audits AuditPublisher
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audits = publisher
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("sanctions store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Screen reports whether the entity is clear (true = no active listing).
func (s *Service) Screen(ctx context.Context, entity domain.EntityID) (bool, error) {
	if entity.IsZero() {
		return false, dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	entry, err := s.store.Find(ctx, entity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return true, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to screen entity")
	}
	return !entry.Listed, nil
}

// ListRequest captures a listing (or re-listing) of an entity.
type ListRequest struct {
	Entity       domain.EntityID
	ListName     string
	Reason       string
	EvidenceHash string
}

// ListEntity places an entity on the blocklist. Idempotent upsert: listing an
// already-listed entity refreshes the metadata.
func (s *Service) ListEntity(ctx context.Context, req ListRequest) error {
	if req.Entity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	if req.ListName == "" {
		return dErrors.New(dErrors.CodeValidation, "list name is required")
	}

	now := requestcontext.Now(ctx)
	entry := &Entry{
		Entity:       req.Entity,
		ListName:     req.ListName,
		Reason:       req.Reason,
		EvidenceHash: req.EvidenceHash,
		Listed:       true,
		ListedAt:     now,
		UpdatedAt:    now,
	}
	if prior, err := s.store.Find(ctx, req.Entity); err == nil {
		entry.ListedAt = prior.ListedAt
	}

	if err := s.store.Upsert(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entity")
	}

	if s.audits != nil {
		if err := s.audits.Emit(ctx, audit.Event{
			Action:    audit.ActionSanctionsListed,
			Entity:    req.Entity.String(),
			Reason:    req.Reason,
			RequestID: requestcontext.RequestID(ctx),
			ActorID:   requestcontext.Actor(ctx),
		}); err != nil {
			return err
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "entity listed",
			"entity", req.Entity,
			"list_name", req.ListName,
		)
	}
	return nil
}

// Delist clears an entity's listing. The entry is retained with Listed=false
// so the trail shows the entity was once blocked and by whom it was cleared.
func (s *Service) Delist(ctx context.Context, entity domain.EntityID) error {
	if entity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "entity id is required")
	}
	entry, err := s.store.Find(ctx, entity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "entity is not listed")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load sanction entry")
	}
	if !entry.Listed {
		return dErrors.New(dErrors.CodeInvariantViolation, "entity is already delisted")
	}

	entry.Listed = false
	entry.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Upsert(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delist entity")
	}

	if s.audits != nil {
		if err := s.audits.Emit(ctx, audit.Event{
			Action:    audit.ActionSanctionsDelisted,
			Entity:    entity.String(),
			RequestID: requestcontext.RequestID(ctx),
			ActorID:   requestcontext.Actor(ctx),
		}); err != nil {
			return err
		}
	}
	return nil
}

// List returns all entries, listed and delisted, for the admin surface.
func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sanction entries")
	}
	return entries, nil
}
