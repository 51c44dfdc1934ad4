// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and write; business rules stay out of this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nilclear/internal/audit"
	"nilclear/internal/compliance"
	"nilclear/internal/deal"
	"nilclear/internal/kyc"
	"nilclear/internal/platforms"
	"nilclear/internal/sanctions"
	"nilclear/internal/settlement"
	"nilclear/pkg/domain"

	"nilclear/internal/platform/middleware"
)

// DealService defines the deal lifecycle operations the transport needs.
type DealService interface {
	Create(ctx context.Context, req deal.CreateRequest) (*deal.Deal, error)
	Evaluate(ctx context.Context, id domain.DealID) (*deal.Deal, error)
	Execute(ctx context.Context, id domain.DealID) (*deal.Deal, error)
	Cancel(ctx context.Context, id domain.DealID, reason string) (*deal.Deal, error)
	Get(ctx context.Context, id domain.DealID) (*deal.Deal, error)
	ListByAthlete(ctx context.Context, athlete domain.EntityID) ([]*deal.Deal, error)
}

// SanctionsService defines the registry operations exposed to admins.
type SanctionsService interface {
	ListEntity(ctx context.Context, req sanctions.ListRequest) error
	Delist(ctx context.Context, entity domain.EntityID) error
	List(ctx context.Context) ([]*sanctions.Entry, error)
}

// KYCService defines the verification operation exposed to admins.
type KYCService interface {
	Verify(ctx context.Context, req kyc.VerifyRequest) (*kyc.Record, error)
}

// PolicyService defines the compliance configuration surface.
type PolicyService interface {
	Thresholds(ctx context.Context) (compliance.Thresholds, error)
	UpdateThresholds(ctx context.Context, th compliance.Thresholds) (compliance.Thresholds, error)
	ApproveJurisdiction(ctx context.Context, code string) error
	RevokeJurisdiction(ctx context.Context, code string) error
	ApprovedJurisdictions(ctx context.Context) ([]domain.Jurisdiction, error)
}

// PlatformService defines registry and credential operations.
type PlatformService interface {
	Register(ctx context.Context, id domain.EntityID, name string) (*platforms.Platform, string, error)
	Authenticate(ctx context.Context, id domain.EntityID, secret string) (*platforms.Platform, error)
	AuthorizeAthlete(ctx context.Context, platform, athlete domain.EntityID) error
	RevokeAthlete(ctx context.Context, platform, athlete domain.EntityID) error
}

// SettlementService defines the vault escape hatch.
type SettlementService interface {
	EmergencyWithdraw(ctx context.Context, owner, caller domain.EntityID) (uint64, error)
}

// Vault exposes balances and funding.
type Vault interface {
	Deposit(ctx context.Context, owner domain.EntityID, amount uint64) error
	Balance(ctx context.Context, owner domain.EntityID) (uint64, error)
}

// VolumeService exposes the athlete's rolling totals.
type VolumeService interface {
	CurrentDayTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error)
	CurrentMonthTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error)
}

// TokenIssuer mints platform JWTs after credential verification.
type TokenIssuer interface {
	Issue(platform domain.EntityID, now time.Time) (string, error)
	TTL() time.Duration
}

// AuditLog is the per-deal audit trail query surface.
type AuditLog interface {
	ListByDeal(ctx context.Context, dealID string) ([]audit.Event, error)
}

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler wires all endpoints to their services.
type Handler struct {
	deals      DealService
	sanctions  SanctionsService
	kyc        KYCService
	policy     PolicyService
	platforms  PlatformService
	settlement SettlementService
	vault      Vault
	volume     VolumeService
	tokens     TokenIssuer
	auditLog   AuditLog
	readiness  []ReadinessCheck
	logger     *slog.Logger
}

// Config carries the handler's dependencies.
type Config struct {
	Deals      DealService
	Sanctions  SanctionsService
	KYC        KYCService
	Policy     PolicyService
	Platforms  PlatformService
	Settlement SettlementService
	Vault      Vault
	Volume     VolumeService
	Tokens     TokenIssuer
	AuditLog   AuditLog
	Readiness  []ReadinessCheck
	Logger     *slog.Logger
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		deals:      cfg.Deals,
		sanctions:  cfg.Sanctions,
		kyc:        cfg.KYC,
		policy:     cfg.Policy,
		platforms:  cfg.Platforms,
		settlement: cfg.Settlement,
		vault:      cfg.Vault,
		volume:     cfg.Volume,
		tokens:     cfg.Tokens,
		auditLog:   cfg.AuditLog,
		readiness:  cfg.Readiness,
		logger:     cfg.Logger,
	}
}

// NewRouter builds the full route tree: platform-authenticated deal routes,
// admin routes behind the admin token, and the unauthenticated health and
// token endpoints.
func NewRouter(h *Handler, validator middleware.PlatformValidator, adminToken string, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", h.HandleHealthz)
	r.Get("/readyz", h.HandleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/platforms/token", h.HandleToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequirePlatformAuth(validator, h.logger))

		r.Post("/deals", h.HandleCreateDeal)
		r.Get("/deals/{dealID}", h.HandleGetDeal)
		r.Post("/deals/{dealID}/evaluate", h.HandleEvaluateDeal)
		r.Post("/deals/{dealID}/execute", h.HandleExecuteDeal)
		r.Post("/deals/{dealID}/cancel", h.HandleCancelDeal)

		r.Get("/athletes/{entityID}/deals", h.HandleListAthleteDeals)
		r.Get("/athletes/{entityID}/volume", h.HandleAthleteVolume)

		r.Get("/vault/{entityID}/balance", h.HandleVaultBalance)
		r.Post("/vault/{entityID}/deposit", h.HandleVaultDeposit)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdminToken(adminToken, h.logger))

		r.Post("/sanctions", h.HandleListSanction)
		r.Delete("/sanctions/{entityID}", h.HandleDelistSanction)
		r.Get("/sanctions", h.HandleListSanctions)

		r.Post("/kyc", h.HandleVerifyKYC)

		r.Get("/thresholds", h.HandleGetThresholds)
		r.Put("/thresholds", h.HandleUpdateThresholds)
		r.Get("/jurisdictions", h.HandleListJurisdictions)
		r.Put("/jurisdictions/{code}", h.HandleApproveJurisdiction)
		r.Delete("/jurisdictions/{code}", h.HandleRevokeJurisdiction)

		r.Post("/platforms", h.HandleRegisterPlatform)
		r.Put("/platforms/{entityID}/athletes/{athleteID}", h.HandleAuthorizeAthlete)
		r.Delete("/platforms/{entityID}/athletes/{athleteID}", h.HandleRevokeAthlete)

		r.Post("/vault/{entityID}/emergency-withdraw", h.HandleEmergencyWithdraw)

		r.Get("/deals/{dealID}/audit", h.HandleDealAudit)
	})

	return r
}

var _ Vault = (*settlement.InMemoryVault)(nil)
