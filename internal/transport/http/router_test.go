package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"nilclear/internal/audit"
	"nilclear/internal/compliance"
	"nilclear/internal/deal"
	jwttoken "nilclear/internal/jwt_token"
	"nilclear/internal/kyc"
	"nilclear/internal/platforms"
	"nilclear/internal/sanctions"
	"nilclear/internal/settlement"
	"nilclear/internal/volume"
	"nilclear/pkg/domain"
)

const testAdminToken = "test-admin-token"

// =============================================================================
// HTTP Router Test Suite
// =============================================================================
// Justification for handler tests:
// The transport owns request parsing, auth enforcement, and error-to-status
// mapping. The suite drives the real in-memory stack through the full router
// so middleware ordering and the admin/platform auth boundary are covered,
// not just individual handlers.

type RouterSuite struct {
	suite.Suite
	router     http.Handler
	vault      *settlement.InMemoryVault
	platformID domain.EntityID
	athlete    domain.EntityID
	brand      domain.EntityID
	secret     string
	token      string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func entity(b byte) domain.EntityID {
	var id domain.EntityID
	id[19] = b
	return id
}

func (s *RouterSuite) SetupTest() {
	s.platformID = entity(1)
	s.athlete = entity(2)
	s.brand = entity(3)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewPublisher(audit.NewInMemoryStore())

	sanctionsSvc, err := sanctions.New(sanctions.NewInMemoryStore(), sanctions.WithAuditPublisher(auditor))
	s.Require().NoError(err)

	policy, err := compliance.NewPolicyService(compliance.NewInMemoryPolicyStore(), auditor)
	s.Require().NoError(err)

	kycSvc, err := kyc.New(kyc.NewInMemoryStore(), policy, kyc.WithAuditPublisher(auditor))
	s.Require().NoError(err)

	ledger, err := volume.NewLedger(volume.NewInMemoryStore())
	s.Require().NoError(err)

	gate, err := compliance.NewService(sanctionsSvc, kycSvc, ledger, policy, policy, auditor)
	s.Require().NoError(err)

	s.vault = settlement.NewInMemoryVault()
	engine, err := settlement.NewEngine(s.vault, auditor)
	s.Require().NoError(err)

	platformSvc, err := platforms.New(platforms.NewInMemoryStore(), auditor)
	s.Require().NoError(err)

	dealSvc, err := deal.NewService(deal.NewInMemoryStore(), gate, engine, ledger, platformSvc, auditor)
	s.Require().NoError(err)

	tokens := jwttoken.NewManager("router-test-key", 15*time.Minute)

	handler := NewHandler(Config{
		Deals:      dealSvc,
		Sanctions:  sanctionsSvc,
		KYC:        kycSvc,
		Policy:     policy,
		Platforms:  platformSvc,
		Settlement: engine,
		Vault:      s.vault,
		Volume:     ledger,
		Tokens:     tokens,
		AuditLog:   auditor,
		Logger:     logger,
	})
	s.router = NewRouter(handler, tokens, testAdminToken, prometheus.NewRegistry())

	// Seed the world through the API itself: approve the jurisdiction,
	// verify the athlete, register the platform, grant it the athlete.
	s.admin(http.MethodPut, "/admin/jurisdictions/US", nil)
	s.admin(http.MethodPost, "/admin/kyc", map[string]any{
		"entity_id":     s.athlete.String(),
		"tier":          "enhanced",
		"jurisdiction":  "US",
		"document_hash": "sha256:doc",
		"expires_at":    time.Now().Add(365 * 24 * time.Hour).Format(time.RFC3339),
	})

	rec := s.admin(http.MethodPost, "/admin/platforms", map[string]any{
		"platform_id": s.platformID.String(),
		"name":        "DealBook",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var registered RegisterPlatformResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&registered))
	s.secret = registered.Secret

	path := fmt.Sprintf("/admin/platforms/%s/athletes/%s", s.platformID, s.athlete)
	s.Require().Equal(http.StatusNoContent, s.admin(http.MethodPut, path, nil).Code)

	rec = s.do(http.MethodPost, "/platforms/token", map[string]any{
		"platform_id": s.platformID.String(),
		"secret":      s.secret,
	}, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var tokenResp TokenResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&tokenResp))
	s.token = tokenResp.Token
}

func (s *RouterSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) admin(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"X-Admin-Token": testAdminToken})
}

func (s *RouterSuite) asPlatform(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{"Authorization": "Bearer " + s.token})
}

func (s *RouterSuite) createDealBody(amount uint64) map[string]any {
	return map[string]any{
		"athlete_id":   s.athlete.String(),
		"brand_id":     s.brand.String(),
		"amount":       amount,
		"currency":     "USD",
		"jurisdiction": "US",
		"deliverables": []string{"two posts"},
		"splits": []map[string]any{
			{"beneficiary": s.athlete.String(), "bps": 8000},
			{"beneficiary": s.brand.String(), "bps": 2000},
		},
	}
}

func (s *RouterSuite) createDeal(amount uint64) DealResponse {
	rec := s.asPlatform(http.MethodPost, "/deals", s.createDealBody(amount))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var d DealResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&d))
	return d
}

func (s *RouterSuite) TestAuthBoundaries() {
	s.Run("deal routes reject missing bearer token", func() {
		rec := s.do(http.MethodPost, "/deals", s.createDealBody(5_000), nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("deal routes reject a garbage token", func() {
		rec := s.do(http.MethodPost, "/deals", s.createDealBody(5_000),
			map[string]string{"Authorization": "Bearer not-a-jwt"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("admin routes reject a wrong admin token", func() {
		rec := s.do(http.MethodGet, "/admin/sanctions", nil,
			map[string]string{"X-Admin-Token": "wrong"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("health endpoints are open", func() {
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", nil, nil).Code)
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", nil, nil).Code)
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/metrics", nil, nil).Code)
	})

	s.Run("token endpoint rejects bad credentials", func() {
		rec := s.do(http.MethodPost, "/platforms/token", map[string]any{
			"platform_id": s.platformID.String(),
			"secret":      "wrong-secret",
		}, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *RouterSuite) TestDealLifecycle() {
	d := s.createDeal(5_000)
	s.Equal("pending", d.State)
	dealPath := "/deals/" + d.ID

	s.Run("evaluate approves a compliant deal", func() {
		rec := s.asPlatform(http.MethodPost, dealPath+"/evaluate", nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var evaluated DealResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&evaluated))
		s.Equal("approved", evaluated.State)
		s.Require().NotNil(evaluated.Compliance)
		s.True(evaluated.Compliance.Approved)
	})

	s.Run("execute pays out after the brand funds its vault", func() {
		rec := s.asPlatform(http.MethodPost, "/vault/"+s.brand.String()+"/deposit",
			map[string]any{"amount": 10_000})
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.asPlatform(http.MethodPost, dealPath+"/execute", nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var executed DealResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&executed))
		s.Equal("executed", executed.State)
		s.Require().Len(executed.Payouts, 2)
		s.Equal(uint64(4_000), executed.Payouts[0].Amount)
		s.Equal(uint64(1_000), executed.Payouts[1].Amount)
	})

	s.Run("double execution maps to 409", func() {
		rec := s.asPlatform(http.MethodPost, dealPath+"/execute", nil)
		s.Equal(http.StatusConflict, rec.Code)

		var body map[string]string
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("already_executed", body["error"])
	})

	s.Run("athlete volume reflects the approved amount", func() {
		rec := s.asPlatform(http.MethodGet, "/athletes/"+s.athlete.String()+"/volume", nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var vol VolumeResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&vol))
		s.Equal(uint64(5_000), vol.DayTotal)
		s.Equal(uint64(5_000), vol.MonthTotal)
	})

	s.Run("the audit trail for the deal is queryable", func() {
		rec := s.admin(http.MethodGet, "/admin/deals/"+d.ID+"/audit", nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var events []map[string]any
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&events))
		s.Require().Len(events, 3)
		s.Equal("deal_created", events[0]["action"])
		s.Equal("compliance_evaluated", events[1]["action"])
		s.Equal("deal_executed", events[2]["action"])
	})
}

func (s *RouterSuite) TestRequestValidation() {
	s.Run("invalid JSON is a 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/deals", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("splits that do not sum to 10000 are a 400 with invalid_split", func() {
		body := s.createDealBody(5_000)
		body["splits"] = []map[string]any{
			{"beneficiary": s.athlete.String(), "bps": 9_999},
		}
		rec := s.asPlatform(http.MethodPost, "/deals", body)
		s.Equal(http.StatusBadRequest, rec.Code)

		var resp map[string]string
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("invalid_split", resp["error"])
	})

	s.Run("malformed deal id in the path is a 400", func() {
		rec := s.asPlatform(http.MethodGet, "/deals/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown deal id is a 404", func() {
		rec := s.asPlatform(http.MethodGet, "/deals/"+domain.NewDealID().String(), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("non-JSON content type is a 415", func() {
		var buf bytes.Buffer
		s.Require().NoError(json.NewEncoder(&buf).Encode(s.createDealBody(5_000)))
		req := httptest.NewRequest(http.MethodPost, "/deals", &buf)
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})
}

func (s *RouterSuite) TestComplianceRejectionSurface() {
	s.admin(http.MethodPost, "/admin/sanctions", map[string]any{
		"entity_id": s.athlete.String(),
		"list_name": "OFAC-SDN",
		"reason":    "designated",
	})

	d := s.createDeal(5_000)
	rec := s.asPlatform(http.MethodPost, "/deals/"+d.ID+"/evaluate", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var evaluated DealResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&evaluated))
	s.Equal("rejected", evaluated.State)
	s.Require().NotNil(evaluated.Compliance)
	s.False(evaluated.Compliance.Approved)
	s.Equal(compliance.ReasonSanctionsHit, evaluated.Compliance.Reason)
}

func (s *RouterSuite) TestEmergencyWithdraw() {
	s.Require().NoError(s.vault.Deposit(context.Background(), s.brand, 9_000))

	s.Run("non-owner caller is a 401", func() {
		rec := s.admin(http.MethodPost, "/admin/vault/"+s.brand.String()+"/emergency-withdraw",
			map[string]any{"caller_id": s.athlete.String()})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("owner sweeps the balance", func() {
		rec := s.admin(http.MethodPost, "/admin/vault/"+s.brand.String()+"/emergency-withdraw",
			map[string]any{"caller_id": s.brand.String()})
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp map[string]uint64
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal(uint64(9_000), resp["swept"])
	})
}
