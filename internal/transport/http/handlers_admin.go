package httptransport

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"nilclear/internal/sanctions"
	"nilclear/pkg/platform/httputil"
	"nilclear/pkg/requestcontext"
)

// HandleListSanction handles POST /admin/sanctions requests.
func (h *Handler) HandleListSanction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ListSanctionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.sanctions.ListEntity(ctx, sanctions.ListRequest{
		Entity:       req.ParsedEntity(),
		ListName:     req.ListName,
		Reason:       req.Reason,
		EvidenceHash: req.EvidenceHash,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "sanctions listing failed",
			"request_id", requestID,
			"entity", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelistSanction handles DELETE /admin/sanctions/{entityID} requests.
func (h *Handler) HandleDelistSanction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entity, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sanctions.Delist(ctx, entity); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListSanctions handles GET /admin/sanctions requests.
func (h *Handler) HandleListSanctions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.sanctions.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	type entryResponse struct {
		Entity       string `json:"entity"`
		ListName     string `json:"list_name"`
		Reason       string `json:"reason"`
		EvidenceHash string `json:"evidence_hash"`
		Listed       bool   `json:"listed"`
	}
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			Entity:       e.Entity.String(),
			ListName:     e.ListName,
			Reason:       e.Reason,
			EvidenceHash: e.EvidenceHash,
			Listed:       e.Listed,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleVerifyKYC handles POST /admin/kyc requests.
func (h *Handler) HandleVerifyKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyKYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.kyc.Verify(ctx, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc verification failed",
			"request_id", requestID,
			"entity", req.EntityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entity":       record.Entity.String(),
		"tier":         string(record.Tier),
		"jurisdiction": record.Jurisdiction.String(),
		"verified_at":  record.VerifiedAt,
		"expires_at":   record.ExpiresAt,
	})
}

// HandleGetThresholds handles GET /admin/thresholds requests.
func (h *Handler) HandleGetThresholds(w http.ResponseWriter, r *http.Request) {
	th, err := h.policy.Thresholds(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, th)
}

// HandleUpdateThresholds handles PUT /admin/thresholds requests.
func (h *Handler) HandleUpdateThresholds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateThresholdsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	th, err := h.policy.UpdateThresholds(ctx, req.Thresholds())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, th)
}

// HandleListJurisdictions handles GET /admin/jurisdictions requests.
func (h *Handler) HandleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	codes, err := h.policy.ApprovedJurisdictions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"jurisdictions": codes})
}

// HandleApproveJurisdiction handles PUT /admin/jurisdictions/{code} requests.
func (h *Handler) HandleApproveJurisdiction(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := h.policy.ApproveJurisdiction(r.Context(), code); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeJurisdiction handles DELETE /admin/jurisdictions/{code} requests.
func (h *Handler) HandleRevokeJurisdiction(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if err := h.policy.RevokeJurisdiction(r.Context(), code); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDealAudit handles GET /admin/deals/{dealID}/audit requests.
func (h *Handler) HandleDealAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := dealIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.auditLog.ListByDeal(ctx, id.String())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	type eventResponse struct {
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Action    string `json:"action"`
		Entity    string `json:"entity,omitempty"`
		Amount    uint64 `json:"amount,omitempty"`
		Decision  string `json:"decision,omitempty"`
		Reason    string `json:"reason,omitempty"`
		Detail    string `json:"detail,omitempty"`
	}
	resp := make([]eventResponse, len(events))
	for i, e := range events {
		resp[i] = eventResponse{
			ID:        e.ID.String(),
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
			Action:    string(e.Action),
			Entity:    e.Entity,
			Amount:    e.Amount,
			Decision:  e.Decision,
			Reason:    e.Reason,
			Detail:    string(e.Detail),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
