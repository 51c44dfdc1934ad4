package httptransport

import (
	"net/http"

	"nilclear/pkg/platform/httputil"
	"nilclear/pkg/requestcontext"
)

// HandleVaultBalance handles GET /vault/{entityID}/balance requests.
func (h *Handler) HandleVaultBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.vault.Balance(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Owner:   owner.String(),
		Balance: balance,
	})
}

// HandleVaultDeposit handles POST /vault/{entityID}/deposit requests. Brands
// fund their vault here before executing a deal.
func (h *Handler) HandleVaultDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	owner, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.vault.Deposit(ctx, owner, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	balance, err := h.vault.Balance(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Owner:   owner.String(),
		Balance: balance,
	})
}

// HandleEmergencyWithdraw handles POST /admin/vault/{entityID}/emergency-withdraw
// requests. The body names the caller; the engine enforces owner-only access.
func (h *Handler) HandleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	owner, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[EmergencyWithdrawRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	swept, err := h.settlement.EmergencyWithdraw(ctx, owner, req.ParsedCaller())
	if err != nil {
		h.logger.ErrorContext(ctx, "emergency withdrawal failed",
			"request_id", requestID,
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]uint64{"swept": swept})
}
