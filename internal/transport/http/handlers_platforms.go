package httptransport

import (
	"net/http"

	"nilclear/pkg/platform/httputil"
	"nilclear/pkg/requestcontext"
)

// HandleToken handles POST /platforms/token requests. Credentials in, JWT
// out.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.platforms.Authenticate(ctx, req.ParsedPlatform(), req.Secret)
	if err != nil {
		h.logger.WarnContext(ctx, "platform authentication failed",
			"request_id", requestID,
			"platform", req.PlatformID,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.Issue(p.ID, requestcontext.Now(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}

// HandleRegisterPlatform handles POST /admin/platforms requests.
func (h *Handler) HandleRegisterPlatform(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterPlatformRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, secret, err := h.platforms.Register(ctx, req.ParsedPlatform(), req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "platform registration failed",
			"request_id", requestID,
			"platform", req.PlatformID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	// The plaintext secret appears in this response only.
	httputil.WriteJSON(w, http.StatusCreated, RegisterPlatformResponse{
		PlatformID: p.ID.String(),
		Name:       p.Name,
		Secret:     secret,
	})
}

// HandleAuthorizeAthlete handles PUT /admin/platforms/{entityID}/athletes/{athleteID}.
func (h *Handler) HandleAuthorizeAthlete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	platform, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	athlete, err := entityIDParam(r, "athleteID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.platforms.AuthorizeAthlete(ctx, platform, athlete); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeAthlete handles DELETE /admin/platforms/{entityID}/athletes/{athleteID}.
func (h *Handler) HandleRevokeAthlete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	platform, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	athlete, err := entityIDParam(r, "athleteID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.platforms.RevokeAthlete(ctx, platform, athlete); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
