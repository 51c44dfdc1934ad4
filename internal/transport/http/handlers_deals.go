package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nilclear/pkg/domain"
	"nilclear/pkg/platform/httputil"
	"nilclear/pkg/requestcontext"
)

func dealIDParam(r *http.Request) (domain.DealID, error) {
	return domain.ParseDealID(chi.URLParam(r, "dealID"))
}

func entityIDParam(r *http.Request, name string) (domain.EntityID, error) {
	return domain.ParseEntityID(chi.URLParam(r, name))
}

// HandleCreateDeal handles POST /deals requests.
func (h *Handler) HandleCreateDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateDealRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.deals.Create(ctx, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "deal creation failed",
			"request_id", requestID,
			"athlete", req.AthleteID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "deal created",
		"request_id", requestID,
		"deal_id", d.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromDeal(d))
}

// HandleGetDeal handles GET /deals/{dealID} requests.
func (h *Handler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := dealIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.deals.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDeal(d))
}

// HandleEvaluateDeal handles POST /deals/{dealID}/evaluate requests.
func (h *Handler) HandleEvaluateDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, err := dealIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.deals.Evaluate(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "deal evaluation failed",
			"request_id", requestID,
			"deal_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "deal evaluated",
		"request_id", requestID,
		"deal_id", d.ID,
		"state", d.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDeal(d))
}

// HandleExecuteDeal handles POST /deals/{dealID}/execute requests.
func (h *Handler) HandleExecuteDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, err := dealIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.deals.Execute(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "deal execution failed",
			"request_id", requestID,
			"deal_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "deal executed",
		"request_id", requestID,
		"deal_id", d.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDeal(d))
}

// HandleCancelDeal handles POST /deals/{dealID}/cancel requests.
func (h *Handler) HandleCancelDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := dealIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CancelDealRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.deals.Cancel(ctx, id, req.Reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "deal cancellation failed",
			"request_id", requestID,
			"deal_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDeal(d))
}

// HandleListAthleteDeals handles GET /athletes/{entityID}/deals requests.
func (h *Handler) HandleListAthleteDeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	athlete, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deals, err := h.deals.ListByAthlete(ctx, athlete)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]*DealResponse, len(deals))
	for i, d := range deals {
		resp[i] = FromDeal(d)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAthleteVolume handles GET /athletes/{entityID}/volume requests.
func (h *Handler) HandleAthleteVolume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	athlete, err := entityIDParam(r, "entityID")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	now := requestcontext.Now(ctx)
	day, err := h.volume.CurrentDayTotal(ctx, athlete, now)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	month, err := h.volume.CurrentMonthTotal(ctx, athlete, now)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VolumeResponse{
		Athlete:    athlete.String(),
		DayTotal:   day,
		MonthTotal: month,
	})
}
