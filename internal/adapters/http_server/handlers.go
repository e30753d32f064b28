// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"gamerental/internal/app"
	"gamerental/internal/domain"
)

type Handlers struct {
	Q    *app.QueryService
	Chk  *app.AvailabilityChecker
	Flow *app.Flow
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/platforms", h.listPlatforms)
	s.mux.Get("/v1/platforms/{slug}", h.getPlatform)
	s.mux.Get("/v1/games", h.listGames)
	s.mux.Get("/v1/games/{slug}", h.getGame)
	s.mux.Get("/v1/games/{slug}/availability", h.checkAvailability)
	s.mux.Post("/v1/games/{slug}/reservations", h.createReservation)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeUpstreamProblem maps catalog-read failures: unknown slug is a 404,
// anything else is a bad gateway (the fault is upstream, not here).
func writeUpstreamProblem(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
		return
	}
	log.Error().Err(err).Str("what", what).Msg("catalog read failed")
	writeProblem(w, http.StatusBadGateway, "Catalog Unavailable", "could not reach the catalog service")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

/********** browsing views **********/

func (h *Handlers) listPlatforms(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListPlatforms(r.Context())
	if err != nil {
		writeUpstreamProblem(w, err, "platforms")
		return
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) getPlatform(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetPlatform(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeUpstreamProblem(w, err, "platform")
		return
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) listGames(w http.ResponseWriter, r *http.Request) {
	var q domain.GamesQuery
	if ps := r.URL.Query().Get("platform"); ps != "" {
		id, err := strconv.ParseInt(ps, 10, 64)
		if err != nil || id <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid platform", "platform must be a positive number")
			return
		}
		q.PlatformID = &id
	}
	out, err := h.Q.ListGames(r.Context(), q)
	if err != nil {
		writeUpstreamProblem(w, err, "games")
		return
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) getGame(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.GetGame(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeUpstreamProblem(w, err, "game")
		return
	}
	writeCachedJSON(w, r, out)
}

/********** reservation flow **********/

type availabilityResponse struct {
	GameID    int64  `json:"gameId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Available bool   `json:"available"`
	Conflicts int    `json:"conflicts"`
}

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	rng, err := domain.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		// fails fast: no catalog call for a bad range
		writeProblem(w, http.StatusBadRequest, "Invalid Range", err.Error())
		return
	}

	gameID, err := h.Q.ResolveGameID(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeUpstreamProblem(w, err, "game")
		return
	}

	av, err := h.Chk.Check(r.Context(), gameID, rng)
	if err != nil {
		var terr *domain.TransportError
		if errors.As(err, &terr) {
			log.Error().Err(err).Int64("game", gameID).Msg("availability check failed")
			writeProblem(w, http.StatusBadGateway, "Check Failed", "could not verify availability")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	writeCachedJSON(w, r, availabilityResponse{
		GameID:    av.GameID,
		StartDate: av.Dates.Start.Format(domain.DateLayout),
		EndDate:   av.Dates.End.Format(domain.DateLayout),
		Available: av.Available,
		Conflicts: len(av.Conflicts),
	})
}

type reservationRequest struct {
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

type reservationResponse struct {
	ID            int64  `json:"id,omitempty"`
	GameID        int64  `json:"gameId"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// createReservation drives the whole flow for one request: dates -> check ->
// contact -> submit. The two upstream calls stay independent, so a conflict
// slipping in between them surfaces as a 409, not a success.
func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}

	gameID, err := h.Q.ResolveGameID(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeUpstreamProblem(w, err, "game")
		return
	}

	st := h.Flow.Begin(gameID)
	st = h.Flow.SetDates(st, req.StartDate, req.EndDate)
	if st.Phase != app.FlowAwaitingDates {
		writeProblem(w, http.StatusBadRequest, "Invalid Range", st.Message)
		return
	}

	st = h.Flow.Verify(r.Context(), st)
	switch st.Phase {
	case app.FlowUnavailable:
		writeProblem(w, http.StatusConflict, "Unavailable", st.Message)
		return
	case app.FlowFailed:
		h.writeFlowFailure(w, st)
		return
	}

	st = h.Flow.Submit(r.Context(), st, domain.ContactInfo{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	})
	if st.Phase != app.FlowConfirmed {
		h.writeFlowFailure(w, st)
		return
	}

	res := st.Reservation
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(reservationResponse{
		ID:            res.ID,
		GameID:        res.GameID,
		StartDate:     res.Dates.Start.Format(domain.DateLayout),
		EndDate:       res.Dates.End.Format(domain.DateLayout),
		CustomerName:  res.Customer.Name,
		CustomerEmail: res.Customer.Email,
		CustomerPhone: res.Customer.Phone,
	}); err != nil {
		log.Error().Err(err).Msg("failed to write reservation response")
	}
}

func (h *Handlers) writeFlowFailure(w http.ResponseWriter, st app.FlowState) {
	var verr *domain.ValidationError
	switch {
	case errors.As(st.Err, &verr):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	case errors.Is(st.Err, domain.ErrInvalidRange):
		writeProblem(w, http.StatusBadRequest, "Invalid Range", st.Message)
	case errors.Is(st.Err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", st.Message)
	default:
		log.Error().Err(st.Err).Str("phase", st.Phase.String()).Msg("reservation flow failed")
		writeProblem(w, http.StatusBadGateway, "Submit Failed", st.Message)
	}
}
