package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-match/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
	"github.com/rocketscienceinc/tictactoe-match/internal/usecase"
)

type sessionStore interface {
	Create() (*usecase.Session, error)
	Get(id string) (*usecase.Session, error)
	Delete(id string) error
}

type statsReader interface {
	GetStats(ctx context.Context) (*entity.Stats, error)
}

type handlers struct {
	logger   *slog.Logger
	sessions sessionStore
	stats    statsReader
}

type startRequest struct {
	StartingTurn entity.Turn `json:"starting_turn"`
	AIEnabled    bool        `json:"ai_enabled"`
}

type transitionRequest struct {
	Phase entity.Phase `json:"phase"`
}

type sessionResponse struct {
	ID    string             `json:"id"`
	Match *entity.MatchState `json:"match,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errMalformedBody = errors.New("malformed request body")

func (that *handlers) createSession(w http.ResponseWriter, _ *http.Request) {
	session, err := that.sessions.Create()
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, sessionResponse{ID: session.ID})
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeSnapshot(w, r, http.StatusOK, session)
}

func (that *handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) startMatch(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !that.decode(w, r, &req) {
		return
	}

	that.apply(w, r, http.StatusOK, func(controller *usecase.MatchController) error {
		return controller.StartMatch(req.StartingTurn, req.AIEnabled)
	})
}

func (that *handlers) submitMove(w http.ResponseWriter, r *http.Request) {
	var coord entity.Coordinate
	if !that.decode(w, r, &coord) {
		return
	}

	that.apply(w, r, http.StatusAccepted, func(controller *usecase.MatchController) error {
		return controller.SubmitMove(coord)
	})
}

func (that *handlers) requestTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if !that.decode(w, r, &req) {
		return
	}

	that.apply(w, r, http.StatusOK, func(controller *usecase.MatchController) error {
		return controller.RequestTransition(req.Phase)
	})
}

func (that *handlers) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.stats.GetStats(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, stats)
}

// apply - runs fn on the session loop and answers with the resulting snapshot.
func (that *handlers) apply(w http.ResponseWriter, r *http.Request, status int, fn func(*usecase.MatchController) error) {
	session, err := that.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	if err = session.Do(r.Context(), fn); err != nil {
		that.writeError(w, err)
		return
	}

	that.writeSnapshot(w, r, status, session)
}

func (that *handlers) writeSnapshot(w http.ResponseWriter, r *http.Request, status int, session *usecase.Session) {
	state, err := session.Snapshot(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, status, sessionResponse{ID: session.ID, Match: &state})
}

func (that *handlers) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errMalformedBody.Error() + ": " + err.Error()})
		return false
	}

	return true
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrMoveGateClosed),
		errors.Is(err, apperror.ErrMatchNotInProgress),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrCoordinateOutOfRange),
		errors.Is(err, apperror.ErrInvalidTurn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
