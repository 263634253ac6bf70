package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/freeeve/quiet-conquest/internal/auth"
	"github.com/freeeve/quiet-conquest/internal/repository"
	"github.com/freeeve/quiet-conquest/internal/service"
	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// PlayHandler handles in-game endpoints: the player's board view, unit
// actions, production, and turn control.
type PlayHandler struct {
	playSvc  *service.PlayService
	snapRepo repository.SnapshotRepository
}

// NewPlayHandler creates a PlayHandler.
func NewPlayHandler(playSvc *service.PlayService, snapRepo repository.SnapshotRepository) *PlayHandler {
	return &PlayHandler{playSvc: playSvc, snapRepo: snapRepo}
}

// playErrStatus maps service and engine errors to HTTP status codes.
func playErrStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGameNotActive), errors.Is(err, service.ErrUnknownOrder):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotInGame):
		return http.StatusForbidden
	}

	var ge engine.GameError
	if errors.As(err, &ge) {
		switch ge.Kind {
		case engine.ErrNoSuchUnit, engine.ErrNoUnitAtLocation, engine.ErrNoSuchCity, engine.ErrNoCityAtLocation:
			return http.StatusNotFound
		case engine.ErrUnitNotControlledByPlayer, engine.ErrCityNotControlledByPlayer, engine.ErrNoPlayerIdentifiedBySecret:
			return http.StatusForbidden
		case engine.ErrNotPlayersTurn, engine.ErrWrongPhase, engine.ErrTurnEndRequirementsNotMet:
			return http.StatusConflict
		default:
			return http.StatusUnprocessableEntity
		}
	}
	var me engine.MoveError
	if errors.As(err, &me) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writePlayError(w http.ResponseWriter, err error) {
	writeError(w, playErrStatus(err), err.Error())
}

func pathUnitID(r *http.Request) (engine.UnitID, bool) {
	id, err := strconv.ParseUint(r.PathValue("unitId"), 10, 64)
	if err != nil {
		return 0, false
	}
	return engine.UnitID(id), true
}

func unitTypeByName(name string) (engine.UnitType, bool) {
	for _, t := range engine.UnitTypes {
		if strings.EqualFold(t.String(), name) {
			return t, true
		}
	}
	return 0, false
}

// GetBoard handles GET /api/v1/games/{id}/board
func (h *PlayHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	view, err := h.playSvc.View(r.Context(), gameID, userID)
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BeginTurn handles POST /api/v1/games/{id}/turn/begin
func (h *PlayHandler) BeginTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	start, err := h.playSvc.BeginTurn(r.Context(), gameID, userID)
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, start)
}

// EndTurn handles POST /api/v1/games/{id}/turn/end
func (h *PlayHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var err error
	if r.URL.Query().Get("force") == "true" {
		err = h.playSvc.ForceEndTurn(r.Context(), gameID, userID)
	} else {
		err = h.playSvc.EndTurn(r.Context(), gameID, userID)
	}
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "turn ended"})
}

// MoveUnit handles POST /api/v1/games/{id}/units/{unitId}/move
func (h *PlayHandler) MoveUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	unitID, ok := pathUnitID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	var req struct {
		X           uint16 `json:"x"`
		Y           uint16 `json:"y"`
		AvoidCombat bool   `json:"avoid_combat,omitempty"`
		Preview     bool   `json:"preview,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dest := engine.Location{X: req.X, Y: req.Y}

	var mv *engine.Move
	var err error
	if req.Preview {
		mv, err = h.playSvc.PreviewMove(r.Context(), gameID, userID, unitID, dest)
	} else {
		mv, err = h.playSvc.MoveUnit(r.Context(), gameID, userID, unitID, dest, req.AvoidCombat)
	}
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.MoveViewOf(mv))
}

// OrderUnit handles POST /api/v1/games/{id}/units/{unitId}/orders
func (h *PlayHandler) OrderUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	unitID, ok := pathUnitID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	var req struct {
		Kind string `json:"kind"` // sentry, skip, goto, explore
		X    uint16 `json:"x,omitempty"`
		Y    uint16 `json:"y,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.playSvc.OrderUnit(r.Context(), gameID, userID, req.Kind, unitID, engine.Location{X: req.X, Y: req.Y})
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// DisbandUnit handles POST /api/v1/games/{id}/units/{unitId}/disband
func (h *PlayHandler) DisbandUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	unitID, ok := pathUnitID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}

	unit, err := h.playSvc.DisbandUnit(r.Context(), gameID, userID, unitID)
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "disbanded", "unit_id": unit.ID})
}

// ActivateUnit handles POST /api/v1/games/{id}/activate
func (h *PlayHandler) ActivateUnit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		X uint16 `json:"x"`
		Y uint16 `json:"y"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playSvc.ActivateUnit(r.Context(), gameID, userID, engine.Location{X: req.X, Y: req.Y}); err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

// ProductionOptions handles GET /api/v1/games/{id}/production?x=&y=
func (h *PlayHandler) ProductionOptions(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	loc, ok := queryLocation(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required")
		return
	}

	types, err := h.playSvc.ValidProductions(r.Context(), gameID, userID, loc)
	if err != nil {
		writePlayError(w, err)
		return
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	writeJSON(w, http.StatusOK, names)
}

// SetProduction handles POST /api/v1/games/{id}/production
func (h *PlayHandler) SetProduction(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		X        uint16 `json:"x"`
		Y        uint16 `json:"y"`
		UnitType string `json:"unit_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, ok := unitTypeByName(req.UnitType)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown unit type")
		return
	}

	if err := h.playSvc.SetProduction(r.Context(), gameID, userID, engine.Location{X: req.X, Y: req.Y}, t); err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "production set"})
}

// ClearProduction handles POST /api/v1/games/{id}/production/clear
func (h *PlayHandler) ClearProduction(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		X      uint16 `json:"x"`
		Y      uint16 `json:"y"`
		Ignore bool   `json:"ignore,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.playSvc.ClearProduction(r.Context(), gameID, userID, engine.Location{X: req.X, Y: req.Y}, req.Ignore); err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "production cleared"})
}

// ListTurns handles GET /api/v1/games/{id}/turns — the archived turn
// numbers available for this game.
func (h *PlayHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	turns, err := h.snapRepo.ListTurns(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turns == nil {
		writeJSON(w, http.StatusOK, []uint32{})
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

func queryLocation(r *http.Request) (engine.Location, bool) {
	x, errX := strconv.ParseUint(r.URL.Query().Get("x"), 10, 16)
	y, errY := strconv.ParseUint(r.URL.Query().Get("y"), 10, 16)
	if errX != nil || errY != nil {
		return engine.Location{}, false
	}
	return engine.Location{X: uint16(x), Y: uint16(y)}, true
}
