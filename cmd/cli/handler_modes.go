package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/modes"
)

type changeModeRequest struct {
	Label string `json:"label"`
}

// currentModeHandler returns the active mode or null
func (rm *RouteManager) currentModeHandler(w http.ResponseWriter, r *http.Request) {
	mode, ok := rm.broadcaster.Current()
	if !ok {
		rm.writeJSON(w, http.StatusOK, nil)
		return
	}
	rm.writeJSON(w, http.StatusOK, mode)
}

// availableModesHandler returns the full mode set
func (rm *RouteManager) availableModesHandler(w http.ResponseWriter, r *http.Request) {
	rm.writeJSON(w, http.StatusOK, rm.broadcaster.List())
}

// changeModeHandler activates a mode and notifies every observer
func (rm *RouteManager) changeModeHandler(w http.ResponseWriter, r *http.Request) {
	var req changeModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rm.writeMessage(w, http.StatusBadRequest, msgNotJSON)
		return
	}

	if _, err := rm.broadcaster.RequestChange(req.Label); err != nil {
		var unknown *modes.UnknownModeError
		switch {
		case errors.As(err, &unknown):
			rm.writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, modes.ErrClosed):
			rm.writeMessage(w, http.StatusServiceUnavailable, err.Error())
		default:
			rm.writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	rm.writeMessage(w, http.StatusOK, "Mode changed successfully")
}
