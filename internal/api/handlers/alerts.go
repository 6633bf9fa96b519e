package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/aktietipset/backend/internal/alerts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
	"github.com/wonny/aktietipset/backend/pkg/validation"
)

// AlertHandler serves the alert CRUD endpoints
type AlertHandler struct {
	repo     *alerts.Repository
	validate *validation.Validator
	logger   *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(repo *alerts.Repository, v *validation.Validator, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		repo:     repo,
		validate: v,
		logger:   log,
	}
}

// List returns every alert
// GET /v1/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.repo.List())
}

// Create stores a new alert
// POST /v1/alerts
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req alerts.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.repo.Create(req))
}

// Update changes an alert's rule or active flag
// PATCH /v1/alerts/{id}
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req alerts.UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	updated, ok := h.repo.Update(mux.Vars(r)["id"], req)
	if !ok {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes an alert
// DELETE /v1/alerts/{id}
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.repo.Delete(mux.Vars(r)["id"]) {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
