package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yunseo-dev/gearledger/internal/model"
	"github.com/yunseo-dev/gearledger/internal/store"
)

// CohortsHandler handles cohort and personnel endpoints.
type CohortsHandler struct {
	DB *sql.DB
}

// List handles GET /api/cohorts. Hidden cohorts are included with
// ?hidden=1.
func (h *CohortsHandler) List(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("hidden") == "1"
	cohorts, err := store.ListCohorts(r.Context(), h.DB, includeHidden)
	if err != nil {
		slog.Error("listing cohorts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list cohorts")
		return
	}
	if cohorts == nil {
		cohorts = []model.Cohort{}
	}
	jsonResponse(w, http.StatusOK, cohorts)
}

// Create handles POST /api/cohorts.
func (h *CohortsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cohort, err := store.CreateCohort(r.Context(), h.DB, req.Name)
	if err != nil {
		storeError(w, err, "failed to create cohort")
		return
	}

	slog.Info("cohort created", "cohort", cohort.Name)
	jsonResponse(w, http.StatusCreated, cohort)
}

// SetColor handles PUT /api/cohorts/{id}/color.
func (h *CohortsHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cohort id")
		return
	}

	var req struct {
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetCohortColor(r.Context(), h.DB, id, req.Color); err != nil {
		storeError(w, err, "failed to set cohort color")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "color updated"})
}

// SetHidden handles PUT /api/cohorts/{id}/hidden.
func (h *CohortsHandler) SetHidden(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cohort id")
		return
	}

	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetCohortHidden(r.Context(), h.DB, id, req.Hidden); err != nil {
		storeError(w, err, "failed to set cohort visibility")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "visibility updated"})
}

// Roster handles GET /api/cohorts/{id}/roster.
func (h *CohortsHandler) Roster(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cohort id")
		return
	}

	cohort, err := store.GetCohort(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting cohort", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get cohort")
		return
	}
	if cohort == nil {
		jsonError(w, http.StatusNotFound, "cohort not found")
		return
	}

	roster, err := store.Roster(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting roster", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get roster")
		return
	}
	if roster == nil {
		roster = []model.RosterEntry{}
	}
	jsonResponse(w, http.StatusOK, roster)
}

// AddPersonnel handles POST /api/cohorts/{id}/personnel.
func (h *CohortsHandler) AddPersonnel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid cohort id")
		return
	}

	var req struct {
		Name         string `json:"name"`
		DuplicateTag string `json:"duplicate_tag"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	person, err := store.CreatePersonnel(r.Context(), h.DB, id, req.Name, req.DuplicateTag)
	if err != nil {
		storeError(w, err, "failed to create personnel")
		return
	}

	slog.Info("personnel added", "cohort_id", id, "name", person.DisplayName())
	jsonResponse(w, http.StatusCreated, person)
}
