package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yunseo-dev/gearledger/internal/store"
)

// CheckoutsHandler handles the checkout ledger endpoints.
type CheckoutsHandler struct {
	DB *sql.DB
}

type createCheckoutRequest struct {
	PersonnelID  int64  `json:"personnel_id"`
	Type         string `json:"type"`
	SerialNumber string `json:"serial_number"`
	Date         string `json:"date"`
}

// Create handles POST /api/checkouts.
func (h *CheckoutsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = store.Today()
	}

	ck, err := store.Open(r.Context(), h.DB, req.PersonnelID, req.Type, req.SerialNumber, req.Date)
	if err != nil {
		storeError(w, err, "failed to create checkout")
		return
	}

	slog.Info("equipment checked out",
		"personnel_id", req.PersonnelID, "serial", ck.SerialNumber, "type", ck.EquipmentType)
	jsonResponse(w, http.StatusCreated, ck)
}

// Return handles PUT /api/checkouts/{id}/return.
func (h *CheckoutsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid checkout id")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = store.Today()
	}

	if err := store.Close(r.Context(), h.DB, id, req.Date); err != nil {
		storeError(w, err, "failed to return checkout")
		return
	}

	slog.Info("equipment returned", "checkout_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "returned"})
}

// UndoReturn handles PUT /api/checkouts/{id}/undo-return.
func (h *CheckoutsHandler) UndoReturn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid checkout id")
		return
	}

	if err := store.Reopen(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to undo return")
		return
	}

	slog.Info("return undone", "checkout_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "return undone"})
}

// Replace handles PUT /api/checkouts/{id}/replace.
func (h *CheckoutsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid checkout id")
		return
	}

	var req struct {
		Type         string `json:"type"`
		SerialNumber string `json:"serial_number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ck, err := store.Replace(r.Context(), h.DB, id, req.Type, req.SerialNumber)
	if err != nil {
		storeError(w, err, "failed to replace equipment")
		return
	}

	slog.Info("equipment replaced",
		"checkout_id", id, "serial", ck.SerialNumber, "chain", ck.PreviousSerials)
	jsonResponse(w, http.StatusOK, ck)
}

// SetRemarks handles PUT /api/checkouts/{id}/remarks.
func (h *CheckoutsHandler) SetRemarks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid checkout id")
		return
	}

	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetRemarks(r.Context(), h.DB, id, req.Remarks); err != nil {
		storeError(w, err, "failed to set remarks")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "remarks updated"})
}

// BatchReturn handles POST /api/checkouts/batch-return.
func (h *CheckoutsHandler) BatchReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonnelIDs []int64 `json:"personnel_ids"`
		Date         string  `json:"date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.PersonnelIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "personnel_ids required")
		return
	}
	if req.Date == "" {
		req.Date = store.Today()
	}

	closed, err := store.BatchReturn(r.Context(), h.DB, req.PersonnelIDs, req.Date)
	if err != nil {
		storeError(w, err, "failed to batch return")
		return
	}

	slog.Info("batch return", "requested", len(req.PersonnelIDs), "closed", closed)
	jsonResponse(w, http.StatusOK, map[string]int{"returned": closed})
}
