package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yunseo-dev/gearledger/internal/model"
	"github.com/yunseo-dev/gearledger/internal/store"
)

// EquipmentHandler handles the equipment registry and projection endpoints.
type EquipmentHandler struct {
	DB *sql.DB
}

// List handles GET /api/equipment: the full ledger with holders.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListEquipment(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing equipment", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}
	if items == nil {
		items = []model.Equipment{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Types handles GET /api/equipment/types.
func (h *EquipmentHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := store.EquipmentTypes(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing equipment types", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list types")
		return
	}
	if types == nil {
		types = []string{}
	}
	jsonResponse(w, http.StatusOK, types)
}

// MarkInspected handles PUT /api/equipment/{id}/inspected.
func (h *EquipmentHandler) MarkInspected(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid equipment id")
		return
	}

	if err := store.MarkInspected(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to mark inspected")
		return
	}

	slog.Info("equipment inspected", "equipment_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inspected"})
}

// Inventory handles GET /api/inventory. Units awaiting inspection are
// included with ?pending=1.
func (h *EquipmentHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	includePending := r.URL.Query().Get("pending") == "1"
	items, err := store.AvailableInventory(r.Context(), h.DB, includePending)
	if err != nil {
		slog.Error("getting inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get inventory")
		return
	}
	if items == nil {
		items = []model.Equipment{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Stats handles GET /api/stats.
func (h *EquipmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.EquipmentStats(r.Context(), h.DB)
	if err != nil {
		slog.Error("getting stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// TypeStats handles GET /api/stats/types.
func (h *EquipmentHandler) TypeStats(w http.ResponseWriter, r *http.Request) {
	counts, err := store.TypeCounts(r.Context(), h.DB)
	if err != nil {
		slog.Error("getting type stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	if counts == nil {
		counts = []model.TypeCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}

// CohortTypeStats handles GET /api/stats/cohort-types.
func (h *EquipmentHandler) CohortTypeStats(w http.ResponseWriter, r *http.Request) {
	counts, err := store.CohortTypeCounts(r.Context(), h.DB)
	if err != nil {
		slog.Error("getting cohort type stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	if counts == nil {
		counts = []model.CohortTypeCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}

// ListColors handles GET /api/colors.
func (h *EquipmentHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := store.ListTypeColors(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing type colors", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list colors")
		return
	}
	if colors == nil {
		colors = []model.TypeColor{}
	}
	jsonResponse(w, http.StatusOK, colors)
}

// SetColor handles PUT /api/colors.
func (h *EquipmentHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" || req.Color == "" {
		jsonError(w, http.StatusBadRequest, "type and color required")
		return
	}

	if err := store.SetTypeColor(r.Context(), h.DB, req.Type, req.Color); err != nil {
		storeError(w, err, "failed to set type color")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "color updated"})
}
