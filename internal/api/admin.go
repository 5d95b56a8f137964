package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/yunseo-dev/gearledger/internal/store"
)

// AdminHandler handles destructive administrative endpoints.
type AdminHandler struct {
	DB *sql.DB
}

// Reset handles POST /api/reset. The caller must echo back a literal
// confirmation string; double confirmation lives in the presentation
// layer, this is the last backstop against an accidental wipe.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm string `json:"confirm"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Confirm != "RESET" {
		jsonError(w, http.StatusBadRequest, `confirmation string "RESET" required`)
		return
	}

	if err := store.FactoryReset(r.Context(), h.DB); err != nil {
		slog.Error("factory reset failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("factory reset performed", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "all tracking data deleted"})
}
