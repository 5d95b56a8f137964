package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yunseo-dev/gearledger/internal/imaging"
	"github.com/yunseo-dev/gearledger/internal/model"
	"github.com/yunseo-dev/gearledger/internal/store"
)

// DamageHandler handles damage report and photo endpoints.
type DamageHandler struct {
	DB *sql.DB
}

type createReportRequest struct {
	EquipmentID int64  `json:"equipment_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// List handles GET /api/damage.
func (h *DamageHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := store.ListReports(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing damage reports", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list damage reports")
		return
	}
	if reports == nil {
		reports = []model.DamageReport{}
	}
	jsonResponse(w, http.StatusOK, reports)
}

// Create handles POST /api/damage.
func (h *DamageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = store.Today()
	}

	report, err := store.Report(r.Context(), h.DB, req.EquipmentID, req.Date, req.Description)
	if err != nil {
		storeError(w, err, "failed to create damage report")
		return
	}

	slog.Info("damage reported", "equipment_id", req.EquipmentID, "report_id", report.ID)
	jsonResponse(w, http.StatusCreated, report)
}

// UploadImage handles POST /api/damage/{id}/images.
func (h *DamageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, mime, err := imaging.ProcessPhoto(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	imageID, err := store.AttachImage(r.Context(), h.DB, id, data, mime)
	if err != nil {
		storeError(w, err, "failed to store photo")
		return
	}

	slog.Info("damage photo attached", "report_id", id, "image_id", imageID)
	jsonResponse(w, http.StatusCreated, map[string]int64{"image_id": imageID})
}

// DeleteImage handles DELETE /api/damage/{id}/images/{imageID}.
func (h *DamageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid report id")
		return
	}
	imageID, err := strconv.ParseInt(r.PathValue("imageID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := store.RemoveImage(r.Context(), h.DB, id, imageID); err != nil {
		storeError(w, err, "failed to delete photo")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo deleted"})
}

// GetImage handles GET /api/damage/images/{id}.
func (h *DamageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	data, mime, err := store.GetImage(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting damage photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}
