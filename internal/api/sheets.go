package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/yunseo-dev/gearledger/internal/bulk"
)

// SheetsHandler handles spreadsheet import and export endpoints.
type SheetsHandler struct {
	DB *sql.DB
}

// maxSheetBytes caps uploaded workbooks.
const maxSheetBytes = 10 << 20

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportRoster handles POST /api/import/roster.
func (h *SheetsHandler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	file, ok := sheetUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := bulk.ParseRoster(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	processed, err := bulk.ImportRoster(r.Context(), h.DB, rows)
	if err != nil {
		storeError(w, err, "failed to import roster")
		return
	}

	slog.Info("roster imported", "rows", len(rows), "processed", processed)
	jsonResponse(w, http.StatusOK, map[string]int{"processed": processed})
}

// ImportStock handles POST /api/import/stock.
func (h *SheetsHandler) ImportStock(w http.ResponseWriter, r *http.Request) {
	file, ok := sheetUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := bulk.ParseStock(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, skipped, err := bulk.ImportStock(r.Context(), h.DB, rows)
	if err != nil {
		storeError(w, err, "failed to import stock")
		return
	}

	slog.Info("stock imported", "added", added, "skipped", skipped)
	jsonResponse(w, http.StatusOK, map[string]int{"added": added, "skipped": skipped})
}

// ExportRoster handles GET /api/export/roster.
func (h *SheetsHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	buf, err := bulk.ExportRoster(r.Context(), h.DB)
	if err != nil {
		slog.Error("exporting roster", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export roster")
		return
	}
	sendWorkbook(w, buf.Bytes(), "roster")
}

// ExportInventory handles GET /api/export/inventory.
func (h *SheetsHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	buf, err := bulk.ExportInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("exporting inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}
	sendWorkbook(w, buf.Bytes(), "inventory")
}

// sheetUpload pulls the "file" part out of a multipart upload. On
// failure the response is already written and ok is false.
func sheetUpload(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSheetBytes)
	if err := r.ParseMultipartForm(maxSheetBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "spreadsheet file required")
		return nil, false
	}
	return file, true
}

func sendWorkbook(w http.ResponseWriter, data []byte, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
