package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/soprimec/rental-engine/exchange"
)

// =============================================================================
// ADMIN - Backup, export, reset and demo data
//   GET  /api/export/json   Full backup download
//   POST /api/import/json   Replace the tables present in the document
//   GET  /api/export/csv    Tenant list with arrears
//   POST /api/reset         Delete everything, contracts included
//   POST /api/demo/seed     Load demo data (?force=true to overwrite)
// =============================================================================

func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to export data", err)
		return
	}

	// Encode first so a failure still yields a proper error response.
	var buf bytes.Buffer
	if err := exchange.WriteJSON(&buf, data); err != nil {
		writeStoreError(w, r, "Failed to export data", err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+exchange.BackupFilename(h.svc.Today()))
	writeRaw(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := exchange.ReadJSON(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid backup document", err)
		return
	}
	if err := h.svc.Import(r.Context(), data); err != nil {
		writeStoreError(w, r, "Failed to import data", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to export tenants", err)
		return
	}

	var buf bytes.Buffer
	if err := exchange.WriteTenantsCSV(&buf, data, h.svc.Today()); err != nil {
		writeStoreError(w, r, "Failed to export tenants", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+exchange.TenantsCSVFilename)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		writeStoreError(w, r, "Failed to reset data", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	loaded, err := h.svc.SeedDemo(r.Context(), force)
	if err != nil {
		writeStoreError(w, r, "Failed to load demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, SeedResultDTO{Loaded: loaded})
}
