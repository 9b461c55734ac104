package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soprimec/rental-engine/portfolio"
	"github.com/soprimec/rental-engine/store/contracts"
)

// =============================================================================
// CONTRACT DOCUMENTS
//   POST   /api/contrats/{code}   multipart field "contrat", PDF only
//   GET    /api/contrats/{code}   inline, or attachment with ?download=true
//   DELETE /api/contrats/{code}
// =============================================================================

const contractField = "contrat"

func (h *Handler) UploadContract(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if r.ContentLength > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "Contract file too large", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Contract file too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(contractField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer file.Close()

	mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if mediaType != "application/pdf" {
		writeError(w, http.StatusBadRequest, "Only PDF files are accepted", fmt.Errorf("content type %q", mediaType))
		return
	}

	if err := h.svc.AttachContract(r.Context(), code, header.Filename, file); err != nil {
		writeContractError(w, r, "Failed to store contract", err)
		return
	}
	writeJSON(w, http.StatusOK, ContractUploadedDTO{OK: true, Filename: header.Filename})
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	tenant, f, err := h.svc.OpenContract(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeContractError(w, r, "Contract not found", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeStoreError(w, r, "Failed to read contract", err)
		return
	}

	name := contracts.DownloadName(tenant.Name)
	disposition := "inline"
	if r.URL.Query().Get("download") == "true" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DetachContract(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeContractError(w, r, "Failed to delete contract", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func writeContractError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, contracts.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, portfolio.ErrNoContractStore):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeStoreError(w, r, message, err)
	}
}
