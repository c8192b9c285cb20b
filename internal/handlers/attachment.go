package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shoptrack/apiserver/internal/services"
	"github.com/shoptrack/apiserver/internal/store"
	"github.com/shoptrack/apiserver/types"
)

const (
	maxAttachmentMemory = 32 << 20
	formFieldFile       = "file"
)

// AttachmentHandler provides upload/list/download for order attachments.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler constructs a handler with the provided service.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// AttachmentRouter registers attachment routes on the given router.
// Callers only mount it when a storage backend is configured.
func AttachmentRouter(r chi.Router, attachmentService *services.AttachmentService) {
	handler := NewAttachmentHandler(attachmentService)

	r.Post("/", handler.Upload)
	r.Get("/", handler.List)
	r.Get("/{attachmentID}", handler.Download)
}

// AttachmentListResponse is the metadata listing payload.
type AttachmentListResponse struct {
	Attachments []types.Attachment `json:"attachments"`
}

func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachmentService.Upload(r.Context(), orderID, header.Filename, contentType, file, header.Size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store attachment")
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	attachments, err := h.attachmentService.List(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attachments")
		return
	}

	writeJSON(w, http.StatusOK, AttachmentListResponse{Attachments: attachments})
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	attachmentID, err := strconv.Atoi(chi.URLParam(r, "attachmentID"))
	if err != nil || attachmentID < 1 {
		writeError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	attachment, reader, err := h.attachmentService.Open(r.Context(), orderID, attachmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "attachment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to open attachment")
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", attachment.Filename))
	_, _ = io.Copy(w, reader)
}
