package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// uploadMemory is how much of a multipart upload is buffered in memory
const uploadMemory = 8 << 20

// ContentService defines the content block operations used by the handler
type ContentService interface {
	ListBlocks(ctx context.Context, page string, filter repositories.ContentBlockFilter) ([]*entities.ContentBlock, error)
	GetBlock(ctx context.Context, id string) (*entities.ContentBlock, error)
	AddBlock(ctx context.Context, page string, input services.NewBlockInput) (*entities.ContentBlock, error)
	UpdateBlock(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error)
	DeleteBlock(ctx context.Context, id string) error
	ReorderBlock(ctx context.Context, id string, dir ordering.Direction) ([]*entities.ContentBlock, error)
	UploadBlockImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*entities.ContentBlock, error)
}

// ContentHandler handles content block requests
type ContentHandler struct {
	service ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(service ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// ListBlocks handles GET /api/content/{page}?section=&specialty=
func (h *ContentHandler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ContentBlockFilter{
		Section:   strings.TrimSpace(r.URL.Query().Get("section")),
		Specialty: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("specialty"))),
	}

	blocks, err := h.service.ListBlocks(r.Context(), r.PathValue("page"), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"page":   r.PathValue("page"),
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// GetBlock handles GET /api/content/blocks/{id}
func (h *ContentHandler) GetBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.service.GetBlock(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, block)
}

// AddBlock handles POST /api/admin/content/{page}/blocks
func (h *ContentHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var input services.NewBlockInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	block, err := h.service.AddBlock(r.Context(), r.PathValue("page"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, block)
}

// UpdateBlock handles PATCH /api/admin/content/blocks/{id}
func (h *ContentHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var patch entities.ContentBlockPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	block, err := h.service.UpdateBlock(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, block)
}

// DeleteBlock handles DELETE /api/admin/content/blocks/{id}
func (h *ContentHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBlock(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	Direction string `json:"direction"`
}

// ReorderBlock handles POST /api/admin/content/blocks/{id}/reorder
func (h *ContentHandler) ReorderBlock(w http.ResponseWriter, r *http.Request) {
	dir, err := decodeDirection(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	blocks, err := h.service.ReorderBlock(r.Context(), r.PathValue("id"), dir)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": blocks,
	})
}

// UploadBlockImage handles POST /api/admin/content/blocks/{id}/image (multipart, field "image")
func (h *ContentHandler) UploadBlockImage(w http.ResponseWriter, r *http.Request) {
	file, filename, contentType, err := imageFromMultipart(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer file.Close()

	block, err := h.service.UploadBlockImage(r.Context(), r.PathValue("id"), filename, contentType, file)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, block)
}

func decodeDirection(r *http.Request) (ordering.Direction, error) {
	var payload reorderRequest
	if err := decodeJSON(r, &payload); err != nil {
		return "", err
	}
	dir, err := ordering.ParseDirection(payload.Direction)
	if err != nil {
		return "", apperrors.NewValidationError(err.Error())
	}
	return dir, nil
}

func imageFromMultipart(r *http.Request) (io.ReadCloser, string, string, error) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		return nil, "", "", apperrors.NewValidationError("expected a multipart form upload")
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", "", apperrors.NewValidationError("image file is required")
	}
	return file, header.Filename, header.Header.Get("Content-Type"), nil
}
