package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
)

// DoctorService defines the doctor profile operations used by the handler
type DoctorService interface {
	List(ctx context.Context, specialty string) ([]*entities.Doctor, error)
	Get(ctx context.Context, id string) (*entities.Doctor, error)
	Create(ctx context.Context, doctor *entities.Doctor) (*entities.Doctor, error)
	Update(ctx context.Context, id string, patch entities.DoctorPatch) (*entities.Doctor, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, id string, dir ordering.Direction) ([]*entities.Doctor, error)
	UploadImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*entities.Doctor, error)
}

// DoctorHandler handles doctor profile requests
type DoctorHandler struct {
	service DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(service DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// ListDoctors handles GET /api/doctors?specialty=
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("specialty")))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// CreateDoctor handles POST /api/admin/doctors
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var doctor entities.Doctor
	if err := decodeJSON(r, &doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), &doctor)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateDoctor handles PATCH /api/admin/doctors/{id}
func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	var patch entities.DoctorPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doctor, err := h.service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// DeleteDoctor handles DELETE /api/admin/doctors/{id}
func (h *DoctorHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderDoctor handles POST /api/admin/doctors/{id}/reorder
func (h *DoctorHandler) ReorderDoctor(w http.ResponseWriter, r *http.Request) {
	dir, err := decodeDirection(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doctors, err := h.service.Reorder(r.Context(), r.PathValue("id"), dir)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
	})
}

// UploadDoctorImage handles POST /api/admin/doctors/{id}/image
func (h *DoctorHandler) UploadDoctorImage(w http.ResponseWriter, r *http.Request) {
	file, filename, contentType, err := imageFromMultipart(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer file.Close()

	doctor, err := h.service.UploadImage(r.Context(), r.PathValue("id"), filename, contentType, file)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}
