package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// DoctorService manages the doctor profiles shown on each specialty's doctor page
type DoctorService struct {
	repo  repositories.DoctorRepository
	media providers.MediaStorage
	feed  changeFeed
}

// NewDoctorService creates a new doctor service
func NewDoctorService(repo repositories.DoctorRepository, bus providers.EventBus, index providers.SearchIndex, media providers.MediaStorage) *DoctorService {
	return &DoctorService{
		repo:  repo,
		media: media,
		feed:  changeFeed{bus: bus, index: index},
	}
}

func doctorPage(d *entities.Doctor) string {
	return string(d.Specialty) + "-doctor"
}

// List returns doctors for a specialty, or all when specialty is empty
func (s *DoctorService) List(ctx context.Context, specialty string) ([]*entities.Doctor, error) {
	var sp entities.Specialty
	if specialty != "" {
		parsed, err := entities.ParseSpecialty(specialty)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		sp = parsed
	}
	doctors, err := s.repo.List(ctx, sp)
	if err != nil {
		return nil, err
	}
	ordering.Sort(doctors)
	return doctors, nil
}

// Get returns one doctor
func (s *DoctorService) Get(ctx context.Context, id string) (*entities.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// Create appends a doctor to the end of the specialty's list
func (s *DoctorService) Create(ctx context.Context, doctor *entities.Doctor) (*entities.Doctor, error) {
	if !doctor.Specialty.Valid() {
		return nil, apperrors.NewValidationError("specialty must be eyecare or gynecology")
	}
	doctor.Name = strings.TrimSpace(doctor.Name)
	if doctor.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	existing, err := s.repo.List(ctx, doctor.Specialty)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doctor.ID = uuid.New().String()
	doctor.OrderIndex = ordering.NextIndex(existing)
	doctor.CreatedAt = now
	doctor.UpdatedAt = now
	if doctor.Qualifications == nil {
		doctor.Qualifications = []string{}
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}

	s.feed.publish(ctx, doctorPage(doctor), entities.ContentKindDoctor, doctor.ID, entities.ContentEventCreated, nil)
	s.feed.indexDocument(ctx, providers.DoctorDocument(doctor))
	return doctor, nil
}

// Update applies a partial update
func (s *DoctorService) Update(ctx context.Context, id string, patch entities.DoctorPatch) (*entities.Doctor, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if patch.Specialty != nil && !patch.Specialty.Valid() {
		return nil, apperrors.NewValidationError("specialty must be eyecare or gynecology")
	}

	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousPage := doctorPage(doctor)

	patch.Apply(doctor)
	doctor.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}

	page := doctorPage(doctor)
	s.feed.publish(ctx, page, entities.ContentKindDoctor, doctor.ID, entities.ContentEventUpdated, nil)
	if page != previousPage {
		s.feed.publish(ctx, previousPage, entities.ContentKindDoctor, doctor.ID, entities.ContentEventDeleted, nil)
	}
	s.feed.indexDocument(ctx, providers.DoctorDocument(doctor))
	return doctor, nil
}

// Delete removes a doctor
func (s *DoctorService) Delete(ctx context.Context, id string) error {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.feed.publish(ctx, doctorPage(doctor), entities.ContentKindDoctor, id, entities.ContentEventDeleted, nil)
	s.feed.removeDocument(ctx, id)
	return nil
}

// Reorder swaps a doctor with its neighbour within the specialty
func (s *DoctorService) Reorder(ctx context.Context, id string, dir ordering.Direction) ([]*entities.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	siblings, err := s.repo.List(ctx, doctor.Specialty)
	if err != nil {
		return nil, err
	}

	swap, err := ordering.Move(siblings, id, dir)
	if errors.Is(err, ordering.ErrItemNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reorder", err)
	}
	if !swap.Changed {
		return siblings, nil
	}
	if err := s.repo.SwapOrder(ctx, swap.Moved, swap.Neighbor); err != nil {
		return nil, err
	}

	s.feed.publish(ctx, doctorPage(doctor), entities.ContentKindDoctor, id, entities.ContentEventReordered, nil)
	return siblings, nil
}

// UploadImage stores a portrait and sets image_url
func (s *DoctorService) UploadImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*entities.Doctor, error) {
	if s.media == nil {
		return nil, apperrors.NewInternalError("media storage not configured", nil)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	stored, err := s.media.Save(ctx, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	url := stored.URL
	doctor, err := s.Update(ctx, id, entities.DoctorPatch{ImageURL: &url})
	if err != nil {
		_ = s.media.Delete(ctx, stored.Key)
		return nil, err
	}
	return doctor, nil
}

// Reindex pushes every doctor into the search index
func (s *DoctorService) Reindex(ctx context.Context) (int, error) {
	if s.feed.index == nil {
		return 0, nil
	}
	doctors, err := s.repo.List(ctx, "")
	if err != nil {
		return 0, err
	}
	for i, d := range doctors {
		if err := s.feed.index.Index(ctx, providers.DoctorDocument(d)); err != nil {
			return i, apperrors.NewExternalError("failed to index doctor", err)
		}
	}
	return len(doctors), nil
}
