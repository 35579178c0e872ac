package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/media"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const defaultMaxPhotoBytes = int64(5 * 1024 * 1024)

var defaultAllowedPhotoMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type PlaceServiceConfig struct {
	MaxPhotoBytes     int64
	AllowedMIMETypes  []string
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type PlaceService struct {
	places  ports.PlaceRepository
	storage ports.ObjectStorage

	maxPhotoBytes     int64
	allowedMIMEs      map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
	now               func() time.Time
}

// NewPlaceService builds the place service. storage may be nil, in which case
// photo uploads are rejected.
func NewPlaceService(places ports.PlaceRepository, storage ports.ObjectStorage, cfg PlaceServiceConfig) *PlaceService {
	maxBytes := cfg.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxPhotoBytes
	}
	allowed := cfg.AllowedMIMETypes
	if len(allowed) == 0 {
		allowed = defaultAllowedPhotoMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}
	return &PlaceService{
		places:            places,
		storage:           storage,
		maxPhotoBytes:     maxBytes,
		allowedMIMEs:      mimeSet,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		now:               time.Now,
	}
}

// ListRanked returns places with at least one review, best score first.
func (s *PlaceService) ListRanked(ctx context.Context, page domain.Page) ([]domain.RankedPlace, error) {
	normalized, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	places, err := s.places.ListRanked(ctx, normalized)
	if err != nil {
		return nil, storageError("list ranked places", err)
	}
	if places == nil {
		places = []domain.RankedPlace{}
	}
	return places, nil
}

func (s *PlaceService) GetPlace(ctx context.Context, id int64) (*domain.RankedPlace, error) {
	if id <= 0 {
		return nil, ErrPlaceNotFound
	}
	place, err := s.places.FindRankedByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("find place", err)
	}
	return place, nil
}

// CreatePlace upserts by (city, country); repeating the call returns the
// same row.
func (s *PlaceService) CreatePlace(ctx context.Context, session *domain.Session, input domain.PlaceInput) (*domain.Place, error) {
	if _, err := RequireSession(session); err != nil {
		return nil, err
	}
	input.City = strings.TrimSpace(input.City)
	input.Country = strings.TrimSpace(input.Country)
	input.AdminDivision = normalizeString(input.AdminDivision)
	input.PhotoURL = normalizeString(input.PhotoURL)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	place, err := s.places.UpsertByCityCountry(ctx, input)
	if err != nil {
		return nil, storageError("upsert place", err)
	}
	return place, nil
}

func (s *PlaceService) UploadPhoto(ctx context.Context, session *domain.Session, placeID int64, upload PhotoUpload) (*domain.Place, error) {
	if _, err := RequireSession(session); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, fmt.Errorf("%w: photo storage is not configured", ErrStorageUnavailable)
	}
	if err := s.validatePhoto(&upload); err != nil {
		return nil, err
	}
	if _, err := s.GetPlace(ctx, placeID); err != nil {
		return nil, err
	}

	reader, size, contentType, err := prepareImageForUpload(ctx, s.imageProcessor, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, s.imageMaxDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: photo could not be processed", ErrValidation)
	}

	objectKey := fmt.Sprintf("places/%d/%s_%s%s",
		placeID,
		s.now().UTC().Format("20060102T150405Z"),
		uuid.NewString(),
		extensionFromContentType(contentType),
	)
	url, err := s.storage.Upload(ctx, objectKey, contentType, reader, size)
	if err != nil {
		return nil, storageError("upload photo", err)
	}

	place, err := s.places.UpdatePhotoURL(ctx, placeID, url)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, storageError("update photo url", err)
	}
	return place, nil
}

func (s *PlaceService) validatePhoto(upload *PhotoUpload) error {
	if upload.Reader == nil || upload.Size <= 0 {
		return fmt.Errorf("%w: photo is empty", ErrValidation)
	}
	if upload.Size > s.maxPhotoBytes {
		return fmt.Errorf("%w: photo exceeds size limit (%d bytes)", ErrValidation, s.maxPhotoBytes)
	}
	upload.ContentType = media.NormalizeContentType(upload.ContentType, upload.FileName)
	if _, ok := s.allowedMIMEs[upload.ContentType]; !ok {
		return fmt.Errorf("%w: unsupported content type %s", ErrValidation, upload.ContentType)
	}
	return nil
}
