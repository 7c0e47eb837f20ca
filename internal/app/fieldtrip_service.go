package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"scholarforge/internal/model"
	"scholarforge/internal/storage"
)

var (
	ErrTableNotFound       = errors.New("field table not found")
	ErrObservationNotFound = errors.New("observation not found")
)

const maxTableColumns = 64

type FieldTripService struct {
	tables       FieldTableStore
	observations ObservationStore
	store        storage.Storage
	compressor   ImageCompressor
	photoTarget  int64
	logger       *zap.Logger
}

type CreateTableInput struct {
	UserID  uint
	Title   string
	Headers []string
	Rows    [][]string
}

type UpdateTableInput struct {
	Title     *string
	Headers   *[]string
	Rows      *[][]string
	Collapsed *bool
}

type ObservationInput struct {
	UserID    uint
	Trip      string
	Note      string
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
	Accuracy  *float64
	Photo     []byte
}

func NewFieldTripService(
	tables FieldTableStore,
	observations ObservationStore,
	store storage.Storage,
	compressor ImageCompressor,
	photoTarget int64,
	logger *zap.Logger,
) *FieldTripService {
	return &FieldTripService{
		tables:       tables,
		observations: observations,
		store:        store,
		compressor:   compressor,
		photoTarget:  photoTarget,
		logger:       logger,
	}
}

func (s *FieldTripService) CreateTable(input CreateTableInput) (*model.FieldTable, error) {
	if input.UserID == 0 || len(input.Headers) > maxTableColumns {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Data table"
	}
	headers := input.Headers
	if len(headers) == 0 {
		headers = []string{"Site", "Observation", "Notes"}
	}
	table := &model.FieldTable{
		UserID:  input.UserID,
		Title:   title,
		Headers: headers,
		Rows:    input.Rows,
	}
	if table.Rows == nil {
		table.Rows = [][]string{}
	}
	table.Normalize()
	if err := s.tables.Create(table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *FieldTripService) ListTables(userID uint) ([]model.FieldTable, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.tables.ListByUserID(userID)
}

func (s *FieldTripService) GetTable(userID, tableID uint) (*model.FieldTable, error) {
	if userID == 0 || tableID == 0 {
		return nil, ErrInvalidInput
	}
	table, err := s.tables.GetByIDAndUserID(tableID, userID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	return table, nil
}

func (s *FieldTripService) UpdateTable(userID, tableID uint, input UpdateTableInput) (*model.FieldTable, error) {
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return ErrInvalidInput
			}
			t.Title = title
		}
		if input.Headers != nil {
			if len(*input.Headers) == 0 || len(*input.Headers) > maxTableColumns {
				return ErrInvalidInput
			}
			t.Headers = *input.Headers
		}
		if input.Rows != nil {
			t.Rows = *input.Rows
		}
		if input.Collapsed != nil {
			t.Collapsed = *input.Collapsed
		}
		t.Normalize()
		return nil
	})
}

func (s *FieldTripService) DeleteTable(userID, tableID uint) error {
	if _, err := s.GetTable(userID, tableID); err != nil {
		return err
	}
	return s.tables.DeleteByIDAndUserID(tableID, userID)
}

func (s *FieldTripService) AddRow(userID, tableID uint, values []string) (*model.FieldTable, error) {
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		t.AddRow(values)
		return nil
	})
}

func (s *FieldTripService) RemoveRow(userID, tableID uint, row int) (*model.FieldTable, error) {
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		return t.RemoveRow(row)
	})
}

func (s *FieldTripService) AddColumn(userID, tableID uint, header string) (*model.FieldTable, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, ErrInvalidInput
	}
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		if len(t.Headers) >= maxTableColumns {
			return ErrInvalidInput
		}
		t.AddColumn(header)
		return nil
	})
}

func (s *FieldTripService) SetCell(userID, tableID uint, row, col int, value string) (*model.FieldTable, error) {
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		return t.SetCell(row, col, value)
	})
}

func (s *FieldTripService) ToggleCollapsed(userID, tableID uint) (*model.FieldTable, error) {
	return s.mutate(userID, tableID, func(t *model.FieldTable) error {
		t.Collapsed = !t.Collapsed
		return nil
	})
}

func (s *FieldTripService) mutate(userID, tableID uint, fn func(*model.FieldTable) error) (*model.FieldTable, error) {
	table, err := s.GetTable(userID, tableID)
	if err != nil {
		return nil, err
	}
	if err := fn(table); err != nil {
		return nil, err
	}
	if err := s.tables.Save(table); err != nil {
		return nil, err
	}
	return table, nil
}

// AddObservation stores a geotagged note. A photo is recompressed to the
// configured target before it is stored.
func (s *FieldTripService) AddObservation(ctx context.Context, input ObservationInput) (*model.FieldObservation, error) {
	trip := strings.TrimSpace(input.Trip)
	if input.UserID == 0 || trip == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.Note) == "" && len(input.Photo) == 0 {
		return nil, ErrInvalidInput
	}
	if !validCoordinate(input.Latitude, 90) || !validCoordinate(input.Longitude, 180) {
		return nil, ErrInvalidInput
	}

	obs := &model.FieldObservation{
		UserID:    input.UserID,
		Trip:      trip,
		Note:      strings.TrimSpace(input.Note),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Altitude:  input.Altitude,
		Accuracy:  input.Accuracy,
	}

	if len(input.Photo) > 0 {
		if !strings.HasPrefix(http.DetectContentType(input.Photo), "image/") {
			return nil, ErrNotAnImage
		}
		res, err := s.compressor.Compress(ctx, input.Photo, s.photoTarget)
		if err != nil {
			return nil, compressError(err)
		}
		key := storage.NewKey("observations", input.UserID, ResultName("photo", res.MIMEType))
		if err := s.store.Put(ctx, key, res.MIMEType, bytes.NewReader(res.Data)); err != nil {
			return nil, err
		}
		obs.PhotoKey = key
		obs.PhotoMIME = res.MIMEType
	}

	if err := s.observations.Create(obs); err != nil {
		if obs.PhotoKey != "" {
			_ = s.store.Delete(ctx, obs.PhotoKey)
		}
		return nil, err
	}
	return obs, nil
}

func (s *FieldTripService) ListObservations(userID uint, trip string) ([]model.FieldObservation, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.observations.ListByUserID(userID, strings.TrimSpace(trip))
}

func (s *FieldTripService) OpenPhoto(ctx context.Context, userID, observationID uint) (*model.FieldObservation, io.ReadCloser, error) {
	if userID == 0 || observationID == 0 {
		return nil, nil, ErrInvalidInput
	}
	obs, err := s.observations.GetByIDAndUserID(observationID, userID)
	if err != nil {
		return nil, nil, err
	}
	if obs == nil || !obs.HasPhoto() {
		return nil, nil, ErrObservationNotFound
	}
	rc, err := s.store.Get(ctx, obs.PhotoKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrObservationNotFound
		}
		return nil, nil, err
	}
	return obs, rc, nil
}

// ObservationNotes renders a trip's observations as report input lines.
func (s *FieldTripService) ObservationNotes(userID uint, trip string) ([]string, error) {
	list, err := s.ListObservations(userID, trip)
	if err != nil {
		return nil, err
	}
	notes := make([]string, 0, len(list))
	for _, o := range list {
		line := o.Note
		if o.Latitude != nil && o.Longitude != nil {
			line = fmt.Sprintf("%s (at %.5f, %.5f)", line, *o.Latitude, *o.Longitude)
		}
		if o.HasPhoto() {
			line += " [photo]"
		}
		notes = append(notes, strings.TrimSpace(line))
	}
	return notes, nil
}

func (s *FieldTripService) PurgeUser(ctx context.Context, userID uint) error {
	list, err := s.observations.ListByUserID(userID, "")
	if err != nil {
		return err
	}
	for _, o := range list {
		if o.HasPhoto() {
			if err := s.store.Delete(ctx, o.PhotoKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
				s.logger.Warn("delete observation photo failed", zap.String("key", o.PhotoKey), zap.Error(err))
			}
		}
	}
	if err := s.observations.DeleteByUserID(userID); err != nil {
		return err
	}
	return s.tables.DeleteByUserID(userID)
}

func validCoordinate(v *float64, limit float64) bool {
	return v == nil || (*v >= -limit && *v <= limit)
}
