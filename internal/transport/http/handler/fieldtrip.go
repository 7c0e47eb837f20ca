package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/model"
	"scholarforge/internal/transport/http/response"
)

type FieldTripHandler struct {
	fieldTrip *app.FieldTripService
}

type CreateTableRequest struct {
	Title   string     `json:"title" binding:"max=128"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type UpdateTableRequest struct {
	Title     *string     `json:"title"`
	Headers   *[]string   `json:"headers"`
	Rows      *[][]string `json:"rows"`
	Collapsed *bool       `json:"collapsed"`
}

type AddRowRequest struct {
	Values []string `json:"values"`
}

type AddColumnRequest struct {
	Header string `json:"header" binding:"required,max=64"`
}

type SetCellRequest struct {
	Row   *int   `json:"row" binding:"required"`
	Col   *int   `json:"col" binding:"required"`
	Value string `json:"value"`
}

func NewFieldTripHandler(fieldTrip *app.FieldTripService) *FieldTripHandler {
	return &FieldTripHandler{fieldTrip: fieldTrip}
}

func (h *FieldTripHandler) CreateTable(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateTableRequest
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.fieldTrip.CreateTable(app.CreateTableInput{
		UserID:  userID,
		Title:   req.Title,
		Headers: req.Headers,
		Rows:    req.Rows,
	})
	if err != nil {
		fieldTripError(c, err, "create table failed")
		return
	}
	response.OK(c, table)
}

func (h *FieldTripHandler) ListTables(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tables, err := h.fieldTrip.ListTables(userID)
	if err != nil {
		fieldTripError(c, err, "list tables failed")
		return
	}
	response.OK(c, tables)
}

func (h *FieldTripHandler) GetTable(c *gin.Context) {
	h.withTable(c, h.fieldTrip.GetTable)
}

func (h *FieldTripHandler) UpdateTable(c *gin.Context) {
	var req UpdateTableRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withTable(c, func(userID, tableID uint) (*model.FieldTable, error) {
		return h.fieldTrip.UpdateTable(userID, tableID, app.UpdateTableInput(req))
	})
}

func (h *FieldTripHandler) DeleteTable(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tableID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.fieldTrip.DeleteTable(userID, tableID); err != nil {
		fieldTripError(c, err, "delete table failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *FieldTripHandler) AddRow(c *gin.Context) {
	var req AddRowRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withTable(c, func(userID, tableID uint) (*model.FieldTable, error) {
		return h.fieldTrip.AddRow(userID, tableID, req.Values)
	})
}

func (h *FieldTripHandler) RemoveRow(c *gin.Context) {
	row, ok := parseIntParam(c, "row")
	if !ok {
		return
	}
	h.withTable(c, func(userID, tableID uint) (*model.FieldTable, error) {
		return h.fieldTrip.RemoveRow(userID, tableID, row)
	})
}

func (h *FieldTripHandler) AddColumn(c *gin.Context) {
	var req AddColumnRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withTable(c, func(userID, tableID uint) (*model.FieldTable, error) {
		return h.fieldTrip.AddColumn(userID, tableID, req.Header)
	})
}

func (h *FieldTripHandler) SetCell(c *gin.Context) {
	var req SetCellRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withTable(c, func(userID, tableID uint) (*model.FieldTable, error) {
		return h.fieldTrip.SetCell(userID, tableID, *req.Row, *req.Col, req.Value)
	})
}

func (h *FieldTripHandler) ToggleCollapsed(c *gin.Context) {
	h.withTable(c, h.fieldTrip.ToggleCollapsed)
}

// AddObservation takes a multipart form: trip, note, optional coordinates
// and an optional "photo".
func (h *FieldTripHandler) AddObservation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	input := app.ObservationInput{
		UserID: userID,
		Trip:   c.PostForm("trip"),
		Note:   c.PostForm("note"),
	}
	coords := []struct {
		field string
		dst   **float64
	}{
		{"latitude", &input.Latitude},
		{"longitude", &input.Longitude},
		{"altitude", &input.Altitude},
		{"accuracy", &input.Accuracy},
	}
	for _, f := range coords {
		v, present, err := formFloat(c, f.field)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+f.field)
			return
		}
		if present {
			*f.dst = &v
		}
	}

	up, err := readUpload(c, "photo", maxPhotoSize)
	switch {
	case err == nil:
		input.Photo = up.Data
	case errors.Is(err, errMissingFile):
	default:
		uploadError(c, "photo", err)
		return
	}

	obs, err := h.fieldTrip.AddObservation(c.Request.Context(), input)
	if err != nil {
		fieldTripError(c, err, "add observation failed")
		return
	}
	response.OK(c, obs)
}

func (h *FieldTripHandler) ListObservations(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := h.fieldTrip.ListObservations(userID, c.Query("trip"))
	if err != nil {
		fieldTripError(c, err, "list observations failed")
		return
	}
	response.OK(c, list)
}

func (h *FieldTripHandler) Photo(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	obsID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	obs, rc, err := h.fieldTrip.OpenPhoto(c.Request.Context(), userID, obsID)
	if err != nil {
		fieldTripError(c, err, "open photo failed")
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, obs.PhotoMIME, rc, nil)
}

func (h *FieldTripHandler) withTable(c *gin.Context, fn func(userID, tableID uint) (*model.FieldTable, error)) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	tableID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	table, err := fn(userID, tableID)
	if err != nil {
		fieldTripError(c, err, "table operation failed")
		return
	}
	response.OK(c, table)
}

func formFloat(c *gin.Context, field string) (float64, bool, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func fieldTripError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, model.ErrCellOutOfRange):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrNotAnImage):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMedia, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, err.Error())
	case errors.Is(err, app.ErrTableNotFound), errors.Is(err, app.ErrObservationNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTableNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, response.CodeCompressTimeout, "photo compression timed out")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
