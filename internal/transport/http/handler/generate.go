package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/prompt"
	"scholarforge/internal/transport/http/response"
)

const (
	maxDocumentSize = 10 << 20
	maxPhotoSize    = 10 << 20
)

// GenerateHandler exposes the AI features of every panel. Results are
// returned to the caller; persisting them into a draft is a separate edit.
type GenerateHandler struct {
	generator *app.GeneratorService
	fieldTrip *app.FieldTripService
}

type ThesesRequest struct {
	Topic string `json:"topic" binding:"required,max=500"`
	Field string `json:"field" binding:"max=128"`
	Level string `json:"level" binding:"max=64"`
	Count int    `json:"count" binding:"min=0,max=10"`
}

type OutlineRequest struct {
	Thesis string `json:"thesis" binding:"required,max=2000"`
	Field  string `json:"field" binding:"max=128"`
}

type SourcesRequest struct {
	Topic string `json:"topic" binding:"required,max=500"`
	Count int    `json:"count" binding:"min=0,max=10"`
}

type SummarizeRequest struct {
	Title string `json:"title" form:"title"`
	Focus string `json:"focus" form:"focus"`
	Text  string `json:"text" form:"text"`
}

type SectionGenRequest struct {
	DocumentTitle string `json:"document_title"`
	SectionTitle  string `json:"section_title" binding:"required"`
	Notes         string `json:"notes"`
	Tone          string `json:"tone"`
}

type RewriteRequest struct {
	Text        string `json:"text" binding:"required"`
	Instruction string `json:"instruction" binding:"required"`
}

type ReportRequest struct {
	Kind    string `json:"kind" binding:"max=32"`
	Title   string `json:"title" binding:"required"`
	Details string `json:"details"`
}

type CVRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	TargetRole string   `json:"target_role"`
	Education  string   `json:"education"`
	Experience string   `json:"experience"`
	Skills     []string `json:"skills"`
}

type CoverLetterRequest struct {
	Name           string `json:"name"`
	Company        string `json:"company" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
	CVSummary      string `json:"cv_summary"`
}

type PresentationRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Audience string `json:"audience"`
	Slides   int    `json:"slides" binding:"min=0,max=20"`
}

type SlideImageRequest struct {
	Prompt string `json:"prompt" binding:"required,max=1000"`
	Style  string `json:"style" binding:"max=128"`
}

type DataRequest struct {
	CSV      string `json:"csv" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type FieldReportRequest struct {
	Trip         string   `json:"trip" binding:"required,max=128"`
	Observations []string `json:"observations"`
	// TableID appends a saved field table to the prompt.
	TableID uint `json:"table_id"`
	// IncludeSaved pulls the trip's stored observation notes in as well.
	IncludeSaved bool `json:"include_saved"`
}

type AssignmentRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Question string `json:"question" binding:"required"`
	Level    string `json:"level"`
}

func NewGenerateHandler(generator *app.GeneratorService, fieldTrip *app.FieldTripService) *GenerateHandler {
	return &GenerateHandler{generator: generator, fieldTrip: fieldTrip}
}

func (h *GenerateHandler) Theses(c *gin.Context) {
	var req ThesesRequest
	if !bindJSON(c, &req) {
		return
	}
	theses, err := h.generator.GenerateTheses(c.Request.Context(), prompt.ThesisInput(req))
	respond(c, gin.H{"theses": theses}, err)
}

func (h *GenerateHandler) Outline(c *gin.Context) {
	var req OutlineRequest
	if !bindJSON(c, &req) {
		return
	}
	sections, err := h.generator.GenerateOutline(c.Request.Context(), prompt.OutlineInput(req))
	respond(c, gin.H{"sections": sections}, err)
}

func (h *GenerateHandler) Sources(c *gin.Context) {
	var req SourcesRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generator.FindSources(c.Request.Context(), prompt.SourcesInput(req))
	respond(c, result, err)
}

// Summarize accepts JSON with pasted text or a multipart form with an
// optional PDF under "file".
func (h *GenerateHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	in := app.SummarizeInput{Title: req.Title, Focus: req.Focus, Text: req.Text}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		up, err := readUpload(c, "file", maxDocumentSize)
		switch {
		case err == nil:
			in.Document = up.Data
			if in.Title == "" {
				in.Title = up.Name
			}
		case errors.Is(err, errMissingFile):
		default:
			uploadError(c, "file", err)
			return
		}
	}
	result, err := h.generator.SummarizeSource(c.Request.Context(), in)
	respond(c, result, err)
}

func (h *GenerateHandler) Section(c *gin.Context) {
	var req SectionGenRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generator.WriteSection(c.Request.Context(), prompt.SectionInput(req))
	respond(c, result, err)
}

func (h *GenerateHandler) Rewrite(c *gin.Context) {
	var req RewriteRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generator.RewriteText(c.Request.Context(), prompt.RewriteInput(req))
	respond(c, result, err)
}

func (h *GenerateHandler) Report(c *gin.Context) {
	var req ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	sections, err := h.generator.GenerateReport(c.Request.Context(), prompt.ReportInput(req))
	respond(c, gin.H{"sections": sections}, err)
}

func (h *GenerateHandler) CV(c *gin.Context) {
	var req CVRequest
	if !bindJSON(c, &req) {
		return
	}
	cv, err := h.generator.GenerateCV(c.Request.Context(), prompt.CVInput(req))
	respond(c, cv, err)
}

func (h *GenerateHandler) CoverLetter(c *gin.Context) {
	var req CoverLetterRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generator.GenerateCoverLetter(c.Request.Context(), prompt.CoverLetterInput(req))
	respond(c, result, err)
}

func (h *GenerateHandler) Presentation(c *gin.Context) {
	var req PresentationRequest
	if !bindJSON(c, &req) {
		return
	}
	slides, err := h.generator.GeneratePresentation(c.Request.Context(), prompt.PresentationInput(req))
	respond(c, gin.H{"slides": slides}, err)
}

// SlideImage returns the raw image bytes.
func (h *GenerateHandler) SlideImage(c *gin.Context) {
	var req SlideImageRequest
	if !bindJSON(c, &req) {
		return
	}
	img, err := h.generator.GenerateSlideImage(c.Request.Context(), prompt.SlideImageInput(req))
	if err != nil {
		generationError(c, err)
		return
	}
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func (h *GenerateHandler) Data(c *gin.Context) {
	var req DataRequest
	if !bindJSON(c, &req) {
		return
	}
	analysis, err := h.generator.AnalyzeData(c.Request.Context(), req.CSV, req.Question)
	respond(c, analysis, err)
}

func (h *GenerateHandler) FieldReport(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req FieldReportRequest
	if !bindJSON(c, &req) {
		return
	}
	in := app.FieldReportInput{Trip: req.Trip, Observations: req.Observations}
	if req.IncludeSaved {
		notes, err := h.fieldTrip.ObservationNotes(userID, req.Trip)
		if err != nil {
			fieldTripError(c, err, "load observations failed")
			return
		}
		in.Observations = append(in.Observations, notes...)
	}
	if req.TableID != 0 {
		table, err := h.fieldTrip.GetTable(userID, req.TableID)
		if err != nil {
			fieldTripError(c, err, "load field table failed")
			return
		}
		in.Headers, in.Rows = table.Headers, table.Rows
	}
	result, err := h.generator.WriteFieldReport(c.Request.Context(), in)
	respond(c, result, err)
}

// Specimen identifies an organism from a multipart "photo" with an
// optional "hint".
func (h *GenerateHandler) Specimen(c *gin.Context) {
	up, err := readUpload(c, "photo", maxPhotoSize)
	if err != nil {
		uploadError(c, "photo", err)
		return
	}
	mimeType := up.ContentType
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(up.Data)
	}
	result, err := h.generator.IdentifySpecimen(c.Request.Context(), app.SpecimenInput{
		Photo:    up.Data,
		MIMEType: mimeType,
		Hint:     c.PostForm("hint"),
	})
	respond(c, result, err)
}

func (h *GenerateHandler) Assignment(c *gin.Context) {
	var req AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.generator.SolveAssignment(c.Request.Context(), prompt.AssignmentInput(req))
	respond(c, result, err)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return false
	}
	return true
}

func respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		generationError(c, err)
		return
	}
	response.OK(c, data)
}

func generationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCSV):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidCSV, err.Error())
	case errors.Is(err, app.ErrUnsupportedMedia):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMedia, err.Error())
	case errors.Is(err, app.ErrLLMConfig):
		response.Error(c, http.StatusServiceUnavailable, response.CodeLLMUnavailable, "ai provider is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, response.CodeGenerationTimeout, "generation timed out")
	case errors.Is(err, app.ErrGenerationFailed):
		response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, "generation failed, please try again")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generation failed")
	}
}
