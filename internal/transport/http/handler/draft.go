package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/model"
	"scholarforge/internal/transport/http/response"
)

type DraftHandler struct {
	draftService *app.DraftService
}

type SectionRequest struct {
	Title   string `json:"title" binding:"max=256"`
	Type    string `json:"type" binding:"max=32"`
	Content string `json:"content"`
}

type CreateDraftRequest struct {
	Kind      string            `json:"kind" binding:"required,oneof=research document report"`
	Title     string            `json:"title" binding:"max=256"`
	Fields    map[string]string `json:"fields"`
	Content   string            `json:"content"`
	Sections  []SectionRequest  `json:"sections"`
	Citations []model.Citation  `json:"citations"`
}

type UpdateDraftRequest struct {
	Title     *string           `json:"title"`
	Fields    map[string]string `json:"fields"`
	Citations *[]model.Citation `json:"citations"`
}

// EditDraftRequest carries citations when the body came from a generator;
// they are merged into the draft alongside the edit.
type EditDraftRequest struct {
	Content   *string          `json:"content" binding:"required"`
	Citations []model.Citation `json:"citations"`
}

type draftView struct {
	*model.Draft
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

func newDraftView(d *model.Draft) draftView {
	return draftView{Draft: d, CanUndo: d.History.CanUndo(), CanRedo: d.History.CanRedo()}
}

func NewDraftHandler(draftService *app.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

func (h *DraftHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	sections := make([]model.Section, 0, len(req.Sections))
	for _, s := range req.Sections {
		sections = append(sections, model.Section{Title: s.Title, Type: s.Type, Content: s.Content})
	}
	draft, err := h.draftService.Create(app.CreateDraftInput{
		UserID:    userID,
		Kind:      model.DraftKind(req.Kind),
		Title:     req.Title,
		Fields:    req.Fields,
		Content:   req.Content,
		Sections:  sections,
		Citations: req.Citations,
	})
	if err != nil {
		draftError(c, err, "create draft failed")
		return
	}
	response.OK(c, newDraftView(draft))
}

func (h *DraftHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	drafts, err := h.draftService.List(userID, model.DraftKind(c.Query("kind")))
	if err != nil {
		draftError(c, err, "list drafts failed")
		return
	}
	if drafts == nil {
		drafts = []model.Draft{}
	}
	response.OK(c, drafts)
}

func (h *DraftHandler) Get(c *gin.Context) {
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		return h.draftService.Get(userID, draftID)
	})
}

func (h *DraftHandler) Update(c *gin.Context) {
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		return h.draftService.Update(userID, draftID, app.UpdateDraftInput{
			Title:     req.Title,
			Fields:    req.Fields,
			Citations: req.Citations,
		})
	})
}

func (h *DraftHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	draftID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.draftService.Delete(userID, draftID); err != nil {
		draftError(c, err, "delete draft failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *DraftHandler) Edit(c *gin.Context) {
	var req EditDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		if len(req.Citations) > 0 {
			return h.draftService.ApplyGenerated(userID, draftID, *req.Content, req.Citations)
		}
		return h.draftService.Edit(userID, draftID, *req.Content)
	})
}

func (h *DraftHandler) Undo(c *gin.Context) {
	h.withDraft(c, h.draftService.Undo)
}

func (h *DraftHandler) Redo(c *gin.Context) {
	h.withDraft(c, h.draftService.Redo)
}

func (h *DraftHandler) AddSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		return h.draftService.AddSection(userID, draftID, app.SectionInput(req))
	})
}

func (h *DraftHandler) UpdateSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		return h.draftService.UpdateSection(userID, draftID, c.Param("sectionId"), app.SectionInput(req))
	})
}

func (h *DraftHandler) DeleteSection(c *gin.Context) {
	h.withDraft(c, func(userID, draftID uint) (*model.Draft, error) {
		return h.draftService.DeleteSection(userID, draftID, c.Param("sectionId"))
	})
}

func (h *DraftHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	draftID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	file, err := h.draftService.Export(userID, draftID, c.Query("format"))
	if err != nil {
		draftError(c, err, "export draft failed")
		return
	}
	sendAttachment(c, file.Name, file.MIMEType, int64(len(file.Data)), bytes.NewReader(file.Data))
}

func (h *DraftHandler) Links(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	draftID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	segments, err := h.draftService.Links(userID, draftID)
	if err != nil {
		draftError(c, err, "split links failed")
		return
	}
	response.OK(c, segments)
}

// withDraft resolves the caller and draft id, runs fn and writes the result.
func (h *DraftHandler) withDraft(c *gin.Context, fn func(userID, draftID uint) (*model.Draft, error)) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	draftID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	draft, err := fn(userID, draftID)
	if err != nil {
		draftError(c, err, "draft operation failed")
		return
	}
	response.OK(c, newDraftView(draft))
}

func draftError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrDraftNotFound), errors.Is(err, app.ErrSectionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDraftNotFound, err.Error())
	case errors.Is(err, app.ErrNothingToUndo):
		response.Error(c, http.StatusConflict, response.CodeNothingToUndo, err.Error())
	case errors.Is(err, app.ErrNothingToRedo):
		response.Error(c, http.StatusConflict, response.CodeNothingToRedo, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
