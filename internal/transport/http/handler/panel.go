package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/transport/http/response"
)

// maxPanelBody leaves headroom over the service limit so oversize payloads
// reach it and get the proper error code.
const maxPanelBody = 2 << 20

type PanelHandler struct {
	panelService *app.PanelService
}

func NewPanelHandler(panelService *app.PanelService) *PanelHandler {
	return &PanelHandler{panelService: panelService}
}

func (h *PanelHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	state, err := h.panelService.Load(c.Request.Context(), userID, c.Param("panel"))
	if err != nil {
		panelError(c, err, "load panel failed")
		return
	}
	response.OK(c, gin.H{
		"panel": c.Param("panel"),
		"state": state,
	})
}

func (h *PanelHandler) Save(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPanelBody+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read body failed")
		return
	}
	if len(body) > maxPanelBody {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, app.ErrPayloadTooLarge.Error())
		return
	}
	if err := h.panelService.Save(c.Request.Context(), userID, c.Param("panel"), json.RawMessage(body)); err != nil {
		panelError(c, err, "save panel failed")
		return
	}
	response.OK(c, gin.H{"saved": true})
}

func (h *PanelHandler) Reset(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.panelService.Reset(c.Request.Context(), userID, c.Param("panel")); err != nil {
		panelError(c, err, "reset panel failed")
		return
	}
	response.OK(c, gin.H{"reset": true})
}

func panelError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrUnknownPanel):
		response.Error(c, http.StatusNotFound, response.CodeUnknownPanel, err.Error())
	case errors.Is(err, app.ErrInvalidPayload), errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrPayloadTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
