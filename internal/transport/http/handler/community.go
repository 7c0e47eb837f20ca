package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/transport/http/response"
)

type CommunityHandler struct {
	community *app.CommunityService
}

type SendMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

func NewCommunityHandler(community *app.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

func (h *CommunityHandler) Members(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	response.OK(c, h.community.Members(c.Query("q")))
}

func (h *CommunityHandler) Groups(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, h.community.Groups(userID))
}

func (h *CommunityHandler) JoinGroup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	group, err := h.community.JoinGroup(userID, c.Param("id"))
	if err != nil {
		communityError(c, err)
		return
	}
	response.OK(c, group)
}

func (h *CommunityHandler) Inbox(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, h.community.Inbox(userID))
}

func (h *CommunityHandler) Conversation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	conv, err := h.community.Conversation(userID, c.Param("peer"))
	if err != nil {
		communityError(c, err)
		return
	}
	response.OK(c, conv)
}

func (h *CommunityHandler) Send(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, err := h.community.Send(userID, c.Param("peer"), req.Body)
	if err != nil {
		communityError(c, err)
		return
	}
	response.OK(c, conv)
}

func (h *CommunityHandler) Notifications(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, unread := h.community.Notifications(userID)
	response.OK(c, gin.H{
		"notifications": list,
		"unread":        unread,
	})
}

func (h *CommunityHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	if err := h.community.MarkRead(userID, id); err != nil {
		communityError(c, err)
		return
	}
	response.OK(c, gin.H{"read": true})
}

func (h *CommunityHandler) MarkAllRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"marked": h.community.MarkAllRead(userID)})
}

func communityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrMemberNotFound),
		errors.Is(err, app.ErrGroupNotFound),
		errors.Is(err, app.ErrNotificationNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "community request failed")
	}
}
