package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/transport/http/response"
)

type ProfileHandler struct {
	profileService *app.ProfileService
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Institution *string `json:"institution" binding:"omitempty,max=128"`
	Role        *string `json:"role"`
	Avatar      *string `json:"avatar" binding:"omitempty,max=64"`
	Theme       *string `json:"theme"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

func NewProfileHandler(profileService *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	user, err := h.profileService.Get(userID)
	if err != nil {
		profileError(c, err, "fetch profile failed")
		return
	}
	response.OK(c, user)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	user, err := h.profileService.Update(userID, app.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Institution: req.Institution,
		Role:        req.Role,
		Avatar:      req.Avatar,
		Theme:       req.Theme,
	})
	if err != nil {
		profileError(c, err, "update profile failed")
		return
	}
	response.OK(c, user)
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if err := h.profileService.ChangePassword(userID, app.ChangePasswordInput{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	}); err != nil {
		profileError(c, err, "change password failed")
		return
	}
	response.OK(c, gin.H{"changed": true})
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.profileService.Delete(c.Request.Context(), userID); err != nil {
		profileError(c, err, "delete account failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func profileError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrWrongPassword):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidCredentials, "current password does not match")
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
