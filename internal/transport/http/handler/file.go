package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"scholarforge/internal/app"
	"scholarforge/internal/model"
	"scholarforge/internal/transport/http/response"
)

const defaultTarget = "200KB"

type FileHandler struct {
	compression *app.CompressionService
	maxUpload   int64
}

type fileView struct {
	*model.CompressedFile
	SavedBytes  int64  `json:"saved_bytes"`
	Summary     string `json:"summary,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

func newFileView(f *model.CompressedFile) fileView {
	v := fileView{CompressedFile: f, SavedBytes: f.SavedBytes()}
	if f.Status == model.FileDone {
		v.Summary = fmt.Sprintf("%s -> %s (target %s)",
			humanize.Bytes(uint64(f.OriginalSize)),
			humanize.Bytes(uint64(f.ResultSize)),
			humanize.Bytes(uint64(f.TargetSize)))
		v.DownloadURL = fmt.Sprintf("/api/v1/files/%d/download", f.ID)
	}
	return v
}

func NewFileHandler(compression *app.CompressionService, maxUpload int64) *FileHandler {
	return &FileHandler{compression: compression, maxUpload: maxUpload}
}

// Compress takes a multipart "file", a "target" size such as "200KB" or
// "1.5MiB", and an optional "async" flag.
func (h *FileHandler) Compress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	target, err := parseTarget(c.DefaultPostForm("target", defaultTarget))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}
	async, _ := strconv.ParseBool(c.PostForm("async"))

	up, err := readUpload(c, "file", h.maxUpload)
	if err != nil {
		uploadError(c, "file", err)
		return
	}

	file, err := h.compression.Submit(c.Request.Context(), app.CompressInput{
		UserID:      userID,
		Filename:    up.Name,
		ContentType: up.ContentType,
		Data:        up.Data,
		Target:      target,
		Async:       async,
	})
	if err != nil {
		fileError(c, err, "compress file failed")
		return
	}
	response.OK(c, newFileView(file))
}

func (h *FileHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	files, err := h.compression.List(userID, queryInt(c, "limit", 50))
	if err != nil {
		fileError(c, err, "list files failed")
		return
	}
	views := make([]fileView, 0, len(files))
	for i := range files {
		views = append(views, newFileView(&files[i]))
	}
	response.OK(c, views)
}

func (h *FileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	file, err := h.compression.Get(userID, fileID)
	if err != nil {
		fileError(c, err, "get file failed")
		return
	}
	response.OK(c, newFileView(file))
}

func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	file, rc, err := h.compression.Open(c.Request.Context(), userID, fileID)
	if err != nil {
		fileError(c, err, "download file failed")
		return
	}
	defer rc.Close()
	sendAttachment(c, app.ResultName(file.OriginalName, file.ResultMIME), file.ResultMIME, file.ResultSize, rc)
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.compression.Delete(c.Request.Context(), userID, fileID); err != nil {
		fileError(c, err, "delete file failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func parseTarget(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid target size %q", s)
	}
	return int64(n), nil
}

func fileError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInvalidTarget):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, err.Error())
	case errors.Is(err, app.ErrNotAnImage):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMedia, err.Error())
	case errors.Is(err, app.ErrFileNotFound):
		response.Error(c, http.StatusNotFound, response.CodeFileNotFound, err.Error())
	case errors.Is(err, app.ErrFileNotReady):
		response.Error(c, http.StatusConflict, response.CodeFileNotReady, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.Error(c, http.StatusGatewayTimeout, response.CodeCompressTimeout, "compression timed out")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
