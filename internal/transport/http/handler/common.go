package handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scholarforge/internal/transport/http/middleware"
	"scholarforge/internal/transport/http/response"
)

var (
	errMissingFile  = errors.New("missing file")
	errFileTooLarge = errors.New("file too large")
)

type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}

// requireUser writes a 401 and returns false when the token carried no user.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
	}
	return userID, ok
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	u, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || u == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(u), true
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return n
}

// readUpload reads a multipart field fully, refusing anything over max bytes.
func readUpload(c *gin.Context, field string, max int64) (*upload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errMissingFile
		}
		return nil, err
	}
	if max > 0 && file.Size > max {
		return nil, errFileTooLarge
	}
	data, err := readMultipart(file)
	if err != nil {
		return nil, err
	}
	return &upload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readMultipart(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uploadError maps readUpload failures onto the envelope.
func uploadError(c *gin.Context, field string, err error) {
	switch {
	case errors.Is(err, errMissingFile):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file (form field '"+field+"')")
	case errors.Is(err, errFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "file too large")
	default:
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read uploaded file")
	}
}

// sendAttachment streams data as a download.
func sendAttachment(c *gin.Context, name, mimeType string, size int64, r io.Reader) {
	extra := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	}
	c.DataFromReader(http.StatusOK, size, mimeType, r, extra)
}
