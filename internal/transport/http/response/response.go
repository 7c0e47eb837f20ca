package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeInvalidCSV         = 40003
	CodeNothingToUndo      = 40004
	CodeNothingToRedo      = 40005
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeNotFound           = 40400
	CodeDraftNotFound      = 40401
	CodeFileNotFound       = 40402
	CodeTableNotFound      = 40403
	CodeUnknownPanel       = 40404
	CodeFileNotReady       = 40900
	CodePayloadTooLarge    = 41300
	CodeUnsupportedMedia   = 41500
	CodeInternalServer     = 50000
	CodeGenerationFailed   = 50200
	CodeLLMUnavailable     = 50300
	CodeGenerationTimeout  = 50400
	CodeCompressTimeout    = 50401
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
