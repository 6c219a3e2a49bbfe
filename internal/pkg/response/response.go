package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess           = 0
	CodeParamError        = 1000
	CodeAuthFailed        = 1001
	CodePermissionDenied  = 1002
	CodeResourceNotFound  = 1003
	CodeRateLimitExceeded = 1004
	CodeDuplicateAction   = 1005
	CodeUpstreamError     = 1006
	CodeServerError       = 5000
)

var codeMessages = map[int]string{
	CodeSuccess:           "success",
	CodeParamError:        "invalid parameters",
	CodeAuthFailed:        "authentication failed",
	CodePermissionDenied:  "permission denied",
	CodeResourceNotFound:  "resource not found",
	CodeRateLimitExceeded: "monthly limit reached",
	CodeDuplicateAction:   "duplicate action",
	CodeUpstreamError:     "upstream service unavailable",
	CodeServerError:       "internal server error",
}

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Items    interface{} `json:"items"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data: PageData{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Items:    items,
		},
	})
}

func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func AuthError(c *gin.Context, message string) {
	Error(c, CodeAuthFailed, message)
}

func PermissionError(c *gin.Context, message string) {
	Error(c, CodePermissionDenied, message)
}

func NotFoundError(c *gin.Context, message string) {
	Error(c, CodeResourceNotFound, message)
}

// RateLimitError carries the usage snapshot so the client can render the
// paywall without a second request.
func RateLimitError(c *gin.Context, message string, usage interface{}) {
	if message == "" {
		message = codeMessages[CodeRateLimitExceeded]
	}
	c.JSON(http.StatusOK, Response{
		Code:    CodeRateLimitExceeded,
		Message: message,
		Data:    usage,
	})
}

func DuplicateError(c *gin.Context, message string) {
	Error(c, CodeDuplicateAction, message)
}

func UpstreamError(c *gin.Context, message string) {
	Error(c, CodeUpstreamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
