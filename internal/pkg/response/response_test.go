package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSuccess(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Success(c, gin.H{"key": "value"})
	})

	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", data["key"])
}

func TestSuccess_NilData(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Success(c, nil)
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		SuccessWithMessage(c, "promocode applied", gin.H{"result": true})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "promocode applied", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		SuccessPage(c, 100, 1, 10, []string{"item1", "item2", "item3"})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(100), data["total"])
	assert.Equal(t, float64(1), data["page"])
	assert.Equal(t, float64(10), data["page_size"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 3)
}

func TestError(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, CodeServerError, "custom error message")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeServerError, resp.Code)
	assert.Equal(t, "custom error message", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestErrorHelpers_DefaultMessages(t *testing.T) {
	tests := []struct {
		name        string
		handler     gin.HandlerFunc
		wantCode    int
		wantMessage string
	}{
		{"param error", func(c *gin.Context) { ParamError(c, "") }, CodeParamError, "invalid parameters"},
		{"auth error", func(c *gin.Context) { AuthError(c, "") }, CodeAuthFailed, "authentication failed"},
		{"permission error", func(c *gin.Context) { PermissionError(c, "") }, CodePermissionDenied, "permission denied"},
		{"not found error", func(c *gin.Context) { NotFoundError(c, "") }, CodeResourceNotFound, "resource not found"},
		{"duplicate error", func(c *gin.Context) { DuplicateError(c, "") }, CodeDuplicateAction, "duplicate action"},
		{"upstream error", func(c *gin.Context) { UpstreamError(c, "") }, CodeUpstreamError, "upstream service unavailable"},
		{"server error", func(c *gin.Context) { ServerError(c, "") }, CodeServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.handler)

			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestErrorHelpers_CustomMessage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		AuthError(c, "token has expired")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeAuthFailed, resp.Code)
	assert.Equal(t, "token has expired", resp.Message)
}

func TestRateLimitError_CarriesUsage(t *testing.T) {
	w := serve(func(c *gin.Context) {
		RateLimitError(c, "", gin.H{"used": 10, "remaining": 0})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeRateLimitExceeded, resp.Code)
	assert.Equal(t, "monthly limit reached", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(10), data["used"])
	assert.Equal(t, float64(0), data["remaining"])
}

func TestError_UnknownCode(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, 9999, "")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, 9999, resp.Code)
	assert.Empty(t, resp.Message)
}
