package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/internal/api/middleware"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/response"
	"github.com/promptpal/promptpal-server/internal/service"
)

type OptimizeHandler struct {
	optimizeService    *service.OptimizeService
	entitlementService *service.EntitlementService
}

func NewOptimizeHandler(optimizeService *service.OptimizeService, entitlementService *service.EntitlementService) *OptimizeHandler {
	return &OptimizeHandler{
		optimizeService:    optimizeService,
		entitlementService: entitlementService,
	}
}

// Optimize rewrites a prompt, consuming one slot of the monthly allowance
// POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optimizeService.Optimize(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimitExceeded):
			usage, _ := h.entitlementService.GetUsage(userID)
			response.RateLimitError(c, "", usage)
		case errors.Is(err, service.ErrRewriteUpstream):
			response.UpstreamError(c, "")
		case errors.Is(err, service.ErrUserNotFound):
			response.AuthError(c, "")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// List returns the user's optimization history
// GET /api/v1/prompts?page=1&page_size=20
func (h *OptimizeHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := pagination(c)

	items, total, err := h.optimizeService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get returns one stored optimization
// GET /api/v1/prompts/:id
func (h *OptimizeHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	promptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid prompt id")
		return
	}

	prompt, err := h.optimizeService.Get(userID, promptID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromptNotFound):
			response.NotFoundError(c, "")
		case errors.Is(err, service.ErrPromptPermission):
			response.PermissionError(c, "")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, prompt)
}

// Delete removes one stored optimization
// DELETE /api/v1/prompts/:id
func (h *OptimizeHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	promptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid prompt id")
		return
	}

	if err := h.optimizeService.Delete(userID, promptID); err != nil {
		switch {
		case errors.Is(err, service.ErrPromptNotFound):
			response.NotFoundError(c, "")
		case errors.Is(err, service.ErrPromptPermission):
			response.PermissionError(c, "")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, nil)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
