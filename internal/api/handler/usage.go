package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/internal/api/middleware"
	"github.com/promptpal/promptpal-server/internal/pkg/response"
	"github.com/promptpal/promptpal-server/internal/service"
)

type UsageHandler struct {
	entitlementService *service.EntitlementService
}

func NewUsageHandler(entitlementService *service.EntitlementService) *UsageHandler {
	return &UsageHandler{
		entitlementService: entitlementService,
	}
}

// GetUsage returns the current entitlement snapshot
// GET /api/v1/user/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.entitlementService.GetUsage(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, "")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}
