package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/internal/api/middleware"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/response"
	"github.com/promptpal/promptpal-server/internal/service"
)

type PromoHandler struct {
	promoService *service.PromoService
}

func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
	}
}

// Create registers a new promocode
// POST /api/v1/admin/promocodes
func (h *PromoHandler) Create(c *gin.Context) {
	var req dto.CreatePromocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	promo, err := h.promoService.CreateCode(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ParamError(c, err.Error())
		}
		return
	}

	response.Success(c, promo)
}

// List returns all promocodes
// GET /api/v1/admin/promocodes?page=1&page_size=20
func (h *PromoHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, err := h.promoService.ListCodes(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Apply redeems a promocode for the current user
// POST /api/v1/promocodes/apply
func (h *PromoHandler) Apply(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ApplyPromocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	discount, err := h.promoService.Redeem(userID, req.Code)
	if err != nil {
		h.promoError(c, err)
		return
	}

	response.Success(c, &dto.ApplyPromocodeResponse{
		Code:            req.Code,
		DiscountPercent: discount,
	})
}

// Quote prices a plan with an optional promocode
// POST /api/v1/promocodes/quote
func (h *PromoHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.promoService.Quote(&req)
	if err != nil {
		h.promoError(c, err)
		return
	}

	response.Success(c, resp)
}

func (h *PromoHandler) promoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromoNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrPromoExpired):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrPromoExhausted):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrPromoAlreadyUsed):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrUnknownPlan):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
