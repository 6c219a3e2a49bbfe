package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var (
	ErrPromoNotFound    = errors.New("promocode not found")
	ErrPromoExpired     = errors.New("promocode expired")
	ErrPromoExhausted   = errors.New("promocode has no uses left")
	ErrPromoAlreadyUsed = errors.New("promocode already used by this account")
	ErrUnknownPlan      = errors.New("unknown subscription plan")
	ErrCodeExists       = errors.New("promocode already exists")
)

type PromoService struct {
	promoRepo *repository.PromoRepository
	cfg       *config.Config
	nowFn     func() time.Time
}

func NewPromoService(promoRepo *repository.PromoRepository, cfg *config.Config) *PromoService {
	return &PromoService{
		promoRepo: promoRepo,
		cfg:       cfg,
		nowFn:     time.Now,
	}
}

// CreateCode registers a new promocode (administrative action).
func (s *PromoService) CreateCode(req *dto.CreatePromocodeRequest) (*model.Promocode, error) {
	promo := &model.Promocode{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		MaxUses:         req.MaxUses,
		IsActive:        true,
	}

	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		promo.ExpiresAt = &expiresAt
	}

	if err := s.promoRepo.Create(promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeExists
		}
		return nil, err
	}
	return promo, nil
}

// ListCodes returns promocodes for the admin view.
func (s *PromoService) ListCodes(page, pageSize int) ([]dto.PromocodeItem, int64, error) {
	promos, total, err := s.promoRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.PromocodeItem, 0, len(promos))
	for i := range promos {
		items = append(items, *toPromocodeItem(&promos[i]))
	}
	return items, total, nil
}

// Validate checks that a code exists and is currently usable.
// An inactive code is reported as not found; expiry and exhaustion get
// their own errors so the frontend can explain the rejection.
func (s *PromoService) Validate(code string) (*model.Promocode, error) {
	promo, err := s.promoRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}

	now := s.nowFn().UTC()
	if !promo.IsActive {
		return nil, ErrPromoNotFound
	}
	if promo.Expired(now) {
		return nil, ErrPromoExpired
	}
	if promo.Exhausted() {
		return nil, ErrPromoExhausted
	}
	return promo, nil
}

// Redeem applies a code to an account, once per (account, code) pair ever.
//
// The whole check-insert-increment runs under an exclusive lock on the code
// row. The redemption insert goes first: a replay trips the unique index and
// reports AlreadyUsed before the exhaustion check, so redeeming a maxUses=1
// code twice from the same account yields Applied then AlreadyUsed.
func (s *PromoService) Redeem(userID int64, code string) (int, error) {
	now := s.nowFn().UTC()

	var discount int
	err := s.promoRepo.WithCodeLock(code, func(tx *gorm.DB, promo *model.Promocode) error {
		if !promo.IsActive {
			return ErrPromoNotFound
		}
		if promo.Expired(now) {
			return ErrPromoExpired
		}

		if err := s.promoRepo.InsertRedemption(tx, userID, promo.ID, now); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPromoAlreadyUsed
			}
			return err
		}

		if promo.Exhausted() {
			return ErrPromoExhausted
		}

		promo.UsedCount++
		discount = promo.DiscountPercent
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPromoNotFound
		}
		return 0, err
	}

	return discount, nil
}

// Quote computes the charged amount for a plan, optionally discounted.
// Quoting only validates the code; redemption is recorded at purchase time.
func (s *PromoService) Quote(req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	plan, ok := s.cfg.Plans.Prices[req.Plan]
	if !ok {
		return nil, ErrUnknownPlan
	}

	resp := &dto.QuoteResponse{
		Plan:            req.Plan,
		BasePriceCents:  plan.PriceCents,
		FinalPriceCents: plan.PriceCents,
	}

	if req.Code != "" {
		promo, err := s.Validate(req.Code)
		if err != nil {
			return nil, err
		}
		resp.DiscountPercent = promo.DiscountPercent
		resp.FinalPriceCents = DiscountedPriceCents(plan.PriceCents, promo.DiscountPercent)
	}

	return resp, nil
}

// SweepExpired deactivates codes past their expiry. Housekeeping only;
// Validate and Redeem check expiry on their own.
func (s *PromoService) SweepExpired() (int64, error) {
	return s.promoRepo.DeactivateExpired(s.nowFn().UTC())
}

// DiscountedPriceCents applies a percentage discount to a price in cents,
// rounding half up to the nearest cent. Integer arithmetic throughout:
// $14.99 at 20% off is $11.992, charged as $11.99.
func DiscountedPriceCents(baseCents int64, discountPercent int) int64 {
	return (baseCents*int64(100-discountPercent) + 50) / 100
}

func toPromocodeItem(promo *model.Promocode) *dto.PromocodeItem {
	item := &dto.PromocodeItem{
		ID:              promo.ID,
		Code:            promo.Code,
		Description:     promo.Description,
		DiscountPercent: promo.DiscountPercent,
		MaxUses:         promo.MaxUses,
		UsedCount:       promo.UsedCount,
		IsActive:        promo.IsActive,
		CreatedAt:       promo.CreatedAt.Format(time.RFC3339),
	}
	if promo.ExpiresAt != nil {
		item.ExpiresAt = promo.ExpiresAt.Format(time.RFC3339)
	}
	return item
}
