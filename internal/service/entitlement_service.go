package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var (
	ErrRateLimitExceeded = errors.New("monthly optimization limit reached")
	ErrUserNotFound      = errors.New("user not found")
)

// maxTxRetries bounds transparent retries of an admission transaction that
// lost a lock conflict before the conflict is surfaced to the caller.
const maxTxRetries = 3

// ShouldReset reports whether the consumption counter must be zeroed before
// an admission decision: true iff anchor and now fall in different calendar
// months (UTC). When now is behind the anchor (clock skew) it returns false;
// we never reset backward.
func ShouldReset(anchor, now time.Time) bool {
	if now.Before(anchor) {
		return false
	}
	anchor, now = anchor.UTC(), now.UTC()
	return anchor.Year() != now.Year() || anchor.Month() != now.Month()
}

type EntitlementService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
	nowFn    func() time.Time
}

func NewEntitlementService(userRepo *repository.UserRepository, cfg *config.Config) *EntitlementService {
	return &EntitlementService{
		userRepo: userRepo,
		cfg:      cfg,
		nowFn:    time.Now,
	}
}

// TryConsume admits or denies one optimization request and, on admit,
// durably increments the counter. Check and increment run inside one
// row-locked transaction, so two concurrent requests can never both take
// the last free slot.
//
// The lazy reset happens here too: a long-idle account gets its counter
// zeroed and its anchor moved forward as part of the same state transition.
// Premium accounts bypass the limit but still count usage.
//
// The returned user reflects the committed state. A denied request returns
// the state alongside ErrRateLimitExceeded. The consumed slot is charged on
// admission and is never refunded, even if the rewrite call later fails.
func (s *EntitlementService) TryConsume(userID int64) (*model.User, error) {
	now := s.nowFn().UTC()

	var denied bool
	var snapshot model.User

	attempt := func() error {
		denied = false
		return s.userRepo.WithLock(userID, func(tx *gorm.DB, user *model.User) error {
			if ShouldReset(user.LastResetAt, now) {
				user.PromptsUsed = 0
				user.LastResetAt = now
			}

			switch {
			case user.IsPremium:
				user.PromptsUsed++
			case user.PromptsUsed < s.freeLimit():
				user.PromptsUsed++
			default:
				denied = true
			}

			snapshot = *user
			return nil
		})
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = attempt()
		if err == nil || !isLockConflict(err) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if denied {
		return &snapshot, ErrRateLimitExceeded
	}
	return &snapshot, nil
}

// GetUsage returns the entitlement snapshot for display. The pending reset
// is reflected in the view but not persisted; persistence happens on the
// next admission.
func (s *EntitlementService) GetUsage(userID int64) (*dto.UsageInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.UsageFor(user), nil
}

// UsageFor builds the usage view from an already-loaded user.
func (s *EntitlementService) UsageFor(user *model.User) *dto.UsageInfo {
	now := s.nowFn().UTC()

	used := user.PromptsUsed
	periodStart := user.LastResetAt
	if ShouldReset(user.LastResetAt, now) {
		used = 0
		periodStart = now
	}

	remaining := s.freeLimit() - used
	if remaining < 0 {
		remaining = 0
	}

	return &dto.UsageInfo{
		MonthlyLimit:       s.freeLimit(),
		Used:               used,
		Remaining:          remaining,
		IsPremium:          user.IsPremium,
		SubscriptionStatus: user.SubscriptionStatus,
		PeriodStart:        periodStart.Format(time.RFC3339),
	}
}

// SweepExpiredCounters zeroes counters for all accounts whose period lapsed.
// Optional housekeeping; correctness never depends on it.
func (s *EntitlementService) SweepExpiredCounters() (int64, error) {
	return s.userRepo.ResetExpiredCounters(s.nowFn().UTC())
}

func (s *EntitlementService) freeLimit() int {
	if s.cfg.Plans.FreeMonthlyLimit > 0 {
		return s.cfg.Plans.FreeMonthlyLimit
	}
	return 10
}

// isLockConflict matches driver-level serialization failures that are safe
// to retry (MySQL deadlock / lock wait timeout).
func isLockConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "lock wait timeout")
}
