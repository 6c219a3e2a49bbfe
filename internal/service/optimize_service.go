package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/rewrite"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var (
	// ErrRewriteUpstream marks a failed rewrite call. The consumed slot is
	// charged on admission and stays charged; the caller must be able to
	// tell this apart from a denial.
	ErrRewriteUpstream  = errors.New("rewrite service failed")
	ErrPromptNotFound   = errors.New("prompt not found")
	ErrPromptPermission = errors.New("prompt belongs to another user")
)

var defaultFocusAreas = []string{"specificity", "clarity"}

type OptimizeService struct {
	promptRepo  *repository.PromptRepository
	entitlement *EntitlementService
	rewriter    rewrite.Client
	cfg         *config.Config
}

func NewOptimizeService(
	promptRepo *repository.PromptRepository,
	entitlement *EntitlementService,
	rewriter rewrite.Client,
	cfg *config.Config,
) *OptimizeService {
	return &OptimizeService{
		promptRepo:  promptRepo,
		entitlement: entitlement,
		rewriter:    rewriter,
		cfg:         cfg,
	}
}

// Optimize runs one optimization request: admission first, then the
// external rewrite call, then persistence of the record.
//
// Consumption is committed before the rewrite call starts. That call is
// slow and can fail; a failure surfaces ErrRewriteUpstream and does not
// refund the slot (usage is charged per attempt, not per success).
func (s *OptimizeService) Optimize(ctx context.Context, userID int64, req *dto.OptimizeRequest) (*dto.OptimizeResponse, error) {
	audience := req.Audience
	if audience == "" {
		audience = "general"
	}
	focusAreas := req.FocusAreas
	if len(focusAreas) == 0 {
		focusAreas = defaultFocusAreas
	}

	if _, err := s.entitlement.TryConsume(userID); err != nil {
		return nil, err
	}

	result, err := s.rewriter.Rewrite(ctx, req.OriginalPrompt, audience, focusAreas)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRewriteUpstream, err)
	}

	prompt := &model.Prompt{
		UserID:          userID,
		OriginalPrompt:  req.OriginalPrompt,
		OptimizedPrompt: result.OptimizedPrompt,
		Audience:        audience,
		FocusAreas:      model.StringArray(focusAreas),
	}
	if err := s.promptRepo.Create(prompt); err != nil {
		return nil, err
	}

	return &dto.OptimizeResponse{
		PromptID:        prompt.ID,
		OriginalPrompt:  prompt.OriginalPrompt,
		OptimizedPrompt: prompt.OptimizedPrompt,
		Audience:        prompt.Audience,
		FocusAreas:      prompt.FocusAreas,
		Reasoning:       result.Reasoning,
		Improvements:    result.Improvements,
		CreatedAt:       prompt.CreatedAt.Format(time.RFC3339),
	}, nil
}

// List returns the user's optimization history, newest first.
func (s *OptimizeService) List(userID int64, page, pageSize int) ([]dto.PromptListItem, int64, error) {
	prompts, total, err := s.promptRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.PromptListItem, 0, len(prompts))
	for i := range prompts {
		p := &prompts[i]
		items = append(items, dto.PromptListItem{
			ID:              p.ID,
			OriginalPrompt:  p.OriginalPrompt,
			OptimizedPrompt: p.OptimizedPrompt,
			Audience:        p.Audience,
			FocusAreas:      p.FocusAreas,
			CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, total, nil
}

// Get returns one record, owner only.
func (s *OptimizeService) Get(userID, promptID int64) (*model.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	if prompt.UserID != userID {
		return nil, ErrPromptPermission
	}
	return prompt, nil
}

// Delete removes one record, owner only.
func (s *OptimizeService) Delete(userID, promptID int64) error {
	prompt, err := s.promptRepo.GetByID(promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromptNotFound
		}
		return err
	}
	if prompt.UserID != userID {
		return ErrPromptPermission
	}
	return s.promptRepo.Delete(promptID)
}
