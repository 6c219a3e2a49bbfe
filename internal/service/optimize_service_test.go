package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/rewrite"
	"github.com/promptpal/promptpal-server/internal/repository"
	"github.com/promptpal/promptpal-server/internal/testutil"
)

// fakeRewriter returns a canned result or a canned error.
type fakeRewriter struct {
	result *rewrite.Result
	err    error
	calls  int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, prompt, audience string, focusAreas []string) (*rewrite.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &rewrite.Result{
		OptimizedPrompt: "optimized: " + prompt,
		Reasoning:       "made it sharper",
		Improvements:    []string{"added context"},
	}, nil
}

func setupOptimize(t *testing.T, rewriter rewrite.Client) (*OptimizeService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	cfg := testConfig()
	entitlement := NewEntitlementService(userRepo, cfg)
	svc := NewOptimizeService(promptRepo, entitlement, rewriter, cfg)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return svc, db, cleanup
}

func TestOptimize_Success(t *testing.T) {
	svc, db, cleanup := setupOptimize(t, &fakeRewriter{})
	defer cleanup()

	user := testutil.TestUser(t, db)

	resp, err := svc.Optimize(context.Background(), user.ID, &dto.OptimizeRequest{
		OriginalPrompt: "write me a poem",
		Audience:       "children",
		FocusAreas:     []string{"tone"},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.PromptID)
	assert.Equal(t, "write me a poem", resp.OriginalPrompt)
	assert.Equal(t, "optimized: write me a poem", resp.OptimizedPrompt)
	assert.Equal(t, "children", resp.Audience)
	assert.Equal(t, []string{"tone"}, resp.FocusAreas)
	assert.Equal(t, "made it sharper", resp.Reasoning)

	// The record is persisted and the slot consumed.
	fresh, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.PromptsUsed)
}

func TestOptimize_Defaults(t *testing.T) {
	svc, db, cleanup := setupOptimize(t, &fakeRewriter{})
	defer cleanup()

	user := testutil.TestUser(t, db)

	resp, err := svc.Optimize(context.Background(), user.ID, &dto.OptimizeRequest{
		OriginalPrompt: "summarize this",
	})
	require.NoError(t, err)
	assert.Equal(t, "general", resp.Audience)
	assert.Equal(t, []string{"specificity", "clarity"}, resp.FocusAreas)
}

func TestOptimize_DeniedBeforeRewrite(t *testing.T) {
	fake := &fakeRewriter{}
	svc, db, cleanup := setupOptimize(t, fake)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPromptsUsed(10))

	_, err := svc.Optimize(context.Background(), user.ID, &dto.OptimizeRequest{
		OriginalPrompt: "anything",
	})
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	// A denied request never reaches the upstream service.
	assert.Equal(t, 0, fake.calls)
}

func TestOptimize_UpstreamFailureStillCharges(t *testing.T) {
	fake := &fakeRewriter{err: errors.New("upstream 503")}
	svc, db, cleanup := setupOptimize(t, fake)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPromptsUsed(4))

	_, err := svc.Optimize(context.Background(), user.ID, &dto.OptimizeRequest{
		OriginalPrompt: "anything",
	})
	assert.ErrorIs(t, err, ErrRewriteUpstream)
	assert.NotErrorIs(t, err, ErrRateLimitExceeded)

	// Charged on admission, no refund on failure.
	fresh, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.PromptsUsed)

	// And no record is stored for the failed attempt.
	count, err := repository.NewPromptRepository(db).CountByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestList(t *testing.T) {
	svc, db, cleanup := setupOptimize(t, &fakeRewriter{})
	defer cleanup()

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	for i := 0; i < 3; i++ {
		testutil.TestPrompt(t, db, user.ID)
	}
	testutil.TestPrompt(t, db, other.ID)

	items, total, err := svc.List(user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	items, total, err = svc.List(user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)
}

func TestGet_Ownership(t *testing.T) {
	svc, db, cleanup := setupOptimize(t, &fakeRewriter{})
	defer cleanup()

	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	prompt := testutil.TestPrompt(t, db, owner.ID)

	got, err := svc.Get(owner.ID, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, prompt.ID, got.ID)

	_, err = svc.Get(stranger.ID, prompt.ID)
	assert.ErrorIs(t, err, ErrPromptPermission)

	_, err = svc.Get(owner.ID, 99999)
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestDelete_Ownership(t *testing.T) {
	svc, db, cleanup := setupOptimize(t, &fakeRewriter{})
	defer cleanup()

	owner := testutil.TestUser(t, db)
	stranger := testutil.TestUser(t, db)
	prompt := testutil.TestPrompt(t, db, owner.ID)

	err := svc.Delete(stranger.ID, prompt.ID)
	assert.ErrorIs(t, err, ErrPromptPermission)

	require.NoError(t, svc.Delete(owner.ID, prompt.ID))

	_, err = svc.Get(owner.ID, prompt.ID)
	assert.ErrorIs(t, err, ErrPromptNotFound)

	err = svc.Delete(owner.ID, prompt.ID)
	assert.ErrorIs(t, err, ErrPromptNotFound)
}
