package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/testutil"
)

func TestPromptRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPromptRepository(db)
	user := testutil.TestUser(t, db)

	prompt := &model.Prompt{
		UserID:          user.ID,
		OriginalPrompt:  "write a poem",
		OptimizedPrompt: "write a four-stanza poem about autumn",
		Audience:        "general",
		FocusAreas:      model.StringArray{"specificity"},
	}
	require.NoError(t, repo.Create(prompt))
	require.NotZero(t, prompt.ID)

	got, err := repo.GetByID(prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, "write a poem", got.OriginalPrompt)
	assert.Equal(t, model.StringArray{"specificity"}, got.FocusAreas)

	_, err = repo.GetByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPromptRepository_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPromptRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	var ids []int64
	for i := 0; i < 5; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		p := testutil.TestPrompt(t, db, user.ID, func(p *model.Prompt) {
			p.CreatedAt = createdAt
		})
		ids = append(ids, p.ID)
	}
	testutil.TestPrompt(t, db, other.ID)

	t.Run("newest first", func(t *testing.T) {
		prompts, total, err := repo.ListByUser(user.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, prompts, 5)
		assert.Equal(t, ids[4], prompts[0].ID)
		assert.Equal(t, ids[0], prompts[4].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		prompts, total, err := repo.ListByUser(user.ID, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, prompts, 2)
		assert.Equal(t, ids[2], prompts[0].ID)
		assert.Equal(t, ids[1], prompts[1].ID)
	})

	t.Run("other user's prompts excluded", func(t *testing.T) {
		prompts, total, err := repo.ListByUser(other.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, prompts, 1)
	})
}

func TestPromptRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPromptRepository(db)
	user := testutil.TestUser(t, db)
	prompt := testutil.TestPrompt(t, db, user.ID)

	require.NoError(t, repo.Delete(prompt.ID))

	_, err := repo.GetByID(prompt.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPromptRepository_CountByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPromptRepository(db)
	user := testutil.TestUser(t, db)

	count, err := repo.CountByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	testutil.TestPrompt(t, db, user.ID)
	testutil.TestPrompt(t, db, user.ID)

	count, err = repo.CountByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
