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

func TestUserRepository_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db, testutil.WithUsername("crud_user"))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "crud_user", got.Username)

	got, err = repo.GetByUsername("crud_user")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByID(99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByUsername("crud_user")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername("nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_WithLock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	err := repo.WithLock(user.ID, func(tx *gorm.DB, u *model.User) error {
		u.PromptsUsed = 7
		return nil
	})
	require.NoError(t, err)

	fresh, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.PromptsUsed)
}

func TestUserRepository_WithLock_ErrorRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithPromptsUsed(3))

	wantErr := assert.AnError
	err := repo.WithLock(user.ID, func(tx *gorm.DB, u *model.User) error {
		u.PromptsUsed = 100
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	fresh, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.PromptsUsed)
}

func TestUserRepository_WithLock_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	err := repo.WithLock(99999, func(tx *gorm.DB, u *model.User) error {
		t.Fatal("callback must not run for a missing row")
		return nil
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_WithLockByCustomerRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithCustomerRef("cus_lock"))

	err := repo.WithLockByCustomerRef("cus_lock", func(tx *gorm.DB, u *model.User) error {
		assert.Equal(t, user.ID, u.ID)
		u.IsPremium = true
		return nil
	})
	require.NoError(t, err)

	fresh, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsPremium)

	err = repo.WithLockByCustomerRef("cus_missing", func(tx *gorm.DB, u *model.User) error {
		return nil
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ResetExpiredCounters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	stale := testutil.TestUser(t, db,
		testutil.WithPromptsUsed(10),
		testutil.WithAnchor(now.AddDate(0, 0, -35)))
	current := testutil.TestUser(t, db,
		testutil.WithPromptsUsed(5),
		testutil.WithAnchor(now))

	n, err := repo.ResetExpiredCounters(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	freshStale, err := repo.GetByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, freshStale.PromptsUsed)
	assert.False(t, freshStale.LastResetAt.Before(freshStale.CreatedAt.AddDate(0, 0, -1)))

	freshCurrent, err := repo.GetByID(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, freshCurrent.PromptsUsed)

	// Second sweep finds nothing to do.
	n, err = repo.ResetExpiredCounters(now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
