package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/repository"
	"github.com/promptpal/promptpal-server/internal/testutil"
)

type testEnv struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
}

func setupUserService(t *testing.T) (*UserService, *testEnv) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	userRepo := repository.NewUserRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	entitlement := NewEntitlementService(userRepo, testConfig())

	svc := NewUserService(userRepo, promptRepo, entitlement, nil)
	return svc, &testEnv{db: db, userRepo: userRepo}
}

func TestGetProfile(t *testing.T) {
	svc, env := setupUserService(t)

	user := testutil.TestUser(t, env.db, testutil.WithPromptsUsed(3))

	info, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, info.ID)
	assert.Equal(t, user.Username, info.Username)
	require.NotNil(t, info.Usage)
	assert.Equal(t, 3, info.Usage.Used)
	assert.Equal(t, 7, info.Usage.Remaining)

	_, err = svc.GetProfile(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, env := setupUserService(t)

	t.Run("update display name", func(t *testing.T) {
		user := testutil.TestUser(t, env.db)

		name := "New Name"
		info, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "New Name", info.DisplayName)

		stored, err := env.userRepo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", stored.DisplayName)
	})

	t.Run("update email", func(t *testing.T) {
		user := testutil.TestUser(t, env.db)

		email := "fresh@example.com"
		info, err := svc.UpdateProfile(user.ID, &dto.UpdateProfileRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "fresh@example.com", info.Email)
	})

	t.Run("email already taken", func(t *testing.T) {
		userA := testutil.TestUser(t, env.db)
		userB := testutil.TestUser(t, env.db)

		taken := *userA.Email
		_, err := svc.UpdateProfile(userB.ID, &dto.UpdateProfileRequest{Email: &taken})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "x"
		_, err := svc.UpdateProfile(99999, &dto.UpdateProfileRequest{DisplayName: &name})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUploadAvatar_Validation(t *testing.T) {
	svc, env := setupUserService(t)
	user := testutil.TestUser(t, env.db)

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := svc.UploadAvatar(user.ID, "avatar.bmp", []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("no extension", func(t *testing.T) {
		_, err := svc.UploadAvatar(user.ID, "avatar", []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("oversized image", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xff}, maxAvatarBytes+1)
		_, err := svc.UploadAvatar(user.ID, "avatar.png", data)
		assert.ErrorIs(t, err, ErrAvatarTooLarge)
	})
}

// The server runs with object storage left unconfigured; the OSS-backed
// features must reject cleanly instead of dereferencing a nil client.
func TestStorageUnavailable(t *testing.T) {
	svc, env := setupUserService(t)
	user := testutil.TestUser(t, env.db)

	t.Run("upload avatar", func(t *testing.T) {
		_, err := svc.UploadAvatar(user.ID, "avatar.png", []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("export prompts", func(t *testing.T) {
		_, err := svc.ExportPrompts(user.ID)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}
