package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/oss"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var (
	ErrUnsupportedImage   = errors.New("unsupported image type")
	ErrAvatarTooLarge     = errors.New("avatar exceeds size limit")
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

const maxAvatarBytes = 2 << 20

type UserService struct {
	userRepo    *repository.UserRepository
	promptRepo  *repository.PromptRepository
	entitlement *EntitlementService
	ossClient   *oss.Client
}

func NewUserService(userRepo *repository.UserRepository, promptRepo *repository.PromptRepository, entitlement *EntitlementService, ossClient *oss.Client) *UserService {
	return &UserService{
		userRepo:    userRepo,
		promptRepo:  promptRepo,
		entitlement: entitlement,
		ossClient:   ossClient,
	}
}

// GetProfile returns the user's public profile with current-period usage.
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return ToUserInfo(user, s.entitlement.UsageFor(user)), nil
}

func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Email != nil && *req.Email != "" {
		if user.Email == nil || *user.Email != *req.Email {
			exists, err := s.userRepo.ExistsByEmail(*req.Email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailExists
			}
			user.Email = req.Email
		}
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return ToUserInfo(user, s.entitlement.UsageFor(user)), nil
}

// UploadAvatar stores the image in OSS and points the profile at it.
// The server runs without OSS when it is not configured; avatar upload is
// simply unavailable then.
func (s *UserService) UploadAvatar(userID int64, filename string, data []byte) (string, error) {
	if len(data) > maxAvatarBytes {
		return "", ErrAvatarTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", ErrUnsupportedImage
	}

	if s.ossClient == nil {
		return "", ErrStorageUnavailable
	}

	url, err := s.ossClient.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", fmt.Errorf("avatar upload failed: %w", err)
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// ExportPrompts serializes the user's full prompt history to OSS and returns
// a download URL.
func (s *UserService) ExportPrompts(userID int64) (string, error) {
	if s.ossClient == nil {
		return "", ErrStorageUnavailable
	}

	const batch = 200

	var all []model.Prompt
	for page := 1; ; page++ {
		prompts, _, err := s.promptRepo.ListByUser(userID, page, batch)
		if err != nil {
			return "", err
		}
		all = append(all, prompts...)
		if len(prompts) < batch {
			break
		}
	}

	data, err := json.Marshal(all)
	if err != nil {
		return "", err
	}
	return s.ossClient.UploadExport(userID, data)
}
