package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/jwt"
	"github.com/promptpal/promptpal-server/internal/pkg/oauth"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var (
	ErrUsernameExists     = errors.New("username already taken")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const githubProvider = "github"

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
	nowFn       func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
		nowFn: time.Now,
	}
}

// Register creates an account with a fresh entitlement window: counter at
// zero, anchor at signup time, free tier.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	if req.Email != "" {
		exists, err = s.userRepo.ExistsByEmail(req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashed)

	user := &model.User{
		Username:           req.Username,
		PasswordHash:       &passwordStr,
		DisplayName:        req.DisplayName,
		LastResetAt:        s.nowFn().UTC(),
		SubscriptionStatus: model.SubscriptionInactive,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		// OAuth-only account, no password set.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GithubAuthURL returns the GitHub consent URL for the given state token.
func (s *AuthService) GithubAuthURL(state string) string {
	return s.githubOAuth.AuthURL(state)
}

// GithubLogin completes the OAuth callback: exchanges the code, then finds
// or creates the account linked to the GitHub identity.
func (s *AuthService) GithubLogin(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange failed: %w", err)
	}

	ghUser, err := s.githubOAuth.FetchUser(ctx, token)
	if err != nil {
		return nil, err
	}

	providerID := fmt.Sprintf("%d", ghUser.ID)
	user, err := s.userRepo.GetByProvider(githubProvider, providerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user, err = s.createGithubUser(ghUser, providerID)
		if err != nil {
			return nil, err
		}
	}

	return s.issueToken(user)
}

func (s *AuthService) createGithubUser(ghUser *oauth.GithubUser, providerID string) (*model.User, error) {
	username := ghUser.Login
	// GitHub logins can collide with existing local usernames.
	exists, err := s.userRepo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if exists {
		username = fmt.Sprintf("%s_%s", ghUser.Login, providerID)
	}

	provider := githubProvider
	user := &model.User{
		Username:           username,
		DisplayName:        ghUser.Name,
		AvatarURL:          ghUser.AvatarURL,
		Provider:           &provider,
		ProviderID:         &providerID,
		LastResetAt:        s.nowFn().UTC(),
		SubscriptionStatus: model.SubscriptionInactive,
	}
	if ghUser.Email != "" {
		user.Email = &ghUser.Email
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  ToUserInfo(user, nil),
	}, nil
}

// ToUserInfo converts a user row to its public shape.
func ToUserInfo(user *model.User, usage *dto.UsageInfo) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:                 user.ID,
		Username:           user.Username,
		DisplayName:        user.DisplayName,
		AvatarURL:          user.AvatarURL,
		IsPremium:          user.IsPremium,
		SubscriptionStatus: user.SubscriptionStatus,
		Usage:              usage,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return info
}
