package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/internal/model/dto"
	"github.com/promptpal/promptpal-server/internal/pkg/oauth"
	"github.com/promptpal/promptpal-server/internal/pkg/response"
	"github.com/promptpal/promptpal-server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "account created", resp)
}

// Login authenticates with username and password
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GithubAuthURL starts the GitHub OAuth flow
// GET /api/v1/auth/github
func (h *AuthHandler) GithubAuthURL(c *gin.Context) {
	state, err := h.stateStore.GenerateState(c.Request.Context(), c.Query("redirect"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"url": h.authService.GithubAuthURL(state)})
}

// GithubCallback completes the GitHub OAuth flow
// GET /api/v1/auth/github/callback?code=xxx&state=xxx
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.ParamError(c, "missing code or state")
		return
	}

	redirectURI, err := h.stateStore.ValidateState(c.Request.Context(), state)
	if err != nil {
		response.AuthError(c, "invalid oauth state")
		return
	}

	resp, err := h.authService.GithubLogin(c.Request.Context(), code)
	if err != nil {
		response.AuthError(c, "github login failed")
		return
	}

	response.Success(c, gin.H{
		"token":    resp.Token,
		"user":     resp.User,
		"redirect": redirectURI,
	})
}
