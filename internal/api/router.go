package api

import (
	"github.com/gin-gonic/gin"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/api/handler"
	"github.com/promptpal/promptpal-server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	usageHandler     *handler.UsageHandler
	optimizeHandler  *handler.OptimizeHandler
	promoHandler     *handler.PromoHandler
	billingHandler   *handler.BillingHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	usageHandler *handler.UsageHandler,
	optimizeHandler *handler.OptimizeHandler,
	promoHandler *handler.PromoHandler,
	billingHandler *handler.BillingHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		usageHandler:     usageHandler,
		optimizeHandler:  optimizeHandler,
		promoHandler:     promoHandler,
		billingHandler:   billingHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// Public - auth
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuthURL)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// Provider webhooks, authenticated by shared secret header.
		api.POST("/billing/webhook", r.billingHandler.Webhook)

		// Public - plan pricing quote
		api.POST("/promocodes/quote", r.promoHandler.Quote)

		// Authenticated
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
				user.POST("/export", r.userHandler.ExportPrompts)
				user.GET("/usage", r.usageHandler.GetUsage)
			}

			authenticated.POST("/optimize", r.optimizeHandler.Optimize)

			prompts := authenticated.Group("/prompts")
			{
				prompts.GET("", r.optimizeHandler.List)
				prompts.GET("/:id", r.optimizeHandler.Get)
				prompts.DELETE("/:id", r.optimizeHandler.Delete)
			}

			authenticated.POST("/promocodes/apply", r.promoHandler.Apply)
		}

		// Operator endpoints, gated by the admin key header.
		admin := api.Group("/admin")
		admin.Use(middleware.AdminKey(r.cfg.Server.AdminKey))
		{
			admin.POST("/promocodes", r.promoHandler.Create)
			admin.GET("/promocodes", r.promoHandler.List)
		}
	}

	return engine
}
