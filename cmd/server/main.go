package main

import (
	"context"
	"fmt"
	"log"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/api"
	"github.com/promptpal/promptpal-server/internal/api/handler"
	"github.com/promptpal/promptpal-server/internal/database"
	"github.com/promptpal/promptpal-server/internal/pkg/cron"
	"github.com/promptpal/promptpal-server/internal/pkg/oauth"
	"github.com/promptpal/promptpal-server/internal/pkg/oss"
	"github.com/promptpal/promptpal-server/internal/pkg/pubsub"
	"github.com/promptpal/promptpal-server/internal/pkg/queue"
	"github.com/promptpal/promptpal-server/internal/pkg/rewrite"
	"github.com/promptpal/promptpal-server/internal/pkg/ws"
	"github.com/promptpal/promptpal-server/internal/repository"
	"github.com/promptpal/promptpal-server/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	billingQueue := queue.NewQueue(rdb, cfg.Queue.BillingQueue)
	stateStore := oauth.NewStateStore(rdb)

	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	userRepo := repository.NewUserRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	promoRepo := repository.NewPromoRepository(db)

	rewriter := rewrite.NewHTTPClient(&cfg.Rewrite)

	authService := service.NewAuthService(userRepo, cfg)
	entitlementService := service.NewEntitlementService(userRepo, cfg)
	optimizeService := service.NewOptimizeService(promptRepo, entitlementService, rewriter, cfg)
	promoService := service.NewPromoService(promoRepo, cfg)
	userService := service.NewUserService(userRepo, promptRepo, entitlementService, ossClient)

	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	usageHandler := handler.NewUsageHandler(entitlementService)
	optimizeHandler := handler.NewOptimizeHandler(optimizeService, entitlementService)
	promoHandler := handler.NewPromoHandler(promoService)
	billingHandler := handler.NewBillingHandler(billingQueue, cfg.Billing.WebhookSecret)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// Fan entitlement updates from the worker out to connected clients.
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.EntitlementMessage) {
			wsHub.SendToUser(msg.UserID, &ws.Message{
				Type: msg.Type,
				Data: msg,
			})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Entitlement subscription ended: %v", err)
		}
	}()

	cronService := cron.NewService(entitlementService, promoService)
	cronService.Start()
	defer cronService.Stop()

	router := api.NewRouter(
		authHandler,
		userHandler,
		usageHandler,
		optimizeHandler,
		promoHandler,
		billingHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
