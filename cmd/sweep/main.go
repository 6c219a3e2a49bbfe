package main

import (
	"flag"
	"log"
	"os"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/database"
	"github.com/promptpal/promptpal-server/internal/repository"
	"github.com/promptpal/promptpal-server/internal/service"
)

var (
	resetCounters = flag.Bool("reset-counters", true, "Zero monthly counters whose period lapsed")
	expirePromos  = flag.Bool("expire-promos", true, "Deactivate promocodes past their expiry")
)

// One-shot maintenance pass, for operators and scheduled jobs. The server's
// own cron loop does the same work; this binary exists for environments that
// run it externally (Kubernetes CronJob, systemd timer).
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	entitlementService := service.NewEntitlementService(userRepo, cfg)
	promoService := service.NewPromoService(promoRepo, cfg)

	if *resetCounters {
		n, err := entitlementService.SweepExpiredCounters()
		if err != nil {
			log.Fatalf("Counter sweep failed: %v", err)
		}
		log.Printf("Counter sweep reset %d accounts", n)
	}

	if *expirePromos {
		n, err := promoService.SweepExpired()
		if err != nil {
			log.Fatalf("Promo expiry sweep failed: %v", err)
		}
		log.Printf("Promo expiry sweep deactivated %d codes", n)
	}

	log.Println("Sweep completed")
}
