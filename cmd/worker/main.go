package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promptpal/promptpal-server/config"
	"github.com/promptpal/promptpal-server/internal/database"
	"github.com/promptpal/promptpal-server/internal/pkg/pubsub"
	"github.com/promptpal/promptpal-server/internal/pkg/queue"
	"github.com/promptpal/promptpal-server/internal/repository"
	"github.com/promptpal/promptpal-server/internal/service"
	"github.com/promptpal/promptpal-server/internal/worker"
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
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	billingQueue := queue.NewQueue(rdb, cfg.Queue.BillingQueue)
	publisher := pubsub.NewPublisher(rdb)

	userRepo := repository.NewUserRepository(db)
	billingService := service.NewBillingService(userRepo)

	processor := worker.NewProcessor(billingService, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	log.Printf("Worker started, max workers: %d", maxWorkers)

	for i := 0; i < maxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := billingQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop event: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue
					}

					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: event seq=%d failed: %v", workerID, msg.Event.Seq, err)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
