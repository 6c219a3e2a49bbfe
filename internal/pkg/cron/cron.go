package cron

import (
	"log"
	"time"

	"github.com/promptpal/promptpal-server/internal/service"
)

// Service runs background maintenance: a monthly-counter sweep at UTC
// midnight and an hourly promo-code expiry pass. Both are best-effort;
// admission resets lazily and Validate checks expiry itself, so a missed
// run never changes behavior.
type Service struct {
	entitlement *service.EntitlementService
	promo       *service.PromoService
	stopChan    chan struct{}
}

func NewService(entitlement *service.EntitlementService, promo *service.PromoService) *Service {
	return &Service{
		entitlement: entitlement,
		promo:       promo,
		stopChan:    make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runCounterSweep()
	go s.runPromoSweep()
	log.Println("Cron service started (counter sweep + promo expiry)")
}

func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runCounterSweep() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.sweepCounters()
			timer.Reset(24 * time.Hour)
		}
	}
}

func (s *Service) sweepCounters() {
	n, err := s.entitlement.SweepExpiredCounters()
	if err != nil {
		log.Printf("Counter sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Counter sweep reset %d accounts", n)
	}
}

func (s *Service) runPromoSweep() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepPromos()
		}
	}
}

func (s *Service) sweepPromos() {
	n, err := s.promo.SweepExpired()
	if err != nil {
		log.Printf("Promo expiry sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Promo expiry sweep deactivated %d codes", n)
	}
}

// RunNow triggers both sweeps immediately.
func (s *Service) RunNow() error {
	if _, err := s.entitlement.SweepExpiredCounters(); err != nil {
		return err
	}
	_, err := s.promo.SweepExpired()
	return err
}
