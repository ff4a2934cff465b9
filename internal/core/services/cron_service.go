package services

import (
	"context"
	"fmt"
	"time"

	"sehatku-paylater/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// TokenCleanupSpec runs refresh token cleanup every day at 03:00:00
const TokenCleanupSpec = "0 0 3 * * *"

// jobTimeout bounds a single scheduled run
const jobTimeout = 10 * time.Minute

// CronService schedules background maintenance jobs
type CronService struct {
	cron        *cron.Cron
	bpjsService *BPJSService
	authService *AuthService
}

// NewCronService creates a cron service. reclassifySpec uses the six-field (seconds) format.
func NewCronService(bpjsService *BPJSService, authService *AuthService, reclassifySpec string) (*CronService, error) {
	cronLog := logger.Cron()
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	s := &CronService{
		cron:        c,
		bpjsService: bpjsService,
		authService: authService,
	}

	if _, err := c.AddFunc(reclassifySpec, s.reclassifyBPJS); err != nil {
		return nil, fmt.Errorf("schedule bpjs reclassify %q: %w", reclassifySpec, err)
	}
	if _, err := c.AddFunc(TokenCleanupSpec, s.cleanupTokens); err != nil {
		return nil, fmt.Errorf("schedule token cleanup: %w", err)
	}

	log.Info().Str("reclassify", reclassifySpec).Str("token_cleanup", TokenCleanupSpec).Msg("⏰ Cron jobs scheduled")
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	log.Info().Msg("⏰ Cron service started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("⏰ Cron service stopped")
}

func (s *CronService) reclassifyBPJS() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.bpjsService.ReclassifyAll(ctx); err != nil {
		log.Error().Err(err).Msg("❌ BPJS reclassify failed")
	}
}

func (s *CronService) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.authService.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Refresh token cleanup failed")
		return
	}
	log.Info().Int64("deleted", deleted).Msg("🧹 Expired refresh tokens removed")
}
