package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sehatku-paylater/internal/adapters/http/handlers"
	"sehatku-paylater/internal/adapters/http/middleware"
	"sehatku-paylater/internal/adapters/http/routes"
	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/config"
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/keylock"
	"sehatku-paylater/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// lockTTL bounds how long a crashed instance can hold a per-user lock in Redis
const lockTTL = 30 * time.Second

// infra holds the shared infrastructure every subcommand starts from
type infra struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
}

func bootstrap(ctx context.Context, withRedis bool) (*infra, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger.Setup(cfg.AppMode)

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	rt := &infra{cfg: cfg, db: db}
	if withRedis {
		rt.redis, err = config.ConnectRedis(ctx, cfg)
		if err != nil {
			_ = config.CloseDatabase(db)
			return nil, err
		}
	}
	return rt, nil
}

func (rt *infra) close() {
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			log.Error().Err(err).Msg("❌ Failed to close redis")
		}
	}
	if err := config.CloseDatabase(rt.db); err != nil {
		log.Error().Err(err).Msg("❌ Failed to close database")
	}
}

// locker uses Redis when configured so several API instances share per-user locks
func (rt *infra) locker() keylock.Locker {
	if rt.redis != nil {
		log.Info().Msg("🔒 Using Redis per-user locks")
		return keylock.NewRedis(rt.redis, lockTTL)
	}
	log.Warn().Msg("🔒 REDIS_URL not set, using in-process locks (single instance only)")
	return keylock.NewLocal()
}

func (rt *infra) services() *routes.Services {
	userRepo := repositories.NewUserRepository(rt.db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(rt.db)
	hospitalRepo := repositories.NewHospitalRepository(rt.db)
	diseaseRepo := repositories.NewDiseaseRepository(rt.db)
	payLaterRepo := repositories.NewPayLaterRepository(rt.db)
	treatmentRepo := repositories.NewTreatmentRepository(rt.db)
	dashboardRepo := repositories.NewDashboardRepository(rt.db)

	locker := rt.locker()

	return &routes.Services{
		Auth:      services.NewAuthService(userRepo, refreshTokenRepo, rt.cfg),
		User:      services.NewUserService(userRepo),
		BPJS:      services.NewBPJSService(userRepo, locker),
		PayLater:  services.NewPayLaterService(payLaterRepo, userRepo, locker),
		Hospital:  services.NewHospitalService(hospitalRepo),
		Disease:   services.NewDiseaseService(diseaseRepo, hospitalRepo),
		Treatment: services.NewTreatmentService(treatmentRepo, userRepo, diseaseRepo, hospitalRepo, payLaterRepo, locker),
		Dashboard: services.NewDashboardService(dashboardRepo),
	}
}

func runServer() error {
	rt, err := bootstrap(context.Background(), true)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := models.AutoMigrate(rt.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info().Msg("✅ Database migration completed")

	svc := rt.services()

	cronService, err := services.NewCronService(svc.BPJS, svc.Auth, rt.cfg.BPJSReclassifyCron)
	if err != nil {
		return err
	}
	cronService.Start()
	defer cronService.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Sehatku PayLater API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, rt.cfg)
	routes.Setup(app, svc, handlers.NewHealthHandler(rt.db, rt.redis, rt.cfg), rt.cfg)

	go gracefulShutdown(app)

	log.Info().Str("port", rt.cfg.Port).Str("mode", rt.cfg.AppMode).Msg("🚀 Server starting")
	if err := app.Listen(":" + rt.cfg.Port); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func runMigrate() error {
	rt, err := bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := models.AutoMigrate(rt.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info().Msg("✅ Database migration completed")
	return nil
}

func runSeed() error {
	rt, err := bootstrap(context.Background(), false)
	if err != nil {
		return err
	}
	defer rt.close()

	return config.NewSeeder(rt.db).Run()
}

func runReclassify(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.services().BPJS.ReclassifyAll(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("scanned", result.Scanned).Int("updated", result.Updated).Msg("✅ BPJS reclassification finished")
	return nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("❌ Error during shutdown")
	}
	log.Info().Msg("✅ Server stopped gracefully")
}
