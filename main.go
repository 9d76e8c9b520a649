// Package main provides the main entry point for the FBO fee schedule service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fbopoint/feesched/app/handlers"
	"github.com/fbopoint/feesched/app/router"
	businessflow "github.com/fbopoint/feesched/business_flow"
	"github.com/fbopoint/feesched/config"
	"github.com/fbopoint/feesched/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Println("Starting fee schedule service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var cache *businessflow.ScheduleCache
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis not reachable, running without schedule cache: %v", err)
		} else {
			cache = businessflow.NewScheduleCache(redisClient, cfg.Cache.DefaultTTL)
		}
	}

	// Repositories
	classificationRepo := repository.NewClassificationRepository(db)
	aircraftTypeRepo := repository.NewAircraftTypeRepository(db)
	aircraftRepo := repository.NewAircraftRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	feeRuleRepo := repository.NewFeeRuleRepository(db)
	overrideRepo := repository.NewFeeRuleOverrideRepository(db)
	tierRepo := repository.NewWaiverTierRepository(db)
	versionRepo := repository.NewScheduleVersionRepository(db)

	// Business flows
	calculationFlow := businessflow.NewFeeCalculationFlow(
		aircraftRepo, aircraftTypeRepo, customerRepo,
		feeRuleRepo, overrideRepo, tierRepo,
		cache, cfg.Billing.TaxRate, cfg.Billing.Currency,
	)
	feeScheduleFlow := businessflow.NewFeeScheduleFlow(
		classificationRepo, aircraftTypeRepo, aircraftRepo,
		feeRuleRepo, overrideRepo, tierRepo, cache,
	)
	applier := businessflow.NewChangesetApplier(
		db, classificationRepo, aircraftTypeRepo,
		feeRuleRepo, overrideRepo, tierRepo,
	)
	importFlow := businessflow.NewConfigImportFlow(
		classificationRepo, aircraftTypeRepo,
		feeRuleRepo, overrideRepo, tierRepo,
		versionRepo, applier, cache,
	)

	// Handlers and router
	calculationHandler := handlers.NewCalculationHandler(calculationFlow)
	feeScheduleHandler := handlers.NewFeeScheduleHandler(feeScheduleFlow)
	configHandler := handlers.NewConfigImportHandler(importFlow)

	r := router.NewFiberRouter(calculationHandler, feeScheduleHandler, configHandler, cfg.Server.AllowedOrigins)
	r.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := r.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through rotation when file
// output is configured.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(rotator)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established")
	return db, nil
}
