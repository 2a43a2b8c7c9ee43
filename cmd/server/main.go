package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contract-explorer.backend/internal/config"
	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/internal/infrastructure/datasources/postgres"
	"contract-explorer.backend/internal/infrastructure/jobs"
	"contract-explorer.backend/internal/infrastructure/models"
	"contract-explorer.backend/internal/infrastructure/repositories"
	"contract-explorer.backend/internal/interfaces/http/handlers"
	"contract-explorer.backend/internal/interfaces/http/middleware"
	"contract-explorer.backend/internal/usecases"
	"contract-explorer.backend/pkg/jwt"
	"contract-explorer.backend/pkg/logger"
	"contract-explorer.backend/pkg/metrics"
	"contract-explorer.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB   = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	// shutdownSignal returns the channel that triggers a graceful shutdown
	shutdownSignal = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis only backs the historical read cache and idempotency keys
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(ctx, "Redis unavailable, read cache and idempotency disabled", zap.Error(err))
	} else {
		logger.Info(ctx, "Redis initialized")
		defer redis.Close()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	chainRepo := repositories.NewChainRepository(db)
	smartContractRepo := repositories.NewSmartContractRepository(db, chainRepo)

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	var observer *metrics.Metrics
	callerOpts := []usecases.EVMReadCallerOption{
		usecases.WithResultCache(usecases.NewReadResultCache(cfg.Blockchain.ResultCacheTTL)),
		usecases.WithCallTimeout(cfg.Blockchain.CallTimeout),
		usecases.WithDefaultRPCURL(cfg.Blockchain.DefaultRPCURL),
	}
	if cfg.Metrics.Enabled {
		observer = metrics.New(cfg.Metrics.Namespace)
		callerOpts = append(callerOpts, usecases.WithMetrics(observer))
	}

	abiResolver := usecases.NewABIResolver()
	readCaller := usecases.NewEVMReadCaller(chainRepo, clientFactory, abiResolver, callerOpts...)
	contractReadUsecase := usecases.NewContractReadUsecase(
		smartContractRepo,
		readCaller,
		cfg.Blockchain.DefaultFrom,
		cfg.Blockchain.PublicExplorer,
	)
	chainResolver := usecases.NewChainResolver(chainRepo)
	authUsecase := usecases.NewAuthUsecase(cfg.Admin.Email, cfg.Admin.PasswordHash, jwtService)
	if cfg.Admin.PasswordHash == "" {
		logger.Warn(ctx, "ADMIN_PASSWORD_HASH is empty, admin login disabled")
	}

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	rpcProbe := jobs.NewRPCHealthJob(chainRepo, clientFactory)
	go rpcProbe.Start(jobCtx)
	defer rpcProbe.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	if observer != nil {
		r.Use(middleware.MetricsMiddleware(observer))
		r.GET("/metrics", gin.WrapH(observer.Handler()))
	}

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:          handlers.NewAuthHandler(authUsecase),
		chainHandler:         handlers.NewChainHandler(chainRepo),
		smartContractHandler: handlers.NewSmartContractHandler(smartContractRepo, chainResolver),
		contractReadHandler:  handlers.NewContractReadHandler(contractReadUsecase),
		authMiddleware:       middleware.AuthMiddleware(jwtService),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := shutdownSignal()
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-quit:
		case <-jobCtx.Done():
			return
		}
		logger.Info(ctx, "Shutting down server")
		cancelJobs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "Contract explorer starting",
		zap.String("port", cfg.Server.Port),
		zap.Bool("public_explorer", cfg.Blockchain.PublicExplorer),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancelJobs()
		return fmt.Errorf("failed to start server: %w", err)
	}
	cancelJobs()
	<-done
	return nil
}
