package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AnshRaj112/agora-backend/internal/config"
	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/handlers"
	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/routes"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/AnshRaj112/agora-backend/pkg/logger"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.LogLevel)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Info("no .env file found, using process environment")
	}

	if err := handlers.InitPayoutCipher(cfg.EncryptionKey); err != nil {
		log.Warn("payout encryption unavailable; partner applications disabled",
			zap.Error(err), zap.String("hint", "generate a key with: openssl rand -base64 32"))
	}

	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.DisconnectPostgres()

	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer database.DisconnectRedis()

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect()

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx); err != nil {
		log.Warn("failed to ensure MongoDB indexes", zap.Error(err))
	}
	idxCancel()

	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitMediaUploader(cfg); err != nil {
			log.Warn("failed to initialize Cloudinary; uploads disabled", zap.Error(err))
		}
	} else {
		log.Warn("Cloudinary credentials not set; uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services.StartPollSubscriber(ctx)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	} else {
		r.Use(middleware.GlobalRateLimit)
		r.Use(middleware.LoginRateLimit)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	routes.SetupRoutes(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("agora backend listening", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
