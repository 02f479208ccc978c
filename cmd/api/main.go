package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/paylink/paylink-api/internal/config"
	"github.com/paylink/paylink-api/internal/domain/admin"
	"github.com/paylink/paylink-api/internal/domain/events"
	"github.com/paylink/paylink-api/internal/domain/evidence"
	"github.com/paylink/paylink-api/internal/domain/ledger"
	"github.com/paylink/paylink-api/internal/domain/payid"
	"github.com/paylink/paylink-api/internal/domain/purchase"
	"github.com/paylink/paylink-api/internal/domain/referral"
	"github.com/paylink/paylink-api/internal/domain/user"
	"github.com/paylink/paylink-api/internal/domain/wallet"
	"github.com/paylink/paylink-api/internal/domain/withdrawal"
	"github.com/paylink/paylink-api/internal/jobs"
	"github.com/paylink/paylink-api/internal/middleware"
	"github.com/paylink/paylink-api/internal/pkg/database"
	"github.com/paylink/paylink-api/internal/pkg/imaging"
	"github.com/paylink/paylink-api/internal/pkg/jwt"
	"github.com/paylink/paylink-api/internal/pkg/logger"
	pkgresponse "github.com/paylink/paylink-api/internal/pkg/response"
	"github.com/paylink/paylink-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting PayLink API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// Evidence storage: S3-compatible when configured, local disk otherwise
	var store storage.Storage
	if cfg.S3Endpoint != "" {
		store, err = storage.NewS3Storage(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
	} else {
		store, err = storage.NewLocalStorage(cfg.LocalFileRoot, "/files")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db, cfg.WelcomeCredit)
	ledgerRepo := ledger.NewRepository(db)
	payidRepo := payid.NewRepository(db)
	referralRepo := referral.NewRepository(db)
	withdrawalRepo := withdrawal.NewRepository(db)
	evidenceRepo := evidence.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := events.NewHub(redis)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	walletSvc := wallet.NewService(walletRepo, wallet.NewBalanceCache(redis))
	ledgerSvc := ledger.NewService(ledgerRepo)
	payidSvc := payid.NewService(payidRepo)
	referralSvc := referral.NewService(referralRepo)
	evidenceSvc := evidence.NewService(evidenceRepo, store, imaging.NewProcessor(imaging.DefaultConfig()))
	withdrawalSvc := withdrawal.NewService(withdrawalRepo, ledgerRepo, walletRepo, walletSvc, referralRepo, withdrawal.Config{
		RewardFloor: cfg.RewardWithdrawFloor,
	})
	purchaseSvc := purchase.NewService(ledgerRepo, walletRepo, walletSvc, payidSvc, evidenceSvc, userRepo, purchase.Config{
		ActivationFee: cfg.ActivationFee,
	})
	adminSvc := admin.NewService(ledgerRepo, walletRepo, walletSvc, payidRepo, referralSvc, referralRepo, withdrawalRepo, userRepo, hub, admin.Config{
		ReferralReward: cfg.ReferralReward,
	})

	// ---------- Handlers ----------
	walletHandler := wallet.NewHandler(walletSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	payidHandler := payid.NewHandler(payidSvc)
	referralHandler := referral.NewHandler(referralSvc)
	withdrawalHandler := withdrawal.NewHandler(withdrawalSvc)
	purchaseHandler := purchase.NewHandler(purchaseSvc)
	evidenceHandler := evidence.NewHandler(evidenceSvc)
	adminHandler := admin.NewHandler(adminSvc)
	eventsHandler := events.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireAdmin()

	// ---------- Background jobs ----------
	runner := jobs.NewRunner(ledgerRepo, adminSvc, evidenceSvc, cfg.PendingExpiry, cfg.EvidenceExpiry)
	if err := runner.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start background jobs")
	}
	defer runner.Stop()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(eventsHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{
				"status":  "ok",
				"version": "1.0.0",
			})
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/wallet", walletHandler.Routes(authMiddleware))
			r.Mount("/transactions", ledgerHandler.Routes(authMiddleware))
			r.Mount("/payid", payidHandler.Routes(authMiddleware))
			r.Mount("/referrals", referralHandler.Routes(authMiddleware))
			r.Mount("/withdrawals", withdrawalHandler.Routes(authMiddleware))
			r.Mount("/purchases", purchaseHandler.Routes(authMiddleware))
			r.Mount("/evidence", evidenceHandler.Routes(authMiddleware))
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Mount("/payid", payidHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(adminMiddleware)
				r.Mount("/", adminHandler.Routes())
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
