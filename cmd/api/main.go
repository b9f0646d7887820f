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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pierpay/pierpay-api/internal/config"
	"github.com/pierpay/pierpay-api/internal/domain/auth"
	"github.com/pierpay/pierpay-api/internal/domain/campaign"
	"github.com/pierpay/pierpay-api/internal/domain/company"
	"github.com/pierpay/pierpay-api/internal/domain/coupon"
	"github.com/pierpay/pierpay-api/internal/domain/dashboard"
	"github.com/pierpay/pierpay-api/internal/domain/user"
	"github.com/pierpay/pierpay-api/internal/domain/wallet"
	"github.com/pierpay/pierpay-api/internal/middleware"
	"github.com/pierpay/pierpay-api/internal/pkg/database"
	"github.com/pierpay/pierpay-api/internal/pkg/jwt"
	pkgresponse "github.com/pierpay/pierpay-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting PierPay API")

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

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	companyRepo := company.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	couponRepo := coupon.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, redis)
	walletService := wallet.NewService(walletRepo, cfg.DisplayTokenTTL, cfg.PublicBaseURL)
	couponService := coupon.NewService(couponRepo)
	dashboardService := dashboard.NewService(db, redis)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	companyHandler := company.NewHandler(companyRepo)
	walletHandler := wallet.NewHandler(walletService, cfg.PublicBaseURL)
	campaignHandler := campaign.NewHandler(campaignRepo)
	couponHandler := coupon.NewHandler(couponService)
	dashboardHandler := dashboard.NewHandler(dashboardService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/companies", companyHandler.Routes(authMiddleware))
		r.Mount("/wallets", walletHandler.Routes(authMiddleware))
		r.Mount("/topup", walletHandler.TopupRoutes(authMiddleware))
		r.Mount("/usage", walletHandler.UsageRoutes(authMiddleware))
		r.Mount("/campaigns", campaignHandler.Routes(authMiddleware))
		r.Mount("/coupons", couponHandler.Routes(authMiddleware))
		r.Mount("/redemption", couponHandler.RedemptionRoutes(authMiddleware))
		r.Mount("/dashboard", dashboardHandler.Routes(authMiddleware))
	})

	// Unauthenticated wallet pages reached from printed/displayed QR codes.
	r.Mount("/public", walletHandler.PublicRoutes())

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

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
