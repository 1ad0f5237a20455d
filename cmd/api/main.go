package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/RiskiJayaPutra/whfood/internal/activity"
	"github.com/RiskiJayaPutra/whfood/internal/admin"
	"github.com/RiskiJayaPutra/whfood/internal/audit"
	"github.com/RiskiJayaPutra/whfood/internal/auth"
	"github.com/RiskiJayaPutra/whfood/internal/config"
	"github.com/RiskiJayaPutra/whfood/internal/dbutil"
	"github.com/RiskiJayaPutra/whfood/internal/logging"
	"github.com/RiskiJayaPutra/whfood/internal/metrics"
	"github.com/RiskiJayaPutra/whfood/internal/products"
	"github.com/RiskiJayaPutra/whfood/internal/recommend"
	"github.com/RiskiJayaPutra/whfood/internal/reviews"
	"github.com/RiskiJayaPutra/whfood/internal/router"
	"github.com/RiskiJayaPutra/whfood/internal/sellers"
	"github.com/RiskiJayaPutra/whfood/internal/uploads"
	"github.com/RiskiJayaPutra/whfood/internal/users"
	"github.com/RiskiJayaPutra/whfood/internal/validate"
	"github.com/RiskiJayaPutra/whfood/internal/web"
	"github.com/RiskiJayaPutra/whfood/internal/whatsapp"
)

const siteName = "WHFood"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := dbutil.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	// Limiter, CSRF and flash state live in Redis when configured, otherwise in memory.
	var storage fiber.Storage
	if cfg.RedisURL != "" {
		rs, err := router.NewRedisStorage(ctx, cfg.RedisURL, "whfood:")
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rs.Close()
		storage = rs
	}

	m := metrics.New()
	render := &web.Renderer{
		SiteName: siteName,
		Flash:    web.NewFlashes(storage, cfg.CookieSecure, logger),
	}
	v := validate.New()
	images := uploads.NewImages(cfg.UploadDir, int64(cfg.UploadMaxBytes()), cfg.ImageMaxWidth)

	var notifier whatsapp.Notifier = whatsapp.LogNotifier{Log: logger}
	if tw := whatsapp.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, cfg.WhatsAppCountryCode); tw.Configured() {
		notifier = tw
	}

	userRepo := users.Repo{DB: pool}
	sellerRepo := sellers.Repo{DB: pool}
	productRepo := products.Repo{DB: pool}
	reviewRepo := reviews.Repo{DB: pool}
	activityRepo := activity.Repo{DB: pool}

	tokens := auth.NewTokens(cfg.JWTSecret)
	authMW := &auth.Middleware{Tokens: tokens, Users: userRepo, CookieSecure: cfg.CookieSecure}

	app := fiber.New(fiber.Config{
		AppName:      siteName,
		Views:        web.NewEngine(!cfg.IsProduction()),
		ErrorHandler: web.ErrorHandler(logger, render),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    cfg.UploadMaxBytes() + 1024*1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(logging.RequestLogger(logger))
	app.Use(m.Middleware())
	app.Use(authMW.LoadUser())
	app.Use(web.CSRF(storage, cfg.CookieSecure))

	r := &router.Router{
		Users: &users.Handler{
			Users:    userRepo,
			Tokens:   tokens,
			Auth:     authMW,
			Render:   render,
			Validate: v,
			Log:      logger,
		},
		Sellers: &sellers.Handler{
			Sellers:     sellerRepo,
			Products:    productRepo,
			Render:      render,
			Validate:    v,
			Log:         logger,
			CountryCode: cfg.WhatsAppCountryCode,
		},
		Products: &products.Handler{
			Products:    productRepo,
			Sellers:     sellerRepo,
			Reviews:     reviewRepo,
			Recommend:   recommend.New(activityRepo, productRepo),
			Activity:    activityRepo,
			Images:      images,
			Metrics:     m,
			Render:      render,
			Validate:    v,
			Log:         logger,
			CountryCode: cfg.WhatsAppCountryCode,
			BaseURL:     cfg.BaseURL,
		},
		Reviews: &reviews.Handler{
			Reviews:  reviewRepo,
			Metrics:  m,
			Render:   render,
			Validate: v,
			Log:      logger,
		},
		Admin: &admin.Handler{
			Store:   admin.Repo{DB: pool},
			Audit:   audit.NewStore(pool),
			Notify:  notifier,
			Images:  images,
			Metrics: m,
			Render:  render,
			Log:     logger,
			BaseURL: cfg.BaseURL,
		},
		Metrics:    m,
		Ping:       pool.Ping,
		UploadDir:  cfg.UploadDir,
		CORSOrigin: cfg.CORSOrigin,
		AuthLimit:  router.RateLimitAuth(cfg.RateLimitAuthMax, storage),
		WriteLimit: router.RateLimitWrite(cfg.RateLimitWriteMax, storage),
	}
	r.RegisterRoutes(app)

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
