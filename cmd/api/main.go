package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/config"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/internal/infrastructure/database"
	"github.com/sangkips/duka-pos/internal/infrastructure/receipt"
	"github.com/sangkips/duka-pos/internal/infrastructure/report"
	"github.com/sangkips/duka-pos/internal/infrastructure/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/internal/presentation/http/handler"
	"github.com/sangkips/duka-pos/internal/presentation/http/middleware"
	"github.com/sangkips/duka-pos/internal/presentation/http/routes"
	"github.com/sangkips/duka-pos/pkg/email"
	"github.com/sangkips/duka-pos/pkg/printer"
	"github.com/sangkips/duka-pos/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	_ "time/tzdata"
)

func main() {
	app := &cli.App{
		Name:  "duka-pos",
		Usage: "single-device point of sale backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run migrations and start the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "run migrations and seed the owner account, then exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logging.NewLogger("info", "text", "").WithError(err).Fatal("duka-pos exited")
	}
}

func bootstrap() (*config.Config, *logging.Logger, *gorm.DB, error) {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Dir)

	db, err := database.Open(&cfg.Database, logger, cfg.App.Debug)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := database.AutoMigrate(db, logger); err != nil {
		return nil, nil, nil, err
	}

	if err := database.SeedOwner(db, logger); err != nil {
		logger.WithError(err).Warn("Failed to seed owner account")
	}

	return cfg, logger, db, nil
}

func migrate(c *cli.Context) error {
	_, logger, _, err := bootstrap()
	if err != nil {
		return err
	}
	logger.Info("Migrations complete")
	return nil
}

func serve(c *cli.Context) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	reportDB := sqlx.NewDb(sqlDB, database.BindDriverName(cfg.Database.Driver))

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	saleItemRepo := repository.NewSaleItemRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	reportRepo := report.NewRepository(reportDB)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize printer, receipts will not be printed")
		thermalPrinter = printer.NewNullPrinter()
	}

	renderer, err := receipt.NewFileRenderer(cfg.Storage.Path, cfg.Receipt.CharWidth, thermalPrinter, logger)
	if err != nil {
		return err
	}

	receiptFormat := enum.ReceiptFormat(cfg.Receipt.Format)

	// Initialize services
	authService := service.NewAuthService(userRepo, settingsRepo, transactor, jwtManager)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	settingsService := service.NewSettingsService(settingsRepo, receiptFormat)
	receiptService := service.NewReceiptService(receiptRepo, saleRepo, userRepo, settingsRepo, renderer, cfg.Receipt.StoreName, receiptFormat, logger)
	saleService := service.NewSaleService(transactor, saleRepo, saleItemRepo, productRepo, receiptService, logger)
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})
	if emailService.Enabled() {
		saleService.SetStockAlerter(service.NewStockAlertService(productRepo, userRepo, settingsRepo, emailService, cfg.Receipt.StoreName, logger))
	}
	cartService := service.NewCartService(productService, saleService, cfg.Cart.IdleTTL, logger)
	reportService := service.NewReportService(reportRepo, settingsRepo)
	printerService := service.NewPrinterService(thermalPrinter, renderer)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFromWindow(cfg.RateLimit.Requests, cfg.RateLimit.Duration))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cartService.Run(ctx)
	go rateLimiter.Run(ctx)
	go purgeIdempotencyKeys(ctx, idempotencyRepo, logger)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Cart:     handler.NewCartHandler(cartService),
		Sale:     handler.NewSaleHandler(saleService, receiptService),
		Report:   handler.NewReportHandler(reportService),
		Settings: handler.NewSettingsHandler(settingsService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		RateLimiter:     rateLimiter,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":    port,
			"env":     cfg.App.Env,
			"printer": thermalPrinter.Name(),
		}).Infof("Starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Graceful shutdown failed")
	}
	return sqlDB.Close()
}

// purgeIdempotencyKeys drops expired keys once an hour until ctx is done
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *logging.Logger) {
	log := logger.Component("idempotency")
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := repo.DeleteExpired(ctx, now.UTC()); err != nil {
				log.WithError(err).Warn("Failed to purge expired idempotency keys")
			}
		}
	}
}
