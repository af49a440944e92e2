package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-pyme/internal/application/auth"
	"github.com/jhoicas/inventario-pyme/internal/application/importer"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/application/usecase"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/inventario-pyme/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-pyme/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/inventario-pyme/internal/interfaces/http"
	"github.com/jhoicas/inventario-pyme/pkg/config"
	"github.com/jhoicas/inventario-pyme/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("alert_provider", cfg.Alerts.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier, err := notify.New(cfg.Alerts, log.Component("notify"))
	if err != nil {
		log.Fatal().Err(err).Msg("configurar notificador")
	}

	stockSvc := inventory.NewStockMutationService(txRunner, userRepo, notifier, log.Zerolog(), inventory.ServiceConfig{
		SendTimeout:  cfg.Alerts.SendTimeout,
		MaxAttempts:  cfg.Tx.MaxAttempts,
		RetryBackoff: cfg.Tx.RetryBackoff,
		Metrics:      metrics.New(nil),
	})

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(productRepo, movementRepo, userRepo, stockSvc, infrapdf.NewMarotoPDFGenerator())
	saleUC := usecase.NewSaleUseCase(saleRepo, stockSvc)
	replenishmentUC := inventory.NewReplenishmentUseCase(productRepo, saleRepo)

	// Google Sheets solo con credenciales de service account.
	var sheets importer.SheetFetcher
	if cfg.Google.CredentialsFile != "" {
		fetcher, err := spreadsheet.NewSheetsFetcher(ctx, cfg.Google.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Google Sheets")
		}
		sheets = fetcher
	}
	importerUC := importer.New(stockSvc, spreadsheet.NewParser(), sheets, spreadsheet.NewTemplateBuilder(), log.Component("import"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario PYME API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "database": "up"})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      productUC,
		SaleUC:         saleUC,
		Replenishment:  replenishmentUC,
		Importer:       importerUC,
		MetricsHandler: promhttp.Handler(),
		Log:            log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
