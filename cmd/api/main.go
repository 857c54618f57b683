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

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/internal/application/inventory"
	"github.com/jhoicas/gestion-escolar/internal/application/school"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/pdf"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/gestion-escolar/internal/interfaces/http"
	"github.com/jhoicas/gestion-escolar/pkg/config"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar almacenamiento")
		}
	}()

	cache, err := inventory.NewSnapshotCache(cfg.Ledger.SnapshotCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("caché de snapshots")
	}
	stock := inventory.NewStockLedger(stores.Receipts, stores.Movements, cache, log)
	balances := contract.NewBalanceLedger(stores.Contracts, stores.Consumptions, stores.Schools, log)
	transfers := contract.NewTransferCoordinator(balances, stores.Transfers, stores.Schools, cfg.Ledger.MinJustificationLength, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Gestión Escolar API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:     stock,
		Balances:  balances,
		Transfers: transfers,
		Schools:   school.NewDirectory(stores.Schools),
		Reports:   contract.NewTransferReporter(transfers, stores.Schools, pdf.NewMarotoReportGenerator()),
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Log:       log,
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
