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

	_ "github.com/jhoicas/malexa-pos/docs"
	"github.com/jhoicas/malexa-pos/internal/application/auth"
	"github.com/jhoicas/malexa-pos/internal/application/catalog"
	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/application/usecase"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/export"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/kvstore"
	infrapdf "github.com/jhoicas/malexa-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/malexa-pos/internal/interfaces/http"
	"github.com/jhoicas/malexa-pos/pkg/config"
	"github.com/jhoicas/malexa-pos/pkg/logger"
	"github.com/jhoicas/malexa-pos/pkg/metrics"
)

// store almacén clave-valor con todo lo que necesita la app.
type store interface {
	repository.KeyValueStore
	repository.Transactor
}

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		kv       store
		notifier repository.ChangeNotifier
		totaler  sales.SalesTotaler
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema kv_entries")
		}
		pgStore := postgres.NewKVStore(pool, storage.KeySales)
		listener := postgres.NewListener(pool, log)
		go listener.Run(ctx)
		kv, notifier, totaler = pgStore, listener, pgStore
	default:
		mem := kvstore.New()
		kv, notifier = mem, mem
	}

	loc := cfg.App.Location()
	ids := entity.NewIDGenerator(nil)

	productRepo := storage.NewProductRepository(kv)
	saleRepo := storage.NewSaleRepository(kv)
	userRepo := storage.NewUserRepository(kv)
	// Las sesiones sin "recordarme" viven lo que el proceso.
	sessionRepo := storage.NewSessionRepository(kv, kvstore.New())

	snapshot := catalog.NewSnapshot(productRepo, saleRepo, log)
	if err := snapshot.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("carga inicial del catálogo")
	}
	stopWatch := snapshot.Watch(ctx, notifier, storage.KeyProducts, storage.KeySales)
	defer stopWatch()

	carts := sales.NewCartRegistry(snapshot)
	salesMetrics := metrics.NewSalesMetrics("pos", nil)
	checkoutUC := sales.NewCheckoutUseCase(storage.NewTxRunner(kv), ids, salesMetrics, log)
	ledgerUC := sales.NewLedgerUseCase(
		snapshot,
		infrapdf.NewReceiptGenerator(cfg.App.Name, loc),
		export.NewXMLExporter(loc),
		totaler,
		loc,
		log,
	)
	productUC := usecase.NewProductUseCase(productRepo, snapshot, ids)
	userUC := usecase.NewUserUseCase(userRepo)
	authUC, err := auth.NewAuthUseCase(userRepo, sessionRepo, carts, auth.Config{
		Secret:             cfg.JWT.Secret,
		Issuer:             cfg.JWT.Issuer,
		ExpMinutes:         cfg.JWT.Expiration,
		RememberExpMinutes: cfg.JWT.RememberExpiration,
		AdminEmail:         cfg.Admin.Email,
		AdminName:          cfg.Admin.Name,
		AdminPassword:      cfg.Admin.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de autenticación")
	}

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
		Title:    "Malexa POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: productUC,
		UserUC:    userUC,
		Carts:     carts,
		Checkout:  checkoutUC,
		Ledger:    ledgerUC,
		Metrics:   metrics.Handler(),
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
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
