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

	"github.com/jpinedac/comercio-api/internal/application/auth"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/application/usecase"
	infrapdf "github.com/jpinedac/comercio-api/internal/infrastructure/pdf"
	"github.com/jpinedac/comercio-api/internal/infrastructure/postgres"
	httpRouter "github.com/jpinedac/comercio-api/internal/interfaces/http"
	"github.com/jpinedac/comercio-api/pkg/config"
	"github.com/jpinedac/comercio-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool: lecturas y CRUD fuera del coordinador.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	cashRepo := postgres.NewCashMovementRepository(pool)

	// El coordinador transaccional construye sus propios repos atados a la tx.
	txRunner := postgres.NewTxRunner(pool)

	createSaleUC := appledger.NewCreateSaleUseCase(txRunner, productRepo)
	annulSaleUC := appledger.NewAnnulSaleUseCase(txRunner)
	receivePurchUC := appledger.NewReceivePurchaseUseCase(txRunner, productRepo, supplierRepo)
	annulPurchUC := appledger.NewAnnulPurchaseUseCase(txRunner)
	editPurchUC := appledger.NewEditPurchaseLineUseCase(txRunner)
	queryUC := appledger.NewQueryUseCase(lotRepo, movRepo, cashRepo)

	kardexGenerator := infrapdf.NewKardexPDFGenerator()
	kardexUC := appledger.NewKardexUseCase(productRepo, movRepo, kardexGenerator)

	productUC := usecase.NewProductUseCase(productRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

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
		Title:    "Comercio API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CreateSale:   createSaleUC,
		AnnulSale:    annulSaleUC,
		ReceivePurch: receivePurchUC,
		AnnulPurch:   annulPurchUC,
		EditPurch:    editPurchUC,
		QueryUC:      queryUC,
		KardexUC:     kardexUC,
		ProductUC:    productUC,
		CategoryUC:   categoryUC,
		SupplierUC:   supplierUC,
		Log:          log,
		JWTSecret:    cfg.JWT.Secret,
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
