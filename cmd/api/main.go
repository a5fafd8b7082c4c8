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

	"github.com/jhoicas/Fabrica-api/internal/application/analytics"
	"github.com/jhoicas/Fabrica-api/internal/application/audit"
	"github.com/jhoicas/Fabrica-api/internal/application/auth"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/application/orders"
	"github.com/jhoicas/Fabrica-api/internal/application/purchasing"
	"github.com/jhoicas/Fabrica-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Fabrica-api/internal/interfaces/http"
	"github.com/jhoicas/Fabrica-api/pkg/config"
	"github.com/jhoicas/Fabrica-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas fuera de transacción)
	itemRepo := postgres.NewItemRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	logRepo := postgres.NewActivityLogRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	// Runners transaccionales (los repos dentro de la tx los construye el runner)
	txRunner := postgres.NewTxRunner(pool)
	orderTxRunner := postgres.NewOrderTxRunner(pool)
	purchaseTxRunner := postgres.NewPurchaseTxRunner(pool)
	userTxRunner := postgres.NewUserTxRunner(pool)

	movementUC := inventory.NewRecordMovementUseCase(txRunner, itemRepo)
	queryUC := inventory.NewQueryUseCase(itemRepo, stockRepo, movementRepo)
	itemUC := inventory.NewItemUseCase(txRunner, movementUC, itemRepo)
	orderUC := orders.NewUseCase(orderTxRunner, movementUC, orderRepo, itemRepo)
	purchaseUC := purchasing.NewUseCase(purchaseTxRunner, movementUC, poRepo, itemRepo)
	auditUC := audit.NewUseCase(logRepo)
	dashboardUC := analytics.NewDashboardUseCase(analyticsRepo)
	authUC := auth.NewUseCase(userTxRunner, userRepo, auth.JWTConfig{
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
		Title:    "Fabrica API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ItemUC:      itemUC,
		MovementUC:  movementUC,
		QueryUC:     queryUC,
		OrderUC:     orderUC,
		PurchaseUC:  purchaseUC,
		AuditUC:     auditUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
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
