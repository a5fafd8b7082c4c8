package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fabrica-api/internal/application/analytics"
	"github.com/jhoicas/Fabrica-api/internal/application/audit"
	"github.com/jhoicas/Fabrica-api/internal/application/auth"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/application/orders"
	"github.com/jhoicas/Fabrica-api/internal/application/purchasing"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.UseCase
	ItemUC      *inventory.ItemUseCase
	MovementUC  *inventory.RecordMovementUseCase
	QueryUC     *inventory.QueryUseCase
	OrderUC     *orders.UseCase
	PurchaseUC  *purchasing.UseCase
	AuditUC     *audit.UseCase
	DashboardUC *analytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público; el resto requiere token)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleManager)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)

	// Catálogo de artículos
	itemHandler := NewItemHandler(deps.ItemUC, deps.QueryUC)
	items := protected.Group("/items")
	items.Get("/", anyRole, itemHandler.List)
	items.Post("/", anyRole, itemHandler.Create)
	items.Get("/:code", anyRole, itemHandler.Get)
	items.Put("/:code", anyRole, itemHandler.Update)
	items.Delete("/:code", adminOnly, itemHandler.Deactivate)

	// Stock: movimientos crudos, balances y verificación del libro mayor.
	// Las clases adjustment-* y correction se restringen a admin en el caso de uso.
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.QueryUC)
	protected.Post("/inventory/movements", anyRole, inventoryHandler.RecordMovement)
	items.Get("/:code/movements", anyRole, inventoryHandler.ListMovements)
	items.Get("/:code/balance", anyRole, inventoryHandler.Balance)
	items.Get("/:code/verify", adminOnly, inventoryHandler.VerifyLedger)

	// Órdenes de cliente
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup := protected.Group("/orders", anyRole)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:code", orderHandler.Get)
	ordersGroup.Post("/:code/transition", orderHandler.Transition)

	// Órdenes de compra
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	pos := protected.Group("/purchase-orders")
	pos.Post("/", adminOnly, purchaseHandler.Create)
	pos.Get("/", anyRole, purchaseHandler.List)
	pos.Get("/:code", anyRole, purchaseHandler.Get)
	pos.Post("/:code/receive", anyRole, purchaseHandler.ReceiveLine)
	pos.Post("/:code/cancel", adminOnly, purchaseHandler.Cancel)

	// Usuarios (solo admin)
	users := protected.Group("/users", adminOnly)
	users.Post("/", authHandler.Register)
	users.Get("/", authHandler.ListUsers)
	users.Post("/:code/reset-password", authHandler.ResetPassword)
	users.Delete("/:code", authHandler.Deactivate)

	// Auditoría (solo admin)
	activityHandler := NewActivityHandler(deps.AuditUC)
	protected.Get("/activity-logs", adminOnly, activityHandler.List)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard := protected.Group("/dashboard", anyRole)
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/low-stock", dashboardHandler.LowStock)
}
