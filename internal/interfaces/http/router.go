package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/malexa-pos/internal/application/auth"
	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/application/usecase"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Sessions  SessionResolver // por defecto AuthUC
	ProductUC *usecase.ProductUseCase
	UserUC    *usecase.UserUseCase
	Carts     *sales.CartRegistry
	Checkout  *sales.CheckoutUseCase
	Ledger    *sales.LedgerUseCase
	Metrics   nethttp.Handler // opcional, expone /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}
	resolver := deps.Sessions
	if resolver == nil {
		resolver = deps.AuthUC
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token de una sesión abierta)
	protected := api.Group("/", AuthMiddleware(resolver))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Post("/auth/logout", authHandler.Logout)

	// Products: lectura para cualquier sesión, escritura solo admin
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/pricing", productHandler.Pricing)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Cart de la sesión
	cart := protected.Group("/cart")
	cartHandler := NewCartHandler(deps.Carts, deps.Checkout)
	cart.Get("/", cartHandler.Get)
	cart.Delete("/", cartHandler.Clear)
	cart.Post("/items", cartHandler.AddItem)
	cart.Patch("/items/:id", cartHandler.ChangeQuantity)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Post("/checkout", cartHandler.Checkout)

	// Sales: export antes de /:id para que no lo capture el parámetro
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Ledger)
	salesGroup.Get("/export.xml", adminOnly, saleHandler.Export)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Users (solo admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}
