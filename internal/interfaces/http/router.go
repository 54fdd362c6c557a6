package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jpinedac/comercio-api/internal/application/auth"
	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/application/usecase"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CreateSale   *appledger.CreateSaleUseCase
	AnnulSale    *appledger.AnnulSaleUseCase
	ReceivePurch *appledger.ReceivePurchaseUseCase
	AnnulPurch   *appledger.AnnulPurchaseUseCase
	EditPurch    *appledger.EditPurchaseLineUseCase
	QueryUC      *appledger.QueryUseCase
	KardexUC     *appledger.KardexUseCase
	ProductUC    *usecase.ProductUseCase
	CategoryUC   *usecase.CategoryUseCase
	SupplierUC   *usecase.SupplierUseCase
	Log          *logger.Logger
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(entity.RoleAdmin)
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	seller := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	// Sales: crear requiere rol de venta; anular solo admin
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.AnnulSale, deps.Log)
	sales.Post("/", seller, saleHandler.Create)
	sales.Post("/:id/annul", admin, saleHandler.Annul)

	// Purchases: recibir/editar requiere rol de bodega; anular solo admin
	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.ReceivePurch, deps.AnnulPurch, deps.EditPurch, deps.Log)
	purchases.Post("/", warehouse, purchaseHandler.Receive)
	purchases.Post("/:id/annul", admin, purchaseHandler.Annul)
	purchases.Put("/:id/line", warehouse, purchaseHandler.EditLine)

	// Inventory (lectura)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.QueryUC, deps.KardexUC, deps.Log)
	invGroup.Get("/lots", inventoryHandler.ListLots)
	invGroup.Get("/lots/:id/consistency", inventoryHandler.CheckLotConsistency)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/cash/balance", inventoryHandler.CashBalance)
	invGroup.Get("/kardex/:id", inventoryHandler.KardexPDF)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", warehouse, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", warehouse, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", warehouse, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", warehouse, categoryHandler.Update)
	categories.Delete("/:id", admin, categoryHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", warehouse, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", warehouse, supplierHandler.Update)
	suppliers.Delete("/:id", admin, supplierHandler.Delete)
}
