package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pyme/internal/application/auth"
	"github.com/jhoicas/inventario-pyme/internal/application/importer"
	"github.com/jhoicas/inventario-pyme/internal/application/inventory"
	"github.com/jhoicas/inventario-pyme/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	SaleUC        *usecase.SaleUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Importer      *importer.Importer
	// MetricsHandler se monta en GET /metrics si no es nil.
	MetricsHandler http.Handler
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.With().Str("component", "http").Logger()

	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.AuthUC)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Import: la plantilla es pública
	importHandler := NewImportHandler(deps.Importer, log)
	importGroup := api.Group("/import")
	importGroup.Get("/excel/template", importHandler.Template)
	importGroup.Post("/excel", requireAuth, importHandler.ImportExcel)
	importGroup.Post("/google-sheets", requireAuth, importHandler.ImportGoogleSheets)

	// Products (protegido). Rutas fijas antes de /:id.
	productHandler := NewProductHandler(deps.ProductUC, log)
	inventoryHandler := NewInventoryHandler(deps.ProductUC, deps.Replenishment, log)
	products := api.Group("/products", requireAuth)
	products.Get("/replenishment", inventoryHandler.Replenishment)
	products.Get("/report.pdf", inventoryHandler.StockReport)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Put("/:id/stock", productHandler.UpdateStock)
	products.Get("/:id/movements", inventoryHandler.Movements)

	// Sales (protegido)
	saleHandler := NewSaleHandler(deps.SaleUC, log)
	sales := api.Group("/sales", requireAuth)
	sales.Get("/stats/summary", saleHandler.Stats)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
}
