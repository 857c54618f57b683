package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/internal/application/inventory"
	"github.com/jhoicas/gestion-escolar/internal/application/school"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock     *inventory.StockLedger
	Balances  *contract.BalanceLedger
	Transfers *contract.TransferCoordinator
	Schools   *school.Directory
	Reports   *contract.TransferReporter // opcional
	JWTSecret string
	JWTIssuer string // vacío = no se valida iss
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Directorio de escuelas
	schoolHandler := NewSchoolHandler(deps.Schools, deps.Log)
	contractHandler := NewContractHandler(deps.Balances, deps.Transfers, deps.Log)
	schools := api.Group("/schools")
	schools.Put("/:schoolId", RequireSchoolOrAdmin("schoolId"), schoolHandler.Register)
	schools.Get("/:schoolId", schoolHandler.Get)
	schools.Get("/:schoolId/transfers", RequireSchool("schoolId"), contractHandler.ListSchoolTransfers)
	schools.Get("/:schoolId/eligible-destinations", RequireSchool("schoolId"), contractHandler.EligibleDestinations)
	if deps.Reports != nil {
		reportHandler := NewReportHandler(deps.Reports, deps.Log)
		schools.Get("/:schoolId/transfers/report", RequireSchool("schoolId"), reportHandler.TransferReport)
	}

	// Inventario (stock y costo promedio)
	inventoryHandler := NewInventoryHandler(deps.Stock, deps.Log)
	inv := api.Group("/inventory", RequireSchool(""))
	inv.Get("/stock", inventoryHandler.GetStock)
	inv.Post("/validate-exit", inventoryHandler.ValidateExit)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Post("/invoices", inventoryHandler.ImportInvoice)

	// Contratos y traslados de saldo
	contracts := api.Group("/contracts", RequireSchool(""))
	contracts.Post("/", contractHandler.Create)
	contracts.Get("/items", contractHandler.ListItems)
	contracts.Get("/items/:id", contractHandler.GetItem)
	contracts.Delete("/items/:id", contractHandler.DeleteItem)
	contracts.Post("/items/:id/consume", contractHandler.Consume)
	contracts.Post("/items/:id/transfers", contractHandler.Transfer)
	contracts.Get("/items/:id/transfers", contractHandler.ListItemTransfers)
	contracts.Get("/items/:id/consumptions", contractHandler.ListItemConsumptions)
}
