package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/application/inventory"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// InventoryHandler maneja stock, movimientos y facturas de compra (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedger
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryHandler{ledger: ledger, log: log.Component("http_inventory")}
}

func productFromQuery(c *fiber.Ctx) entity.ProductKey {
	return entity.NewProductKey(c.Query("description"), c.Query("unit_measure"))
}

// GetStock godoc
// @Summary      Stock y costo promedio de un producto en la escuela del token
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        description   query  string  true  "Descripción del producto"
// @Param        unit_measure  query  string  true  "Unidad de medida"
// @Success      200  {object}  dto.StockSnapshotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	snap, err := h.ledger.Fold(c.Context(), GetSchoolID(c), productFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToSnapshotResponse(snap))
}

// ValidateExit godoc
// @Summary      Verificar si una salida es posible
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateExitRequest  true  "producto y cantidad"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con available"
// @Router       /api/inventory/validate-exit [post]
func (h *InventoryHandler) ValidateExit(c *fiber.Ctx) error {
	var in dto.ValidateExitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	key := entity.NewProductKey(in.Description, in.UnitMeasure)
	if err := h.ledger.ValidateExit(c.Context(), GetSchoolID(c), key, in.Quantity); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// RegisterMovement godoc
// @Summary      Registrar entrada o salida de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type ENTRY|EXIT; unit_cost solo en entradas"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.RegisterMovementFromRequest(c.Context(), GetSchoolID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de un producto de la escuela en orden cronológico
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        description   query  string  true  "Descripción del producto"
// @Param        unit_measure  query  string  true  "Unidad de medida"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	list, err := h.ledger.ListMovements(c.Context(), GetSchoolID(c), productFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, inventory.ToMovementResponse(m))
	}
	return c.JSON(out)
}

// ImportInvoice godoc
// @Summary      Importar factura de compra
// @Description  Solo las facturas APPROVED y activas alimentan el stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportInvoiceRequest  true  "cabecera y líneas"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/invoices [post]
func (h *InventoryHandler) ImportInvoice(c *fiber.Ctx) error {
	var in dto.ImportInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, err := h.ledger.ImportInvoiceFromRequest(c.Context(), GetSchoolID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}
