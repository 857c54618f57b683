package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/contract"
	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// ContractHandler maneja contratos, consumos y traslados de saldo (protegido).
type ContractHandler struct {
	balances  *contract.BalanceLedger
	transfers *contract.TransferCoordinator
	log       *logger.Logger
}

// NewContractHandler construye el handler.
func NewContractHandler(balances *contract.BalanceLedger, transfers *contract.TransferCoordinator, log *logger.Logger) *ContractHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ContractHandler{balances: balances, transfers: transfers, log: log.Component("http_contract")}
}

// ownedItem carga el ítem :id y exige que pertenezca a la escuela del token.
func (h *ContractHandler) ownedItem(c *fiber.Ctx) (*entity.ContractItem, error) {
	item, err := h.balances.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if item.SchoolID != GetSchoolID(c) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}

// Create godoc
// @Summary      Registrar contrato con sus ítems
// @Tags         contracts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContractRequest  true  "proveedor, vigencia e ítems"
// @Success      201  {object}  dto.ContractResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/contracts [post]
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateContractRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	created, err := h.balances.RegisterContract(c.Context(), contract.ToContractInput(GetSchoolID(c), in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contract.ToContractResponse(created))
}

// ListItems godoc
// @Summary      Ítems de contrato de la escuela del token
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ContractItemResponse
// @Router       /api/contracts/items [get]
func (h *ContractHandler) ListItems(c *fiber.Ctx) error {
	list, err := h.balances.ListItemsBySchool(c.Context(), GetSchoolID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ContractItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, contract.ToItemResponse(it))
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Saldo de un ítem de contrato
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ContractItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/contracts/items/{id} [get]
func (h *ContractHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.ownedItem(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(contract.ToItemResponse(item))
}

// Consume godoc
// @Summary      Consumir saldo de un ítem
// @Tags         contracts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.ConsumeRequest   true  "cantidad y motivo"
// @Success      201  {object}  dto.ConsumeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "OVERCONSUMPTION con available"
// @Failure      422  {object}  dto.ErrorResponse  "CONTRACT_NOT_IN_FORCE"
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/contracts/items/{id}/consume [post]
func (h *ContractHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, item, err := h.balances.Consume(c.Context(), contract.ConsumeInput{
		ContractItemID: c.Params("id"),
		SchoolID:       GetSchoolID(c),
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		Actor:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ConsumeResponse{
		Consumption: contract.ToConsumptionResponse(rec),
		Item:        contract.ToItemResponse(item),
	})
}

// ListItemConsumptions godoc
// @Summary      Historial de consumos directos de un ítem
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {array}  dto.ConsumptionResponse
// @Router       /api/contracts/items/{id}/consumptions [get]
func (h *ContractHandler) ListItemConsumptions(c *fiber.Ctx) error {
	if _, err := h.ownedItem(c); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.balances.ListConsumptions(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ConsumptionResponse, 0, len(list))
	for _, r := range list {
		out = append(out, contract.ToConsumptionResponse(r))
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Eliminar un ítem sin consumos
// @Tags         contracts
// @Security     Bearer
// @Param        id  path  string  true  "ID del ítem"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "ITEM_IN_USE"
// @Router       /api/contracts/items/{id} [delete]
func (h *ContractHandler) DeleteItem(c *fiber.Ctx) error {
	if _, err := h.ownedItem(c); err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.balances.DeleteItem(c.Context(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Transfer godoc
// @Summary      Trasladar saldo a otra escuela del grupo de compras
// @Tags         contracts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem origen"
// @Param        body  body  dto.TransferRequest  true  "destino, cantidad y justificación"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "INELIGIBLE_DESTINATION o CONTRACT_NOT_IN_FORCE"
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/contracts/items/{id}/transfers [post]
func (h *ContractHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.transfers.Transfer(c.Context(), contract.TransferInput{
		ContractItemID: c.Params("id"),
		FromSchoolID:   GetSchoolID(c),
		ToSchoolID:     in.ToSchoolID,
		Quantity:       in.Quantity,
		Justification:  in.Justification,
		Actor:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contract.ToTransferResponse(rec))
}

// ListItemTransfers godoc
// @Summary      Historial de traslados de un ítem
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/contracts/items/{id}/transfers [get]
func (h *ContractHandler) ListItemTransfers(c *fiber.Ctx) error {
	if _, err := h.ownedItem(c); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.transfers.ListTransfers(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(transferResponses(list))
}

// ListSchoolTransfers godoc
// @Summary      Traslados enviados o recibidos por la escuela
// @Tags         schools
// @Security     Bearer
// @Produce      json
// @Param        schoolId  path  string  true  "ID de la escuela (debe coincidir con el token)"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/schools/{schoolId}/transfers [get]
func (h *ContractHandler) ListSchoolTransfers(c *fiber.Ctx) error {
	list, err := h.transfers.ListTransfersBySchool(c.Context(), c.Params("schoolId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(transferResponses(list))
}

// EligibleDestinations godoc
// @Summary      Escuelas que pueden recibir traslados
// @Tags         schools
// @Security     Bearer
// @Produce      json
// @Param        schoolId  path  string  true  "ID de la escuela origen"
// @Success      200  {object}  map[string][]string
// @Router       /api/schools/{schoolId}/eligible-destinations [get]
func (h *ContractHandler) EligibleDestinations(c *fiber.Ctx) error {
	ids, err := h.balances.EligibleDestinations(c.Context(), c.Params("schoolId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"destinations": ids})
}

func transferResponses(list []*entity.TransferRecord) []dto.TransferResponse {
	out := make([]dto.TransferResponse, 0, len(list))
	for _, r := range list {
		out = append(out, contract.ToTransferResponse(r))
	}
	return out
}
