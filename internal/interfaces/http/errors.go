package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Orden relevante: PersistenceError también envuelve la causa original.
var errorMappings = []errorMapping{
	{domain.ErrPersistence, fiber.StatusServiceUnavailable, "PERSISTENCE", "no se pudo completar la operación, intente más tarde"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrOverconsumption, fiber.StatusConflict, "OVERCONSUMPTION", "saldo contratado insuficiente"},
	{domain.ErrIneligibleDestination, fiber.StatusUnprocessableEntity, "INELIGIBLE_DESTINATION", "la escuela destino no pertenece al grupo de compras"},
	{domain.ErrItemInUse, fiber.StatusConflict, "ITEM_IN_USE", "el ítem ya tiene consumos"},
	{domain.ErrContractNotInForce, fiber.StatusUnprocessableEntity, "CONTRACT_NOT_IN_FORCE", "el contrato no está vigente"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "el recurso cambió, reintente"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser mayor que cero"},
	{domain.ErrInvalidJustification, fiber.StatusBadRequest, "INVALID_JUSTIFICATION", "justificación demasiado corta"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "token inválido"},
}

// writeError traduce un error de dominio a dto.ErrorResponse.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.ErrorResponse{Code: m.code, Message: m.message}
		if avail, ok := domain.AvailableOf(err); ok {
			body.Available = avail.String()
		}
		if m.status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("ruta", c.Path()).Msg("falla de persistencia")
		}
		return c.Status(m.status).JSON(body)
	}
	log.Error().Err(err).Str("ruta", c.Path()).Msg("error inesperado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
