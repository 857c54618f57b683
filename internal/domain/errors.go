package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidQuantity       = errors.New("la cantidad debe ser mayor que cero")
	ErrInvalidJustification  = errors.New("justificación insuficiente")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrOverconsumption       = errors.New("saldo contratado insuficiente")
	ErrIneligibleDestination = errors.New("la escuela destino no pertenece al mismo grupo de compras")
	ErrItemInUse             = errors.New("el ítem del contrato ya tiene consumos registrados")
	ErrContractNotInForce    = errors.New("el contrato no está vigente")
	ErrPersistence           = errors.New("falla de persistencia")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
)

// InsufficientStockError indica que una salida supera el stock plegado del producto.
// Available permite al usuario corregir la solicitud sin otra consulta.
type InsufficientStockError struct {
	Product   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %s, disponible %s",
		e.Product, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OverconsumptionError indica que un consumo o traslado supera el saldo disponible del ítem.
type OverconsumptionError struct {
	ContractItemID string
	Requested      decimal.Decimal
	Available      decimal.Decimal
}

func (e *OverconsumptionError) Error() string {
	return fmt.Sprintf("saldo insuficiente en ítem %s: solicitado %s, disponible %s",
		e.ContractItemID, e.Requested.String(), e.Available.String())
}

func (e *OverconsumptionError) Unwrap() error { return ErrOverconsumption }

// PersistenceError envuelve una falla del almacenamiento subyacente.
// errors.Is responde tanto a ErrPersistence como a la causa original.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// AvailableOf extrae la cantidad disponible de un rechazo de stock o saldo.
func AvailableOf(err error) (decimal.Decimal, bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.Available, true
	}
	var overErr *OverconsumptionError
	if errors.As(err, &overErr) {
		return overErr.Available, true
	}
	return decimal.Zero, false
}

// IsRejection indica si el error es un rechazo de negocio recuperable (sin cambios de estado).
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidJustification) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrOverconsumption) ||
		errors.Is(err, ErrIneligibleDestination) ||
		errors.Is(err, ErrContractNotInForce) ||
		errors.Is(err, ErrItemInUse)
}
