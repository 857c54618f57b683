package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeENTRY = "ENTRY" // entrada
	MovementTypeEXIT  = "EXIT"  // salida
)

// Procedencia del movimiento.
const (
	OriginManual        = "MANUAL"         // registrado por el usuario
	OriginInvoiceImport = "INVOICE_IMPORT" // importado desde una factura
	OriginTransfer      = "TRANSFER"       // generado por un traslado
)

// InventoryMovement representa un movimiento de inventario (entrada o salida).
// Nunca se modifica: las correcciones son nuevos movimientos compensatorios.
type InventoryMovement struct {
	ID          string
	Sequence    int64 // orden de inserción; desempata eventos con la misma fecha
	Key         ProductKey
	Type        string
	Quantity    decimal.Decimal // siempre positiva; el tipo define el signo
	UnitCost    decimal.Decimal // entradas: informado; salidas: costo promedio al admitir
	TotalCost   decimal.Decimal
	OccurredAt  time.Time
	Origin      string
	Destination string // solo salidas
	Reason      string // solo salidas
	SchoolID    string
	CreatedAt   time.Time
	CreatedBy   string
}

// IsExit indica si el movimiento es una salida.
func (m *InventoryMovement) IsExit() bool { return m.Type == MovementTypeEXIT }

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	return t == MovementTypeENTRY || t == MovementTypeEXIT
}

// ValidOrigin indica si o es una procedencia conocida.
func ValidOrigin(o string) bool {
	switch o {
	case OriginManual, OriginInvoiceImport, OriginTransfer:
		return true
	}
	return false
}
