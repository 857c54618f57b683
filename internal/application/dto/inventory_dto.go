package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	Description string           `json:"description"`
	UnitMeasure string           `json:"unit_measure"`
	Type        string           `json:"type"` // ENTRY | EXIT
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"` // solo entradas
	OccurredAt  *time.Time       `json:"occurred_at,omitempty"`
	Origin      string           `json:"origin,omitempty"`
	Destination string           `json:"destination,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// ValidateExitRequest body para POST /api/inventory/validate-exit.
type ValidateExitRequest struct {
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// MovementResponse movimiento registrado.
type MovementResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// StockSnapshotResponse stock actual de un producto en una escuela.
type StockSnapshotResponse struct {
	SchoolID     string          `json:"school_id"`
	Description  string          `json:"description"`
	UnitMeasure  string          `json:"unit_measure"`
	Quantity     decimal.Decimal `json:"quantity"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	TotalEntered decimal.Decimal `json:"total_entered"`
	TotalExited  decimal.Decimal `json:"total_exited"`
	EventCount   int             `json:"event_count"`
}

// InvoiceItemRequest línea de factura de compra.
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	UnitMeasure string          `json:"unit_measure"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ImportInvoiceRequest body para POST /api/inventory/invoices.
type ImportInvoiceRequest struct {
	SupplierName string               `json:"supplier_name"`
	Number       string               `json:"number"`
	IssuedAt     time.Time            `json:"issued_at"`
	Status       string               `json:"status"` // DRAFT | APPROVED | CANCELLED
	Active       bool                 `json:"active"`
	Items        []InvoiceItemRequest `json:"items"`
}
