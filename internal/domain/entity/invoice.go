package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura de compra.
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusApproved  = "APPROVED"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice representa la cabecera de una factura de compra recibida por la escuela.
type Invoice struct {
	ID           string
	SchoolID     string
	SupplierName string
	Number       string
	IssuedAt     time.Time
	Status       string
	Active       bool
	Items        []InvoiceItem
	CreatedAt    time.Time
}

// InvoiceItem representa una línea de la factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	UnitMeasure string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Sequence    int64
}

// ReceiptEvent es la entrada de stock derivada de una línea de factura aprobada y activa.
type ReceiptEvent struct {
	ID         string
	InvoiceID  string
	SchoolID   string
	Key        ProductKey
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	OccurredAt time.Time
	Sequence   int64
}

// ProducesReceipts indica si la factura alimenta el stock (aprobada y activa).
func (inv *Invoice) ProducesReceipts() bool {
	return inv.Active && inv.Status == InvoiceStatusApproved
}

// Receipts deriva los eventos de recepción. Líneas con cantidad <= 0 o precio negativo se ignoran.
func (inv *Invoice) Receipts() []ReceiptEvent {
	if !inv.ProducesReceipts() {
		return nil
	}
	out := make([]ReceiptEvent, 0, len(inv.Items))
	for _, it := range inv.Items {
		if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			continue
		}
		out = append(out, ReceiptEvent{
			ID:         it.ID,
			InvoiceID:  inv.ID,
			SchoolID:   inv.SchoolID,
			Key:        NewProductKey(it.Description, it.UnitMeasure),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			OccurredAt: inv.IssuedAt,
			Sequence:   it.Sequence,
		})
	}
	return out
}

// ValidInvoiceStatus indica si s es un estado conocido.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusApproved, InvoiceStatusCancelled:
		return true
	}
	return false
}
