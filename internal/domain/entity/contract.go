package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del saldo de un ítem de contrato. Las transiciones solo avanzan (saldo monótono decreciente).
const (
	ItemStateUntouched         = "UNTOUCHED"
	ItemStatePartiallyConsumed = "PARTIALLY_CONSUMED"
	ItemStateExhausted         = "EXHAUSTED"
)

// Contract representa un acuerdo de compra con un proveedor y su período de vigencia.
type Contract struct {
	ID           string
	SchoolID     string
	SupplierName string
	Number       string
	ValidFrom    time.Time
	ValidUntil   time.Time
	Items        []ContractItem
	CreatedAt    time.Time
}

// ContractItem es una línea del contrato con saldo consumible. Hereda la vigencia del contrato.
// Invariante: 0 <= AvailableBalance <= ContractedQuantity.
type ContractItem struct {
	ID                 string
	ContractID         string
	SchoolID           string // escuela dueña del saldo
	Description        string
	UnitMeasure        string
	UnitPrice          decimal.Decimal
	ContractedQuantity decimal.Decimal // fija desde la creación
	AvailableBalance   decimal.Decimal
	ValidFrom          time.Time
	ValidUntil         time.Time
	Version            int64 // control optimista de concurrencia
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsValidAt indica si t cae dentro de la vigencia del contrato (ambos extremos inclusive).
func (i *ContractItem) IsValidAt(t time.Time) bool {
	return !t.Before(i.ValidFrom) && !t.After(i.ValidUntil)
}

// State devuelve el estado del saldo.
func (i *ContractItem) State() string {
	switch {
	case i.AvailableBalance.Equal(i.ContractedQuantity):
		return ItemStateUntouched
	case i.AvailableBalance.IsZero():
		return ItemStateExhausted
	default:
		return ItemStatePartiallyConsumed
	}
}

// IsUntouched indica si el ítem no tiene consumos; solo así puede eliminarse.
func (i *ContractItem) IsUntouched() bool {
	return i.State() == ItemStateUntouched
}

// Consumed devuelve la cantidad ya consumida o trasladada.
func (i *ContractItem) Consumed() decimal.Decimal {
	return i.ContractedQuantity.Sub(i.AvailableBalance)
}

// AvailableValue devuelve el valor monetario del saldo disponible.
func (i *ContractItem) AvailableValue() decimal.Decimal {
	return i.AvailableBalance.Mul(i.UnitPrice)
}
