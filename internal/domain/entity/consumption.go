package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionRecord registra un consumo directo del saldo de un ítem (no un traslado).
// Inmutable, igual que TransferRecord.
type ConsumptionRecord struct {
	ID             string
	Sequence       int64
	ContractItemID string
	SchoolID       string
	Quantity       decimal.Decimal
	Reason         string
	Actor          string
	CreatedAt      time.Time
}
