package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRecord es el registro de auditoría de un traslado de saldo entre escuelas.
// Inmutable: se crea solo cuando el traslado se completa y nunca se edita ni elimina.
type TransferRecord struct {
	ID             string
	Sequence       int64
	ContractItemID string
	FromSchoolID   string
	ToSchoolID     string
	Quantity       decimal.Decimal
	Justification  string
	Actor          string
	CreatedAt      time.Time
}
