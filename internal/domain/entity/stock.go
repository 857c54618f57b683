package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot es el stock calculado de un producto en una escuela (derivado, no es fuente de verdad).
// TotalValue = Quantity * AverageCost, salvo el redondeo del costo promedio.
type StockSnapshot struct {
	SchoolID     string
	Key          ProductKey
	Quantity     decimal.Decimal
	AverageCost  decimal.Decimal
	TotalValue   decimal.Decimal
	TotalEntered decimal.Decimal
	TotalExited  decimal.Decimal
	EventCount   int
	LastEventAt  time.Time
}

// EmptySnapshot devuelve el stock de un producto sin eventos.
func EmptySnapshot(key ProductKey) *StockSnapshot {
	return &StockSnapshot{
		Key:          key,
		Quantity:     decimal.Zero,
		AverageCost:  decimal.Zero,
		TotalValue:   decimal.Zero,
		TotalEntered: decimal.Zero,
		TotalExited:  decimal.Zero,
	}
}
