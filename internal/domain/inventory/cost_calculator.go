package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostPlaces decimales con que se expresa el costo promedio unitario.
const CostPlaces = 6

// LedgerEntry es un evento ya normalizado para el plegado: recepción, entrada o salida.
type LedgerEntry struct {
	OccurredAt time.Time
	Sequence   int64
	Exit       bool
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal // ignorado en salidas
}

// EntriesFromReceipts convierte recepciones de facturas en entradas del libro.
func EntriesFromReceipts(receipts []entity.ReceiptEvent) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, LedgerEntry{
			OccurredAt: r.OccurredAt,
			Sequence:   r.Sequence,
			Quantity:   r.Quantity,
			UnitCost:   r.UnitPrice,
		})
	}
	return out
}

// EntriesFromMovements convierte movimientos en entradas del libro. El costo de una salida
// no se toma del movimiento: se recalcula con el promedio vigente durante el plegado.
func EntriesFromMovements(movements []*entity.InventoryMovement) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(movements))
	for _, m := range movements {
		e := LedgerEntry{
			OccurredAt: m.OccurredAt,
			Sequence:   m.Sequence,
			Exit:       m.IsExit(),
			Quantity:   m.Quantity,
		}
		if !e.Exit {
			e.UnitCost = m.UnitCost
		}
		out = append(out, e)
	}
	return out
}

// Order ordena por fecha de ocurrencia y, a igual fecha, por orden de inserción (estable).
func Order(entries []LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.Sequence < b.Sequence
	})
}

// AverageCost devuelve V/Q redondeado a CostPlaces; 0 si no hay stock.
func AverageCost(quantity, value decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return value.DivRound(quantity, CostPlaces)
}

// Fold calcula el stock con costo promedio móvil:
//   - entrada q a precio p: Q += q; V += q*p
//   - salida q: se costea al promedio previo c = V/Q; Q -= q; V -= q*c
//
// La salida que deja Q en cero absorbe el residuo de redondeo para que V quede en 0.
// No revalida: confía en que toda salida fue admitida por ValidateExit antes de registrarse.
func Fold(key entity.ProductKey, entries []LedgerEntry) *entity.StockSnapshot {
	ordered := make([]LedgerEntry, len(entries))
	copy(ordered, entries)
	Order(ordered)

	snap := entity.EmptySnapshot(key)
	qty, value := decimal.Zero, decimal.Zero
	for _, e := range ordered {
		if e.Exit {
			if e.Quantity.Equal(qty) {
				qty, value = decimal.Zero, decimal.Zero
			} else {
				avg := AverageCost(qty, value)
				qty = qty.Sub(e.Quantity)
				value = value.Sub(e.Quantity.Mul(avg))
			}
			snap.TotalExited = snap.TotalExited.Add(e.Quantity)
		} else {
			qty = qty.Add(e.Quantity)
			value = value.Add(e.Quantity.Mul(e.UnitCost))
			snap.TotalEntered = snap.TotalEntered.Add(e.Quantity)
		}
		snap.EventCount++
		snap.LastEventAt = e.OccurredAt
	}
	snap.Quantity = qty
	snap.TotalValue = value
	snap.AverageCost = AverageCost(qty, value)
	return snap
}

// ExitCost devuelve el costo total de retirar quantity del stock actual.
// Retirar todo el stock cuesta exactamente el valor total.
func ExitCost(snap *entity.StockSnapshot, quantity decimal.Decimal) decimal.Decimal {
	if quantity.Equal(snap.Quantity) {
		return snap.TotalValue
	}
	return quantity.Mul(snap.AverageCost)
}

// CostCalculator implementa el costo promedio ponderado tras una entrada (vista previa).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, CostPlaces)
}
