package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-escolar/internal/application/inventory"
	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSchool = "esc-a"

var issued = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(t *testing.T, cacheSize int) (*inventory.StockLedger, *memory.Store) {
	t.Helper()
	store := memory.New()
	cache, err := inventory.NewSnapshotCache(cacheSize)
	require.NoError(t, err)
	return inventory.NewStockLedger(store.Receipts(), store, cache, nil), store
}

func importRice(t *testing.T, l *inventory.StockLedger, status string, qty, price string) {
	t.Helper()
	err := l.ImportInvoice(context.Background(), &entity.Invoice{
		SchoolID: testSchool, SupplierName: "Molinos", Number: "F-1", IssuedAt: issued,
		Status: status, Active: true,
		Items: []entity.InvoiceItem{{Description: "Rice 5kg", UnitMeasure: "unidad", Quantity: dec(qty), UnitPrice: dec(price)}},
	})
	require.NoError(t, err)
}

func exitInput(qty string) inventory.MovementInput {
	return inventory.MovementInput{
		SchoolID: testSchool, UserID: "u-1", Description: "rice 5KG", UnitMeasure: "Unidad",
		Type: entity.MovementTypeEXIT, Quantity: dec(qty), Destination: "comedor", Reason: "almuerzo",
	}
}

var riceKey = entity.NewProductKey("Rice 5kg", "unidad")

func requireSnap(t *testing.T, l *inventory.StockLedger, qty, avg, value string) {
	t.Helper()
	snap, err := l.Fold(context.Background(), testSchool, riceKey)
	require.NoError(t, err)
	assert.True(t, snap.Quantity.Equal(dec(qty)), "cantidad %s", snap.Quantity)
	assert.True(t, snap.AverageCost.Equal(dec(avg)), "promedio %s", snap.AverageCost)
	assert.True(t, snap.TotalValue.Equal(dec(value)), "valor %s", snap.TotalValue)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: recepción 100 a 10.00, salida 30 y salida de 80 rechazada.
func TestStockLedger_EscenarioArroz(t *testing.T) {
	for _, size := range []int{0, 16} {
		l, _ := newLedger(t, size)
		ctx := context.Background()
		importRice(t, l, entity.InvoiceStatusApproved, "100", "10.00")
		requireSnap(t, l, "100", "10", "1000")

		require.NoError(t, l.ValidateExit(ctx, testSchool, riceKey, dec("30")))
		mov, err := l.RegisterExit(ctx, exitInput("30"))
		require.NoError(t, err)
		assert.True(t, mov.UnitCost.Equal(dec("10")), "la salida usa el costo promedio")
		assert.True(t, mov.TotalCost.Equal(dec("300")))
		requireSnap(t, l, "70", "10", "700")

		_, err = l.RegisterExit(ctx, exitInput("80"))
		var insufficient *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficient, "cache=%d", size)
		assert.True(t, insufficient.Available.Equal(dec("70")))
		requireSnap(t, l, "70", "10", "700")
	}
}

// Caso 2: solo facturas aprobadas y activas alimentan el stock.
func TestStockLedger_FacturaNoAprobadaNoSuma(t *testing.T) {
	l, _ := newLedger(t, 16)
	importRice(t, l, entity.InvoiceStatusDraft, "100", "10")
	importRice(t, l, entity.InvoiceStatusCancelled, "100", "10")
	requireSnap(t, l, "0", "0", "0")

	err := l.ValidateExit(context.Background(), testSchool, riceKey, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Caso 3: entradas manuales recalculan el promedio; la salida ignora cualquier costo enviado.
func TestStockLedger_EntradaManualYPromedio(t *testing.T) {
	l, _ := newLedger(t, 16)
	ctx := context.Background()
	importRice(t, l, entity.InvoiceStatusApproved, "10", "100")

	cost := dec("200")
	_, err := l.RegisterMovement(ctx, inventory.MovementInput{
		SchoolID: testSchool, Description: "Rice 5kg", UnitMeasure: "unidad",
		Type: entity.MovementTypeENTRY, Quantity: dec("10"), UnitCost: &cost,
	})
	require.NoError(t, err)
	requireSnap(t, l, "20", "150", "3000")

	in := exitInput("5")
	bogus := dec("1")
	in.UnitCost = &bogus
	mov, err := l.RegisterMovement(ctx, in)
	require.NoError(t, err)
	assert.True(t, mov.UnitCost.Equal(dec("150")))
	requireSnap(t, l, "15", "150", "2250")

	list, err := l.ListMovements(ctx, testSchool, riceKey)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.MovementTypeENTRY, list[0].Type)
	assert.Equal(t, entity.OriginManual, list[1].Origin)
}

// Caso 4: entradas inválidas.
func TestStockLedger_Validaciones(t *testing.T) {
	l, _ := newLedger(t, 0)
	ctx := context.Background()

	_, err := l.RegisterEntry(ctx, inventory.MovementInput{SchoolID: testSchool, Description: "Rice 5kg", UnitMeasure: "unidad", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "entrada sin costo")

	_, err = l.RegisterExit(ctx, exitInput("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	bad := exitInput("1")
	bad.Description = "   "
	_, err = l.RegisterExit(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := exitInput("1")
	other.Type = "AJUSTE"
	_, err = l.RegisterMovement(ctx, other)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, l.ValidateExit(ctx, testSchool, riceKey, dec("-1")), domain.ErrInvalidQuantity)
}

// Caso 5: una salida fechada antes del último evento se rechaza.
func TestStockLedger_SalidaRetroactiva(t *testing.T) {
	l, _ := newLedger(t, 16)
	importRice(t, l, entity.InvoiceStatusApproved, "10", "1")

	in := exitInput("1")
	in.OccurredAt = issued.Add(-time.Hour)
	_, err := l.RegisterExit(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	requireSnap(t, l, "10", "1", "10")
}

// Caso 6: salidas concurrentes nunca sobregiran.
func TestStockLedger_SalidasConcurrentes(t *testing.T) {
	l, _ := newLedger(t, 16)
	importRice(t, l, entity.InvoiceStatusApproved, "100", "3")

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RegisterExit(context.Background(), exitInput("7"))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 14, accepted, "100 / 7 = 14")
	requireSnap(t, l, "2", "3", "6")
}

// Caso 7: la caché se invalida al importar facturas.
func TestStockLedger_CacheInvalidaAlImportar(t *testing.T) {
	l, _ := newLedger(t, 16)
	requireSnap(t, l, "0", "0", "0")
	importRice(t, l, entity.InvoiceStatusApproved, "4", "2.5")
	requireSnap(t, l, "4", "2.5", "10")
}

func TestImportInvoice_Validaciones(t *testing.T) {
	l, _ := newLedger(t, 0)
	ctx := context.Background()
	cases := []*entity.Invoice{
		nil,
		{SchoolID: testSchool, IssuedAt: issued, Status: "PAGADA"},
		{SchoolID: testSchool, Status: entity.InvoiceStatusApproved},
		{SchoolID: testSchool, IssuedAt: issued, Status: entity.InvoiceStatusApproved,
			Items: []entity.InvoiceItem{{Description: "Sal", UnitMeasure: "kg", Quantity: dec("0"), UnitPrice: dec("1")}}},
		{SchoolID: testSchool, IssuedAt: issued, Status: entity.InvoiceStatusApproved,
			Items: []entity.InvoiceItem{{Description: "Sal", UnitMeasure: "kg", Quantity: dec("1.0000001"), UnitPrice: dec("1")}}},
	}
	for i, inv := range cases {
		assert.ErrorIs(t, l.ImportInvoice(ctx, inv), domain.ErrInvalidInput, "caso %d", i)
	}
}

// Caso 8: descripciones con "|" no comparten stock con otra pareja descripción/unidad.
func TestStockLedger_ClavesConSeparadorNoColisionan(t *testing.T) {
	for _, size := range []int{0, 16} {
		l, _ := newLedger(t, size)
		ctx := context.Background()
		cost := dec("2")
		_, err := l.RegisterEntry(ctx, inventory.MovementInput{
			SchoolID: testSchool, Description: "lapiz|caja", UnitMeasure: "x", Quantity: dec("10"), UnitCost: &cost,
		})
		require.NoError(t, err)

		snap, err := l.Fold(ctx, testSchool, entity.NewProductKey("lapiz", "caja|x"))
		require.NoError(t, err)
		assert.True(t, snap.Quantity.IsZero(), "cache=%d: stock ajeno %s", size, snap.Quantity)

		_, err = l.RegisterExit(ctx, inventory.MovementInput{
			SchoolID: testSchool, Description: "lapiz", UnitMeasure: "caja|x", Quantity: dec("10"),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock, "cache=%d", size)

		snap, err = l.Fold(ctx, testSchool, entity.NewProductKey("lapiz|caja", "x"))
		require.NoError(t, err)
		assert.True(t, snap.Quantity.Equal(dec("10")))
	}
}

// Caso 9: cada escuela tiene su propio stock del mismo producto.
func TestStockLedger_StockPorEscuela(t *testing.T) {
	for _, size := range []int{0, 16} {
		l, _ := newLedger(t, size)
		ctx := context.Background()
		cost := dec("4")
		_, err := l.RegisterEntry(ctx, inventory.MovementInput{
			SchoolID: "esc-b", Description: "Rice 5kg", UnitMeasure: "unidad", Quantity: dec("10"), UnitCost: &cost,
		})
		require.NoError(t, err)

		_, err = l.RegisterExit(ctx, exitInput("10"))
		var insufficient *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficient, "cache=%d: esc-a no puede retirar el stock de esc-b", size)
		assert.True(t, insufficient.Available.IsZero())
		assert.Equal(t, "rice 5kg (unidad)", insufficient.Product)
		assert.ErrorIs(t, l.ValidateExit(ctx, testSchool, riceKey, dec("1")), domain.ErrInsufficientStock)
		requireSnap(t, l, "0", "0", "0")

		importRice(t, l, entity.InvoiceStatusApproved, "3", "1")
		b, err := l.Fold(ctx, "esc-b", riceKey)
		require.NoError(t, err)
		assert.True(t, b.Quantity.Equal(dec("10")), "la factura de esc-a no suma en esc-b")
		assert.Equal(t, "esc-b", b.SchoolID)

		list, err := l.ListMovements(ctx, testSchool, riceKey)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

// Caso 10: cantidades y costos con más de seis decimales se rechazan en vez de redondearse al guardar.
func TestStockLedger_PrecisionMaxima(t *testing.T) {
	l, _ := newLedger(t, 0)
	ctx := context.Background()
	importRice(t, l, entity.InvoiceStatusApproved, "10", "1")

	_, err := l.RegisterExit(ctx, exitInput("0.0000001"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.ErrorIs(t, l.ValidateExit(ctx, testSchool, riceKey, dec("0.0000001")), domain.ErrInvalidQuantity)

	cost := dec("1.1234567")
	_, err = l.RegisterEntry(ctx, inventory.MovementInput{
		SchoolID: testSchool, Description: "Rice 5kg", UnitMeasure: "unidad", Quantity: dec("1"), UnitCost: &cost,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.RegisterExit(ctx, exitInput("0.000001"))
	require.NoError(t, err, "seis decimales caben")
	requireSnap(t, l, "9.999999", "1", "9.999999")
}
