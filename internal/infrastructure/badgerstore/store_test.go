package badgerstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/infrastructure/badgerstore"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open("")
	require.NoError(t, err, "debe abrir badger en memoria")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMovimientos_OrdenPorSecuencia(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	key := entity.NewProductKey("Harina 1/2", "kg")
	other := entity.NewProductKey("Harina 1/2", "kg/x")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, &entity.InventoryMovement{
			SchoolID: "a", Key: key, Type: entity.MovementTypeENTRY, Quantity: decimal.NewFromInt(int64(i + 1)),
		}))
	}
	require.NoError(t, s.Append(ctx, &entity.InventoryMovement{SchoolID: "a", Key: other, Type: entity.MovementTypeENTRY, Quantity: dec("7")}))
	require.NoError(t, s.Append(ctx, &entity.InventoryMovement{SchoolID: "b", Key: key, Type: entity.MovementTypeENTRY, Quantity: dec("9")}))

	list, err := s.ListByProduct(ctx, "a", key)
	require.NoError(t, err)
	require.Len(t, list, 3, "las claves con barra y las de otra escuela no deben mezclarse")
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Sequence, list[i].Sequence)
	}
	assert.True(t, list[2].Quantity.Equal(dec("3")))
}

func TestRecepciones_FacturaAprobada(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID: "f1", SchoolID: "a", Status: entity.InvoiceStatusApproved, Active: true, IssuedAt: day,
		Items: []entity.InvoiceItem{
			{ID: "l1", Description: "Arroz", UnitMeasure: "kg", Quantity: dec("100"), UnitPrice: dec("5")},
			{ID: "l2", Description: "Frijol", UnitMeasure: "kg", Quantity: dec("10"), UnitPrice: dec("8")},
		},
	}
	require.NoError(t, s.Receipts().SaveInvoice(ctx, inv))
	assert.ErrorIs(t, s.Receipts().SaveInvoice(ctx, inv), domain.ErrConflict)

	got, err := s.Receipts().ListByProduct(ctx, "a", entity.NewProductKey("arroz", "KG"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Quantity.Equal(dec("100")))
	assert.True(t, got[0].OccurredAt.Equal(day))
	assert.Equal(t, "a", got[0].SchoolID)

	got, err = s.Receipts().ListByProduct(ctx, "b", entity.NewProductKey("arroz", "kg"))
	require.NoError(t, err)
	assert.Empty(t, got, "la factura de otra escuela no aporta stock")

	draft := &entity.Invoice{ID: "f2", SchoolID: "a", Status: entity.InvoiceStatusDraft, Active: true, IssuedAt: day,
		Items: []entity.InvoiceItem{{ID: "l3", Description: "Arroz", UnitMeasure: "kg", Quantity: dec("1"), UnitPrice: dec("1")}}}
	require.NoError(t, s.Receipts().SaveInvoice(ctx, draft))
	got, err = s.Receipts().ListByProduct(ctx, "a", entity.NewProductKey("arroz", "kg"))
	require.NoError(t, err)
	assert.Len(t, got, 1, "el borrador no genera recepción")
}

func TestContratos_SaldoVersionadoYBorrado(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.CreateContract(ctx, &entity.Contract{
		ID: "c1", SchoolID: "a",
		Items: []entity.ContractItem{
			{ID: "i1", SchoolID: "a", ContractedQuantity: dec("500"), AvailableBalance: dec("500")},
			{ID: "i2", SchoolID: "a", ContractedQuantity: dec("10"), AvailableBalance: dec("10")},
		},
	}))

	items, err := s.ListItemsBySchool(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, s.UpdateItemBalance(ctx, "i1", dec("300"), 0))
	assert.ErrorIs(t, s.UpdateItemBalance(ctx, "i1", dec("0"), 0), domain.ErrConflict)

	it, err := s.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, it.AvailableBalance.Equal(dec("300")))
	assert.Equal(t, int64(1), it.Version)

	require.NoError(t, s.DeleteItem(ctx, "i2"))
	assert.ErrorIs(t, s.DeleteItem(ctx, "i2"), domain.ErrNotFound)
	items, err = s.ListItemsBySchool(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTrasladosYEscuelas(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Save(ctx, &entity.School{ID: "a", PurchasingGroupID: "g"}))
	require.NoError(t, s.Save(ctx, &entity.School{ID: "b", PurchasingGroupID: "g"}))
	require.NoError(t, s.Save(ctx, &entity.School{ID: "c"}))

	ok, err := s.SharesPurchasingGroup(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SharesPurchasingGroup(ctx, "a", "c")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := s.ListGroupMembers(ctx, "b")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].ID)

	tr := s.Transfers()
	require.NoError(t, tr.Append(ctx, &entity.TransferRecord{ContractItemID: "i1", FromSchoolID: "a", ToSchoolID: "b", Quantity: dec("200"), Justification: "excedente de arroz"}))
	byItem, err := tr.ListByItem(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.True(t, byItem[0].Quantity.Equal(dec("200")))

	bySchool, err := tr.ListBySchool(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, bySchool, 1)
}

func TestConsumos_PorItemEnOrden(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	cs := s.Consumptions()
	require.NoError(t, cs.Append(ctx, &entity.ConsumptionRecord{ContractItemID: "i1", SchoolID: "a", Quantity: dec("10"), Reason: "almuerzo"}))
	require.NoError(t, cs.Append(ctx, &entity.ConsumptionRecord{ContractItemID: "i12", SchoolID: "a", Quantity: dec("1"), Reason: "otro ítem"}))
	require.NoError(t, cs.Append(ctx, &entity.ConsumptionRecord{ContractItemID: "i1", SchoolID: "a", Quantity: dec("2.5"), Reason: "cena"}))

	list, err := cs.ListByItem(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, list, 2, "el prefijo de i1 no debe incluir i12")
	assert.Equal(t, "almuerzo", list[0].Reason)
	assert.Less(t, list[0].Sequence, list[1].Sequence)
	assert.NotEmpty(t, list[1].ID)
	assert.True(t, list[1].Quantity.Equal(dec("2.5")))
}
