package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/inventory"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
	"github.com/jhoicas/gestion-escolar/pkg/keylock"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// StockLedger responde "¿cuál es el stock y costo de X en la escuela E?" y "¿puede E registrar una salida de X?".
// El stock de cada escuela es independiente. Cada operación toma el bloqueo de (escuela, producto)
// durante la secuencia validar-mutar-persistir.
type StockLedger struct {
	receipts  repository.ReceiptRepository
	movements repository.InventoryMovementRepository
	cache     *SnapshotCache
	locks     *keylock.Locker
	log       *logger.Logger
	now       func() time.Time
}

// NewStockLedger construye el libro de stock. cache puede ser nil.
func NewStockLedger(
	receipts repository.ReceiptRepository,
	movements repository.InventoryMovementRepository,
	cache *SnapshotCache,
	log *logger.Logger,
) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedger{
		receipts:  receipts,
		movements: movements,
		cache:     cache,
		locks:     keylock.New(),
		log:       log.Component("stock_ledger"),
		now:       time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
// UnitCost es obligatorio en entradas y se ignora en salidas (se usa el costo promedio vigente).
type MovementInput struct {
	SchoolID    string
	UserID      string
	Description string
	UnitMeasure string
	Type        string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal
	OccurredAt  time.Time // cero = ahora
	Origin      string    // vacío = MANUAL
	Destination string
	Reason      string
}

func lockKey(schoolID string, key entity.ProductKey) string {
	return "stock:" + entity.ScopedKey(schoolID, key)
}

// Fold pliega recepciones y movimientos del producto en la escuela en su stock actual.
func (l *StockLedger) Fold(ctx context.Context, schoolID string, key entity.ProductKey) (*entity.StockSnapshot, error) {
	if key.IsZero() || schoolID == "" {
		return nil, domain.ErrInvalidInput
	}
	unlock := l.locks.Lock(lockKey(schoolID, key))
	defer unlock()
	return l.foldLocked(ctx, schoolID, key)
}

func (l *StockLedger) foldLocked(ctx context.Context, schoolID string, key entity.ProductKey) (*entity.StockSnapshot, error) {
	if snap, ok := l.cache.Get(schoolID, key); ok {
		return snap, nil
	}
	receipts, err := l.receipts.ListByProduct(ctx, schoolID, key)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar recepciones", Err: err}
	}
	movements, err := l.movements.ListByProduct(ctx, schoolID, key)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar movimientos", Err: err}
	}
	entries := inventory.EntriesFromReceipts(receipts)
	entries = append(entries, inventory.EntriesFromMovements(movements)...)
	snap := inventory.Fold(key, entries)
	snap.SchoolID = schoolID
	l.cache.Put(snap)
	return snap, nil
}

// ValidateExit indica si la escuela puede retirar quantity del producto ahora. Solo lectura.
func (l *StockLedger) ValidateExit(ctx context.Context, schoolID string, key entity.ProductKey, quantity decimal.Decimal) error {
	if !quantity.IsPositive() || !entity.FitsAmount(quantity) {
		return domain.ErrInvalidQuantity
	}
	snap, err := l.Fold(ctx, schoolID, key)
	if err != nil {
		return err
	}
	return checkExit(snap, quantity)
}

func checkExit(snap *entity.StockSnapshot, quantity decimal.Decimal) error {
	if quantity.GreaterThan(snap.Quantity) {
		return &domain.InsufficientStockError{
			Product:   snap.Key.Label(),
			Requested: quantity,
			Available: snap.Quantity,
		}
	}
	return nil
}

// RegisterMovement despacha según el tipo (ENTRY / EXIT).
func (l *StockLedger) RegisterMovement(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	switch input.Type {
	case entity.MovementTypeENTRY:
		return l.RegisterEntry(ctx, input)
	case entity.MovementTypeEXIT:
		return l.RegisterExit(ctx, input)
	}
	return nil, domain.ErrInvalidInput
}

// RegisterEntry registra una entrada con el costo unitario informado.
func (l *StockLedger) RegisterEntry(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	input.Type = entity.MovementTypeENTRY
	key, err := l.validateInput(input)
	if err != nil {
		return nil, err
	}
	if input.UnitCost == nil || input.UnitCost.IsNegative() || !entity.FitsAmount(*input.UnitCost) {
		return nil, domain.ErrInvalidInput
	}

	unlock := l.locks.Lock(lockKey(input.SchoolID, key))
	defer unlock()

	before, err := l.foldLocked(ctx, input.SchoolID, key)
	if err != nil {
		return nil, err
	}
	mov := l.newMovement(key, input)
	mov.UnitCost = *input.UnitCost
	mov.TotalCost = input.Quantity.Mul(*input.UnitCost)
	if err := l.appendMovement(ctx, mov); err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("escuela", input.SchoolID).
		Str("producto", key.Label()).
		Str("cantidad", mov.Quantity.String()).
		Str("costo_promedio", inventory.CostCalculator(before.Quantity, before.AverageCost, mov.Quantity, mov.UnitCost).String()).
		Msg("entrada registrada")
	return mov, nil
}

// RegisterExit valida la salida contra el stock plegado y la registra al costo promedio vigente,
// todo bajo el bloqueo del producto.
func (l *StockLedger) RegisterExit(ctx context.Context, input MovementInput) (*entity.InventoryMovement, error) {
	input.Type = entity.MovementTypeEXIT
	key, err := l.validateInput(input)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(lockKey(input.SchoolID, key))
	defer unlock()

	snap, err := l.foldLocked(ctx, input.SchoolID, key)
	if err != nil {
		return nil, err
	}
	if err := checkExit(snap, input.Quantity); err != nil {
		l.log.Info().Str("escuela", input.SchoolID).Str("producto", key.Label()).Err(err).Msg("salida rechazada")
		return nil, err
	}
	mov := l.newMovement(key, input)
	// Una salida fechada antes del último evento podría dejar negativo un prefijo del historial.
	if !snap.LastEventAt.IsZero() && mov.OccurredAt.Before(snap.LastEventAt) {
		return nil, domain.ErrInvalidInput
	}
	mov.UnitCost = snap.AverageCost
	mov.TotalCost = inventory.ExitCost(snap, input.Quantity)
	mov.Destination = strings.TrimSpace(input.Destination)
	mov.Reason = strings.TrimSpace(input.Reason)
	if err := l.appendMovement(ctx, mov); err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("escuela", input.SchoolID).
		Str("producto", key.Label()).
		Str("cantidad", mov.Quantity.String()).
		Str("costo_total", mov.TotalCost.String()).
		Msg("salida registrada")
	return mov, nil
}

// ImportInvoice guarda una factura de compra. Si está aprobada y activa, sus líneas pasan a ser
// recepciones; se bloquean los productos afectados (en orden) para no cachear un stock obsoleto.
func (l *StockLedger) ImportInvoice(ctx context.Context, invoice *entity.Invoice) error {
	if invoice == nil || invoice.SchoolID == "" || invoice.IssuedAt.IsZero() || !entity.ValidInvoiceStatus(invoice.Status) {
		return domain.ErrInvalidInput
	}
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	keys := make(map[string]entity.ProductKey)
	for i := range invoice.Items {
		it := &invoice.Items[i]
		key := entity.NewProductKey(it.Description, it.UnitMeasure)
		if key.IsZero() || !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		if !entity.FitsAmount(it.Quantity) || !entity.FitsAmount(it.UnitPrice) {
			return domain.ErrInvalidInput
		}
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = invoice.ID
		keys[lockKey(invoice.SchoolID, key)] = key
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = l.now()
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		unlock := l.locks.Lock(name)
		defer unlock()
	}

	if err := l.receipts.SaveInvoice(ctx, invoice); err != nil {
		return &domain.PersistenceError{Op: "guardar factura", Err: err}
	}
	for _, key := range keys {
		l.cache.Invalidate(invoice.SchoolID, key)
	}
	l.log.Debug().
		Str("factura", invoice.ID).
		Bool("genera_recepciones", invoice.ProducesReceipts()).
		Int("lineas", len(invoice.Items)).
		Msg("factura importada")
	return nil
}

// ListMovements devuelve los movimientos del producto en la escuela, en el orden del plegado.
func (l *StockLedger) ListMovements(ctx context.Context, schoolID string, key entity.ProductKey) ([]*entity.InventoryMovement, error) {
	if key.IsZero() || schoolID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := l.movements.ListByProduct(ctx, schoolID, key)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar movimientos", Err: err}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.Before(list[j].OccurredAt)
		}
		return list[i].Sequence < list[j].Sequence
	})
	return list, nil
}

func (l *StockLedger) validateInput(input MovementInput) (entity.ProductKey, error) {
	key := entity.NewProductKey(input.Description, input.UnitMeasure)
	if key.IsZero() || input.SchoolID == "" {
		return key, domain.ErrInvalidInput
	}
	if input.Origin != "" && !entity.ValidOrigin(input.Origin) {
		return key, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() || !entity.FitsAmount(input.Quantity) {
		return key, domain.ErrInvalidQuantity
	}
	return key, nil
}

func (l *StockLedger) newMovement(key entity.ProductKey, input MovementInput) *entity.InventoryMovement {
	now := l.now()
	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	origin := input.Origin
	if origin == "" {
		origin = entity.OriginManual
	}
	return &entity.InventoryMovement{
		ID:         uuid.New().String(),
		Key:        key,
		Type:       input.Type,
		Quantity:   input.Quantity,
		OccurredAt: occurred,
		Origin:     origin,
		SchoolID:   input.SchoolID,
		CreatedAt:  now,
		CreatedBy:  input.UserID,
	}
}

func (l *StockLedger) appendMovement(ctx context.Context, mov *entity.InventoryMovement) error {
	if err := l.movements.Append(ctx, mov); err != nil {
		l.cache.Invalidate(mov.SchoolID, mov.Key)
		return &domain.PersistenceError{Op: "registrar movimiento", Err: err}
	}
	l.cache.Invalidate(mov.SchoolID, mov.Key)
	return nil
}
