package contract

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
	"github.com/jhoicas/gestion-escolar/pkg/keylock"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// BalanceLedger controla el saldo consumible de los ítems de contrato.
// El saldo solo decrece; no existe recarga. La única suba es la compensación de un registro
// (consumo o traslado) que no pudo persistirse.
type BalanceLedger struct {
	contracts    repository.ContractRepository
	consumptions repository.ConsumptionRepository
	directory    repository.SchoolDirectory
	locks        *keylock.Locker
	log          *logger.Logger
	now          func() time.Time
}

// NewBalanceLedger construye el libro de saldos.
func NewBalanceLedger(
	contracts repository.ContractRepository,
	consumptions repository.ConsumptionRepository,
	directory repository.SchoolDirectory,
	log *logger.Logger,
) *BalanceLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &BalanceLedger{
		contracts:    contracts,
		consumptions: consumptions,
		directory:    directory,
		locks:        keylock.New(),
		log:          log.Component("balance_ledger"),
		now:          time.Now,
	}
}

// ConsumeInput entrada de un consumo directo del saldo.
type ConsumeInput struct {
	ContractItemID string
	SchoolID       string
	Quantity       decimal.Decimal
	Reason         string
	Actor          string
}

// ContractInput entrada para registrar un contrato con sus ítems.
type ContractInput struct {
	SchoolID     string
	SupplierName string
	Number       string
	ValidFrom    time.Time
	ValidUntil   time.Time
	Items        []ContractItemInput
}

// ContractItemInput línea del contrato.
type ContractItemInput struct {
	Description        string
	UnitMeasure        string
	UnitPrice          decimal.Decimal
	ContractedQuantity decimal.Decimal
}

func itemLockKey(id string) string { return "item:" + id }

// RegisterContract crea el contrato; cada ítem inicia con saldo igual a la cantidad contratada.
func (b *BalanceLedger) RegisterContract(ctx context.Context, in ContractInput) (*entity.Contract, error) {
	if in.SchoolID == "" || strings.TrimSpace(in.SupplierName) == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() || in.ValidUntil.Before(in.ValidFrom) {
		return nil, domain.ErrInvalidInput
	}
	now := b.now()
	c := &entity.Contract{
		ID:           uuid.New().String(),
		SchoolID:     in.SchoolID,
		SupplierName: strings.TrimSpace(in.SupplierName),
		Number:       strings.TrimSpace(in.Number),
		ValidFrom:    in.ValidFrom,
		ValidUntil:   in.ValidUntil,
		CreatedAt:    now,
		Items:        make([]entity.ContractItem, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" || strings.TrimSpace(it.UnitMeasure) == "" {
			return nil, domain.ErrInvalidInput
		}
		if !it.ContractedQuantity.IsPositive() || !entity.FitsAmount(it.ContractedQuantity) {
			return nil, domain.ErrInvalidQuantity
		}
		if it.UnitPrice.IsNegative() || !entity.FitsAmount(it.UnitPrice) {
			return nil, domain.ErrInvalidInput
		}
		c.Items = append(c.Items, entity.ContractItem{
			ID:                 uuid.New().String(),
			ContractID:         c.ID,
			SchoolID:           in.SchoolID,
			Description:        strings.TrimSpace(it.Description),
			UnitMeasure:        strings.TrimSpace(it.UnitMeasure),
			UnitPrice:          it.UnitPrice,
			ContractedQuantity: it.ContractedQuantity,
			AvailableBalance:   it.ContractedQuantity,
			ValidFrom:          in.ValidFrom,
			ValidUntil:         in.ValidUntil,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	if err := b.contracts.CreateContract(ctx, c); err != nil {
		return nil, &domain.PersistenceError{Op: "crear contrato", Err: err}
	}
	b.log.Debug().Str("contrato", c.ID).Int("items", len(c.Items)).Msg("contrato registrado")
	return c, nil
}

// GetItem obtiene un ítem por ID.
func (b *BalanceLedger) GetItem(ctx context.Context, id string) (*entity.ContractItem, error) {
	item, err := b.contracts.GetItem(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "obtener ítem", Err: err}
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListItemsBySchool lista los ítems de contrato de una escuela.
func (b *BalanceLedger) ListItemsBySchool(ctx context.Context, schoolID string) ([]*entity.ContractItem, error) {
	list, err := b.contracts.ListItemsBySchool(ctx, schoolID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar ítems", Err: err}
	}
	return list, nil
}

// Consume descuenta la cantidad del saldo del ítem y registra el consumo como una unidad:
// si el registro falla, el descuento se revierte. Si la cantidad supera el saldo no cambia nada y
// devuelve *domain.OverconsumptionError con el disponible.
func (b *BalanceLedger) Consume(ctx context.Context, in ConsumeInput) (*entity.ConsumptionRecord, *entity.ContractItem, error) {
	if !in.Quantity.IsPositive() || !entity.FitsAmount(in.Quantity) {
		return nil, nil, domain.ErrInvalidQuantity
	}
	reason := strings.TrimSpace(in.Reason)
	if in.ContractItemID == "" || in.SchoolID == "" || in.Actor == "" || reason == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	unlock := b.locks.Lock(itemLockKey(in.ContractItemID))
	defer unlock()

	item, err := b.GetItem(ctx, in.ContractItemID)
	if err != nil {
		return nil, nil, err
	}
	if item.SchoolID != in.SchoolID {
		return nil, nil, domain.ErrForbidden
	}
	if err := b.consumeLocked(ctx, item, in.Quantity); err != nil {
		if domain.IsRejection(err) {
			b.log.Info().Str("item", item.ID).Err(err).Msg("consumo rechazado")
		}
		return nil, nil, err
	}

	record := &entity.ConsumptionRecord{
		ID:             uuid.New().String(),
		ContractItemID: item.ID,
		SchoolID:       item.SchoolID,
		Quantity:       in.Quantity,
		Reason:         reason,
		Actor:          in.Actor,
		CreatedAt:      b.now(),
	}
	if err := b.consumptions.Append(ctx, record); err != nil {
		return nil, nil, b.compensate(ctx, item, in.Quantity, "registrar consumo", err)
	}
	b.log.Debug().
		Str("item", item.ID).
		Str("cantidad", in.Quantity.String()).
		Str("saldo", item.AvailableBalance.String()).
		Str("motivo", reason).
		Msg("consumo registrado")
	return record, item, nil
}

// ListConsumptions devuelve los consumos directos del ítem, en orden de registro.
func (b *BalanceLedger) ListConsumptions(ctx context.Context, itemID string) ([]*entity.ConsumptionRecord, error) {
	if _, err := b.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	list, err := b.consumptions.ListByItem(ctx, itemID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar consumos", Err: err}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	return list, nil
}

// consumeLocked requiere el bloqueo del ítem. Solo se consume dentro de la vigencia del contrato.
func (b *BalanceLedger) consumeLocked(ctx context.Context, item *entity.ContractItem, quantity decimal.Decimal) error {
	if !item.IsValidAt(b.now()) {
		return domain.ErrContractNotInForce
	}
	if quantity.GreaterThan(item.AvailableBalance) {
		return &domain.OverconsumptionError{
			ContractItemID: item.ID,
			Requested:      quantity,
			Available:      item.AvailableBalance,
		}
	}
	return b.writeBalance(ctx, item, item.AvailableBalance.Sub(quantity))
}

// compensate revierte un descuento cuyo registro no pudo persistirse. La reversión no se cancela
// con el contexto del llamador: debe terminar para no dejar el saldo inconsistente con la auditoría.
func (b *BalanceLedger) compensate(ctx context.Context, item *entity.ContractItem, quantity decimal.Decimal, op string, cause error) error {
	rbErr := b.restoreLocked(context.WithoutCancel(ctx), item, quantity)
	if rbErr != nil {
		b.log.Error().
			Err(cause).
			AnErr("rollback_err", rbErr).
			Str("item", item.ID).
			Str("cantidad", quantity.String()).
			Str("operacion", op).
			Msg("reconciliación: no se pudo revertir el saldo")
		return &domain.PersistenceError{Op: op, Err: errors.Join(cause, rbErr)}
	}
	b.log.Warn().
		Err(cause).
		Str("item", item.ID).
		Str("cantidad", quantity.String()).
		Str("saldo", item.AvailableBalance.String()).
		Str("operacion", op).
		Msg("reconciliación: saldo revertido")
	return &domain.PersistenceError{Op: op, Err: cause}
}

// restoreLocked devuelve quantity al saldo. Nunca supera lo contratado.
func (b *BalanceLedger) restoreLocked(ctx context.Context, item *entity.ContractItem, quantity decimal.Decimal) error {
	restored := item.AvailableBalance.Add(quantity)
	if restored.GreaterThan(item.ContractedQuantity) {
		return domain.ErrConflict
	}
	return b.writeBalance(ctx, item, restored)
}

func (b *BalanceLedger) writeBalance(ctx context.Context, item *entity.ContractItem, balance decimal.Decimal) error {
	if err := b.contracts.UpdateItemBalance(ctx, item.ID, balance, item.Version); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return err
		}
		return &domain.PersistenceError{Op: "actualizar saldo", Err: err}
	}
	item.AvailableBalance = balance
	item.Version++
	item.UpdatedAt = b.now()
	return nil
}

// DeleteItem elimina un ítem solo si no tiene consumos (borrarlo perdería historial).
func (b *BalanceLedger) DeleteItem(ctx context.Context, itemID string) error {
	unlock := b.locks.Lock(itemLockKey(itemID))
	defer unlock()

	item, err := b.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.IsUntouched() {
		return domain.ErrItemInUse
	}
	if err := b.contracts.DeleteItem(ctx, itemID); err != nil {
		return &domain.PersistenceError{Op: "eliminar ítem", Err: err}
	}
	return nil
}

// EligibleDestinations devuelve las escuelas del grupo de compras de la escuela origen, sin ella misma.
func (b *BalanceLedger) EligibleDestinations(ctx context.Context, sourceSchoolID string) ([]string, error) {
	members, err := b.directory.ListGroupMembers(ctx, sourceSchoolID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "consultar directorio", Err: err}
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m.ID != sourceSchoolID {
			out = append(out, m.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}
