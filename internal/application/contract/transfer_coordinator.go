package contract

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
	"github.com/jhoicas/gestion-escolar/pkg/logger"
)

// DefaultMinJustification largo mínimo (en caracteres) de la justificación de un traslado.
const DefaultMinJustification = 10

// TransferCoordinator traslada saldo contratado entre escuelas como una unidad atómica:
// descuento del saldo origen + registro de auditoría. Si el registro falla, el descuento se revierte.
// El destino no recibe saldo propio; el registro es solo una referencia de auditoría.
type TransferCoordinator struct {
	balances         *BalanceLedger
	transfers        repository.TransferRepository
	directory        repository.SchoolDirectory
	minJustification int
	log              *logger.Logger
	now              func() time.Time
}

// NewTransferCoordinator construye el coordinador. minJustification <= 0 usa DefaultMinJustification.
func NewTransferCoordinator(
	balances *BalanceLedger,
	transfers repository.TransferRepository,
	directory repository.SchoolDirectory,
	minJustification int,
	log *logger.Logger,
) *TransferCoordinator {
	if minJustification <= 0 {
		minJustification = DefaultMinJustification
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TransferCoordinator{
		balances:         balances,
		transfers:        transfers,
		directory:        directory,
		minJustification: minJustification,
		log:              log.Component("transfer_coordinator"),
		now:              time.Now,
	}
}

// TransferInput entrada de un traslado.
type TransferInput struct {
	ContractItemID string
	FromSchoolID   string
	ToSchoolID     string
	Quantity       decimal.Decimal
	Justification  string
	Actor          string
}

// Transfer valida, descuenta el saldo del ítem origen y registra el traslado.
// Rechazos (cantidad, justificación, destino no elegible, saldo insuficiente) no cambian estado.
func (c *TransferCoordinator) Transfer(ctx context.Context, in TransferInput) (*entity.TransferRecord, error) {
	if !in.Quantity.IsPositive() || !entity.FitsAmount(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	justification := strings.TrimSpace(in.Justification)
	if utf8.RuneCountInString(justification) < c.minJustification {
		return nil, domain.ErrInvalidJustification
	}
	if in.ContractItemID == "" || in.FromSchoolID == "" || in.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ToSchoolID == "" || in.ToSchoolID == in.FromSchoolID {
		return nil, domain.ErrIneligibleDestination
	}
	// Consulta al directorio fuera del bloqueo del ítem.
	shares, err := c.directory.SharesPurchasingGroup(ctx, in.FromSchoolID, in.ToSchoolID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "consultar directorio", Err: err}
	}
	if !shares {
		c.log.Info().
			Str("origen", in.FromSchoolID).
			Str("destino", in.ToSchoolID).
			Msg("traslado rechazado: destino fuera del grupo de compras")
		return nil, domain.ErrIneligibleDestination
	}

	unlock := c.balances.locks.Lock(itemLockKey(in.ContractItemID))
	defer unlock()

	item, err := c.balances.GetItem(ctx, in.ContractItemID)
	if err != nil {
		return nil, err
	}
	if item.SchoolID != in.FromSchoolID {
		return nil, domain.ErrForbidden
	}
	if err := c.balances.consumeLocked(ctx, item, in.Quantity); err != nil {
		if domain.IsRejection(err) {
			c.log.Info().Str("item", in.ContractItemID).Err(err).Msg("traslado rechazado")
		}
		return nil, err
	}

	record := &entity.TransferRecord{
		ID:             uuid.New().String(),
		ContractItemID: in.ContractItemID,
		FromSchoolID:   in.FromSchoolID,
		ToSchoolID:     in.ToSchoolID,
		Quantity:       in.Quantity,
		Justification:  justification,
		Actor:          in.Actor,
		CreatedAt:      c.now(),
	}
	if err := c.transfers.Append(ctx, record); err != nil {
		return nil, c.balances.compensate(ctx, item, record.Quantity, "registrar traslado", err)
	}

	c.log.Info().
		Str("traslado", record.ID).
		Str("item", record.ContractItemID).
		Str("origen", record.FromSchoolID).
		Str("destino", record.ToSchoolID).
		Str("cantidad", record.Quantity.String()).
		Str("saldo", item.AvailableBalance.String()).
		Msg("traslado registrado")
	return record, nil
}

// ListTransfers devuelve el historial de traslados de un ítem, en orden de registro.
func (c *TransferCoordinator) ListTransfers(ctx context.Context, contractItemID string) ([]*entity.TransferRecord, error) {
	if _, err := c.balances.GetItem(ctx, contractItemID); err != nil {
		return nil, err
	}
	list, err := c.transfers.ListByItem(ctx, contractItemID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar traslados", Err: err}
	}
	sortBySequence(list)
	return list, nil
}

// ListTransfersBySchool devuelve los traslados donde la escuela es origen o destino.
func (c *TransferCoordinator) ListTransfersBySchool(ctx context.Context, schoolID string) ([]*entity.TransferRecord, error) {
	list, err := c.transfers.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "listar traslados", Err: err}
	}
	sortBySequence(list)
	return list, nil
}

func sortBySequence(list []*entity.TransferRecord) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
}
