package inventory

import (
	"context"

	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
func (l *StockLedger) RegisterMovementFromRequest(ctx context.Context, schoolID, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := MovementInput{
		SchoolID:    schoolID,
		UserID:      userID,
		Description: in.Description,
		UnitMeasure: in.UnitMeasure,
		Type:        in.Type,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Origin:      in.Origin,
		Destination: in.Destination,
		Reason:      in.Reason,
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	mov, err := l.RegisterMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ImportInvoiceFromRequest adapta el request HTTP al caso de uso ImportInvoice.
func (l *StockLedger) ImportInvoiceFromRequest(ctx context.Context, schoolID string, in dto.ImportInvoiceRequest) (string, error) {
	invoice := &entity.Invoice{
		SchoolID:     schoolID,
		SupplierName: in.SupplierName,
		Number:       in.Number,
		IssuedAt:     in.IssuedAt,
		Status:       in.Status,
		Active:       in.Active,
		Items:        make([]entity.InvoiceItem, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		invoice.Items = append(invoice.Items, entity.InvoiceItem{
			Description: it.Description,
			UnitMeasure: it.UnitMeasure,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	if err := l.ImportInvoice(ctx, invoice); err != nil {
		return "", err
	}
	return invoice.ID, nil
}

// ToMovementResponse convierte la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID,
		Description: m.Key.Description,
		UnitMeasure: m.Key.UnitMeasure,
		Type:        m.Type,
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		OccurredAt:  m.OccurredAt,
		Origin:      m.Origin,
		Destination: m.Destination,
		Reason:      m.Reason,
		CreatedBy:   m.CreatedBy,
	}
}

// ToSnapshotResponse convierte el snapshot al DTO de respuesta.
func ToSnapshotResponse(s *entity.StockSnapshot) *dto.StockSnapshotResponse {
	return &dto.StockSnapshotResponse{
		SchoolID:     s.SchoolID,
		Description:  s.Key.Description,
		UnitMeasure:  s.Key.UnitMeasure,
		Quantity:     s.Quantity,
		AverageCost:  s.AverageCost,
		TotalValue:   s.TotalValue,
		TotalEntered: s.TotalEntered,
		TotalExited:  s.TotalExited,
		EventCount:   s.EventCount,
	}
}
