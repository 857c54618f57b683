package contract

import (
	"github.com/jhoicas/gestion-escolar/internal/application/dto"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// ToItemResponse convierte un ítem al DTO de respuesta.
func ToItemResponse(i *entity.ContractItem) dto.ContractItemResponse {
	return dto.ContractItemResponse{
		ID:                 i.ID,
		ContractID:         i.ContractID,
		SchoolID:           i.SchoolID,
		Description:        i.Description,
		UnitMeasure:        i.UnitMeasure,
		UnitPrice:          i.UnitPrice,
		ContractedQuantity: i.ContractedQuantity,
		AvailableBalance:   i.AvailableBalance,
		Consumed:           i.Consumed(),
		AvailableValue:     i.AvailableValue(),
		ValidFrom:          i.ValidFrom,
		ValidUntil:         i.ValidUntil,
		State:              i.State(),
	}
}

// ToContractResponse convierte un contrato al DTO de respuesta.
func ToContractResponse(c *entity.Contract) *dto.ContractResponse {
	out := &dto.ContractResponse{
		ID:           c.ID,
		SchoolID:     c.SchoolID,
		SupplierName: c.SupplierName,
		Number:       c.Number,
		ValidFrom:    c.ValidFrom,
		ValidUntil:   c.ValidUntil,
		Items:        make([]dto.ContractItemResponse, 0, len(c.Items)),
	}
	for i := range c.Items {
		out.Items = append(out.Items, ToItemResponse(&c.Items[i]))
	}
	return out
}

// ToTransferResponse convierte un registro de traslado al DTO de respuesta.
func ToTransferResponse(r *entity.TransferRecord) dto.TransferResponse {
	return dto.TransferResponse{
		ID:             r.ID,
		ContractItemID: r.ContractItemID,
		FromSchoolID:   r.FromSchoolID,
		ToSchoolID:     r.ToSchoolID,
		Quantity:       r.Quantity,
		Justification:  r.Justification,
		Actor:          r.Actor,
		CreatedAt:      r.CreatedAt,
	}
}

// ToConsumptionResponse convierte un registro de consumo al DTO de respuesta.
func ToConsumptionResponse(r *entity.ConsumptionRecord) dto.ConsumptionResponse {
	return dto.ConsumptionResponse{
		ID:             r.ID,
		ContractItemID: r.ContractItemID,
		SchoolID:       r.SchoolID,
		Quantity:       r.Quantity,
		Reason:         r.Reason,
		Actor:          r.Actor,
		CreatedAt:      r.CreatedAt,
	}
}

// ToContractInput convierte el request HTTP en la entrada del caso de uso.
func ToContractInput(schoolID string, in dto.CreateContractRequest) ContractInput {
	out := ContractInput{
		SchoolID:     schoolID,
		SupplierName: in.SupplierName,
		Number:       in.Number,
		ValidFrom:    in.ValidFrom,
		ValidUntil:   in.ValidUntil,
		Items:        make([]ContractItemInput, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		out.Items = append(out.Items, ContractItemInput{
			Description:        it.Description,
			UnitMeasure:        it.UnitMeasure,
			UnitPrice:          it.UnitPrice,
			ContractedQuantity: it.ContractedQuantity,
		})
	}
	return out
}
