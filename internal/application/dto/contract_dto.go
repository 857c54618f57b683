package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractItemRequest línea de un contrato nuevo.
type ContractItemRequest struct {
	Description        string          `json:"description"`
	UnitMeasure        string          `json:"unit_measure"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	ContractedQuantity decimal.Decimal `json:"contracted_quantity"`
}

// CreateContractRequest body para POST /api/contracts.
type CreateContractRequest struct {
	SupplierName string                `json:"supplier_name"`
	Number       string                `json:"number"`
	ValidFrom    time.Time             `json:"valid_from"`
	ValidUntil   time.Time             `json:"valid_until"`
	Items        []ContractItemRequest `json:"items"`
}

// ContractItemResponse estado de un ítem de contrato.
type ContractItemResponse struct {
	ID                 string          `json:"id"`
	ContractID         string          `json:"contract_id"`
	SchoolID           string          `json:"school_id"`
	Description        string          `json:"description"`
	UnitMeasure        string          `json:"unit_measure"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	ContractedQuantity decimal.Decimal `json:"contracted_quantity"`
	AvailableBalance   decimal.Decimal `json:"available_balance"`
	Consumed           decimal.Decimal `json:"consumed"`
	AvailableValue     decimal.Decimal `json:"available_value"`
	ValidFrom          time.Time       `json:"valid_from"`
	ValidUntil         time.Time       `json:"valid_until"`
	State              string          `json:"state"`
}

// ContractResponse contrato creado con sus ítems.
type ContractResponse struct {
	ID           string                 `json:"id"`
	SchoolID     string                 `json:"school_id"`
	SupplierName string                 `json:"supplier_name"`
	Number       string                 `json:"number"`
	ValidFrom    time.Time              `json:"valid_from"`
	ValidUntil   time.Time              `json:"valid_until"`
	Items        []ContractItemResponse `json:"items"`
}

// ConsumeRequest body para POST /api/contracts/items/:id/consume.
type ConsumeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// ConsumptionResponse registro de un consumo directo.
type ConsumptionResponse struct {
	ID             string          `json:"id"`
	ContractItemID string          `json:"contract_item_id"`
	SchoolID       string          `json:"school_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason"`
	Actor          string          `json:"actor"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ConsumeResponse consumo registrado y saldo resultante del ítem.
type ConsumeResponse struct {
	Consumption ConsumptionResponse  `json:"consumption"`
	Item        ContractItemResponse `json:"item"`
}

// TransferRequest body para POST /api/contracts/items/:id/transfers.
type TransferRequest struct {
	ToSchoolID    string          `json:"to_school_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Justification string          `json:"justification"`
}

// TransferResponse registro de traslado.
type TransferResponse struct {
	ID             string          `json:"id"`
	ContractItemID string          `json:"contract_item_id"`
	FromSchoolID   string          `json:"from_school_id"`
	ToSchoolID     string          `json:"to_school_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Justification  string          `json:"justification"`
	Actor          string          `json:"actor"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RegisterSchoolRequest body para PUT /api/schools/:id.
type RegisterSchoolRequest struct {
	Name              string `json:"name"`
	PurchasingGroupID string `json:"purchasing_group_id,omitempty"`
}

// SchoolResponse escuela del directorio.
type SchoolResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PurchasingGroupID string `json:"purchasing_group_id,omitempty"`
}
