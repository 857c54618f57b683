package entity

import "time"

// School representa una unidad escolar; las escuelas de un mismo grupo de compras pueden trasladarse saldos.
type School struct {
	ID                string
	Name              string
	PurchasingGroupID string // vacío = sin grupo
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
