// Package memory implementa los puertos de persistencia en memoria (tests y desarrollo local).
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

var (
	_ repository.InventoryMovementRepository = (*Store)(nil)
	_ repository.ContractRepository          = (*Store)(nil)
	_ repository.SchoolRepository            = (*Store)(nil)
)

// Store guarda todos los registros en mapas protegidos por un RWMutex.
// Sequence es un contador global compartido por líneas de factura, movimientos y traslados.
type Store struct {
	mu        sync.RWMutex
	seq       int64
	invoices  map[string]*entity.Invoice
	movements map[string][]*entity.InventoryMovement // por entity.ScopedKey
	contracts map[string]*entity.Contract
	items     map[string]*entity.ContractItem
	transfers []*entity.TransferRecord
	consumed  []*entity.ConsumptionRecord
	schools   map[string]*entity.School
}

// New construye un Store vacío.
func New() *Store {
	return &Store{
		invoices:  make(map[string]*entity.Invoice),
		movements: make(map[string][]*entity.InventoryMovement),
		contracts: make(map[string]*entity.Contract),
		items:     make(map[string]*entity.ContractItem),
		schools:   make(map[string]*entity.School),
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// SaveInvoice guarda la factura y asigna Sequence a sus líneas.
func (s *Store) SaveInvoice(_ context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[invoice.ID]; exists {
		return domain.ErrConflict
	}
	cp := *invoice
	cp.Items = make([]entity.InvoiceItem, len(invoice.Items))
	for i := range invoice.Items {
		invoice.Items[i].Sequence = s.nextSeq()
		cp.Items[i] = invoice.Items[i]
	}
	s.invoices[cp.ID] = &cp
	return nil
}

// listReceipts deriva las recepciones de facturas aprobadas y activas de la escuela.
func (s *Store) listReceipts(schoolID string, key entity.ProductKey) []entity.ReceiptEvent {
	var out []entity.ReceiptEvent
	for _, inv := range s.invoices {
		if inv.SchoolID != schoolID {
			continue
		}
		for _, r := range inv.Receipts() {
			if r.Key == key {
				out = append(out, r)
			}
		}
	}
	return out
}

// Append guarda un movimiento.
func (s *Store) Append(_ context.Context, movement *entity.InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	movement.Sequence = s.nextSeq()
	cp := *movement
	k := entity.ScopedKey(movement.SchoolID, movement.Key)
	s.movements[k] = append(s.movements[k], &cp)
	return nil
}

// ListByProduct devuelve copias de los movimientos del producto en la escuela, en orden de inserción.
func (s *Store) ListByProduct(_ context.Context, schoolID string, key entity.ProductKey) ([]*entity.InventoryMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.movements[entity.ScopedKey(schoolID, key)]
	out := make([]*entity.InventoryMovement, 0, len(src))
	for _, m := range src {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// Receipts expone las recepciones como ReceiptRepository (ver ReceiptStore).
func (s *Store) Receipts() *ReceiptStore { return &ReceiptStore{s: s} }

// ReceiptStore adapta Store a ReceiptRepository.
type ReceiptStore struct{ s *Store }

var _ repository.ReceiptRepository = (*ReceiptStore)(nil)

// SaveInvoice delega en Store.
func (r *ReceiptStore) SaveInvoice(ctx context.Context, invoice *entity.Invoice) error {
	return r.s.SaveInvoice(ctx, invoice)
}

// ListByProduct devuelve las recepciones del producto en la escuela.
func (r *ReceiptStore) ListByProduct(_ context.Context, schoolID string, key entity.ProductKey) ([]entity.ReceiptEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listReceipts(schoolID, key), nil
}

// CreateContract guarda el contrato y sus ítems de forma atómica.
func (s *Store) CreateContract(_ context.Context, c *entity.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contracts[c.ID]; exists {
		return domain.ErrConflict
	}
	for i := range c.Items {
		if _, exists := s.items[c.Items[i].ID]; exists {
			return domain.ErrConflict
		}
	}
	cp := *c
	cp.Items = nil
	s.contracts[c.ID] = &cp
	for i := range c.Items {
		it := c.Items[i]
		s.items[it.ID] = &it
	}
	return nil
}

// GetItem devuelve una copia del ítem o (nil, nil).
func (s *Store) GetItem(_ context.Context, id string) (*entity.ContractItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

// ListItemsBySchool lista ítems cuyo dueño es schoolID.
func (s *Store) ListItemsBySchool(_ context.Context, schoolID string) ([]*entity.ContractItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.ContractItem
	for _, it := range s.items {
		if it.SchoolID == schoolID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateItemBalance escribe el saldo si la versión coincide.
func (s *Store) UpdateItemBalance(_ context.Context, id string, newBalance decimal.Decimal, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Version != expectedVersion {
		return domain.ErrConflict
	}
	it.AvailableBalance = newBalance
	it.Version++
	return nil
}

// DeleteItem elimina el ítem.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Transfers expone el historial de traslados como TransferRepository.
func (s *Store) Transfers() *TransferStore { return &TransferStore{s: s} }

// TransferStore adapta Store a TransferRepository.
type TransferStore struct{ s *Store }

var _ repository.TransferRepository = (*TransferStore)(nil)

// Append guarda un registro de traslado.
func (t *TransferStore) Append(_ context.Context, record *entity.TransferRecord) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Sequence = t.s.nextSeq()
	cp := *record
	t.s.transfers = append(t.s.transfers, &cp)
	return nil
}

// ListByItem lista los traslados de un ítem.
func (t *TransferStore) ListByItem(_ context.Context, contractItemID string) ([]*entity.TransferRecord, error) {
	return t.filter(func(r *entity.TransferRecord) bool { return r.ContractItemID == contractItemID }), nil
}

// ListBySchool lista traslados donde la escuela es origen o destino.
func (t *TransferStore) ListBySchool(_ context.Context, schoolID string) ([]*entity.TransferRecord, error) {
	return t.filter(func(r *entity.TransferRecord) bool {
		return r.FromSchoolID == schoolID || r.ToSchoolID == schoolID
	}), nil
}

func (t *TransferStore) filter(keep func(*entity.TransferRecord) bool) []*entity.TransferRecord {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var out []*entity.TransferRecord
	for _, r := range t.s.transfers {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

// Consumptions expone el historial de consumos como ConsumptionRepository.
func (s *Store) Consumptions() *ConsumptionStore { return &ConsumptionStore{s: s} }

// ConsumptionStore adapta Store a ConsumptionRepository.
type ConsumptionStore struct{ s *Store }

var _ repository.ConsumptionRepository = (*ConsumptionStore)(nil)

// Append guarda un registro de consumo.
func (c *ConsumptionStore) Append(_ context.Context, record *entity.ConsumptionRecord) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.Sequence = c.s.nextSeq()
	cp := *record
	c.s.consumed = append(c.s.consumed, &cp)
	return nil
}

// ListByItem lista los consumos de un ítem en orden de registro.
func (c *ConsumptionStore) ListByItem(_ context.Context, contractItemID string) ([]*entity.ConsumptionRecord, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var out []*entity.ConsumptionRecord
	for _, r := range c.s.consumed {
		if r.ContractItemID == contractItemID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Save guarda o reemplaza una escuela.
func (s *Store) Save(_ context.Context, school *entity.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *school
	s.schools[school.ID] = &cp
	return nil
}

// GetByID devuelve la escuela o (nil, nil).
func (s *Store) GetByID(_ context.Context, id string) (*entity.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schools[id]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

// SharesPurchasingGroup indica si ambas escuelas existen y comparten un grupo no vacío.
func (s *Store) SharesPurchasingGroup(_ context.Context, schoolA, schoolB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, okA := s.schools[schoolA]
	b, okB := s.schools[schoolB]
	if !okA || !okB || a.PurchasingGroupID == "" {
		return false, nil
	}
	return a.PurchasingGroupID == b.PurchasingGroupID, nil
}

// ListGroupMembers devuelve las escuelas del grupo de schoolID (incluida ella).
func (s *Store) ListGroupMembers(_ context.Context, schoolID string) ([]*entity.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.schools[schoolID]
	if !ok {
		return nil, nil
	}
	if src.PurchasingGroupID == "" {
		cp := *src
		return []*entity.School{&cp}, nil
	}
	var out []*entity.School
	for _, sc := range s.schools {
		if sc.PurchasingGroupID == src.PurchasingGroupID {
			cp := *sc
			out = append(out, &cp)
		}
	}
	return out, nil
}
