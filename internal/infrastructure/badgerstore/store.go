// Package badgerstore persiste el libro escolar en un BadgerDB embebido (despliegues de una sola escuela).
package badgerstore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gestion-escolar/internal/domain"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
	"github.com/jhoicas/gestion-escolar/internal/domain/repository"
)

// Prefijos de llave. La pareja (escuela, producto) se codifica en hex para que ningún carácter
// de la descripción choque con el separador.
const (
	pInvoice    = "invoice/"
	pReceipt    = "receipt/"
	pMovement   = "movement/"
	pContract   = "contract/"
	pItem       = "item/"
	pSchoolItem = "school-item/"
	pTransfer   = "transfer/"
	pXferItem   = "transfer-item/"
	pXferSchool = "transfer-school/"
	pConsume    = "consumption/"
	pSchool     = "school/"
	seqKey      = "seq/ledger"
)

var (
	_ repository.InventoryMovementRepository = (*Store)(nil)
	_ repository.ContractRepository          = (*Store)(nil)
	_ repository.SchoolRepository            = (*Store)(nil)
	_ repository.ReceiptRepository           = (*ReceiptStore)(nil)
	_ repository.TransferRepository          = (*TransferStore)(nil)
	_ repository.ConsumptionRepository       = (*ConsumptionStore)(nil)
)

// Store implementa los puertos de persistencia sobre BadgerDB.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open abre (o crea) la base en path. path vacío abre una base en memoria.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("abrir badger: %w", err)
	}
	seq, err := db.GetSequence([]byte(seqKey), 100)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("secuencia badger: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// Close libera la secuencia y cierra la base.
func (s *Store) Close() error {
	relErr := s.seq.Release()
	return errors.Join(relErr, s.db.Close())
}

func (s *Store) nextSeq() (int64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("siguiente secuencia: %w", err)
	}
	return int64(n) + 1, nil
}

func productPrefix(prefix, schoolID string, key entity.ProductKey) string {
	return prefix + hex.EncodeToString([]byte(entity.ScopedKey(schoolID, key))) + "/"
}

func seqSuffix(seq int64) string { return fmt.Sprintf("%020d", seq) }

func putJSON(txn *badger.Txn, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), raw)
}

// getJSON devuelve false si la llave no existe.
func getJSON(txn *badger.Txn, key string, v any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error { return json.Unmarshal(val, v) })
}

// scanPrefix recorre las llaves bajo prefix en orden y entrega cada valor a fn.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func mapTxnErr(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrConflict
	}
	return err
}

// ── movimientos ────────────────────────────────────────────────────────────

// Append guarda el movimiento bajo su producto, ordenado por secuencia.
func (s *Store) Append(_ context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	seq, err := s.nextSeq()
	if err != nil {
		return err
	}
	m.Sequence = seq
	return mapTxnErr(s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, productPrefix(pMovement, m.SchoolID, m.Key)+seqSuffix(seq), m)
	}))
}

// ListByProduct lista los movimientos del producto en la escuela, en orden de secuencia.
func (s *Store) ListByProduct(_ context.Context, schoolID string, key entity.ProductKey) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, productPrefix(pMovement, schoolID, key), func(val []byte) error {
			var m entity.InventoryMovement
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			list = append(list, &m)
			return nil
		})
	})
	return list, err
}

// ── facturas y recepciones ─────────────────────────────────────────────────

// Receipts expone las recepciones como ReceiptRepository.
func (s *Store) Receipts() *ReceiptStore { return &ReceiptStore{s: s} }

// ReceiptStore adapta Store a ReceiptRepository.
type ReceiptStore struct{ s *Store }

// SaveInvoice guarda la factura y, si genera recepciones, las indexa por producto.
func (r *ReceiptStore) SaveInvoice(_ context.Context, inv *entity.Invoice) error {
	for i := range inv.Items {
		seq, err := r.s.nextSeq()
		if err != nil {
			return err
		}
		inv.Items[i].Sequence = seq
	}
	return mapTxnErr(r.s.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, pInvoice+inv.ID)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrConflict
		}
		if err := putJSON(txn, pInvoice+inv.ID, inv); err != nil {
			return err
		}
		for _, ev := range inv.Receipts() {
			if err := putJSON(txn, productPrefix(pReceipt, ev.SchoolID, ev.Key)+seqSuffix(ev.Sequence), ev); err != nil {
				return err
			}
		}
		return nil
	}))
}

// ListByProduct devuelve las recepciones del producto en la escuela.
func (r *ReceiptStore) ListByProduct(_ context.Context, schoolID string, key entity.ProductKey) ([]entity.ReceiptEvent, error) {
	var list []entity.ReceiptEvent
	err := r.s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, productPrefix(pReceipt, schoolID, key), func(val []byte) error {
			var ev entity.ReceiptEvent
			if err := json.Unmarshal(val, &ev); err != nil {
				return err
			}
			list = append(list, ev)
			return nil
		})
	})
	return list, err
}

// ── contratos ──────────────────────────────────────────────────────────────

// CreateContract guarda contrato e ítems en una sola transacción.
func (s *Store) CreateContract(_ context.Context, c *entity.Contract) error {
	return mapTxnErr(s.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, pContract+c.ID)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrConflict
		}
		header := *c
		header.Items = nil
		if err := putJSON(txn, pContract+c.ID, &header); err != nil {
			return err
		}
		for i := range c.Items {
			it := &c.Items[i]
			if found, err := exists(txn, pItem+it.ID); err != nil || found {
				if err == nil {
					err = domain.ErrConflict
				}
				return err
			}
			if err := putJSON(txn, pItem+it.ID, it); err != nil {
				return err
			}
			if err := txn.Set([]byte(pSchoolItem+it.SchoolID+"/"+it.ID), nil); err != nil {
				return err
			}
		}
		return nil
	}))
}

// GetItem devuelve el ítem o (nil, nil).
func (s *Store) GetItem(_ context.Context, id string) (*entity.ContractItem, error) {
	var it entity.ContractItem
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, pItem+id, &it)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &it, nil
}

// ListItemsBySchool lista los ítems de la escuela vía el índice school-item/.
func (s *Store) ListItemsBySchool(_ context.Context, schoolID string) ([]*entity.ContractItem, error) {
	var list []*entity.ContractItem
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(pSchoolItem + schoolID + "/")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			var item entity.ContractItem
			found, err := getJSON(txn, pItem+id, &item)
			if err != nil {
				return err
			}
			if found {
				list = append(list, &item)
			}
		}
		return nil
	})
	return list, err
}

// UpdateItemBalance hace compare-and-swap sobre Version dentro de una transacción.
func (s *Store) UpdateItemBalance(_ context.Context, id string, newBalance decimal.Decimal, expectedVersion int64) error {
	return mapTxnErr(s.db.Update(func(txn *badger.Txn) error {
		var it entity.ContractItem
		found, err := getJSON(txn, pItem+id, &it)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}
		if it.Version != expectedVersion {
			return domain.ErrConflict
		}
		it.AvailableBalance = newBalance
		it.Version++
		return putJSON(txn, pItem+id, &it)
	}))
}

// DeleteItem elimina el ítem y su entrada de índice.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	return mapTxnErr(s.db.Update(func(txn *badger.Txn) error {
		var it entity.ContractItem
		found, err := getJSON(txn, pItem+id, &it)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}
		if err := txn.Delete([]byte(pItem + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(pSchoolItem + it.SchoolID + "/" + id))
	}))
}

// ── traslados ──────────────────────────────────────────────────────────────

// Transfers expone el historial de traslados como TransferRepository.
func (s *Store) Transfers() *TransferStore { return &TransferStore{s: s} }

// TransferStore adapta Store a TransferRepository.
type TransferStore struct{ s *Store }

// Append guarda el registro y sus índices por ítem y por escuela.
func (t *TransferStore) Append(_ context.Context, rec *entity.TransferRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	seq, err := t.s.nextSeq()
	if err != nil {
		return err
	}
	rec.Sequence = seq
	suffix := seqSuffix(seq)
	return mapTxnErr(t.s.db.Update(func(txn *badger.Txn) error {
		if err := putJSON(txn, pTransfer+suffix, rec); err != nil {
			return err
		}
		idx := []string{
			pXferItem + rec.ContractItemID + "/" + suffix,
			pXferSchool + rec.FromSchoolID + "/" + suffix,
			pXferSchool + rec.ToSchoolID + "/" + suffix,
		}
		for _, k := range idx {
			if err := txn.Set([]byte(k), []byte(suffix)); err != nil {
				return err
			}
		}
		return nil
	}))
}

// ListByItem lista los traslados de un ítem.
func (t *TransferStore) ListByItem(_ context.Context, contractItemID string) ([]*entity.TransferRecord, error) {
	return t.listIndex(pXferItem + contractItemID + "/")
}

// ListBySchool lista traslados donde la escuela es origen o destino.
func (t *TransferStore) ListBySchool(_ context.Context, schoolID string) ([]*entity.TransferRecord, error) {
	return t.listIndex(pXferSchool + schoolID + "/")
}

func (t *TransferStore) listIndex(prefix string) ([]*entity.TransferRecord, error) {
	var list []*entity.TransferRecord
	err := t.s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, prefix, func(suffix []byte) error {
			var rec entity.TransferRecord
			found, err := getJSON(txn, pTransfer+string(suffix), &rec)
			if err != nil || !found {
				return err
			}
			list = append(list, &rec)
			return nil
		})
	})
	return list, err
}

// ── consumos ───────────────────────────────────────────────────────────────

// Consumptions expone el historial de consumos como ConsumptionRepository.
func (s *Store) Consumptions() *ConsumptionStore { return &ConsumptionStore{s: s} }

// ConsumptionStore adapta Store a ConsumptionRepository.
type ConsumptionStore struct{ s *Store }

// Append guarda el registro bajo su ítem, ordenado por secuencia.
func (c *ConsumptionStore) Append(_ context.Context, rec *entity.ConsumptionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	seq, err := c.s.nextSeq()
	if err != nil {
		return err
	}
	rec.Sequence = seq
	return mapTxnErr(c.s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, pConsume+hex.EncodeToString([]byte(rec.ContractItemID))+"/"+seqSuffix(seq), rec)
	}))
}

// ListByItem lista los consumos del ítem en orden de secuencia.
func (c *ConsumptionStore) ListByItem(_ context.Context, contractItemID string) ([]*entity.ConsumptionRecord, error) {
	var list []*entity.ConsumptionRecord
	err := c.s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, pConsume+hex.EncodeToString([]byte(contractItemID))+"/", func(val []byte) error {
			var rec entity.ConsumptionRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			list = append(list, &rec)
			return nil
		})
	})
	return list, err
}

// ── escuelas ───────────────────────────────────────────────────────────────

// Save guarda o reemplaza la escuela.
func (s *Store) Save(_ context.Context, school *entity.School) error {
	return mapTxnErr(s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, pSchool+school.ID, school)
	}))
}

// GetByID devuelve la escuela o (nil, nil).
func (s *Store) GetByID(_ context.Context, id string) (*entity.School, error) {
	var sc entity.School
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, pSchool+id, &sc)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &sc, nil
}

// SharesPurchasingGroup indica si ambas escuelas existen y comparten grupo.
func (s *Store) SharesPurchasingGroup(ctx context.Context, schoolA, schoolB string) (bool, error) {
	a, err := s.GetByID(ctx, schoolA)
	if err != nil || a == nil || a.PurchasingGroupID == "" {
		return false, err
	}
	b, err := s.GetByID(ctx, schoolB)
	if err != nil || b == nil {
		return false, err
	}
	return a.PurchasingGroupID == b.PurchasingGroupID, nil
}

// ListGroupMembers devuelve las escuelas del grupo de schoolID, incluida ella.
func (s *Store) ListGroupMembers(ctx context.Context, schoolID string) ([]*entity.School, error) {
	self, err := s.GetByID(ctx, schoolID)
	if err != nil || self == nil {
		return nil, err
	}
	if self.PurchasingGroupID == "" {
		return []*entity.School{self}, nil
	}
	var list []*entity.School
	err = s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, pSchool, func(val []byte) error {
			var sc entity.School
			if err := json.Unmarshal(val, &sc); err != nil {
				return err
			}
			if sc.PurchasingGroupID == self.PurchasingGroupID {
				list = append(list, &sc)
			}
			return nil
		})
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}
