package inventory

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/jhoicas/gestion-escolar/internal/domain/entity"
)

// SnapshotCache guarda el último StockSnapshot plegado por (escuela, producto).
// El plegado sigue siendo la fuente de verdad: toda inserción invalida la entrada de su clave.
type SnapshotCache struct {
	lru *lru.Cache
}

// NewSnapshotCache construye la caché; size <= 0 devuelve nil (sin caché).
func NewSnapshotCache(size int) (*SnapshotCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &SnapshotCache{lru: c}, nil
}

// Get devuelve una copia del snapshot cacheado.
func (c *SnapshotCache) Get(schoolID string, key entity.ProductKey) (*entity.StockSnapshot, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(entity.ScopedKey(schoolID, key))
	if !ok {
		return nil, false
	}
	snap := *(v.(*entity.StockSnapshot))
	return &snap, true
}

// Put guarda una copia del snapshot.
func (c *SnapshotCache) Put(snap *entity.StockSnapshot) {
	if c == nil {
		return
	}
	cp := *snap
	c.lru.Add(entity.ScopedKey(snap.SchoolID, snap.Key), &cp)
}

// Invalidate descarta el snapshot del producto en la escuela.
func (c *SnapshotCache) Invalidate(schoolID string, key entity.ProductKey) {
	if c == nil {
		return
	}
	c.lru.Remove(entity.ScopedKey(schoolID, key))
}
