package entity

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ProductKey identifica "el mismo producto" entre facturas y movimientos: par (descripción, unidad).
// No es una entidad almacenada; solo agrupa eventos para el cálculo de stock.
type ProductKey struct {
	Description string
	UnitMeasure string
}

var folder = cases.Fold()

// NewProductKey construye la clave normalizada: NFC, espacios colapsados y sin distinción de mayúsculas.
func NewProductKey(description, unitMeasure string) ProductKey {
	return ProductKey{
		Description: normalizeKeyPart(description),
		UnitMeasure: normalizeKeyPart(unitMeasure),
	}
}

func normalizeKeyPart(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return folder.String(s)
}

// IsZero indica si la clave no tiene descripción o unidad.
func (k ProductKey) IsZero() bool {
	return k.Description == "" || k.UnitMeasure == ""
}

// String devuelve la forma usada como llave de almacenamiento. La descripción lleva su largo
// en bytes como prefijo, así ningún carácter de las partes puede mover el separador.
func (k ProductKey) String() string {
	return strconv.Itoa(len(k.Description)) + ":" + k.Description + "|" + k.UnitMeasure
}

// Label devuelve la forma legible "descripción (unidad)".
func (k ProductKey) Label() string {
	return k.Description + " (" + k.UnitMeasure + ")"
}

// ScopedKey identifica el producto dentro del inventario de una escuela (bloqueo, caché, índices).
func ScopedKey(schoolID string, key ProductKey) string {
	return strconv.Itoa(len(schoolID)) + ":" + schoolID + "/" + key.String()
}
