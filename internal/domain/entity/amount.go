package entity

import "github.com/shopspring/decimal"

// AmountPlaces decimales que admiten cantidades, precios y costos (columnas NUMERIC(20,6)).
const AmountPlaces = 6

var amountLimit = decimal.New(1, 20-AmountPlaces)

// FitsAmount indica si d se guarda sin redondeo: a lo sumo AmountPlaces decimales y
// menos de 10^14 en valor absoluto.
func FitsAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountPlaces)) && d.Abs().LessThan(amountLimit)
}
