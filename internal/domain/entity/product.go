package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo remoto.
// VATRate es el porcentaje de IVA como texto ("0", "5.5", "10", "20").
type Product struct {
	ID                  int64
	Label               string
	VATRate             string
	Unit                string
	UnitPrice           decimal.Decimal // precio con impuestos
	UnitPriceWithoutTax decimal.Decimal
	UnitTax             decimal.Decimal
}
