package entity

import "github.com/shopspring/decimal"

// PatchKind tipo de instrucción sobre una línea en invoice_lines_attributes.
type PatchKind int

const (
	PatchUpdate PatchKind = iota + 1
	PatchInsert
	PatchDestroy
)

// String devuelve el nombre de la instrucción (útil en logs y en la CLI).
func (k PatchKind) String() string {
	switch k {
	case PatchUpdate:
		return "update"
	case PatchInsert:
		return "insert"
	case PatchDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// LinePatch una entrada de invoice_lines_attributes.
//
//   - PatchUpdate:  {id, quantity}
//   - PatchInsert:  todos los campos de la línea, sin id
//   - PatchDestroy: {id, _destroy: true}
type LinePatch struct {
	Kind      PatchKind
	ID        int64
	ProductID int64
	Label     string
	Quantity  int
	Unit      string
	VATRate   string
	Price     decimal.Decimal
	Tax       decimal.Decimal
}

// NewUpdatePatch instrucción de actualización de cantidad de una línea existente.
func NewUpdatePatch(id int64, quantity int) LinePatch {
	return LinePatch{Kind: PatchUpdate, ID: id, Quantity: quantity}
}

// NewInsertPatch instrucción de alta a partir de una línea editada.
func NewInsertPatch(line InvoiceLine) LinePatch {
	return LinePatch{
		Kind:      PatchInsert,
		ProductID: line.ProductID,
		Label:     line.Label,
		Quantity:  line.Quantity,
		Unit:      line.Unit,
		VATRate:   line.VATRate,
		Price:     line.Price,
		Tax:       line.Tax,
	}
}

// NewDestroyPatch marca de borrado de una línea existente.
func NewDestroyPatch(id int64) LinePatch {
	return LinePatch{Kind: PatchDestroy, ID: id}
}
