package billing

import (
	"fmt"

	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// Operaciones del formulario de edición de líneas. Ninguna modifica el slice
// recibido: el llamador es dueño del estado editado y recibe uno nuevo.

// EditableLines construye el conjunto editable inicial a partir de las líneas
// persistidas: mismos campos, sin identidad.
func EditableLines(existing []entity.InvoiceLine) []entity.InvoiceLine {
	out := make([]entity.InvoiceLine, len(existing))
	for i, l := range existing {
		l.ID = 0
		l.InvoiceID = 0
		out[i] = l
	}
	return out
}

// LineFromProduct crea una línea nueva a partir de un producto del catálogo.
func LineFromProduct(p entity.Product, quantity int) entity.InvoiceLine {
	if quantity <= 0 {
		quantity = 1
	}
	return entity.InvoiceLine{
		ProductID: p.ID,
		Label:     p.Label,
		Quantity:  quantity,
		Unit:      p.Unit,
		VATRate:   p.VATRate,
		Price:     p.UnitPrice,
		Tax:       p.UnitTax,
	}
}

// AddLine añade una línea. Si ya hay una con el mismo producto se suman las
// cantidades (una cantidad sin informar cuenta como 1).
func AddLine(lines []entity.InvoiceLine, line entity.InvoiceLine) ([]entity.InvoiceLine, error) {
	if line.Label == "" || line.ProductID == 0 {
		return nil, fmt.Errorf("%w: seleccione un producto antes de añadir", domain.ErrInvalidInput)
	}
	if line.Quantity < 0 {
		return nil, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	out := make([]entity.InvoiceLine, len(lines), len(lines)+1)
	copy(out, lines)
	for i := range out {
		if out[i].ProductID == line.ProductID {
			out[i].Quantity = orOne(out[i].Quantity) + orOne(line.Quantity)
			return out, nil
		}
	}
	line.ID = 0
	line.Quantity = orOne(line.Quantity)
	return append(out, line), nil
}

// RemoveLineAt quita la línea en la posición index.
func RemoveLineAt(lines []entity.InvoiceLine, index int) ([]entity.InvoiceLine, error) {
	if index < 0 || index >= len(lines) {
		return nil, fmt.Errorf("%w: posición %d fuera de rango", domain.ErrInvalidInput, index)
	}
	out := make([]entity.InvoiceLine, 0, len(lines)-1)
	out = append(out, lines[:index]...)
	return append(out, lines[index+1:]...), nil
}

// RemoveProduct quita todas las líneas del producto indicado.
func RemoveProduct(lines []entity.InvoiceLine, productID int64) ([]entity.InvoiceLine, error) {
	out := make([]entity.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	if len(out) == len(lines) {
		return nil, fmt.Errorf("%w: no hay líneas del producto %d", domain.ErrNotFound, productID)
	}
	return out, nil
}

// SetLineQuantity fija la cantidad de la primera línea del producto.
func SetLineQuantity(lines []entity.InvoiceLine, productID int64, quantity int) ([]entity.InvoiceLine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	out := make([]entity.InvoiceLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: no hay líneas del producto %d", domain.ErrNotFound, productID)
}

func orOne(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
