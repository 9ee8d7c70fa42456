// Package billing contiene la lógica de dominio de facturación: reconciliación
// de líneas al guardar una factura editada, cálculos derivados (totales,
// impuestos, vencimiento) y las operaciones del formulario de edición.
// Todas las funciones son puras: no hacen I/O ni guardan estado.
package billing

import "github.com/jhoicas/invoice-gateway/internal/domain/entity"

// ReconcileLines calcula las instrucciones de invoice_lines_attributes para
// llevar las líneas persistidas (existing) al estado editado (edited).
//
// Cada línea editada se empareja con la PRIMERA línea existente aún libre que
// tenga el mismo product_id; el emparejamiento consume la línea existente.
//   - Con pareja: {id: existente.id, quantity: editada.quantity} (si la cantidad
//     editada no es > 0 se conserva la persistida).
//   - Sin pareja: alta con todos los campos de la línea editada y sin id.
//   - Las existentes que no se emparejaron: {id, _destroy: true}.
//
// Orden de salida: actualizaciones/altas en el orden de edited, seguidas de
// las marcas de borrado en el orden original de existing.
func ReconcileLines(existing, edited []entity.InvoiceLine) []entity.LinePatch {
	// product_id -> índices de existing aún sin emparejar, en orden.
	free := make(map[int64][]int, len(existing))
	for i, line := range existing {
		free[line.ProductID] = append(free[line.ProductID], i)
	}
	matched := make([]bool, len(existing))

	out := make([]entity.LinePatch, 0, len(edited)+len(existing))
	for _, line := range edited {
		idx, ok := takeFirst(free, line.ProductID)
		if !ok {
			out = append(out, entity.NewInsertPatch(line))
			continue
		}
		matched[idx] = true
		prev := existing[idx]
		qty := line.Quantity
		if qty <= 0 {
			qty = prev.Quantity
		}
		out = append(out, entity.NewUpdatePatch(prev.ID, qty))
	}

	for i, line := range existing {
		if !matched[i] {
			out = append(out, entity.NewDestroyPatch(line.ID))
		}
	}
	return out
}

// takeFirst extrae el primer índice libre para productID.
// Una línea sin producto nunca empareja.
func takeFirst(free map[int64][]int, productID int64) (int, bool) {
	if productID == 0 {
		return 0, false
	}
	queue := free[productID]
	if len(queue) == 0 {
		return 0, false
	}
	free[productID] = queue[1:]
	return queue[0], true
}
