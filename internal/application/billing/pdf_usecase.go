package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/invoice-gateway/internal/domain"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
type PDFUseCase struct {
	api       InvoiceAPI
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(api InvoiceAPI, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{api: api, generator: generator}
}

// DownloadInvoicePDF lee la factura de la API (sin caché) y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrInvalidInput     si el id no es válido.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID int64) (pdfBytes []byte, filename string, err error) {
	if invoiceID <= 0 {
		return nil, "", fmt.Errorf("%w: id de factura inválido", domain.ErrInvalidInput)
	}

	inv, err := uc.api.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("invoice_%d.pdf", inv.ID)
	return pdfBytes, filename, nil
}
