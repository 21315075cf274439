package printing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shipping"
	infra "github.com/wms/backend/internal/infrastructure/printing"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Document is a rendered printable file
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// IsPDF reports whether the document was rendered to PDF
func (d *Document) IsPDF() bool {
	return d.ContentType == ContentTypePDF
}

// DocumentService renders invoices and dispatch notes.
// Without a renderer it returns the HTML so the browser can print it.
type DocumentService struct {
	engine   *infra.TemplateEngine
	renderer infra.Renderer
	company  infra.Company
	logger   *zap.Logger
}

// NewDocumentService creates a new DocumentService; renderer may be nil
func NewDocumentService(engine *infra.TemplateEngine, renderer infra.Renderer, company infra.Company, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		engine:   engine,
		renderer: renderer,
		company:  company,
		logger:   logger,
	}
}

// PDFEnabled reports whether a PDF renderer is configured
func (s *DocumentService) PDFEnabled() bool {
	return s.renderer != nil
}

// Invoice renders an invoice with its customer
func (s *DocumentService) Invoice(ctx context.Context, inv *billing.Invoice, customer *billing.ContractCustomer) (*Document, error) {
	html, err := s.engine.RenderInvoice(infra.InvoiceDocument{
		Company:  s.company,
		Invoice:  inv,
		Customer: customer,
	})
	if err != nil {
		return nil, err
	}
	opts := infra.DefaultPageOptions()
	opts.Title = "Invoice " + inv.InvoiceNumber
	return s.render(ctx, html, inv.InvoiceNumber, opts)
}

// DispatchNote renders the loading sheet of a dispatch
func (s *DocumentService) DispatchNote(ctx context.Context, d *shipping.Dispatch, parcels []*shipping.Parcel) (*Document, error) {
	html, err := s.engine.RenderDispatchNote(infra.DispatchNoteDocument{
		Company:  s.company,
		Dispatch: d,
		Parcels:  parcels,
	})
	if err != nil {
		return nil, err
	}
	opts := infra.DefaultPageOptions()
	opts.Landscape = true
	opts.Title = "Dispatch " + d.DispatchCode
	return s.render(ctx, html, d.DispatchCode, opts)
}

func (s *DocumentService) render(ctx context.Context, html, name string, opts infra.PageOptions) (*Document, error) {
	if s.renderer == nil {
		return &Document{
			Filename:    name + ".html",
			ContentType: ContentTypeHTML,
			Content:     []byte(html),
		}, nil
	}
	pdf, err := s.renderer.RenderPDF(ctx, html, opts)
	if err != nil {
		s.logger.Error("PDF rendering failed", zap.String("document", name), zap.Error(err))
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return &Document{
		Filename:    name + ".pdf",
		ContentType: ContentTypePDF,
		Content:     pdf,
	}, nil
}
