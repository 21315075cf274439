package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shipping"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	invoiceTemplate      = "invoice.html"
	dispatchNoteTemplate = "dispatch_note.html"
)

// Company is printed in document headers
type Company struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// InvoiceDocument is the data bound to invoice.html
type InvoiceDocument struct {
	Company  Company
	Invoice  *billing.Invoice
	Customer *billing.ContractCustomer
}

// DispatchNoteDocument is the data bound to dispatch_note.html
type DispatchNoteDocument struct {
	Company  Company
	Dispatch *shipping.Dispatch
	Parcels  []*shipping.Parcel
}

// TemplateEngine renders the embedded document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the embedded templates once
func NewTemplateEngine() (*TemplateEngine, error) {
	t, err := template.New("documents").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse print templates: %w", err)
	}
	return &TemplateEngine{templates: t}, nil
}

func (e *TemplateEngine) RenderInvoice(doc InvoiceDocument) (string, error) {
	if doc.Invoice == nil || doc.Customer == nil {
		return "", newRenderError(ErrCodeTemplate, "invoice and customer are required", nil)
	}
	return e.execute(invoiceTemplate, doc)
}

func (e *TemplateEngine) RenderDispatchNote(doc DispatchNoteDocument) (string, error) {
	if doc.Dispatch == nil {
		return "", newRenderError(ErrCodeTemplate, "dispatch is required", nil)
	}
	return e.execute(dispatchNoteTemplate, doc)
}

func (e *TemplateEngine) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", newRenderError(ErrCodeTemplate, "failed to render "+name, err)
	}
	return buf.String(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"date":     formatDate,
		"datetime": formatDateTime,
		"title":    titleCase,
		"add":      func(a, b int) int { return a + b },
		"upper":    strings.ToUpper,
	}
}

// formatMoney prints two decimals with thousands separators, e.g. 12,500.00
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// formatDate accepts time.Time or *time.Time; nil and zero print as empty
func formatDate(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func formatDateTime(v any) string {
	t, ok := asTime(v)
	if !ok {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
