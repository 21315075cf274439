package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var receiptExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ReceiptKey is receipts/{yyyy}/{mm}/{expenseID}{ext}, dated by the expense date
func ReceiptKey(expenseID uuid.UUID, date time.Time, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	d := date.UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%s%s", d.Year(), int(d.Month()), expenseID, ext)
}

// ReceiptExtension picks the file extension for an upload, preferring the
// content type over the client-supplied filename.
func ReceiptExtension(contentType, filename string) (string, bool) {
	if ext, ok := receiptExtensions[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return ext, true
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for _, allowed := range receiptExtensions {
		if ext == allowed {
			return ext, true
		}
	}
	return "", false
}

// InvoiceKey is invoices/{invoiceNumber}.pdf
func InvoiceKey(invoiceNumber string) string {
	return "invoices/" + invoiceNumber + ".pdf"
}
