// Package printing renders invoices and dispatch notes.
//
// TemplateEngine fills the embedded HTML templates; ChromedpRenderer turns
// the HTML into a PDF with headless Chrome's page.PrintToPDF.
package printing
