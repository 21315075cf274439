package printing

import (
	"context"
	"errors"
)

// PaperSize names a supported page format
type PaperSize string

const (
	PaperA4 PaperSize = "A4"
	PaperA5 PaperSize = "A5"
)

// dimensions returns width and height in millimetres
func (p PaperSize) dimensions() (float64, float64) {
	if p == PaperA5 {
		return 148, 210
	}
	return 210, 297
}

// PageOptions controls the printed page
type PageOptions struct {
	Paper     PaperSize
	Landscape bool
	MarginMM  float64
	Title     string
}

// DefaultPageOptions is A4 portrait with 12mm margins
func DefaultPageOptions() PageOptions {
	return PageOptions{Paper: PaperA4, MarginMM: 12}
}

// Renderer converts an HTML document to PDF bytes
type Renderer interface {
	RenderPDF(ctx context.Context, html string, opts PageOptions) ([]byte, error)
	Close() error
}

// RenderError wraps a rendering failure with a code for logs and metrics
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeTemplate      = "TEMPLATE_FAILED"
)

func newRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// IsTimeout reports whether err is a render timeout
func IsTimeout(err error) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Code == ErrCodeRenderTimeout
}
