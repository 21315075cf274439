package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/config"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpRenderer prints HTML through a shared headless Chrome process.
// Each render gets its own tab; the browser starts lazily on first use.
type ChromedpRenderer struct {
	timeout time.Duration
	logger  *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	once          sync.Once
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpRenderer prepares the allocator. Chrome itself is launched on
// the first RenderPDF call.
func NewChromedpRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.NoSandbox,
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromedpRenderer{
		timeout:     timeout,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

func (r *ChromedpRenderer) browser() context.Context {
	r.once.Do(func() {
		r.browserCtx, r.browserCancel = chromedp.NewContext(r.allocCtx,
			chromedp.WithLogf(func(format string, args ...any) {
				r.logger.Debug(fmt.Sprintf(format, args...))
			}),
		)
	})
	return r.browserCtx
}

// RenderPDF loads html into a blank tab and prints it
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, doc string, opts PageOptions) ([]byte, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, newRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	started := time.Now()

	tabCtx, tabCancel := chromedp.NewContext(r.browser())
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, r.timeout)
	defer cancel()
	// propagate caller cancellation to the tab
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	params := printParams(opts)
	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, wrapDocument(doc, opts.Title)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(tabCtx.Err(), context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, newRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering stopped after %v", time.Since(started).Round(time.Millisecond)), err)
		}
		return nil, newRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, newRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	r.logger.Debug("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(started)))
	return pdf, nil
}

func printParams(opts PageOptions) *page.PrintToPDFParams {
	w, h := opts.Paper.dimensions()
	margin := mmToInches(opts.MarginMM)
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(w)).
		WithPaperHeight(mmToInches(h)).
		WithMarginTop(margin).
		WithMarginRight(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithLandscape(opts.Landscape).
		WithPreferCSSPageSize(false)
}

// wrapDocument completes an HTML fragment into a full document
func wrapDocument(doc, title string) string {
	lower := strings.ToLower(doc)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return doc
	}
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if title != "" {
		b.WriteString("<title>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(doc)
	b.WriteString("</body></html>")
	return b.String()
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	r.allocCancel()
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ Renderer = (*ChromedpRenderer)(nil)
