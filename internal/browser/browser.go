package browser

import (
	"context"
	"errors"

	"github.com/nao1215/a11yscan/internal/model"
)

// Launcher starts browser processes.
type Launcher interface {
	// Launch starts a new browser process. The caller must Close it.
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser process.
type Browser interface {
	// NewPage opens an isolated execution context with the given viewport.
	// The caller must Close the page.
	NewPage(ctx context.Context, viewport model.Viewport) (Page, error)

	// Close terminates the browser process. It is safe to call more than once.
	Close() error
}

// Page is one isolated execution context holding a single document.
type Page interface {
	// Navigate loads url and waits until the network is idle.
	Navigate(ctx context.Context, url string) error

	// SetContent replaces the document with html and waits until the network is idle.
	SetContent(ctx context.Context, html string) error

	// Evaluate runs a JavaScript expression, awaiting a returned promise,
	// and returns the JSON encoding of its result.
	Evaluate(ctx context.Context, expression string) ([]byte, error)

	// Close destroys the execution context. It is safe to call more than once.
	Close() error
}

// WithBrowser launches a browser, passes it to fn and closes it afterwards.
// The browser is closed even if fn panics. Launch and close failures are
// reported as *model.BrowserError; a close failure is joined with fn's error.
func WithBrowser(ctx context.Context, launcher Launcher, fn func(Browser) error) (err error) {
	b, err := launcher.Launch(ctx)
	if err != nil {
		return asBrowserError("launch", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			err = errors.Join(err, &model.BrowserError{Op: "close", Err: cerr})
		}
	}()
	return fn(b)
}

// WithPage opens a page in b, passes it to fn and closes it afterwards.
// The page is closed even if fn panics.
func WithPage(ctx context.Context, b Browser, viewport model.Viewport, fn func(Page) error) (err error) {
	p, err := b.NewPage(ctx, viewport)
	if err != nil {
		return asBrowserError("open context", err)
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			err = errors.Join(err, &model.BrowserError{Op: "close context", Err: cerr})
		}
	}()
	return fn(p)
}

// asBrowserError wraps err unless it already carries a browser error kind.
func asBrowserError(op string, err error) error {
	if errors.Is(err, model.ErrBrowser) {
		return err
	}
	return &model.BrowserError{Op: op, Err: err}
}
