// Package browsertest provides recording fakes for the browser contracts.
//
// The fakes never start a real browser. They count launches and execution
// contexts, record what was loaded, and flag two contexts of one browser
// being open at the same time.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/nao1215/a11yscan/internal/browser"
	"github.com/nao1215/a11yscan/internal/model"
)

// Launcher is a fake browser.Launcher. Configure it before use; the
// recording methods are safe for concurrent use.
type Launcher struct {
	// LaunchErr, when set, is returned by every Launch call.
	LaunchErr error

	// NavigateErrs maps URLs to the error Navigate returns for them.
	NavigateErrs map[string]error

	// NavigatePanics lists URLs for which Navigate panics.
	NavigatePanics map[string]bool

	// SetContentErr, when set, is returned by every SetContent call.
	SetContentErr error

	// EvaluateFunc answers Evaluate calls. Nil returns "null".
	EvaluateFunc func(expression string) ([]byte, error)

	mu       sync.Mutex
	launches int
	browsers []*Browser
}

var _ browser.Launcher = (*Launcher)(nil)

// Launch returns a new fake browser.
func (l *Launcher) Launch(_ context.Context) (browser.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.launches++
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	b := &Browser{launcher: l}
	l.browsers = append(l.browsers, b)
	return b, nil
}

// Launches returns the number of Launch calls.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

// Browsers returns the browsers launched so far.
func (l *Launcher) Browsers() []*Browser {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Browser(nil), l.browsers...)
}

// Browser is a fake browser.Browser.
type Browser struct {
	launcher *Launcher

	mu         sync.Mutex
	pages      []*Page
	open       int
	overlapped bool
	closes     int
}

var _ browser.Browser = (*Browser)(nil)

// NewPage opens a fake execution context.
func (b *Browser) NewPage(_ context.Context, viewport model.Viewport) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closes > 0 {
		return nil, errors.New("browser is closed")
	}
	if b.open > 0 {
		b.overlapped = true
	}
	b.open++
	p := &Page{browser: b, Viewport: viewport}
	b.pages = append(b.pages, p)
	return p, nil
}

// Close records the close.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

// Pages returns the contexts opened so far, in order.
func (b *Browser) Pages() []*Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Page(nil), b.pages...)
}

// Closes returns how many times Close was called.
func (b *Browser) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// OpenPages returns the number of contexts not yet closed.
func (b *Browser) OpenPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Overlapped reports whether two contexts were ever open at the same time.
func (b *Browser) Overlapped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlapped
}

func (b *Browser) pageClosed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open--
}

// Page is a fake browser.Page.
type Page struct {
	browser *Browser

	// Viewport is the viewport the page was opened with.
	Viewport model.Viewport

	mu          sync.Mutex
	navigations []string
	contents    []string
	expressions []string
	closes      int
}

var _ browser.Page = (*Page)(nil)

// Navigate records url and returns the configured error, if any.
func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	p.navigations = append(p.navigations, url)
	p.mu.Unlock()

	l := p.browser.launcher
	if l.NavigatePanics[url] {
		panic("navigate panic for " + url)
	}
	if err, ok := l.NavigateErrs[url]; ok {
		return err
	}
	return nil
}

// SetContent records html and returns the configured error, if any.
func (p *Page) SetContent(_ context.Context, html string) error {
	p.mu.Lock()
	p.contents = append(p.contents, html)
	p.mu.Unlock()
	return p.browser.launcher.SetContentErr
}

// Evaluate records expression and answers through EvaluateFunc.
func (p *Page) Evaluate(_ context.Context, expression string) ([]byte, error) {
	p.mu.Lock()
	p.expressions = append(p.expressions, expression)
	p.mu.Unlock()

	if f := p.browser.launcher.EvaluateFunc; f != nil {
		return f(expression)
	}
	return []byte("null"), nil
}

// Close records the close. Only the first call releases the context.
func (p *Page) Close() error {
	p.mu.Lock()
	p.closes++
	first := p.closes == 1
	p.mu.Unlock()

	if first {
		p.browser.pageClosed()
	}
	return nil
}

// Navigations returns the URLs passed to Navigate.
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Contents returns the documents passed to SetContent.
func (p *Page) Contents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.contents...)
}

// Expressions returns the expressions passed to Evaluate.
func (p *Page) Expressions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.expressions...)
}

// Closes returns how many times Close was called.
func (p *Page) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}
