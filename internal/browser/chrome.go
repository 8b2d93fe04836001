package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/nao1215/a11yscan/internal/model"
)

// DefaultNavigationTimeout bounds Navigate and SetContent when no timeout is configured.
const DefaultNavigationTimeout = 30 * time.Second

// ChromeLauncher launches Chromium-based browsers through chromedp.
type ChromeLauncher struct {
	execPath   string
	headless   bool
	navTimeout time.Duration
	idleQuiet  time.Duration
	logger     *slog.Logger
}

// ChromeOption configures a ChromeLauncher.
type ChromeOption func(*ChromeLauncher)

// WithExecPath sets the browser executable. Empty lets chromedp search for one.
func WithExecPath(path string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.execPath = path
	}
}

// WithHeadless controls whether the browser runs without a window.
func WithHeadless(headless bool) ChromeOption {
	return func(l *ChromeLauncher) {
		l.headless = headless
	}
}

// WithNavigationTimeout sets the upper bound for loading a page.
func WithNavigationTimeout(d time.Duration) ChromeOption {
	return func(l *ChromeLauncher) {
		if d > 0 {
			l.navTimeout = d
		}
	}
}

// WithLogger sets the logger for browser lifecycle events.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(l *ChromeLauncher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewChromeLauncher creates a headless ChromeLauncher.
func NewChromeLauncher(opts ...ChromeOption) *ChromeLauncher {
	l := &ChromeLauncher{
		headless:   true,
		navTimeout: DefaultNavigationTimeout,
		idleQuiet:  NetworkIdleQuiet,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch starts a browser process. ctx bounds the startup only; the process
// lives until Close is called.
func (l *ChromeLauncher) Launch(ctx context.Context) (Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", l.headless))
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(l.chromedpLogf),
		chromedp.WithLogf(l.chromedpLogf),
	)

	if err := start(ctx, browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &model.BrowserError{Op: "launch", Err: err}
	}

	l.logger.Debug("browser launched", "headless", l.headless)
	return &chromeBrowser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		navTimeout:  l.navTimeout,
		idleQuiet:   l.idleQuiet,
		logger:      l.logger,
	}, nil
}

func (l *ChromeLauncher) chromedpLogf(format string, args ...any) {
	l.logger.Debug("chromedp", "detail", fmt.Sprintf(format, args...))
}

// start runs the first action on a chromedp context, which allocates its
// target. The target's lifetime is tied to target itself, so ctx only bounds
// how long we wait for it.
func start(ctx, target context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(target, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = chromedp.Cancel(target)
		<-done
		return ctx.Err()
	}
}

type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration
	idleQuiet   time.Duration
	logger      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPage opens a tab in a fresh browser context.
func (b *chromeBrowser) NewPage(ctx context.Context, viewport model.Viewport) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())

	tracker := newIdleTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	err := start(ctx, tabCtx,
		network.Enable(),
		chromedp.EmulateViewport(int64(viewport.Width), int64(viewport.Height)),
	)
	if err != nil {
		tabCancel()
		return nil, &model.BrowserError{Op: "open context", Err: err}
	}

	return &chromePage{
		ctx:        tabCtx,
		cancel:     tabCancel,
		tracker:    tracker,
		navTimeout: b.navTimeout,
		idleQuiet:  b.idleQuiet,
	}, nil
}

// Close shuts the browser down and waits for the process to exit.
func (b *chromeBrowser) Close() error {
	b.closeOnce.Do(func() {
		if err := chromedp.Cancel(b.ctx); err != nil && !errors.Is(err, context.Canceled) {
			b.closeErr = err
		}
		b.cancel()
		b.allocCancel()
		b.logger.Debug("browser closed")
	})
	return b.closeErr
}

type chromePage struct {
	ctx        context.Context
	cancel     context.CancelFunc
	tracker    *idleTracker
	navTimeout time.Duration
	idleQuiet  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url and waits for network idle within the navigation timeout.
func (p *chromePage) Navigate(ctx context.Context, url string) error {
	p.tracker.reset()
	timedOut, err := p.run(ctx, p.navTimeout, chromedp.Navigate(url), p.waitIdle())
	return p.loadError(url, timedOut, err, "navigate")
}

// SetContent replaces the current document of the main frame with html.
func (p *chromePage) SetContent(ctx context.Context, html string) error {
	p.tracker.reset()
	setContent := chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
	timedOut, err := p.run(ctx, p.navTimeout, setContent, p.waitIdle())
	return p.loadError("inline HTML", timedOut, err, "set content")
}

// Evaluate runs expression and returns its JSON-encoded result.
func (p *chromePage) Evaluate(ctx context.Context, expression string) ([]byte, error) {
	var raw []byte
	awaitPromise := func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}
	if _, err := p.run(ctx, 0, chromedp.Evaluate(expression, &raw, awaitPromise)); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return raw, nil
}

// Close closes the tab and disposes of its browser context.
func (p *chromePage) Close() error {
	p.closeOnce.Do(func() {
		if err := chromedp.Cancel(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.closeErr = err
		}
		p.cancel()
	})
	return p.closeErr
}

func (p *chromePage) waitIdle() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return p.tracker.wait(ctx, p.idleQuiet)
	})
}

// run executes actions on the tab. A positive timeout bounds the run; ctx
// cancellation aborts it. timedOut reports whether the timeout fired.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) (timedOut bool, err error) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err = chromedp.Run(runCtx, actions...)
	timedOut = err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
	return timedOut, err
}

func (p *chromePage) loadError(target string, timedOut bool, err error, op string) error {
	switch {
	case err == nil:
		return nil
	case timedOut:
		return &model.NavigationTimeoutError{Target: target, Timeout: p.navTimeout}
	default:
		return &model.BrowserError{Op: op, Err: err}
	}
}
