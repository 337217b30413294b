// Package render mounts navigation surfaces on Chromium targets over CDP.
// Each surface owns one page target; directives are executed in order by a
// per-surface worker so the caller never waits on a page load.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/navigation"
	"github.com/dgnsrekt/tabshell/internal/session"
)

const (
	directiveQueueSize = 16
	eventQueueSize     = 64
	defaultTimeout     = 30 * time.Second
)

var errSurfaceClosed = errors.New("render surface closed")

// Factory opens one Chromium page target per mounted tab.
type Factory struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// NewFactory prepares a remote allocator for the browser at cdpURL. No
// connection is made until Connect or Open.
func NewFactory(cdpURL string, timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	allocCtx, cancel := chromedp.NewRemoteAllocator(context.Background(), cdpURL)
	return &Factory{allocCtx: allocCtx, allocCancel: cancel, timeout: timeout}
}

// Connect checks that the browser answers on the CDP endpoint.
func (f *Factory) Connect(ctx context.Context) error {
	probeCtx, probeCancel := chromedp.NewContext(f.allocCtx)
	defer probeCancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(probeCtx) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to connect to browser: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	targets, err := chromedp.Targets(probeCtx)
	if err != nil {
		return fmt.Errorf("failed to enumerate targets: %w", err)
	}
	slog.Info("render connected to browser", "targets", len(targets))
	return nil
}

func (f *Factory) Close() {
	f.allocCancel()
}

func (f *Factory) Open(ctx context.Context, id session.TabID, l navigation.Listener) (navigation.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(f.allocCtx)
	s := &surface{
		id:         id,
		ctx:        tabCtx,
		cancel:     tabCancel,
		listener:   l,
		timeout:    f.timeout,
		directives: make(chan navigation.Directive, directiveQueueSize),
		events:     make(chan surfaceEvent, eventQueueSize),
		done:       make(chan struct{}),
	}

	chromedp.ListenTarget(tabCtx, s.onEvent)
	if err := chromedp.Run(tabCtx, page.Enable()); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to enable page domain: %w", err)
	}

	go s.runDirectives()
	go s.pumpEvents()
	slog.Info("render surface opened", "tab_id", id)
	return s, nil
}

type surface struct {
	id       session.TabID
	ctx      context.Context
	cancel   context.CancelFunc
	listener navigation.Listener
	timeout  time.Duration

	directives chan navigation.Directive
	events     chan surfaceEvent
	done       chan struct{}
	closeOnce  sync.Once

	// Touched only by the directive worker.
	scriptID page.ScriptIdentifier
}

// Apply queues d for the worker. It fails only when the surface is closed
// or the queue is full.
func (s *surface) Apply(ctx context.Context, d navigation.Directive) error {
	select {
	case <-s.done:
		return errSurfaceClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.directives <- d:
		return nil
	default:
		return fmt.Errorf("render directive queue full (%d)", directiveQueueSize)
	}
}

// Close detaches the worker and pump and closes the page target. It does not
// wait for a listener call in flight.
func (s *surface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = chromedp.Cancel(s.ctx)
		s.cancel()
		slog.Info("render surface closed", "tab_id", s.id)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// onEvent runs on the chromedp event goroutine and must not block.
func (s *surface) onEvent(ev any) {
	e, ok := translate(ev)
	if !ok {
		return
	}
	select {
	case s.events <- e:
	default:
		slog.Warn("render event dropped", "tab_id", s.id, "kind", e.kind)
	}
}

func (s *surface) pumpEvents() {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.events:
			switch e.kind {
			case eventURL:
				s.listener.URLChanged(s.id, e.url)
				s.reportHistory()
			case eventLoad:
				s.reportHistory()
				s.listener.LoadFinished(s.id)
			}
		}
	}
}

func (s *surface) reportHistory() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	var current int64
	var entries []*page.NavigationEntry
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		current, entries, err = page.GetNavigationHistory().Do(ctx)
		return err
	}))
	if err != nil {
		slog.Debug("render history query failed", "tab_id", s.id, "error", err)
		return
	}
	back, fwd := historyFlags(current, len(entries))
	s.listener.HistoryChanged(s.id, back, fwd)
}

func (s *surface) runDirectives() {
	for {
		select {
		case <-s.done:
			return
		case d := <-s.directives:
			if err := s.execute(d); err != nil {
				slog.Warn("render directive failed", "tab_id", s.id, "kind", d.Kind, "url", d.URL, "error", err)
			}
		}
	}
}

func (s *surface) execute(d navigation.Directive) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	switch d.Kind {
	case navigation.KindLoad:
		return chromedp.Run(ctx, s.registerScript(d.Script), chromedp.Navigate(d.URL))
	case navigation.KindReload:
		return chromedp.Run(ctx, s.registerScript(d.Script), chromedp.Reload())
	case navigation.KindHistory:
		return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			current, entries, err := page.GetNavigationHistory().Do(ctx)
			if err != nil {
				return err
			}
			entry, ok := historyEntry(current, entries, d.Delta)
			if !ok {
				return fmt.Errorf("no history entry at delta %d", d.Delta)
			}
			return page.NavigateToHistoryEntry(entry.ID).Do(ctx)
		}))
	default:
		return fmt.Errorf("unknown directive kind %q", d.Kind)
	}
}

// registerScript replaces the document script installed by the previous
// load so each document gets exactly the current composition.
func (s *surface) registerScript(script string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if s.scriptID != "" {
			if err := page.RemoveScriptToEvaluateOnNewDocument(s.scriptID).Do(ctx); err != nil {
				return fmt.Errorf("remove injected script: %w", err)
			}
			s.scriptID = ""
		}
		wrapped := inject.Wrap(script)
		if wrapped == "" {
			return nil
		}
		id, err := page.AddScriptToEvaluateOnNewDocument(wrapped).Do(ctx)
		if err != nil {
			return fmt.Errorf("add injected script: %w", err)
		}
		s.scriptID = id
		return nil
	})
}
