// Package navigation connects the tab session to a render surface. It turns
// session changes into render directives and render events back into
// session updates.
package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/relay"
	"github.com/dgnsrekt/tabshell/internal/session"
	"github.com/dgnsrekt/tabshell/internal/settings"
	"github.com/dgnsrekt/tabshell/internal/urlnorm"
)

const (
	DefaultRefreshTimeout = time.Second
	DefaultSwipeThreshold = 50.0
)

// Options tunes the bridge. Zero values take the defaults.
type Options struct {
	RefreshTimeout time.Duration
	SwipeThreshold float64
}

// Bridge owns the session and the single mounted render surface. All entry
// points (shell calls, surface events, the refresh timer) are serialised by
// mu.
type Bridge struct {
	mu       sync.Mutex
	sess     *session.Session
	settings settings.Provider
	factory  SurfaceFactory
	pub      Publisher

	refreshTimeout time.Duration
	swipeThreshold float64

	surface   Surface
	mountedID session.TabID
	current   Directive

	refreshing   bool
	refreshSeq   uint64
	refreshTimer *time.Timer
}

type refreshEvent struct {
	Refreshing bool          `json:"refreshing"`
	TabID      session.TabID `json:"tab_id"`
	Reason     string        `json:"reason,omitempty"`
}

func New(sess *session.Session, provider settings.Provider, factory SurfaceFactory, pub Publisher, opts Options) *Bridge {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = DefaultSwipeThreshold
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	return &Bridge{
		sess:           sess,
		settings:       provider,
		factory:        factory,
		pub:            pub,
		refreshTimeout: opts.RefreshTimeout,
		swipeThreshold: opts.SwipeThreshold,
	}
}

// LoadRequested builds the load directive for tab using the filter config
// current at call time.
func (b *Bridge) LoadRequested(tab session.Tab) Directive {
	return Directive{
		Kind:   KindLoad,
		TabID:  tab.ID,
		URL:    urlnorm.Normalize(tab.URL),
		Script: inject.Compose(b.settings.FilterConfig()),
	}
}

// Start mounts a surface for the active tab and loads it.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishTabsLocked()
	return b.mountLocked(ctx)
}

// Close ends any refresh cycle and unmounts the surface.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endRefreshLocked("shutdown")
	return b.unmountLocked()
}

func (b *Bridge) Snapshot() session.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sess.Snapshot()
}

// Current returns the load directive last issued to the mounted surface.
func (b *Bridge) Current() Directive {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bridge) Refreshing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshing
}

func (b *Bridge) OpenTab(ctx context.Context) (session.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.sess.OpenTab(); err != nil {
		return b.sess.Snapshot(), err
	}
	return b.afterTabChangeLocked(ctx)
}

func (b *Bridge) CloseTab(ctx context.Context, index int) (session.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.sess.CloseTab(index); err != nil {
		return b.sess.Snapshot(), err
	}
	return b.afterTabChangeLocked(ctx)
}

func (b *Bridge) SwitchTab(ctx context.Context, index int) (session.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.sess.SwitchTab(index); err != nil {
		return b.sess.Snapshot(), err
	}
	return b.afterTabChangeLocked(ctx)
}

// Navigate stores raw as the active tab's URL and loads it.
func (b *Bridge) Navigate(ctx context.Context, raw string) (session.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sess.SetActiveURL(raw)
	b.publishTabsLocked()
	if b.surface == nil || b.mountedID != b.sess.Active().ID {
		return b.sess.Snapshot(), b.mountLocked(ctx)
	}
	return b.sess.Snapshot(), b.loadLocked(ctx)
}

// afterTabChangeLocked remounts the surface when the active tab changed.
func (b *Bridge) afterTabChangeLocked(ctx context.Context) (session.Snapshot, error) {
	b.publishTabsLocked()
	if b.surface != nil && b.mountedID == b.sess.Active().ID {
		return b.sess.Snapshot(), nil
	}
	return b.sess.Snapshot(), b.mountLocked(ctx)
}

func (b *Bridge) mountLocked(ctx context.Context) error {
	b.endRefreshLocked("remount")
	prev := b.mountedID
	if err := b.unmountLocked(); err != nil {
		slog.Warn("navigation surface close failed", "tab_id", prev, "error", err)
	}

	id := b.sess.Active().ID
	s, err := b.factory.Open(ctx, id, b)
	if err != nil {
		return session.NewError(session.CodeRenderUnavailable, "open render surface failed", err)
	}
	b.surface = s
	b.mountedID = id
	slog.Debug("navigation surface mounted", "tab_id", id)
	return b.loadLocked(ctx)
}

func (b *Bridge) unmountLocked() error {
	if b.surface == nil {
		return nil
	}
	s := b.surface
	b.surface = nil
	b.mountedID = ""
	b.current = Directive{}
	return s.Close()
}

func (b *Bridge) loadLocked(ctx context.Context) error {
	d := b.LoadRequested(b.sess.Active())
	b.current = d
	return b.applyLocked(ctx, d)
}

func (b *Bridge) applyLocked(ctx context.Context, d Directive) error {
	b.pub.PublishJSON(relay.FeedDirective, d)
	slog.Info("navigation directive", "kind", d.Kind, "tab_id", d.TabID, "url", d.URL, "delta", d.Delta, "script_bytes", len(d.Script))
	if err := b.surface.Apply(ctx, d); err != nil {
		return session.NewError(session.CodeRenderUnavailable, fmt.Sprintf("%s directive failed", d.Kind), err)
	}
	return nil
}

// RequestBack issues a history directive when the active tab can go back.
// It reports whether a directive was sent.
func (b *Bridge) RequestBack(ctx context.Context) (bool, error) {
	return b.requestHistory(ctx, -1)
}

// RequestForward is the forward counterpart of RequestBack.
func (b *Bridge) RequestForward(ctx context.Context) (bool, error) {
	return b.requestHistory(ctx, 1)
}

func (b *Bridge) requestHistory(ctx context.Context, delta int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tab := b.sess.Active()
	allowed := tab.CanGoForward
	if delta < 0 {
		allowed = tab.CanGoBack
	}
	if !allowed || b.surface == nil {
		return false, nil
	}
	return true, b.applyLocked(ctx, Directive{Kind: KindHistory, TabID: tab.ID, Delta: delta})
}

// Swipe maps a horizontal drag to history navigation. Drags within the
// threshold in either direction are ignored.
func (b *Bridge) Swipe(ctx context.Context, dx float64) (bool, error) {
	switch {
	case dx < -b.swipeThreshold:
		return b.RequestBack(ctx)
	case dx > b.swipeThreshold:
		return b.RequestForward(ctx)
	default:
		return false, nil
	}
}

// RequestReload re-issues the current load directive as a reload and shows
// the refresh indicator. The indicator is cleared once per cycle, by
// LoadFinished or by the refresh timeout, whichever comes first. A reload
// requested while a cycle is running joins that cycle.
func (b *Bridge) RequestReload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == nil {
		return session.NewError(session.CodeRenderUnavailable, "no render surface mounted", nil)
	}
	if !b.refreshing {
		b.beginRefreshLocked()
	}
	seq := b.refreshSeq
	d := b.current
	d.Kind = KindReload
	if err := b.applyLocked(ctx, d); err != nil {
		if b.refreshSeq == seq {
			b.endRefreshLocked("error")
		}
		return err
	}
	return nil
}

func (b *Bridge) beginRefreshLocked() {
	b.refreshSeq++
	seq := b.refreshSeq
	b.refreshing = true
	b.refreshTimer = time.AfterFunc(b.refreshTimeout, func() { b.refreshExpired(seq) })
	b.pub.PublishJSON(relay.FeedRefresh, refreshEvent{Refreshing: true, TabID: b.mountedID})
}

func (b *Bridge) refreshExpired(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.refreshSeq {
		return
	}
	slog.Debug("navigation refresh timed out", "tab_id", b.mountedID, "timeout", b.refreshTimeout)
	b.endRefreshLocked("timeout")
}

func (b *Bridge) endRefreshLocked(reason string) {
	if !b.refreshing {
		return
	}
	b.refreshing = false
	if b.refreshTimer != nil {
		b.refreshTimer.Stop()
		b.refreshTimer = nil
	}
	b.pub.PublishJSON(relay.FeedRefresh, refreshEvent{Refreshing: false, TabID: b.mountedID, Reason: reason})
}

func (b *Bridge) publishTabsLocked() {
	b.pub.PublishJSON(relay.FeedTabs, b.sess.Snapshot())
}

// isCurrentLocked reports whether id names the mounted surface of the
// active tab. Anything else comes from a surface that has been replaced.
func (b *Bridge) isCurrentLocked(id session.TabID, event string) bool {
	if b.surface != nil && id == b.mountedID && id == b.sess.Active().ID {
		return true
	}
	slog.Debug("navigation stale event ignored", "event", event, "tab_id", id, "mounted_id", b.mountedID)
	return false
}

func (b *Bridge) HistoryChanged(id session.TabID, canGoBack, canGoForward bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrentLocked(id, "history") {
		return
	}
	if err := b.sess.SetNavState(id, canGoBack, canGoForward); err != nil {
		slog.Warn("navigation history update failed", "tab_id", id, "error", err)
		return
	}
	b.publishTabsLocked()
}

func (b *Bridge) URLChanged(id session.TabID, url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrentLocked(id, "url") {
		return
	}
	if err := b.sess.CommitURL(id, url); err != nil {
		slog.Warn("navigation url commit failed", "tab_id", id, "error", err)
		return
	}
	b.publishTabsLocked()
}

func (b *Bridge) LoadFinished(id session.TabID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isCurrentLocked(id, "load") {
		return
	}
	b.endRefreshLocked("load")
}
