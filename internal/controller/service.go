package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/tabshell/internal/inject"
	"github.com/dgnsrekt/tabshell/internal/navigation"
	"github.com/dgnsrekt/tabshell/internal/session"
)

// Navigator is the slice of *navigation.Bridge the shell drives.
type Navigator interface {
	Snapshot() session.Snapshot
	Current() navigation.Directive
	Refreshing() bool
	OpenTab(ctx context.Context) (session.Snapshot, error)
	CloseTab(ctx context.Context, index int) (session.Snapshot, error)
	SwitchTab(ctx context.Context, index int) (session.Snapshot, error)
	Navigate(ctx context.Context, raw string) (session.Snapshot, error)
	RequestBack(ctx context.Context) (bool, error)
	RequestForward(ctx context.Context) (bool, error)
	RequestReload(ctx context.Context) error
	Swipe(ctx context.Context, dx float64) (bool, error)
}

// SettingsStore is satisfied by *settings.Store.
type SettingsStore interface {
	FilterConfig() inject.FilterConfig
	Save(cfg inject.FilterConfig)
}

// TabView is one row of the tab strip.
type TabView struct {
	Index        int           `json:"index"`
	ID           session.TabID `json:"id"`
	Label        string        `json:"label"`
	URL          string        `json:"url"`
	Active       bool          `json:"active"`
	CanGoBack    bool          `json:"can_go_back"`
	CanGoForward bool          `json:"can_go_forward"`
}

// TabList is the tab strip plus the shell indicators.
type TabList struct {
	Tabs        []TabView `json:"tabs"`
	ActiveIndex int       `json:"active_index"`
	MaxTabs     int       `json:"max_tabs"`
	Refreshing  bool      `json:"refreshing"`
}

// Service wraps shell operations for the control API.
type Service struct {
	nav      Navigator
	settings SettingsStore
	maxTabs  int
}

func NewService(nav Navigator, settings SettingsStore, maxTabs int) *Service {
	return &Service{nav: nav, settings: settings, maxTabs: maxTabs}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &session.CodedError{Code: session.CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) tabList(snap session.Snapshot) TabList {
	out := TabList{
		Tabs:        make([]TabView, len(snap.Tabs)),
		ActiveIndex: snap.ActiveIndex,
		MaxTabs:     s.maxTabs,
		Refreshing:  s.nav.Refreshing(),
	}
	for i, t := range snap.Tabs {
		out.Tabs[i] = TabView{
			Index:        i,
			ID:           t.ID,
			Label:        fmt.Sprintf("Tab %d", i+1),
			URL:          t.URL,
			Active:       i == snap.ActiveIndex,
			CanGoBack:    t.CanGoBack,
			CanGoForward: t.CanGoForward,
		}
	}
	return out
}

func (s *Service) ListTabs(ctx context.Context) (TabList, error) {
	return s.tabList(s.nav.Snapshot()), nil
}

func (s *Service) OpenTab(ctx context.Context) (TabList, error) {
	snap, err := s.nav.OpenTab(ctx)
	if err != nil {
		return TabList{}, err
	}
	return s.tabList(snap), nil
}

func (s *Service) CloseTab(ctx context.Context, index int) (TabList, error) {
	snap, err := s.nav.CloseTab(ctx, index)
	if err != nil {
		return TabList{}, err
	}
	return s.tabList(snap), nil
}

func (s *Service) SwitchTab(ctx context.Context, index int) (TabList, error) {
	snap, err := s.nav.SwitchTab(ctx, index)
	if err != nil {
		return TabList{}, err
	}
	return s.tabList(snap), nil
}

// Navigate loads url in the active tab. Scheme-less input gets https://.
func (s *Service) Navigate(ctx context.Context, url string) (TabList, error) {
	if err := s.requireNonEmpty(url, "url"); err != nil {
		return TabList{}, err
	}
	snap, err := s.nav.Navigate(ctx, strings.TrimSpace(url))
	if err != nil {
		return TabList{}, err
	}
	return s.tabList(snap), nil
}

func (s *Service) Back(ctx context.Context) (bool, error) {
	return s.nav.RequestBack(ctx)
}

func (s *Service) Forward(ctx context.Context) (bool, error) {
	return s.nav.RequestForward(ctx)
}

func (s *Service) Reload(ctx context.Context) error {
	return s.nav.RequestReload(ctx)
}

func (s *Service) Swipe(ctx context.Context, dx float64) (bool, error) {
	return s.nav.Swipe(ctx, dx)
}

// CurrentDirective returns the load directive of the mounted tab.
func (s *Service) CurrentDirective(ctx context.Context) (navigation.Directive, error) {
	d := s.nav.Current()
	if d.Kind == "" {
		return navigation.Directive{}, &session.CodedError{Code: session.CodeRenderUnavailable, Message: "no render surface mounted"}
	}
	return d, nil
}

func (s *Service) GetSettings(ctx context.Context) (inject.FilterConfig, error) {
	return s.settings.FilterConfig(), nil
}

// SaveSettings replaces the filter config. Pages already loaded keep their
// script; the next load directive uses cfg.
func (s *Service) SaveSettings(ctx context.Context, cfg inject.FilterConfig) (inject.FilterConfig, error) {
	s.settings.Save(cfg)
	slog.Debug("controller settings saved", "script_bytes", len(inject.Compose(cfg)))
	return s.settings.FilterConfig(), nil
}
