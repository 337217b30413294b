// Package session owns the ordered set of open tabs and the active-tab
// pointer. A Session always holds between one and MaxTabs tabs; every failed
// operation leaves it exactly as it was.
//
// Session is not safe for concurrent use. The navigation bridge owns it and
// serialises access.
package session

import (
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/tabshell/internal/urlnorm"
	"github.com/google/uuid"
)

const (
	DefaultMaxTabs = 7
	DefaultURL     = "https://www.google.com"
)

// TabID is the stable identity of a tab. Render surfaces are keyed by it, so
// it survives index shifts caused by closing other tabs.
type TabID string

// NewTabID returns a fresh random TabID.
func NewTabID() TabID {
	return TabID(uuid.NewString())
}

// Tab is one browsing context.
type Tab struct {
	ID           TabID  `json:"id"`
	URL          string `json:"url"`
	CanGoBack    bool   `json:"can_go_back"`
	CanGoForward bool   `json:"can_go_forward"`
}

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	Tabs        []Tab `json:"tabs"`
	ActiveIndex int   `json:"active_index"`
}

// Active returns the active tab of the snapshot.
func (s Snapshot) Active() Tab {
	return s.Tabs[s.ActiveIndex]
}

// Options configures a new Session.
type Options struct {
	MaxTabs    int
	DefaultURL string

	// NewID overrides tab id generation. Tests use it for readable ids.
	NewID func() TabID
}

type Session struct {
	tabs       []*Tab
	active     int
	maxTabs    int
	defaultURL string
	newID      func() TabID
}

// New returns a session holding a single tab at the default URL.
func New(opts Options) *Session {
	if opts.MaxTabs < 1 {
		opts.MaxTabs = DefaultMaxTabs
	}
	if opts.DefaultURL == "" {
		opts.DefaultURL = DefaultURL
	}
	if opts.NewID == nil {
		opts.NewID = NewTabID
	}
	s := &Session{
		maxTabs:    opts.MaxTabs,
		defaultURL: urlnorm.Normalize(opts.DefaultURL),
		newID:      opts.NewID,
	}
	s.tabs = []*Tab{s.newTab()}
	return s
}

func (s *Session) newTab() *Tab {
	return &Tab{ID: s.newID(), URL: s.defaultURL}
}

func (s *Session) MaxTabs() int     { return s.maxTabs }
func (s *Session) Len() int         { return len(s.tabs) }
func (s *Session) ActiveIndex() int { return s.active }

// Active returns a copy of the active tab.
func (s *Session) Active() Tab {
	return *s.tabs[s.active]
}

// Tab returns a copy of the tab at index.
func (s *Session) Tab(index int) (Tab, error) {
	if err := s.checkIndex(index); err != nil {
		return Tab{}, err
	}
	return *s.tabs[index], nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	tabs := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		tabs[i] = *t
	}
	return Snapshot{Tabs: tabs, ActiveIndex: s.active}
}

// OpenTab appends a tab at the default URL and makes it active.
func (s *Session) OpenTab() (Snapshot, error) {
	if len(s.tabs) >= s.maxTabs {
		slog.Debug("session open tab rejected", "tabs", len(s.tabs), "max_tabs", s.maxTabs)
		return s.Snapshot(), NewError(CodeCapacityExceeded, fmt.Sprintf("You can't open more than %d tabs.", s.maxTabs), nil)
	}
	t := s.newTab()
	s.tabs = append(s.tabs, t)
	s.active = len(s.tabs) - 1
	slog.Debug("session tab opened", "tab_id", t.ID, "index", s.active, "tabs", len(s.tabs))
	return s.Snapshot(), nil
}

// CloseTab removes the tab at index. Closing the active tab activates its
// predecessor, or index 0 when the first tab was active. Closing a tab before
// the active one shifts the active index down so it keeps pointing at the
// same tab; closing one after it changes nothing.
func (s *Session) CloseTab(index int) (Snapshot, error) {
	if len(s.tabs) == 1 {
		return s.Snapshot(), NewError(CodeLastTabProtected, "You need to have at least one tab open.", nil)
	}
	if err := s.checkIndex(index); err != nil {
		return s.Snapshot(), err
	}

	closed := s.tabs[index].ID
	s.tabs = append(s.tabs[:index:index], s.tabs[index+1:]...)

	switch {
	case index == s.active:
		s.active = max(0, index-1)
	case index < s.active:
		s.active--
	}
	slog.Debug("session tab closed", "tab_id", closed, "index", index, "active_index", s.active, "tabs", len(s.tabs))
	return s.Snapshot(), nil
}

// SwitchTab makes the tab at index active.
func (s *Session) SwitchTab(index int) (Snapshot, error) {
	if err := s.checkIndex(index); err != nil {
		return s.Snapshot(), err
	}
	s.active = index
	return s.Snapshot(), nil
}

// SetActiveURL normalizes url and stores it on the active tab.
func (s *Session) SetActiveURL(url string) Snapshot {
	s.tabs[s.active].URL = urlnorm.Normalize(url)
	return s.Snapshot()
}

// CommitURL records the URL a render surface actually navigated to.
func (s *Session) CommitURL(id TabID, url string) error {
	t, err := s.byID(id)
	if err != nil {
		return err
	}
	t.URL = url
	return nil
}

// SetNavState records the history affordances reported for a tab.
func (s *Session) SetNavState(id TabID, canGoBack, canGoForward bool) error {
	t, err := s.byID(id)
	if err != nil {
		return err
	}
	t.CanGoBack = canGoBack
	t.CanGoForward = canGoForward
	return nil
}

func (s *Session) byID(id TabID) (*Tab, error) {
	for _, t := range s.tabs {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, NewError(CodeTabNotFound, fmt.Sprintf("tab %s not found", id), nil)
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return NewError(CodeIndexOutOfRange, fmt.Sprintf("tab index %d out of range (tabs=%d)", index, len(s.tabs)), nil)
	}
	return nil
}
