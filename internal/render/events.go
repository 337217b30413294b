package render

import (
	"github.com/chromedp/cdproto/page"
)

type eventKind int

const (
	eventURL eventKind = iota
	eventLoad
)

// surfaceEvent is a CDP page event reduced to what the listener needs.
type surfaceEvent struct {
	kind eventKind
	url  string
}

// translate maps a raw CDP event to a surface event. Subframe navigations
// and unrelated events are dropped.
func translate(ev any) (surfaceEvent, bool) {
	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		if e.Frame == nil || e.Frame.ParentID != "" {
			return surfaceEvent{}, false
		}
		return surfaceEvent{kind: eventURL, url: e.Frame.URL}, true
	case *page.EventNavigatedWithinDocument:
		return surfaceEvent{kind: eventURL, url: e.URL}, true
	case *page.EventLoadEventFired:
		return surfaceEvent{kind: eventLoad}, true
	}
	return surfaceEvent{}, false
}

// historyFlags derives the back/forward affordances from a navigation
// history position.
func historyFlags(current int64, entries int) (canGoBack, canGoForward bool) {
	if entries == 0 {
		return false, false
	}
	return current > 0, current < int64(entries)-1
}

// historyEntry picks the entry delta steps away from current.
func historyEntry(current int64, entries []*page.NavigationEntry, delta int) (*page.NavigationEntry, bool) {
	i := current + int64(delta)
	if delta == 0 || i < 0 || i >= int64(len(entries)) {
		return nil, false
	}
	return entries[i], true
}
