package navigation

import (
	"context"

	"github.com/dgnsrekt/tabshell/internal/session"
)

// Kind selects what a render surface does with a Directive.
type Kind string

const (
	KindLoad    Kind = "load"
	KindHistory Kind = "history"
	KindReload  Kind = "reload"
)

// Directive is one instruction for the render surface. Load and reload
// directives carry the URL and the injected script; history directives carry
// only Delta (-1 back, +1 forward).
type Directive struct {
	Kind   Kind          `json:"kind"`
	TabID  session.TabID `json:"tab_id"`
	URL    string        `json:"url,omitempty"`
	Script string        `json:"script,omitempty"`
	Delta  int           `json:"delta,omitempty"`
}

// Listener receives render surface events. Every call names the tab the
// surface was opened for, so events from a replaced surface can be told
// apart from current ones.
type Listener interface {
	HistoryChanged(id session.TabID, canGoBack, canGoForward bool)
	URLChanged(id session.TabID, url string)
	LoadFinished(id session.TabID)
}

// Surface is one mounted render instance, bound to a single tab.
//
// Implementations must not call the Listener from inside Apply or Open; the
// bridge holds its lock for both.
type Surface interface {
	Apply(ctx context.Context, d Directive) error
	Close() error
}

// SurfaceFactory mounts a fresh Surface for a tab.
type SurfaceFactory interface {
	Open(ctx context.Context, id session.TabID, l Listener) (Surface, error)
}

// Publisher receives shell events for the relay. *relay.Broker satisfies it.
type Publisher interface {
	PublishJSON(feed string, v any)
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(string, any) {}
