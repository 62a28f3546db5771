package session

import (
	"sync"
	"time"
)

// Gate answers "is this symbol tradable at this instant" from per-symbol
// window lists. A symbol with no windows is always tradable; otherwise the
// instant must fall inside at least one window. This is how a London and a
// New York window combine into one trading day, overlap included.
//
// Reads take an RLock; Replace swaps the whole map under the write lock, so
// a reader never sees a half-updated window list.
type Gate struct {
	mu      sync.RWMutex
	windows map[string][]TimeWindow
}

func NewGate(windows map[string][]TimeWindow) *Gate {
	g := &Gate{}
	g.Replace(windows)
	return g
}

// IsTradable reports whether at least one of the symbol's windows contains
// the instant. No side effects on a miss.
func (g *Gate) IsTradable(symbol string, instant time.Time) bool {
	g.mu.RLock()
	ws := g.windows[symbol]
	g.mu.RUnlock()

	if len(ws) == 0 {
		// Session filtering disabled for this symbol.
		return true
	}
	for _, w := range ws {
		if w.Contains(instant) {
			return true
		}
	}
	return false
}

// Replace publishes a new configuration in one swap. The map and its slices
// are copied so later mutation by the caller cannot leak into readers.
func (g *Gate) Replace(windows map[string][]TimeWindow) {
	next := make(map[string][]TimeWindow, len(windows))
	for sym, ws := range windows {
		next[sym] = append([]TimeWindow(nil), ws...)
	}

	g.mu.Lock()
	g.windows = next
	g.mu.Unlock()
}

// Windows returns a copy of the symbol's configured windows.
func (g *Gate) Windows(symbol string) []TimeWindow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]TimeWindow(nil), g.windows[symbol]...)
}
