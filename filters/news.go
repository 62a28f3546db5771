package filters

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// CalendarEvent is one scheduled economic release.
type CalendarEvent struct {
	Time     time.Time
	Name     string
	Currency string // "USD", "EUR", ...
	Impact   string // "high", "medium", "low"
}

// NewsGuardConfig controls the blackout gate around high-impact releases.
type NewsGuardConfig struct {
	Enabled       bool
	BlockBefore   time.Duration
	BlockAfter    time.Duration
	WatchedEvents []string // substring match against event names, e.g. "NFP", "CPI", "FOMC"
}

// NewsGuard blocks admission inside a blackout window around watched
// high-impact calendar events whose currency affects the symbol.
//
// The calendar is replaced wholesale, same copy-and-swap discipline as the
// session config, so checks never see a partially loaded calendar.
type NewsGuard struct {
	cfg NewsGuardConfig

	mu     sync.RWMutex
	events []CalendarEvent
}

func NewNewsGuard(cfg NewsGuardConfig) *NewsGuard {
	return &NewsGuard{cfg: cfg}
}

// LoadCalendar replaces the event list, keeping only high-impact events that
// match a watched name. An empty watch list keeps all high-impact events.
func (g *NewsGuard) LoadCalendar(events []CalendarEvent) {
	kept := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		if !strings.EqualFold(ev.Impact, "high") {
			continue
		}
		if len(g.cfg.WatchedEvents) > 0 && !g.watched(ev.Name) {
			continue
		}
		kept = append(kept, ev)
	}

	g.mu.Lock()
	g.events = kept
	g.mu.Unlock()
}

func (g *NewsGuard) watched(name string) bool {
	for _, w := range g.cfg.WatchedEvents {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// Check reports whether the symbol may trade at the instant. A false result
// carries the blocking event's description.
func (g *NewsGuard) Check(symbol string, at time.Time) (bool, string) {
	if !g.cfg.Enabled {
		return true, ""
	}

	g.mu.RLock()
	events := g.events
	g.mu.RUnlock()

	for _, ev := range events {
		if !eventAffectsSymbol(symbol, ev.Currency) {
			continue
		}
		start := ev.Time.Add(-g.cfg.BlockBefore)
		end := ev.Time.Add(g.cfg.BlockAfter)
		if !at.Before(start) && !at.After(end) {
			return false, fmt.Sprintf("news blackout: %s at %s", ev.Name, ev.Time.UTC().Format("15:04 MST"))
		}
	}
	return true, ""
}

// eventAffectsSymbol maps an event currency onto a trading symbol. Gold
// tracks USD events; six-letter FX pairs react to either leg.
func eventAffectsSymbol(symbol, currency string) bool {
	sym := strings.ToUpper(symbol)

	if strings.Contains(sym, "XAU") || strings.Contains(sym, "GOLD") {
		return currency == "USD"
	}
	if len(sym) >= 6 {
		return currency == sym[:3] || currency == sym[3:6]
	}
	return false
}
