package session

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock offset from local midnight, in minutes.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// TimeWindow is a recurring local-time interval tied to an IANA timezone.
// A symbol is tradable while the local wall clock sits inside [Start, End).
type TimeWindow struct {
	Name  string
	Start TimeOfDay
	End   TimeOfDay
	Zone  string

	loc *time.Location
}

// NewWindow builds a validated window. Overnight-wrapping intervals
// (start >= end) are rejected; represent them as two windows instead.
func NewWindow(name, start, end, zone string) (TimeWindow, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if s >= e {
		return TimeWindow{}, fmt.Errorf("window %q: start %s must be before end %s within one day", name, s, e)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("window %q: %w", name, err)
	}
	return TimeWindow{Name: name, Start: s, End: e, Zone: zone, loc: loc}, nil
}

// Contains reports whether the instant falls inside the window.
//
// The instant is converted into the window's zone with real timezone rules,
// so "08:00 local" stays 08:00 local on either side of a DST transition.
func (w TimeWindow) Contains(instant time.Time) bool {
	if w.loc == nil {
		return false
	}
	local := instant.In(w.loc)
	now := TimeOfDay(local.Hour()*60 + local.Minute())
	return now >= w.Start && now < w.End
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s-%s %s", w.Name, w.Start, w.End, w.Zone)
}
