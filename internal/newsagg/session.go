// Package newsagg collapses multi-vendor news revision streams into one
// canonical record per story and aggregates counts to the
// (entity, local trading day) grain.
package newsagg

import (
	"fmt"
	"time"
)

// Session describes one market's local time zone and trading hours.
// The pre-open/post-close windows are configuration because the
// pipeline supports multiple markets, not just New York hours.
type Session struct {
	loc         *time.Location
	openHour    int
	openMinute  int
	closeHour   int
	closeMinute int
}

// NewSession loads the IANA zone for a market. The zone database rules
// handle DST transitions; a fixed UTC offset would misdate stories
// captured around transition days.
func NewSession(zone string, openHour, openMinute, closeHour, closeMinute int) (*Session, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load market zone %s: %w", zone, err)
	}
	return &Session{
		loc:         loc,
		openHour:    openHour,
		openMinute:  openMinute,
		closeHour:   closeHour,
		closeMinute: closeMinute,
	}, nil
}

// NewYorkSession returns the default US equity session:
// America/New_York, 09:30-16:00.
func NewYorkSession() *Session {
	s, err := NewSession("America/New_York", 9, 30, 16, 0)
	if err != nil {
		// The zone ships with the Go toolchain's tzdata; failure here
		// means a broken environment.
		panic(err)
	}
	return s
}

// HongKongSession returns the Hong Kong session: Asia/Hong_Kong,
// 09:30-16:00.
func HongKongSession() *Session {
	s, err := NewSession("Asia/Hong_Kong", 9, 30, 16, 0)
	if err != nil {
		panic(err)
	}
	return s
}

// Local converts a UTC capture time to market local time.
func (s *Session) Local(t time.Time) time.Time {
	return t.In(s.loc)
}

// PreOpen reports whether a local capture time falls before the session
// open.
func (s *Session) PreOpen(local time.Time) bool {
	h, m := local.Hour(), local.Minute()
	if h != s.openHour {
		return h < s.openHour
	}
	return m < s.openMinute
}

// PostClose reports whether a local capture time falls at or after the
// session close.
func (s *Session) PostClose(local time.Time) bool {
	h, m := local.Hour(), local.Minute()
	if h != s.closeHour {
		return h > s.closeHour
	}
	return m >= s.closeMinute
}
