package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OperatingHours is a daily opening window in local time. Overnight windows
// (close before open, e.g. 18:00-02:00) wrap past midnight.
type OperatingHours struct {
	openMinute  int
	closeMinute int
}

// ParseOperatingHours parses "HH:MM" open and close times.
func ParseOperatingHours(open, close string) (OperatingHours, error) {
	openMinute, err := parseClock(open)
	if err != nil {
		return OperatingHours{}, fmt.Errorf("opening time: %w", err)
	}
	closeMinute, err := parseClock(close)
	if err != nil {
		return OperatingHours{}, fmt.Errorf("closing time: %w", err)
	}
	return OperatingHours{openMinute: openMinute, closeMinute: closeMinute}, nil
}

func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

// Contains reports whether t falls inside the window.
func (h OperatingHours) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	if h.openMinute == h.closeMinute {
		// Equal open and close means open around the clock.
		return true
	}
	if h.openMinute < h.closeMinute {
		return minute >= h.openMinute && minute < h.closeMinute
	}
	return minute >= h.openMinute || minute < h.closeMinute
}
