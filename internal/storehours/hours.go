package storehours

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24-hour). Reports false for anything else.
func ParseClockTime(s string) (ClockTime, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return ClockTime{}, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return ClockTime{}, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return ClockTime{}, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, false
	}
	return ClockTime{Hour: h, Minute: m}, true
}

// Before reports whether c is earlier in the day than o.
func (c ClockTime) Before(o ClockTime) bool {
	return c.minutes() < o.minutes()
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Hours is a store's configured schedule as stored in the directory.
// Opening and Closing are "HH:MM" strings; either may be empty or malformed,
// in which case the policy fails open. Timezone is an IANA name or empty.
type Hours struct {
	Opening  string `json:"opening_time,omitempty" yaml:"opening_time"`
	Closing  string `json:"closing_time,omitempty" yaml:"closing_time"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone"`
}

// Parse returns the parsed opening and closing times.
// ok is false when either is missing or malformed.
func (h Hours) Parse() (opening, closing ClockTime, ok bool) {
	opening, okOpen := ParseClockTime(h.Opening)
	closing, okClose := ParseClockTime(h.Closing)
	if !okOpen || !okClose {
		return ClockTime{}, ClockTime{}, false
	}
	return opening, closing, true
}

// Configured reports whether both times parse.
func (h Hours) Configured() bool {
	_, _, ok := h.Parse()
	return ok
}

// Overnight reports whether the store closes after midnight (close < open).
func (h Hours) Overnight() bool {
	opening, closing, ok := h.Parse()
	return ok && closing.Before(opening)
}
