package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a minute-of-day counter. Values past 24:00 are allowed so that
// overrunning days stay representable.
type Clock int

const (
	LunchWindowStart Clock = 12 * 60
	LunchWindowEnd   Clock = 14 * 60
)

// ParseClock parses "HH:MM" (00:00 to 23:59).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, Invalid("time", "%q is not in HH:MM form", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, Invalid("time", "%q has an invalid hour", s)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, Invalid("time", "%q has an invalid minute", s)
	}

	return Clock(h*60 + m), nil
}

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

func (c Clock) Minutes() int { return int(c) }

// HHMM formats the clock as zero-padded hours and minutes.
func (c Clock) HHMM() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) String() string { return c.HHMM() }

// InLunchWindow reports whether c lies in [12:00, 14:00], bounds included.
func (c Clock) InLunchWindow() bool {
	return c >= LunchWindowStart && c <= LunchWindowEnd
}
