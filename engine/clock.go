package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day at minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the clock as minutes since midnight.
func (c Clock) MinuteOfDay() int { return c.Hour*60 + c.Minute }

// String renders the clock as 24-hour HH:MM.
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ParseClock turns free-form clock text ("730", "7:30", "5pm", "19:05")
// into a Clock. Errors wrap ErrInvalidTimeFormat.
func ParseClock(input string) (Clock, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	suffix := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		suffix = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}
	s = strings.ReplaceAll(s, ":", "")

	if len(s) == 0 || len(s) > 4 {
		return Clock{}, &ClockError{Input: input, Reason: "expected 1 to 4 digits"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Clock{}, &ClockError{Input: input, Reason: "non-digit characters"}
		}
	}

	var hh, mm string
	switch len(s) {
	case 1, 2:
		hh, mm = s, "0"
	case 3:
		hh, mm = s[:1], s[1:]
	case 4:
		hh, mm = s[:2], s[2:]
	}
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)

	switch suffix {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 {
		return Clock{}, &ClockError{Input: input, Reason: fmt.Sprintf("hour %d out of range", hour)}
	}
	if minute < 0 || minute > 59 {
		return Clock{}, &ClockError{Input: input, Reason: fmt.Sprintf("minute %d out of range", minute)}
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// MustParseClock parses input or panics. Use in tests and presets only.
func MustParseClock(input string) Clock {
	c, err := ParseClock(input)
	if err != nil {
		panic(err)
	}
	return c
}

// FormatMinutes renders a duration in minutes as H:MM.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign, minutes = "-", -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}
