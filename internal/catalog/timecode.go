package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Millis is a catalog timecode in milliseconds. An empty catalog cell yields
// the zero Millis, which is absent rather than 0 ms.
type Millis struct {
	Value int64
	Valid bool
}

// MillisOf returns a present timecode of ms milliseconds.
func MillisOf(ms int64) Millis {
	return Millis{Value: ms, Valid: true}
}

func (m Millis) String() string {
	if !m.Valid {
		return "absent"
	}
	return FormatClock(m.Value)
}

// ParseTimecode converts an HH:MM:SS[.ffffff] time-of-day value into
// milliseconds. Blank input is absent, not zero.
func ParseTimecode(value string) (Millis, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Millis{}, nil
	}
	clock, fraction, hasFraction := strings.Cut(value, ".")
	fields := strings.Split(clock, ":")
	if len(fields) != 3 && len(fields) != 2 {
		return Millis{}, fmt.Errorf("invalid timecode %q", value)
	}
	limits := []int{23, 59, 59}
	parsed := make([]int, 3)
	for i, field := range fields {
		if len(field) != 2 {
			return Millis{}, fmt.Errorf("invalid timecode %q", value)
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || n > limits[i] {
			return Millis{}, fmt.Errorf("invalid timecode %q", value)
		}
		parsed[i] = n
	}
	if hasFraction && len(fields) == 2 {
		return Millis{}, fmt.Errorf("invalid timecode %q", value)
	}

	var micros int
	if hasFraction {
		if len(fraction) == 0 || len(fraction) > 6 {
			return Millis{}, fmt.Errorf("invalid timecode %q", value)
		}
		n, err := strconv.Atoi(fraction)
		if err != nil || n < 0 {
			return Millis{}, fmt.Errorf("invalid timecode %q", value)
		}
		for i := len(fraction); i < 6; i++ {
			n *= 10
		}
		micros = n
	}

	seconds := int64(parsed[0])*3600 + int64(parsed[1])*60 + int64(parsed[2])
	ms := seconds*1000 + int64(math.RoundToEven(float64(micros)/1000))
	return MillisOf(ms), nil
}

// FormatClock renders milliseconds as H:MM:SS, dropping the fraction.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
