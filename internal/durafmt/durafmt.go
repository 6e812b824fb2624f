package durafmt

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var durationChunks = []time.Duration{time.Hour, time.Minute, time.Second}

// Format formats the given duration into HH:MM:SS form. The hour is always
// present. Negative durations are prefixed with a minus sign.
func Format(d time.Duration) string {
	var dwords = make([]string, 0, 3)
	var n int

	var sign string
	if d < 0 {
		sign = "-"
		d = -d
	}

	for _, section := range durationChunks {
		n, d = divide(d, section)
		dwords = append(dwords, fmt.Sprintf("%02d", n))
	}

	return sign + strings.Join(dwords, ":")
}

// FormatSeconds formats fractional seconds the same way as Format, flooring
// to a whole second. NaN and infinities give an empty string.
func FormatSeconds(secs float64) string {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return ""
	}

	if secs < 0 {
		return "-" + Format(time.Duration(math.Floor(-secs))*time.Second)
	}

	return Format(time.Duration(math.Floor(secs)) * time.Second)
}

func divide(d, div time.Duration) (n int, newd time.Duration) {
	n = int(d / div)
	return n, d - time.Duration(n)*div
}
