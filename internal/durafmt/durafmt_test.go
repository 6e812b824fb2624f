package durafmt

import (
	"math"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	var tests = []struct {
		in     time.Duration
		expect string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61*time.Second + 900*time.Millisecond, "00:01:01"},
		{3*time.Hour + 2*time.Minute + 1*time.Second, "03:02:01"},
		{-75 * time.Second, "-00:01:15"},
		{100 * time.Hour, "100:00:00"},
	}

	for _, test := range tests {
		if got := Format(test.in); got != test.expect {
			t.Errorf("Format(%v) = %q, expected %q", test.in, got, test.expect)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	var tests = []struct {
		in     float64
		expect string
	}{
		{math.NaN(), ""},
		{math.Inf(1), ""},
		{0, "00:00:00"},
		{3661.7, "01:01:01"},
		{-12.2, "-00:00:12"},
	}

	for _, test := range tests {
		if got := FormatSeconds(test.in); got != test.expect {
			t.Errorf("FormatSeconds(%v) = %q, expected %q", test.in, got, test.expect)
		}
	}
}
