package reqlog_test

import (
	"testing"
	"time"

	"github.com/mhttpgo/mhttp/reqlog"
)

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{5 * time.Millisecond, "5.0ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tc := range testCases {
		if got := reqlog.FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	testCases := []struct {
		n    int64
		want string
	}{
		{5, "5B"},
		{1500, "1.5kB"},
		{1_500_000, "1.5MB"},
		{1_500_000_000, "1.5GB"},
	}
	for _, tc := range testCases {
		if got := reqlog.FormatSize(tc.n); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
