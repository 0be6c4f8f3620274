package reqlog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Direction distinguishes an outbound (client) request from an
// inbound (server) one; mhttp only ever logs outbound events, but the
// field is kept so log consumers can filter on it uniformly.
type Direction string

const (
	Outbound Direction = "out"
	Inbound  Direction = "in"
)

// Event is one completed request's log record.
type Event struct {
	RequestID     uuid.UUID
	Direction     Direction
	Method        string
	TargetString  string
	Status        int
	RequestTime   time.Duration
	BodySize      int64
	Pool          string // set for outbound events
	Server        string // set for inbound events (unused by mhttp today)
	ServerAddress string // set for inbound events
}

// Logger emits structured request events via slog.
type Logger struct {
	slog *slog.Logger
}

// New wraps logger. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{slog: logger}
}

// Log emits one structured event per spec.md §4.6's required fields.
func (l *Logger) Log(e Event) {
	attrs := []any{
		"domain", []string{"mhttp", "client"},
		"event", []string{"mhttp", "request", string(e.Direction)},
		"request_id", e.RequestID.String(),
		"method", e.Method,
		"target_string", e.TargetString,
		"status", e.Status,
		"request_time_us", e.RequestTime.Microseconds(),
		"request_time", FormatDuration(e.RequestTime),
		"body_size", e.BodySize,
		"body_size_human", FormatSize(e.BodySize),
	}

	if e.Direction == Outbound {
		attrs = append(attrs, "pool", e.Pool)
	} else {
		attrs = append(attrs, "server", e.Server, "address", e.ServerAddress)
	}

	l.slog.Info("request completed", attrs...)
}

// FormatDuration renders d as "Nµs"/"N.Nms"/"N.Ns" by magnitude, per
// spec.md §4.6's human-readable formatter.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}

// FormatSize renders n bytes as "B"/"kB"/"MB"/"GB" using decimal
// (1000-based) units, per spec.md §4.6.
func FormatSize(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	units := []string{"kB", "MB", "GB"}
	if exp >= len(units) {
		exp = len(units) - 1
	}
	return fmt.Sprintf("%.1f%s", float64(n)/float64(div), units[exp])
}
