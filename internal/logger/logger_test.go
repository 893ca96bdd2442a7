package logger

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "info by default", verbose: false, wantDebug: false},
		{name: "debug when verbose", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := New(buf, tt.verbose)
			log.Debug("debug line")
			log.Info("info line")

			assert.Contains(t, buf.String(), "info line")
			if tt.wantDebug {
				assert.Contains(t, buf.String(), "debug line")
			} else {
				assert.NotContains(t, buf.String(), "debug line")
			}
		})
	}
}

func TestNew_DropsEmptyStringsAndColors(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf, false).Info("validated", slog.String("run", ""), slog.String("model", "metrics.yaml"))

	out := buf.String()
	assert.Contains(t, out, "model=metrics.yaml")
	assert.NotContains(t, out, "run=")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no color")
}

func TestFormatRFC3339Millis(t *testing.T) {
	ts := time.Date(2024, 3, 1, 13, 4, 5, 678_900_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-01T12:04:05.678Z", formatRFC3339Millis(ts))
}
