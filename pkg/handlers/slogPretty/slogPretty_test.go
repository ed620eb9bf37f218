package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelInfo}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With(slog.String("op", "service.Save"))

	log.Info("lesson saved", slog.Int64("lesson_id", 42))
	log.Debug("not shown")

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "lesson saved")
	assert.Contains(t, out, `"lesson_id": 42`)
	assert.Contains(t, out, `"op": "service.Save"`)
	assert.NotContains(t, out, "not shown")
}
