package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Debug("hidden")
	log.With("user_id", "u-1").WithGroup("post").Info("post published", "id", "p-1", "note", "went out", "error", errors.New("x"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "post published")
	assert.Contains(t, out, "user_id"+reset+"=u-1")
	assert.Contains(t, out, "post.id"+reset+"=p-1")
	assert.Contains(t, out, `post.note`+reset+`="went out"`)
	assert.Contains(t, out, red+"post.error")
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(New(&buf, "json", slog.LevelWarn))

	log.Info("skipped")
	log.Warn("quota nearly spent", "used", 4)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "quota nearly spent", line["msg"])
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, float64(4), line["used"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
