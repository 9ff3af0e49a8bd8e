package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("name", "ctl"))
	ctx = AppendCtx(ctx, slog.Group("frame", slog.Int("width", 990)))
	log.InfoContext(ctx, "decoded", slog.Int("mcus", 4340))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "decoded", rec["msg"])
	assert.Equal(t, "ctl", rec["name"])
	assert.Equal(t, float64(4340), rec["mcus"])
	assert.Equal(t, map[string]any{"width": float64(990)}, rec["frame"])
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.With("source", "test").Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "source=test")
}

func TestAppendCtx_DoesNotLeak(t *testing.T) {
	base := AppendCtx(context.Background(), slog.String("a", "1"))
	left := AppendCtx(base, slog.String("b", "2"))
	right := AppendCtx(base, slog.String("c", "3"))

	assert.Len(t, base.Value(slogFields), 1)
	assert.Len(t, left.Value(slogFields), 2)
	assert.Equal(t, "c", right.Value(slogFields).([]slog.Attr)[1].Key)
}

func TestRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jfifctl.log")
	w := RotatingFile(path, 1, 2)
	log := Logger(w, false, slog.LevelInfo)
	log.Info("written")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=written")
}
