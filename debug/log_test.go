package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Fatal("default logger must be disabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Info("render target created", "addr", 0x100000)
	if !strings.Contains(buf.String(), "render target created") {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	SetLogger(nil)
	Logger().Warn("dropped")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatal("logged after disabling")
	}
}
