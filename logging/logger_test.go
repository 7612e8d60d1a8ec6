package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 120))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("abcdef", 0))
}

func TestRelayLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.Level = LogLevelWarn
	cfg.AddSource = false
	logger := NewLogger(cfg)

	logger.Info("should be filtered")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestRelayLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg).WithComponent("router").WithRequest("req-1", "claudia")

	logger.Info("routing")

	out := buf.String()
	assert.Contains(t, out, `"component":"router"`)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"agent":"claudia"`)
}

func TestLogProviderCallTruncatesPrompt(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg)

	longPrompt := strings.Repeat("x", 500)
	logger.LogProviderCall("claude", "claude-3-sonnet", longPrompt, 10*time.Millisecond, "ok", nil)

	out := buf.String()
	assert.Contains(t, out, "Provider call completed")
	assert.NotContains(t, out, longPrompt, "full prompt must never reach the sink")
}

func TestLogProviderCallError(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.AddSource = false
	logger := NewLogger(cfg)

	logger.LogProviderCall("openai", "gpt-4", "hi", time.Millisecond, "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "Provider call failed")
	assert.Contains(t, out, "boom")
}
