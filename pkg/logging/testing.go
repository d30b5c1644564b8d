package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures log output for assertions.
type TestLogger struct {
	*zerolog.Logger
	mu     sync.Mutex
	buffer *bytes.Buffer
}

// lockedWriter serializes writes so the ticker goroutine in continuous
// mode can log while a test reads the buffer.
type lockedWriter struct{ tl *TestLogger }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.tl.mu.Lock()
	defer w.tl.mu.Unlock()
	return w.tl.buffer.Write(p)
}

// NewTestLogger creates a new test logger that captures output at every level.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	tl := &TestLogger{buffer: &bytes.Buffer{}}
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := zerolog.New(lockedWriter{tl}).Level(zerolog.TraceLevel)
	tl.Logger = &logger

	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
	})
	return tl
}

// Output returns the captured log output as a string
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buffer.String()
}

// Lines returns the captured log output as individual lines
func (tl *TestLogger) Lines() []string {
	output := strings.TrimSpace(tl.Output())
	if output == "" {
		return []string{}
	}
	return strings.Split(output, "\n")
}

// Contains checks if the log output contains the given string
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// AssertContains asserts that the log contains the given string
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("Log output does not contain %q\nOutput:\n%s", substr, tl.Output())
	}
}

// AssertNotContains asserts that the log does not contain the given string
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("Log output should not contain %q\nOutput:\n%s", substr, tl.Output())
	}
}

// NewNopLogger creates a logger that discards all output
func NewNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
