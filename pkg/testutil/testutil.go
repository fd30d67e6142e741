// Package testutil provides testing utilities for cohortdata
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/cohortdata/pkg/compression"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger returns a logger that records entries at level and above,
// and the observer to inspect them.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// UseGlobalLogger installs l as the global logger for the duration of the
// test.
func UseGlobalLogger(t *testing.T, l *zap.Logger) {
	t.Helper()
	prev := logger.Get()
	logger.Set(l)
	t.Cleanup(func() { logger.Set(prev) })
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCompressed writes content compressed with alg to name under dir.
func WriteCompressed(t *testing.T, dir, name, content string, alg compression.Algorithm) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := compression.NewWriter(f, alg, compression.Default)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

// RosterFixture returns the path of the Hogwarts roster used across tests.
func RosterFixture(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate testutil source")
	path := filepath.Join(filepath.Dir(file), "..", "roster", "testdata", "cohort_data.txt")
	_, err := os.Stat(path)
	require.NoError(t, err, "roster fixture missing")
	return path
}

// ReadRosterFixture returns the contents of RosterFixture.
func ReadRosterFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(RosterFixture(t))
	require.NoError(t, err)
	return string(data)
}
