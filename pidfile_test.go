package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/anylist-notify/internal/config"
)

func TestWritePIDFile_CreatesFileWithCurrentPID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watch.pid")

	cleanup, err := writePIDFile(path)
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestWritePIDFile_FlockPreventsSecondAcquisition(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watch.pid")

	cleanup1, err := writePIDFile(path)
	require.NoError(t, err)

	defer cleanup1()

	cleanup2, err := writePIDFile(path)
	require.Error(t, err)
	assert.Nil(t, cleanup2)
	assert.Contains(t, err.Error(), "already running")
}

func TestWritePIDFile_CleanupRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watch.pid")

	cleanup, err := writePIDFile(path)
	require.NoError(t, err)

	cleanup()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWritePIDFile_EmptyPathReturnsError(t *testing.T) {
	t.Parallel()

	cleanup, err := writePIDFile("")
	require.Error(t, err)
	assert.Nil(t, cleanup)
}

func TestWritePIDFile_CreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "watch.pid")

	cleanup, err := writePIDFile(path)
	require.NoError(t, err)

	defer cleanup()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReadPIDFile_ReadsValidPID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watch.pid")
	require.NoError(t, os.WriteFile(path, []byte("12345\n"), 0o644))

	pid, err := readPIDFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestReadPIDFile_InvalidContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watch.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := readPIDFile(path)
	assert.Error(t, err)
}

func TestReadPIDFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := readPIDFile(filepath.Join(t.TempDir(), "missing.pid"))
	assert.Error(t, err)
}

func testConfigWithCache(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	return cfg
}

func TestPIDFilePath_NextToCache(t *testing.T) {
	t.Parallel()

	cfg := testConfigWithCache(t)

	assert.Equal(t, filepath.Join(filepath.Dir(cfg.Cache.Path), "watch.pid"), pidFilePath(cfg))
}

func TestDaemonPID_NoPIDFile(t *testing.T) {
	t.Parallel()

	_, running := daemonPID(testConfigWithCache(t))
	assert.False(t, running)
}

func TestDaemonPID_LiveProcess(t *testing.T) {
	t.Parallel()

	cfg := testConfigWithCache(t)

	cleanup, err := writePIDFile(pidFilePath(cfg))
	require.NoError(t, err)

	defer cleanup()

	pid, running := daemonPID(cfg)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestDaemonPID_StalePIDFile(t *testing.T) {
	t.Parallel()

	cfg := testConfigWithCache(t)

	// Use a PID far above any real pid_max so the liveness probe fails.
	require.NoError(t, os.MkdirAll(filepath.Dir(pidFilePath(cfg)), 0o755))
	require.NoError(t, os.WriteFile(pidFilePath(cfg), []byte("999999999\n"), 0o644))

	_, running := daemonPID(cfg)
	assert.False(t, running)
}
