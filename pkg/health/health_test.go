package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WorstStatusWins(t *testing.T) {
	c := NewChecker()
	c.Register("ok", PingCheck(func(context.Context) error { return nil }))
	report := c.Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)

	c.Register("empty", func(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDegraded} })
	assert.Equal(t, StatusDegraded, c.Run(context.Background()).Status)

	c.Register("redis", PingCheck(func(context.Context) error { return errors.New("refused") }))
	report = c.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "refused", report.Components["redis"].Message)
	assert.NotEmpty(t, report.Components["redis"].Latency)
	assert.Equal(t, []string{"empty", "ok", "redis"}, report.Names())
}

func TestDirCheck(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusDegraded, DirCheck(dir)(context.Background()).Status)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	got := DirCheck(dir)(context.Background())
	assert.Equal(t, StatusUp, got.Status)
	assert.Equal(t, "1 entries", got.Message)

	assert.Equal(t, StatusDown, DirCheck(filepath.Join(dir, "missing"))(context.Background()).Status)
}

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte("tree\n"), 0o644))

	assert.Equal(t, StatusUp, FileCheck(path)(context.Background()).Status)
	assert.Equal(t, StatusDown, FileCheck(dir)(context.Background()).Status)
	assert.Equal(t, StatusDown, FileCheck(filepath.Join(dir, "nope"))(context.Background()).Status)
}
