package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(p string) {
		calls.Add(1)
		changed <- p
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: 1\nelements: []\n"), 0644))
	}

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst of writes reported once")
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	require.NoError(t, fw.Watch([]string{path}, func(string) { calls.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	fw, err := NewFileWatcher(time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
