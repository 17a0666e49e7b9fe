package watch

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

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	got := make(chan string, 1)
	w, err := New(func(p string) { got <- p }, &Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Add(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	select {
	case p := <-got:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, p)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	var calls atomic.Int32
	w, err := New(func(string) { calls.Add(1) }, &Options{Debounce: 200 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Add(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst of writes should notify once")
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "scene.yaml")
	sibling := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(watched, []byte("v1"), 0o644))

	var calls atomic.Int32
	w, err := New(func(string) { calls.Add(1) }, &Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Add(watched))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(sibling, []byte("noise"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := New(nil, nil)
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
