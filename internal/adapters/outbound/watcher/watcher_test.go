package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dataval/internal/adapters/outbound/watcher"
)

func start(t *testing.T, root string, opts ...watcher.Option) <-chan watcher.Batch {
	t.Helper()
	opts = append([]watcher.Option{watcher.WithDebounce(50 * time.Millisecond)}, opts...)
	w, err := watcher.New(root, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan watcher.Batch, 16)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b watcher.Batch) { batches <- b }) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}
	return batches
}

func next(t *testing.T, batches <-chan watcher.Batch) watcher.Batch {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
		return watcher.Batch{}
	}
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := watcher.New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWatcher_ChangedAndRemoved(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0644))

	batches := start(t, dir)

	created := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(created, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(created, []byte(`{"x":1}`), 0644))

	b := next(t, batches)
	assert.Equal(t, []string{created}, b.Changed, "writes within the debounce window coalesce")
	assert.Empty(t, b.Removed)

	require.NoError(t, os.Remove(existing))
	b = next(t, batches)
	assert.Equal(t, []string{existing}, b.Removed)
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	batches := start(t, dir)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	f := filepath.Join(sub, "c.csv")
	require.NoError(t, os.WriteFile(f, []byte("a\n1\n"), 0644))

	b := next(t, batches)
	assert.Contains(t, b.Changed, f)
}

func TestWatcher_FilterAndExcludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vendor"), 0755))

	batches := start(t, dir,
		watcher.WithExcludes("vendor"),
		watcher.WithFilter(func(p string) bool { return strings.HasSuffix(p, ".xml") }),
	)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "x.xml"), []byte("<a/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	want := filepath.Join(dir, "keep.xml")
	require.NoError(t, os.WriteFile(want, []byte("<a/>"), 0644))

	b := next(t, batches)
	assert.Equal(t, []string{want}, b.Changed)
}

func TestWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "one.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0644))

	batches := start(t, target)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(target, []byte(`{"a":1}`), 0644))

	b := next(t, batches)
	assert.Equal(t, []string{target}, b.Changed)
}
