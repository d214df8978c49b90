package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]byte
	err   error
}

func (r *recorder) handle(_ context.Context, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]byte(nil), content...))
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return string(r.calls[len(r.calls)-1])
}

func startWatch(t *testing.T, path string, rec *recorder, opts ...Option) context.CancelFunc {
	t.Helper()
	w, err := New(path, append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, rec.handle) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give the watcher time to register before the test writes.
	time.Sleep(100 * time.Millisecond)
	return cancel
}

func TestWatchDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dut.v")
	require.NoError(t, os.WriteFile(path, []byte("module a; endmodule\n"), 0o644))
	rec := &recorder{}
	startWatch(t, path, rec)

	for _, body := range []string{"module b;", "module c;", "module d; endmodule\n"} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return rec.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "module d; endmodule\n", rec.last())
}

func TestWatchSkipsIdenticalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dut.v")
	original := []byte("module a; endmodule\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))
	rec := &recorder{}
	startWatch(t, path, rec)

	require.NoError(t, os.WriteFile(path, original, 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, rec.count())

	require.NoError(t, os.WriteFile(path, []byte("module b; endmodule\n"), 0o644))
	require.Eventually(t, func() bool { return rec.count() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dut.v")
	require.NoError(t, os.WriteFile(path, []byte("module a;"), 0o644))
	rec := &recorder{}
	startWatch(t, path, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.v"), []byte("module z;"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, rec.count())
}

func TestWatchSeesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dut.v")
	require.NoError(t, os.WriteFile(path, []byte("module a;"), 0o644))
	rec := &recorder{}
	startWatch(t, path, rec)

	tmp := filepath.Join(dir, ".dut.v.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("module renamed;"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return rec.last() == "module renamed;" }, 3*time.Second, 20*time.Millisecond)
}

func TestWatchLogsHandlerErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dut.v")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	core, logs := observer.New(zap.WarnLevel)
	rec := &recorder{err: errors.New("generation failed")}
	startWatch(t, path, rec, WithLogger(zap.New(core)))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.Eventually(t, func() bool {
		return logs.FilterMessage("change handler failed").Len() == 1
	}, 3*time.Second, 20*time.Millisecond)

	// The watcher keeps going after a failed handler.
	require.NoError(t, os.WriteFile(path, []byte("v3"), 0o644))
	require.Eventually(t, func() bool { return rec.count() == 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestRunMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "gone", "dut.v"))
	require.NoError(t, err)
	err = w.Run(context.Background(), func(context.Context, []byte) error { return nil })
	assert.Error(t, err)
}
