package watch

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	onChange := func(context.Context, []string) error { return nil }

	tests := []struct {
		message   string
		watch     Watch
		shouldErr bool
	}{
		{
			message: "initialize the watch with the default debounce",
			watch:   Watch{Path: dir, OnChange: onChange},
		},
		{
			message:   "have an error because of the missing path",
			watch:     Watch{OnChange: onChange},
			shouldErr: true,
		},
		{
			message:   "have an error because of the missing callback",
			watch:     Watch{Path: dir},
			shouldErr: true,
		},
		{
			message:   "have an error because of a negative debounce",
			watch:     Watch{Path: dir, OnChange: onChange, Debounce: -time.Second},
			shouldErr: true,
		},
		{
			message:   "have an error because of a missing path",
			watch:     Watch{Path: filepath.Join(dir, "missing"), OnChange: onChange},
			shouldErr: true,
		},
	}

	for i := 0; i < len(tests); i++ {
		tt := tests[i]
		t.Run("Should "+tt.message, func(t *testing.T) {
			t.Parallel()

			err := tt.watch.Init()
			require.Equal(t, tt.shouldErr, (err != nil))
			if err != nil {
				return
			}
			require.Equal(t, 250*time.Millisecond, tt.watch.Debounce)
		})
	}
}

func TestWatchRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		note    = filepath.Join(dir, "note.md")
		changes = make(chan []string, 16)
	)
	w := Watch{
		Path:     dir,
		Debounce: 20 * time.Millisecond,
		OnChange: func(_ context.Context, paths []string) error {
			changes <- paths
			return nil
		},
	}
	require.NoError(t, w.Init())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var received []string
	require.Eventually(t, func() bool {
		_ = ioutil.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)
		_ = ioutil.WriteFile(note, []byte("# note"), 0o644)
		select {
		case received = <-changes:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
	require.Equal(t, []string{filepath.Clean(note)}, received)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
