package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeProfile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	current, err := Load(path)
	require.NoError(t, err)
	w, err := NewWatcher(path, current,
		WithDebounce(20*time.Millisecond),
		WithWatchLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherDeliversTriggerChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: live\n")
	w := startWatcher(t, path)

	writeProfile(t, path, "name: live\ntriggers:\n  joy: [woohoo]\n")

	select {
	case r := <-w.Updates():
		assert.Equal(t, "live", r.Profile.Name)
		assert.Equal(t, map[string][]string{"joy": {"woohoo"}}, r.Triggers)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherRejectsAxisChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: live\n")
	w := startWatcher(t, path)

	writeProfile(t, path, "axes: [calm, storm]\n")
	select {
	case r := <-w.Updates():
		t.Fatalf("unexpected reload with axes %v", r.Profile.Axes)
	case <-time.After(300 * time.Millisecond):
	}

	writeProfile(t, path, "triggers:\n  fear: [boo]\n")
	select {
	case r := <-w.Updates():
		assert.Equal(t, []string{"boo"}, r.Triggers["fear"])
	case <-time.After(5 * time.Second):
		t.Fatal("watcher stopped delivering after a rejected reload")
	}
}

func TestWatcherSkipsInvalidFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: live\n")
	w := startWatcher(t, path)

	writeProfile(t, path, "session:\n  decay_every: -3\n")
	select {
	case <-w.Updates():
		t.Fatal("invalid profile was delivered")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	writeProfile(t, path, "name: live\n")
	w := startWatcher(t, path)

	writeProfile(t, filepath.Join(dir, "other.yaml"), "triggers:\n  joy: [nope]\n")
	select {
	case <-w.Updates():
		t.Fatal("reload triggered by another file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: live\n")

	w, err := NewWatcher(path, DefaultProfile())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()

	_, open := <-w.Updates()
	assert.False(t, open, "updates must be closed after Stop")
	assert.NoError(t, w.Start(context.Background()), "start after stop is a no-op")
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "profile.yaml"), DefaultProfile())
	require.NoError(t, err)
	w.Stop()

	_, open := <-w.Updates()
	assert.False(t, open)
}

func TestWatcherContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeProfile(t, path, "name: live\n")

	w, err := NewWatcher(path, DefaultProfile())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, open := <-w.Updates():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher ignored cancellation")
	}
	w.Stop()
}
