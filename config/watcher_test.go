package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_PollDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "a: 1")
	missing := filepath.Join(dir, "later.env")

	w, err := NewFileWatcher([]string{path, missing})
	require.NoError(t, err)
	assert.Equal(t, []string{path, missing}, w.Paths())

	var events []FileEvent
	w.OnChange(func(e FileEvent) { events = append(events, e) })

	w.Poll()
	assert.Empty(t, events)

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))
	w.Poll()
	require.Len(t, events, 1)
	assert.Equal(t, FileOpWrite, events[0].Op)
	assert.Equal(t, path, events[0].Path)

	writeFile(t, dir, "later.env", "X=1")
	w.Poll()
	require.Len(t, events, 2)
	assert.Equal(t, FileOpCreate, events[1].Op)

	require.NoError(t, os.Remove(path))
	w.Poll()
	require.Len(t, events, 3)
	assert.Equal(t, FileOpRemove, events[2].Op)
	assert.Equal(t, "REMOVE", events[2].Op.String())
}

func TestFileWatcher_StartStop(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "a: 1")
	w, err := NewFileWatcher([]string{path}, WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	changed := make(chan FileEvent, 1)
	w.OnChange(func(e FileEvent) {
		select {
		case changed <- e:
		default:
		}
	})

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case e := <-changed:
		assert.Equal(t, FileOpWrite, e.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("no change event")
	}

	w.Stop()
	w.Stop()
}

func TestFileOp_String(t *testing.T) {
	assert.Equal(t, "CREATE", FileOpCreate.String())
	assert.Equal(t, "WRITE", FileOpWrite.String())
	assert.Equal(t, "UNKNOWN", FileOp(42).String())
}
