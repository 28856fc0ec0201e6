package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Laisky/transport-order-mcp/order"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	examples := filepath.Join(dir, "examples")
	require.NoError(t, os.MkdirAll(examples, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(examples, "simple_road.xml"), []byte("<v1/>"), 0o644))

	reloaded := make(chan string, 4)
	c, err := New(
		WithDir(dir),
		WithDebounce(20*time.Millisecond),
		WithReloadHook(func(reason string) {
			select {
			case reloaded <- reason:
			default:
			}
		}),
	)
	require.NoError(t, err)

	// the cache janitor and the shared logger run for the life of the process
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	xml, err := c.Example(order.SimpleRoad)
	require.NoError(t, err)
	require.Equal(t, "<v1/>", xml)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	// give fsnotify a moment to register the directories
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(examples, "simple_road.xml"), []byte("<v2/>"), 0o644))
	}

	select {
	case reason := <-reloaded:
		require.Equal(t, "fsnotify", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}

	xml, err = c.Example(order.SimpleRoad)
	require.NoError(t, err)
	require.Equal(t, "<v2/>", xml)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	t.Logf("✓ catalog reloaded after file change")
}

func TestWatchRequiresDir(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	require.Error(t, c.Watch(context.Background()))
}
