package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/fsnotify/fsnotify"
)

var watchedDirs = []string{".", "templates", "parameters", "rules", "examples"}

// Watch clears the cache whenever a file below the override directory
// changes. Bursts of events are collapsed into a single reload. Watch blocks
// until ctx is done.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.dir == "" {
		return errors.New("catalog watch requires an override directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer w.Close()

	for _, sub := range watchedDirs {
		p := filepath.Join(c.dir, sub)
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			continue
		}
		if err := w.Add(p); err != nil {
			return errors.Wrapf(err, "watch %s", p)
		}
	}
	c.logger.Info("watching catalog directory", zap.String("dir", c.dir))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !c.relevant(ev) {
				continue
			}
			c.trackNewDir(w, ev)
			c.logger.Debug("catalog file changed",
				zap.String("path", ev.Name),
				zap.String("op", ev.Op.String()))

			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			c.reload("fsnotify")
			if err := c.verify(); err != nil {
				// the previous definitions are gone from the cache, so callers
				// will see the same error until the files are fixed
				c.logger.Error("reloaded catalog is invalid", zap.Error(err))
			}
		}
	}
}

func (c *Catalog) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	return true
}

// trackNewDir starts watching a definition directory created after Watch began.
func (c *Catalog) trackNewDir(w *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) || filepath.Dir(ev.Name) != filepath.Clean(c.dir) {
		return
	}
	if info, err := os.Stat(ev.Name); err != nil || !info.IsDir() {
		return
	}
	if err := w.Add(ev.Name); err != nil {
		c.logger.Warn("watch new catalog directory", zap.String("path", ev.Name), zap.Error(err))
	}
}
