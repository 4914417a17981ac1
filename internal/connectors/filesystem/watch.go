package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docthemes/internal/logger"
)

// DefaultDebounce groups bursts of events (editors write in several steps).
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports files created or modified under a set of folders.
type Watcher struct {
	roots    []string
	opts     Options
	debounce time.Duration
}

// NewWatcher creates a watcher over roots.
func NewWatcher(roots []string, opts Options, debounce time.Duration) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no folders to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	resolved := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := ResolvePath(r)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a folder", r)
		}
		resolved = append(resolved, abs)
	}

	return &Watcher{roots: resolved, opts: opts, debounce: debounce}, nil
}

// Watch emits batches of changed files until ctx is cancelled. The channel
// is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan []File, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, root := range w.roots {
		if err := w.addTree(fsw, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan []File)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- []File) {
	defer close(out)
	defer fsw.Close()

	var (
		pending = make(map[string]File)
		timer   *time.Timer
		fire    = make(chan struct{}, 1)
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			file, isDir, changed := w.handleFsEvent(event)
			if isDir {
				if err := w.addTree(fsw, event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
				}
				continue
			}
			if !changed {
				continue
			}
			pending[file.Path] = file
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			batch := make([]File, 0, len(pending))
			for _, f := range pending {
				batch = append(batch, f)
			}
			pending = make(map[string]File)
			if len(batch) == 0 {
				continue
			}
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleFsEvent classifies an event. New folders are reported so they can
// be watched; removals are ignored since uploads cannot be withdrawn.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (file File, isDir, changed bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return File{}, false, false
	}
	root := w.rootOf(event.Name)
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return File{}, false, false
	}
	if !w.opts.IncludeHidden && isHidden(rel) {
		return File{}, false, false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return File{}, false, false
	}
	if info.IsDir() {
		return File{}, event.Has(fsnotify.Create), false
	}
	if !info.Mode().IsRegular() || !w.opts.accepts(event.Name) {
		return File{}, false, false
	}
	return File{Path: event.Name, Name: filepath.ToSlash(rel), Size: info.Size()}, false, true
}

func (w *Watcher) rootOf(path string) string {
	best := ""
	for _, r := range w.roots {
		if rel, err := filepath.Rel(r, path); err == nil && !filepath.IsAbs(rel) && rel != ".." &&
			!hasParentPrefix(rel) && len(r) > len(best) {
			best = r
		}
	}
	if best == "" {
		return filepath.Dir(path)
	}
	return best
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.opts.IncludeHidden && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
