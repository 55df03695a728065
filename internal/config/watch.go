package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Reload is the outcome of reloading after a file change. Err is set when
// the new config could not be loaded or is invalid; the previous config
// stays in effect then.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher reloads the config when the config file or the views file
// changes. The directories are watched rather than the files, so editors
// that replace files on save are seen too.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	out     chan Reload

	mu      sync.Mutex
	current *Config
	timer   *time.Timer
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher watches the files of cfg. cfg must have been loaded from a
// file.
func NewWatcher(cfg *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		files:   map[string]bool{},
		out:     make(chan Reload, 1),
		current: cfg,
		done:    make(chan struct{}),
	}
	dirs := map[string]bool{}
	for _, f := range []string{cfg.Path(), cfg.ViewsFile} {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers reloads. Only the latest pending reload is kept.
func (w *Watcher) Changes() <-chan Reload {
	return w.out
}

// Current returns the config in effect.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.files[abs] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	path := w.current.Path()
	w.mu.Unlock()

	cfg, err := Load(path)
	if err == nil {
		err = Validate(cfg)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	r := Reload{Err: err}
	if err == nil {
		// Keep the cache consumers already hold, invalidating its index.
		w.current.Tags.Reset(cfg.TagGroups)
		cfg.Tags = w.current.Tags
		w.current = cfg
		r.Config = cfg
	}
	w.mu.Unlock()

	select {
	case <-w.out:
	default:
	}
	select {
	case w.out <- r:
	default:
	}
}
