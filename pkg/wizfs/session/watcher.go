package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// EventType classifies a watcher event.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
	EventRename EventType = "rename"
)

// Event is one debounced filesystem notification. Path is the host path
// fsnotify reported.
type Event struct {
	Path string
	Type EventType
}

// Watcher watches a directory for external changes, debouncing per path so
// editors that write in bursts raise one event.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	callback func(Event)
	logger   zerolog.Logger
	done     chan struct{}

	mu        sync.Mutex
	started   bool
	closed    bool
	debouncer map[string]*time.Timer
}

// NewWatcher creates a watcher over hostPath.
func NewWatcher(hostPath string, debounce time.Duration, callback func(Event), logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(hostPath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", hostPath, err)
	}
	return &Watcher{
		watcher:   fsw,
		debounce:  debounce,
		callback:  callback,
		logger:    logger,
		done:      make(chan struct{}),
		debouncer: make(map[string]*time.Timer),
	}, nil
}

// Start begins delivering events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	go w.run()
	return nil
}

// Close stops the watcher and cancels pending debounce timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.started {
		close(w.done)
	}
	for _, timer := range w.debouncer {
		timer.Stop()
	}
	w.debouncer = make(map[string]*time.Timer)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	var typ EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		typ = EventCreate
	case event.Op&fsnotify.Write != 0:
		typ = EventModify
	case event.Op&fsnotify.Remove != 0:
		typ = EventDelete
	case event.Op&fsnotify.Rename != 0:
		typ = EventRename
	default:
		return
	}
	e := Event{Path: event.Name, Type: typ}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.debouncer[e.Path]; ok {
		timer.Stop()
	}
	w.debouncer[e.Path] = time.AfterFunc(w.debounce, func() {
		// Deliver under the lock so a timer that races Close either runs
		// to completion before Close returns or sees closed and does
		// nothing after it.
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		delete(w.debouncer, e.Path)
		w.callback(e)
	})
}
