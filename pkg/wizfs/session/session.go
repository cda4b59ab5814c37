// Package session mediates between the editor surface and one open Wiz
// folder: read-on-demand file loading, dirty tracking, save, and
// external-change detection with self-write suppression.
package session

import (
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/wizfolder"
)

// DefaultWriteGrace is the window after a save in which a change event for
// the same file is treated as an echo of our own write.
const DefaultWriteGrace = 150 * time.Millisecond

// fileState tracks one tab's buffer against its last-known-saved baseline.
// A nil baseline means the key was never loaded.
type fileState struct {
	buffer   []byte
	baseline []byte
	dirty    bool
}

// Session is the per-open-folder controller.
type Session struct {
	ID     string
	Dir    string // rooted name of the folder
	fsys   filesystem.FullFileSystem
	sink   Sink
	logger zerolog.Logger

	notifier   core.Notifier
	writeGrace time.Duration

	mu     sync.Mutex
	files  map[string]*fileState
	writes map[string]time.Time // self-write timestamps by filename
}

// New opens a session over dir and announces the tab set through sink.
func New(dir string, fsys filesystem.FullFileSystem, sink Sink, notifier core.Notifier, logger zerolog.Logger) *Session {
	s := &Session{
		ID:         core.NewID(),
		Dir:        dir,
		fsys:       fsys,
		sink:       sink,
		notifier:   notifier,
		writeGrace: DefaultWriteGrace,
		logger:     logger.With().Str("folder", dir).Logger(),
		files:      make(map[string]*fileState),
		writes:     make(map[string]time.Time),
	}
	tabs := make([]Tab, 0, len(wizfolder.FileKeys))
	for _, fk := range wizfolder.FileKeys {
		tabs = append(tabs, Tab{Key: fk.Key, Label: fk.Label, Filename: fk.Filename})
	}
	s.sink(Init{FolderName: path.Base(dir), Tabs: tabs})
	return s
}

// SetWriteGrace overrides the self-write suppression window.
func (s *Session) SetWriteGrace(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeGrace = d
}

// Read loads a key's file on demand and delivers its content. Re-reading
// an already-loaded key re-delivers the buffer without touching disk, so
// unsaved edits survive tab switches.
func (s *Session) Read(key string) {
	filename := wizfolder.FilenameForKey(key)
	if filename == "" {
		s.logger.Warn().Str("key", key).Msg("read for unknown key")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.files[key]; ok && st.baseline != nil {
		s.sink(Content{Key: key, Filename: filename, Text: string(st.buffer)})
		return
	}

	data, err := fs.ReadFile(s.fsys, path.Join(s.Dir, filename))
	missing := err != nil
	if missing {
		data = nil
	}
	s.files[key] = &fileState{buffer: data, baseline: append([]byte{}, data...)}
	s.sink(Content{Key: key, Filename: filename, Text: string(data), Missing: missing})
}

// Edit updates a key's buffer from the surface. Dirty means the buffer
// diverges from the baseline.
func (s *Session) Edit(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.files[key]
	if !ok {
		st = &fileState{}
		s.files[key] = st
	}
	st.buffer = []byte(text)
	st.dirty = st.baseline == nil || string(st.baseline) != text
}

// Write persists a key's content and resets it to clean. The write time is
// recorded so the watcher's echo of it is suppressed.
func (s *Session) Write(key, text string) error {
	filename := wizfolder.FilenameForKey(key)
	if filename == "" {
		return &core.ValidationError{Field: "key", Value: key, Reason: "unknown file key"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fsys.WriteFile(path.Join(s.Dir, filename), []byte(text), 0644); err != nil {
		return err
	}
	s.writes[filename] = time.Now()
	st, ok := s.files[key]
	if !ok {
		st = &fileState{}
		s.files[key] = st
	}
	st.buffer = []byte(text)
	st.baseline = []byte(text)
	st.dirty = false
	s.sink(Saved{Key: key, Filename: filename})
	return nil
}

// Dirty reports whether key has unsaved edits.
func (s *Session) Dirty(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.files[key]
	return ok && st.dirty
}

// ExternalChange applies an on-disk change noticed by the watcher. Events
// within the write-grace window of our own save are echoes and dropped.
// A dirty buffer is never overwritten; the user keeps their edits.
func (s *Session) ExternalChange(filename string) {
	key := keyForFilename(filename)
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.writes[filename]; ok && time.Since(at) < s.writeGrace {
		s.logger.Debug().Str("file", filename).Msg("suppressed self-write echo")
		return
	}
	st, ok := s.files[key]
	if !ok || st.baseline == nil {
		// never loaded; the next Read picks up the new content
		return
	}
	if st.dirty {
		s.notifier.Warn(filename + " changed on disk; your unsaved edits were preserved")
		return
	}
	data, err := fs.ReadFile(s.fsys, path.Join(s.Dir, filename))
	missing := err != nil
	st.buffer = data
	st.baseline = append([]byte{}, data...)
	s.sink(Content{Key: key, Filename: filename, Text: string(data), Missing: missing})
}

// ExternalDelete applies an on-disk deletion: a clean buffer resets to
// empty, a dirty one is left alone.
func (s *Session) ExternalDelete(filename string) {
	key := keyForFilename(filename)
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.files[key]
	if !ok || st.baseline == nil || st.dirty {
		return
	}
	st.buffer = nil
	st.baseline = []byte{}
	s.sink(Deleted{Key: key, Filename: filename})
}

// InsertTemplate routes drop-insertion text to the pug tab: the surface is
// switched to it and receives the text with exactly one trailing newline.
func (s *Session) InsertTemplate(text string, missing bool) {
	s.sink(OpenTab{Key: "pug"})
	s.sink(Template{Text: strings.TrimRight(text, "\n") + "\n", Missing: missing})
}

func keyForFilename(filename string) string {
	for _, fk := range wizfolder.FileKeys {
		if fk.Filename == filename {
			return fk.Key
		}
	}
	return ""
}
