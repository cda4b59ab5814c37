package session

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
)

type sinkRecorder struct {
	msgs []Outgoing
}

func (r *sinkRecorder) sink(msg Outgoing) { r.msgs = append(r.msgs, msg) }

func (r *sinkRecorder) last() Outgoing {
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

type warnRecorder struct {
	warns []string
}

func (n *warnRecorder) Info(string)     {}
func (n *warnRecorder) Warn(msg string) { n.warns = append(n.warns, msg) }

func newSession(t *testing.T) (*Session, *filesystem.TestFileSystem, *sinkRecorder, *warnRecorder) {
	t.Helper()
	fsys := filesystem.NewTestFileSystem()
	if err := fsys.WriteFile("docs/page.main/view.pug", []byte("div hello"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile("docs/page.main/app.json", []byte(`{"mode":"page"}`), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	rec := &sinkRecorder{}
	warn := &warnRecorder{}
	s := New("docs/page.main", fsys, rec.sink, warn, zerolog.New(&bytes.Buffer{}))
	return s, fsys, rec, warn
}

func TestInitAnnouncesTabs(t *testing.T) {
	_, _, rec, _ := newSession(t)
	init, ok := rec.msgs[0].(Init)
	if !ok {
		t.Fatalf("first message = %T, want Init", rec.msgs[0])
	}
	if init.FolderName != "page.main" {
		t.Errorf("FolderName = %q", init.FolderName)
	}
	if len(init.Tabs) != 7 {
		t.Errorf("tab count = %d, want 7", len(init.Tabs))
	}
	if init.Tabs[0].Key != "app" || init.Tabs[1].Key != "pug" {
		t.Errorf("tab order = %v", init.Tabs)
	}
}

func TestReadDeliversContent(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Read("pug")
	content, ok := rec.last().(Content)
	if !ok {
		t.Fatalf("last message = %T, want Content", rec.last())
	}
	if content.Text != "div hello" || content.Missing {
		t.Errorf("content = %+v", content)
	}
}

func TestReadMissingFile(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Read("scss")
	content := rec.last().(Content)
	if !content.Missing {
		t.Error("missing file not flagged")
	}
}

func TestReadPreservesUnsavedEdits(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Read("pug")
	s.Edit("pug", "edited")
	s.Read("pug")
	content := rec.last().(Content)
	if content.Text != "edited" {
		t.Errorf("re-read returned %q, want the unsaved buffer", content.Text)
	}
}

func TestEditDirtyTracking(t *testing.T) {
	s, _, _, _ := newSession(t)
	s.Read("pug")
	if s.Dirty("pug") {
		t.Error("clean after load expected")
	}
	s.Edit("pug", "changed")
	if !s.Dirty("pug") {
		t.Error("dirty after divergent edit expected")
	}
	s.Edit("pug", "div hello")
	if s.Dirty("pug") {
		t.Error("clean after editing back to baseline expected")
	}
}

func TestWritePersistsAndCleans(t *testing.T) {
	s, fsys, rec, _ := newSession(t)
	s.Read("pug")
	s.Edit("pug", "div updated")
	if err := s.Write("pug", "div updated"); err != nil {
		t.Fatal(err)
	}
	saved, ok := rec.last().(Saved)
	if !ok || saved.Key != "pug" {
		t.Fatalf("last message = %+v, want Saved{pug}", rec.last())
	}
	if s.Dirty("pug") {
		t.Error("still dirty after save")
	}
	data, err := fs.ReadFile(fsys, "docs/page.main/view.pug")
	if err != nil || string(data) != "div updated" {
		t.Errorf("on-disk content = (%q, %v)", data, err)
	}
}

func TestWriteUnknownKey(t *testing.T) {
	s, _, _, _ := newSession(t)
	if err := s.Write("nope", "x"); err == nil {
		t.Error("expected a validation error")
	}
}

func TestExternalChangeAppliedWhenClean(t *testing.T) {
	s, fsys, rec, _ := newSession(t)
	s.Read("pug")
	s.SetWriteGrace(0)

	if err := fsys.WriteFile("docs/page.main/view.pug", []byte("div external"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	s.ExternalChange("view.pug")
	content := rec.last().(Content)
	if content.Text != "div external" {
		t.Errorf("buffer = %q, want external content", content.Text)
	}
}

func TestExternalChangeDroppedWhenDirty(t *testing.T) {
	s, fsys, rec, warn := newSession(t)
	s.Read("pug")
	s.SetWriteGrace(0)
	s.Edit("pug", "my edits")

	before := len(rec.msgs)
	if err := fsys.WriteFile("docs/page.main/view.pug", []byte("div external"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	s.ExternalChange("view.pug")
	if len(rec.msgs) != before {
		t.Error("dirty buffer was overwritten by external change")
	}
	if len(warn.warns) != 1 {
		t.Errorf("warns = %v, want one preserved-edits notice", warn.warns)
	}
	if !s.Dirty("pug") {
		t.Error("dirty flag lost")
	}
}

func TestSelfWriteEchoSuppressed(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Read("pug")
	if err := s.Write("pug", "div saved"); err != nil {
		t.Fatal(err)
	}
	before := len(rec.msgs)
	s.ExternalChange("view.pug") // echo of our own write, inside the window
	if len(rec.msgs) != before {
		t.Error("self-write echo not suppressed")
	}
}

func TestSelfWriteWindowExpires(t *testing.T) {
	s, fsys, rec, _ := newSession(t)
	s.Read("pug")
	s.SetWriteGrace(time.Millisecond)
	if err := s.Write("pug", "div saved"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := fsys.WriteFile("docs/page.main/view.pug", []byte("div later"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	s.ExternalChange("view.pug")
	content, ok := rec.last().(Content)
	if !ok || content.Text != "div later" {
		t.Errorf("change after grace window not applied: %+v", rec.last())
	}
}

func TestExternalDelete(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Read("pug")
	s.ExternalDelete("view.pug")
	deleted, ok := rec.last().(Deleted)
	if !ok || deleted.Key != "pug" {
		t.Fatalf("last message = %+v, want Deleted{pug}", rec.last())
	}

	// Dirty buffers ignore the deletion.
	s.Edit("pug", "still mine")
	before := len(rec.msgs)
	s.ExternalDelete("view.pug")
	if len(rec.msgs) != before {
		t.Error("external delete applied to a dirty buffer")
	}
}

func TestInsertTemplate(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.InsertTemplate("wiz-page-main()\n\n", false)

	openTab, ok := rec.msgs[len(rec.msgs)-2].(OpenTab)
	if !ok || openTab.Key != "pug" {
		t.Errorf("expected OpenTab{pug} before the template, got %+v", rec.msgs[len(rec.msgs)-2])
	}
	tmpl := rec.last().(Template)
	if tmpl.Text != "wiz-page-main()\n" {
		t.Errorf("template text = %q, want exactly one trailing newline", tmpl.Text)
	}
}
