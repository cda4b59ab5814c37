package server

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs"
	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/session"
)

// newLoopback wires a server with one registered client whose send channel
// stands in for the websocket.
func newLoopback(t *testing.T) (*Server, *client, *filesystem.TestFileSystem) {
	t.Helper()
	fsys := filesystem.NewTestFileSystem()
	logger := zerolog.New(&bytes.Buffer{})
	w := wizfs.NewWorkspace(fsys, wizfs.DefaultConfig(), core.NopNotifier{}, logger)
	s := New(w, nil, logger)

	c := newClient("test-client", nil)
	s.clients[c.id] = c
	s.sessions[c.id] = make(map[string]*session.Session)
	s.watchers[c.id] = make(map[string]*session.Watcher)
	return s, c, fsys
}

func drain(c *client) []Envelope {
	var envs []Envelope
	for {
		select {
		case data := <-c.send:
			var env Envelope
			if err := json.Unmarshal(data, &env); err == nil {
				envs = append(envs, env)
			}
		default:
			return envs
		}
	}
}

func send(t *testing.T, s *Server, c *client, env Envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	s.handleMessage(c, data)
}

func TestOpenAndRead(t *testing.T) {
	s, c, fsys := newLoopback(t)
	if err := fsys.WriteFile("docs/page.main/view.pug", []byte("div hi"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}

	send(t, s, c, Envelope{Type: TypeOpen, Folder: "docs/page.main"})
	envs := drain(c)
	if len(envs) == 0 || envs[0].Type != TypeInit {
		t.Fatalf("first envelope = %+v, want init", envs)
	}
	if envs[0].FolderName != "page.main" {
		t.Errorf("folderName = %q", envs[0].FolderName)
	}

	send(t, s, c, Envelope{Type: TypeRead, Folder: "docs/page.main", Key: "pug"})
	envs = drain(c)
	if len(envs) != 1 || envs[0].Type != TypeContent || envs[0].Text != "div hi" {
		t.Errorf("read reply = %+v", envs)
	}
}

func TestOpenNonDocumentErrors(t *testing.T) {
	s, c, fsys := newLoopback(t)
	if err := fsys.MkdirAll("plain", 0755); err != nil {
		t.Fatal(err)
	}
	send(t, s, c, Envelope{Type: TypeOpen, Folder: "plain"})
	envs := drain(c)
	if len(envs) != 1 || envs[0].Type != TypeError {
		t.Errorf("envelopes = %+v, want one error", envs)
	}
}

func TestMutationBroadcastsState(t *testing.T) {
	s, c, fsys := newLoopback(t)
	send(t, s, c, Envelope{Type: TypeCreateFile, Dir: "", Name: "notes.txt"})
	if !filesystem.Exists(fsys, "notes.txt") {
		t.Error("file not created")
	}
	envs := drain(c)
	var sawTree, sawHistory bool
	for _, env := range envs {
		switch env.Type {
		case TypeTree:
			sawTree = true
		case TypeHistory:
			sawHistory = true
			if env.Undo != 1 {
				t.Errorf("history undo = %d, want 1", env.Undo)
			}
		}
	}
	if !sawTree || !sawHistory {
		t.Errorf("envelopes = %+v, want tree and history", envs)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s, c, fsys := newLoopback(t)
	send(t, s, c, Envelope{Type: TypeCreateFile, Name: "a.txt"})
	send(t, s, c, Envelope{Type: TypeUndo})
	if filesystem.Exists(fsys, "a.txt") {
		t.Error("file survives undo")
	}
	send(t, s, c, Envelope{Type: TypeRedo})
	if !filesystem.Exists(fsys, "a.txt") {
		t.Error("file missing after redo")
	}
}

func TestUnknownKindIgnored(t *testing.T) {
	s, c, _ := newLoopback(t)
	send(t, s, c, Envelope{Type: "teleport"})
	if envs := drain(c); len(envs) != 0 {
		t.Errorf("unknown kind produced envelopes: %+v", envs)
	}
}

func TestMalformedJSONIgnored(t *testing.T) {
	s, c, _ := newLoopback(t)
	s.handleMessage(c, []byte("{not json"))
	if envs := drain(c); len(envs) != 0 {
		t.Errorf("malformed message produced envelopes: %+v", envs)
	}
}

func TestTemplateRequest(t *testing.T) {
	s, c, fsys := newLoopback(t)
	if err := fsys.WriteFile("src/component.nav/view.pug", []byte("div"), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile("src/component.nav/app.json", []byte(`{"mode":"component","template":"wiz-component-nav()"}`), fs.FileMode(0644)); err != nil {
		t.Fatal(err)
	}

	send(t, s, c, Envelope{Type: TypeOpen, Folder: "src/component.nav"})
	drain(c)
	send(t, s, c, Envelope{Type: TypeRequestTemplate, Folder: "src/component.nav", Path: "file:///src/component.nav"})
	envs := drain(c)
	if len(envs) != 2 || envs[0].Type != TypeOpenTab || envs[0].Key != "pug" {
		t.Fatalf("envelopes = %+v, want openTab then template", envs)
	}
	if envs[1].Type != TypeTemplate || envs[1].Text != "wiz-component-nav()\n" {
		t.Errorf("template envelope = %+v", envs[1])
	}
}

func TestDropClientStopsWritePump(t *testing.T) {
	s, c, _ := newLoopback(t)

	s.mu.Lock()
	s.dropClientLocked(c.id)
	s.mu.Unlock()

	if _, ok := <-c.send; ok {
		t.Error("send channel still open after drop")
	}
	if err := c.enqueue(&Envelope{Type: TypeNotice, Message: "late"}); err != ErrClientClosed {
		t.Errorf("enqueue after drop = %v, want ErrClientClosed", err)
	}

	// A second drop of the same id must be harmless.
	s.mu.Lock()
	s.dropClientLocked(c.id)
	s.mu.Unlock()
}
