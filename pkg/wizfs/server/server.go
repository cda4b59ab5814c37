// Package server bridges the editor surface to a workspace over a local
// websocket. Messages are JSON envelopes; each client gets a buffered
// write pump so a slow surface never blocks the host.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs"
	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/droppath"
	"github.com/wizkit/wizfs/pkg/wizfs/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// local use only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HostPather converts rooted names to host paths; the OS filesystem
// implements it. Watchers need it, so sessions over purely virtual
// filesystems run without external-change detection.
type HostPather interface {
	HostPath(name string) (string, error)
	RootedName(hostPath string) (string, bool)
}

// Server terminates websocket connections and routes envelopes between
// surfaces and the workspace.
type Server struct {
	workspace *wizfs.Workspace
	hostFS    HostPather
	logger    zerolog.Logger

	httpServer *http.Server
	addr       string

	mu       sync.Mutex
	clients  map[string]*client
	sessions map[string]map[string]*session.Session // client id -> folder -> session
	watchers map[string]map[string]*session.Watcher
}

// New creates a server over workspace. hostFS may be nil; sessions then
// run without watchers.
func New(workspace *wizfs.Workspace, hostFS HostPather, logger zerolog.Logger) *Server {
	return &Server{
		workspace: workspace,
		hostFS:    hostFS,
		logger:    logger,
		clients:   make(map[string]*client),
		sessions:  make(map[string]map[string]*session.Session),
		watchers:  make(map[string]map[string]*session.Watcher),
	}
}

// Start listens on addr and serves until Stop.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.addr = listener.Addr().String()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("server error")
		}
	}()
	s.logger.Info().Str("addr", s.addr).Msg("listening")
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string { return s.addr }

// Stop closes every client and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for id := range s.clients {
		s.dropClientLocked(id)
	}
	s.mu.Unlock()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	c := newClient(core.NewID(), conn)

	s.mu.Lock()
	s.clients[c.id] = c
	s.sessions[c.id] = make(map[string]*session.Session)
	s.watchers[c.id] = make(map[string]*session.Watcher)
	s.mu.Unlock()

	go c.writePump()
	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.mu.Lock()
		s.dropClientLocked(c.id)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn().Err(err).Msg("read error")
			}
			return
		}
		s.handleMessage(c, message)
	}
}

// dropClientLocked releases a client's sessions, watchers and write pump.
// Caller holds s.mu.
func (s *Server) dropClientLocked(id string) {
	for _, w := range s.watchers[id] {
		w.Close()
	}
	if c, ok := s.clients[id]; ok {
		c.close()
	}
	delete(s.watchers, id)
	delete(s.sessions, id)
	delete(s.clients, id)
}

func (s *Server) handleMessage(c *client, message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		s.logger.Warn().Err(err).Msg("malformed envelope")
		return
	}
	ctx := context.Background()

	switch env.Type {
	case TypeOpen:
		s.openFolder(c, env.Folder)
	case TypeRead:
		if sess := s.sessionFor(c, env.Folder); sess != nil {
			sess.Read(env.Key)
		}
	case TypeEdit:
		if sess := s.sessionFor(c, env.Folder); sess != nil {
			sess.Edit(env.Key, env.Text)
		}
	case TypeWrite:
		if sess := s.sessionFor(c, env.Folder); sess != nil {
			if err := sess.Write(env.Key, env.Text); err != nil {
				s.sendError(c, err)
			}
		}
	case TypeRequestTemplate:
		if sess := s.sessionFor(c, env.Folder); sess != nil {
			text, missing := s.workspace.TemplateFor(env.Path)
			sess.InsertTemplate(text, missing)
		}
	case TypeRequestTemplateLastDrag:
		if sess := s.sessionFor(c, env.Folder); sess != nil {
			text, missing := s.workspace.TemplateFromLastDrag()
			sess.InsertTemplate(text, missing)
		}
	case TypeCreateFile:
		s.afterMutation(c, s.workspace.CreateFile(ctx, env.Dir, env.Name))
	case TypeCreateFolder:
		s.afterMutation(c, s.workspace.CreateFolder(ctx, env.Dir, env.Name))
	case TypeCreateDocument:
		_, err := s.workspace.CreateDocument(ctx, env.Mode, env.Name, env.Dir, env.Title)
		s.afterMutation(c, err)
	case TypeRename:
		s.afterMutation(c, s.workspace.Rename(ctx, env.Path, env.Name))
	case TypeDelete:
		s.afterMutation(c, s.workspace.Delete(ctx, env.Path))
	case TypeMove:
		var target wizfs.Node
		if err := json.Unmarshal(env.Target, &target); err != nil {
			s.sendError(c, fmt.Errorf("malformed move target: %w", err))
			return
		}
		_, err := s.workspace.DropInternal(ctx, &target, env.Sources)
		s.afterMutation(c, err)
	case TypeDrop:
		_, err := s.workspace.DropExternal(ctx, droppath.Payload(env.Payload), env.Dir)
		s.afterMutation(c, err)
	case TypeSetLastDrag:
		s.workspace.SetLastDrag(env.Sources)
	case TypeRequestTree:
		s.sendTree(c)
	case TypeUndo:
		_, err := s.workspace.Undo(ctx)
		s.afterMutation(c, err)
	case TypeRedo:
		_, err := s.workspace.Redo(ctx)
		s.afterMutation(c, err)
	default:
		s.logger.Warn().Str("type", env.Type).Msg("unknown message kind")
	}
}

// openFolder spawns a session (and a watcher when host paths are
// available) for the client.
func (s *Server) openFolder(c *client, folder string) {
	sink := func(msg session.Outgoing) {
		s.sendOutgoing(c, folder, msg)
	}
	sess, err := s.workspace.OpenDocument(folder, sink)
	if err != nil {
		s.sendError(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sessions, ok := s.sessions[c.id]; ok {
		sessions[folder] = sess
	}
	if s.hostFS == nil {
		return
	}
	hostPath, err := s.hostFS.HostPath(folder)
	if err != nil {
		s.logger.Warn().Err(err).Str("folder", folder).Msg("no host path; watcher skipped")
		return
	}
	w, err := session.NewWatcher(hostPath, s.workspace.Config().WatchDebounce(), func(e session.Event) {
		s.dispatchWatch(sess, e)
	}, s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Str("folder", folder).Msg("watcher unavailable")
		return
	}
	if err := w.Start(); err != nil {
		s.logger.Warn().Err(err).Msg("watcher start failed")
		w.Close()
		return
	}
	if watchers, ok := s.watchers[c.id]; ok {
		watchers[folder] = w
	}
}

func (s *Server) dispatchWatch(sess *session.Session, e session.Event) {
	rooted, ok := s.hostFS.RootedName(e.Path)
	if !ok || path.Dir(rooted) != sess.Dir {
		return
	}
	filename := path.Base(rooted)
	switch e.Type {
	case session.EventDelete, session.EventRename:
		sess.ExternalDelete(filename)
	default:
		sess.ExternalChange(filename)
	}
}

func (s *Server) sessionFor(c *client, folder string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[c.id][folder]
	if sess == nil {
		s.logger.Warn().Str("folder", folder).Msg("message for unopened folder")
	}
	return sess
}

// afterMutation reports an error if any, then refreshes tree and history
// on every client.
func (s *Server) afterMutation(c *client, err error) {
	if err != nil {
		s.sendError(c, err)
	}
	s.broadcastState()
}

func (s *Server) sendOutgoing(c *client, folder string, msg session.Outgoing) {
	env := &Envelope{Folder: folder}
	switch m := msg.(type) {
	case session.Init:
		env.Type = TypeInit
		env.FolderName = m.FolderName
		tabs, err := json.Marshal(m.Tabs)
		if err == nil {
			env.Tabs = tabs
		}
	case session.OpenTab:
		env.Type = TypeOpenTab
		env.Key = m.Key
	case session.Content:
		env.Type = TypeContent
		env.Key = m.Key
		env.Filename = m.Filename
		env.Text = m.Text
		env.Missing = m.Missing
	case session.Saved:
		env.Type = TypeSaved
		env.Key = m.Key
		env.Filename = m.Filename
	case session.Deleted:
		env.Type = TypeDeleted
		env.Key = m.Key
		env.Filename = m.Filename
	case session.Template:
		env.Type = TypeTemplate
		env.Text = m.Text
		env.Missing = m.Missing
	default:
		s.logger.Warn().Msgf("unmapped outgoing message %T", msg)
		return
	}
	if err := c.enqueue(env); err != nil {
		s.logger.Warn().Err(err).Str("type", env.Type).Msg("send failed")
	}
}

func (s *Server) sendError(c *client, err error) {
	if err := c.enqueue(&Envelope{Type: TypeError, Message: err.Error()}); err != nil {
		s.logger.Warn().Err(err).Msg("error send failed")
	}
}

// Notify delivers a workspace notice to every client; wire it as the
// workspace's Notifier.
func (s *Server) Notify(level, msg string) {
	s.broadcast(&Envelope{Type: TypeNotice, Level: level, Message: msg})
}

func (s *Server) sendTree(c *client) {
	env, err := s.treeEnvelope()
	if err != nil {
		s.sendError(c, err)
		return
	}
	if err := c.enqueue(env); err != nil {
		s.logger.Warn().Err(err).Msg("tree send failed")
	}
}

func (s *Server) treeEnvelope() (*Envelope, error) {
	root, err := s.workspace.Tree()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: TypeTree, Root: data}, nil
}

func (s *Server) broadcastState() {
	env, err := s.treeEnvelope()
	if err != nil {
		s.logger.Warn().Err(err).Msg("tree refresh failed")
	} else {
		s.broadcast(env)
	}
	undo, redo := s.workspace.Log().Len()
	s.broadcast(&Envelope{Type: TypeHistory, Undo: undo, Redo: redo})
}

func (s *Server) broadcast(env *Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if err := c.enqueue(env); err != nil {
			s.logger.Warn().Err(err).Str("client", c.id).Msg("broadcast failed")
		}
	}
}
