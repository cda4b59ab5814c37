package wizfs

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/droppath"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/history"
	"github.com/wizkit/wizfs/pkg/wizfs/identity"
	"github.com/wizkit/wizfs/pkg/wizfs/move"
	"github.com/wizkit/wizfs/pkg/wizfs/session"
	"github.com/wizkit/wizfs/pkg/wizfs/snapshot"
	"github.com/wizkit/wizfs/pkg/wizfs/wizfolder"
)

// Rooter maps absolute host paths back into the workspace. OSFileSystem
// implements it; test filesystems need not.
type Rooter interface {
	RootedName(hostPath string) (string, bool)
}

// Workspace is the top-level controller: it owns the rooted filesystem,
// the transaction log, and the drag state, and exposes the command
// surface. Commands serialize on an internal mutex, so one gesture
// mutates at a time.
type Workspace struct {
	fsys     filesystem.FullFileSystem
	cfg      *Config
	log      *history.Log
	notifier core.Notifier
	logger   zerolog.Logger
	mover    *move.Controller

	mu       sync.Mutex
	lastDrag []droppath.Ref
}

// NewWorkspace wires a workspace over fsys.
func NewWorkspace(fsys filesystem.FullFileSystem, cfg *Config, notifier core.Notifier, logger zerolog.Logger) *Workspace {
	log := history.NewLog(fsys, logger)
	return &Workspace{
		fsys:     fsys,
		cfg:      cfg,
		log:      log,
		notifier: notifier,
		logger:   logger,
		mover:    move.NewController(fsys, log, notifier, logger),
	}
}

// Log exposes the transaction log, read-only use intended (stack depths
// for the surface).
func (w *Workspace) Log() *history.Log { return w.log }

// Config returns the workspace configuration.
func (w *Workspace) Config() *Config { return w.cfg }

// validateName rejects empty names and names carrying path separators.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &core.ValidationError{Field: "name", Value: name, Reason: "empty name"}
	}
	if strings.ContainsAny(name, "/\\") {
		return &core.ValidationError{Field: "name", Value: name, Reason: "path separators are not allowed"}
	}
	return nil
}

// apply runs the forward action and records it; the same code path serves
// first execution and redo.
func (w *Workspace) apply(ctx context.Context, op history.Op) error {
	if err := op.Execute(ctx, w.fsys); err != nil {
		return err
	}
	w.log.Record(op)
	return nil
}

// CreateFile creates an empty file at dir/name and records the creation.
func (w *Workspace) CreateFile(ctx context.Context, dir, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := validateName(name); err != nil {
		return err
	}
	p := path.Join(dir, name)
	if filesystem.Exists(w.fsys, p) {
		return &core.ValidationError{Field: "name", Value: name, Reason: "already exists"}
	}
	return w.apply(ctx, &history.CreateFile{Path: p})
}

// CreateFolder creates an empty directory at dir/name and records it.
func (w *Workspace) CreateFolder(ctx context.Context, dir, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := validateName(name); err != nil {
		return err
	}
	p := path.Join(dir, name)
	if filesystem.Exists(w.fsys, p) {
		return &core.ValidationError{Field: "name", Value: name, Reason: "already exists"}
	}
	return w.apply(ctx, &history.Mkdir{Path: p})
}

// CreateDocument scaffolds a new Wiz folder under dir. The folder is named
// by the mode-prefixed id derived from rawName; portal mode requires dir
// to lie under a portal/<app> ancestry. The whole scaffold records as one
// batch, so one undo removes the document.
func (w *Workspace) CreateDocument(ctx context.Context, mode, rawName, dir, title string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	allowed := false
	for _, m := range w.cfg.CreationModes() {
		if m == mode {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", &core.ValidationError{Field: "mode", Value: mode, Reason: "not an allowed mode"}
	}
	if err := validateName(rawName); err != nil {
		return "", err
	}

	id, namespace := identity.DeriveIDAndNamespace(mode, rawName)
	template, err := identity.BuildTemplate(mode, namespace, path.Join(dir, id))
	if err != nil {
		return "", &core.LegalityError{Path: dir, Reason: err.Error()}
	}

	docDir := path.Join(dir, id)
	if filesystem.Exists(w.fsys, docDir) {
		return "", &core.ValidationError{Field: "name", Value: id, Reason: "already exists"}
	}

	files, err := wizfolder.Scaffold(&wizfolder.AppConfig{
		Mode:      mode,
		ID:        id,
		Title:     title,
		Namespace: namespace,
		ViewURI:   namespace,
		Template:  template,
	})
	if err != nil {
		return "", err
	}

	plan := NewPlan()
	if err := plan.Add("dir", &history.Mkdir{Path: docDir}); err != nil {
		return "", err
	}
	for name, contents := range files {
		op := &history.CreateFile{Path: path.Join(docDir, name), Contents: contents}
		if err := plan.Add("file:"+name, op, "dir"); err != nil {
			return "", err
		}
	}
	ops, err := plan.Resolve()
	if err != nil {
		return "", err
	}
	if err := w.apply(ctx, &history.Batch{Ops: ops}); err != nil {
		return "", err
	}
	w.logger.Info().Str("mode", mode).Str("id", id).Msg("created document")
	return docDir, nil
}

// OpenDocument spawns a session over an existing Wiz folder.
func (w *Workspace) OpenDocument(dir string, sink session.Sink) (*session.Session, error) {
	if !wizfolder.IsWizFolder(w.fsys, dir) {
		return nil, &core.LegalityError{Path: dir, Reason: "not a wiz folder"}
	}
	s := session.New(dir, w.fsys, sink, w.notifier, w.logger)
	s.SetWriteGrace(w.cfg.WriteGrace())
	return s, nil
}

// Tree returns the grouped workspace listing.
func (w *Workspace) Tree() (*Node, error) {
	return BuildTree(w.fsys, w.cfg.CreationModes())
}

// Rename renames the entry at p to newName within its directory.
func (w *Workspace) Rename(ctx context.Context, p, newName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := validateName(newName); err != nil {
		return err
	}
	dest := path.Join(path.Dir(p), newName)
	if dest == p {
		return nil
	}
	if filesystem.Exists(w.fsys, dest) {
		return &core.ValidationError{Field: "name", Value: newName, Reason: "already exists"}
	}
	if !filesystem.Exists(w.fsys, p) {
		return fmt.Errorf("rename %q: %w", p, fs.ErrNotExist)
	}
	return w.apply(ctx, &history.Rename{From: p, To: dest})
}

// Delete removes the entry at p reversibly: files keep their contents in
// the record, directories a full snapshot.
func (w *Workspace) Delete(ctx context.Context, p string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := w.fsys.Stat(p)
	if err != nil {
		return fmt.Errorf("delete %q: %w", p, err)
	}
	if info.IsDir() {
		snap, err := snapshot.Take(w.fsys, p)
		if err != nil {
			return fmt.Errorf("snapshot %q: %w", p, err)
		}
		return w.apply(ctx, &history.Rmdir{Path: p, Snap: snap})
	}
	contents, err := fs.ReadFile(w.fsys, p)
	if err != nil {
		return fmt.Errorf("capture %q: %w", p, err)
	}
	return w.apply(ctx, &history.DeleteFile{Path: p, Contents: contents})
}

// Undo reverts the newest recorded operation. false means the log is
// empty and the host's generic undo should run instead.
func (w *Workspace) Undo(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	did, err := w.log.Undo(ctx)
	if err != nil {
		w.notifier.Warn(fmt.Sprintf("undo finished with errors: %v", err))
	}
	return did, err
}

// Redo re-applies the newest undone operation.
func (w *Workspace) Redo(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	did, err := w.log.Redo(ctx)
	if err != nil {
		w.notifier.Warn(fmt.Sprintf("redo finished with errors: %v", err))
	}
	return did, err
}

// DropInternal moves tree-dragged sources into the directory behind
// target. Group placeholders are never a destination.
func (w *Workspace) DropInternal(ctx context.Context, target *Node, sources []string) (*move.Result, error) {
	destDir, err := dropDestination(target)
	if err != nil {
		w.notifier.Warn(err.Error())
		return nil, err
	}
	return w.mover.Move(ctx, sources, destDir)
}

// DropExternal resolves an external payload and moves the resolved source
// into destDir. Unresolvable payloads are ignored with a notice, never an
// error.
func (w *Workspace) DropExternal(ctx context.Context, payload droppath.Payload, destDir string) (*move.Result, error) {
	abs, ok := droppath.Resolve(payload)
	if !ok {
		w.notifier.Info("drop ignored: no usable payload")
		return &move.Result{}, nil
	}
	src, ok := w.rooted(abs)
	if !ok {
		w.notifier.Info("drop ignored: source outside the workspace")
		return &move.Result{}, nil
	}
	return w.mover.Move(ctx, []string{src}, destDir)
}

// SetLastDrag records the gesture state the surface may later query for
// template insertion. The refs' classification decides trailing-slash
// presentation in any external encodings set alongside the drag.
func (w *Workspace) SetLastDrag(paths []string) []droppath.Ref {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastDrag = droppath.ClassifyRefs(w.fsys, paths)
	return w.lastDrag
}

// LastDrag returns the refs of the most recent internal drag gesture.
func (w *Workspace) LastDrag() []droppath.Ref {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastDrag
}

// TemplateFor renders the insertion template for the document behind a
// dropped path or URI. missing is true when nothing usable was dropped.
func (w *Workspace) TemplateFor(line string) (text string, missing bool) {
	abs, ok := droppath.ParseLine(strings.TrimSpace(line))
	if !ok {
		return "", true
	}
	src, ok := w.rooted(abs)
	if !ok {
		return "", true
	}
	return w.templateAt(src)
}

// TemplateFromLastDrag renders the insertion template for the most recent
// internal drag's first directory ref.
func (w *Workspace) TemplateFromLastDrag() (text string, missing bool) {
	for _, ref := range w.LastDrag() {
		if ref.Kind != droppath.KindFile {
			return w.templateAt(ref.Path)
		}
	}
	return "", true
}

func (w *Workspace) templateAt(dir string) (string, bool) {
	if !wizfolder.IsWizFolder(w.fsys, dir) {
		return "", true
	}
	text, err := wizfolder.Template(w.fsys, dir)
	if err != nil {
		w.logger.Warn().Err(err).Str("dir", dir).Msg("template rendering failed")
		return "", true
	}
	return text, false
}

// rooted maps an absolute host path into the workspace. Filesystems
// without host-path awareness take the path as a rooted name directly.
func (w *Workspace) rooted(abs string) (string, bool) {
	if r, ok := w.fsys.(Rooter); ok {
		return r.RootedName(abs)
	}
	name := strings.TrimPrefix(abs, "/")
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// dropDestination maps a drop target node to a destination directory.
func dropDestination(target *Node) (string, error) {
	switch target.Kind {
	case NodeWorkspace:
		return "", nil
	case NodeFolder:
		return target.Path, nil
	case NodeGroup:
		return "", &core.LegalityError{Reason: "cannot drop onto a mode group"}
	case NodeDocument:
		return "", &core.LegalityError{Path: target.Path, Reason: "cannot move items into a wiz folder"}
	case NodeFile:
		if dir := path.Dir(target.Path); dir != "." {
			return dir, nil
		}
		return "", nil
	default:
		return "", &core.LegalityError{Reason: fmt.Sprintf("cannot drop onto %s node", target.Kind)}
	}
}
