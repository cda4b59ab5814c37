// Package history is the undo/redo transaction log over filesystem
// mutations. Every mutating operation is described by an invertible Op;
// the Log owns two stacks and replays forward actions on redo and inverse
// actions on undo. Records describe operations that have already been
// physically applied.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/snapshot"
)

// Op is the sealed union of invertible filesystem operations. Execute is
// the forward (redo) action, Rollback the inverse (undo) action.
type Op interface {
	Execute(ctx context.Context, fsys filesystem.FullFileSystem) error
	Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error
	Describe() string

	isOp()
}

// CreateFile records a file creation. Contents is kept so redo can recreate
// the file byte-identically.
type CreateFile struct {
	Path     string
	Contents []byte
}

func (op *CreateFile) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.WriteFile(op.Path, op.Contents, 0644)
}

func (op *CreateFile) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.Remove(op.Path)
}

func (op *CreateFile) Describe() string { return fmt.Sprintf("create file %q", op.Path) }
func (op *CreateFile) isOp()            {}

// DeleteFile records a file deletion; Contents is the pre-delete capture
// the undo path recreates from.
type DeleteFile struct {
	Path     string
	Contents []byte
}

func (op *DeleteFile) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.Remove(op.Path)
}

func (op *DeleteFile) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.WriteFile(op.Path, op.Contents, 0644)
}

func (op *DeleteFile) Describe() string { return fmt.Sprintf("delete file %q", op.Path) }
func (op *DeleteFile) isOp()            {}

// Rename records a move or rename of a file or directory.
type Rename struct {
	From string
	To   string
}

func (op *Rename) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.Rename(op.From, op.To)
}

func (op *Rename) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.Rename(op.To, op.From)
}

func (op *Rename) Describe() string { return fmt.Sprintf("rename %q to %q", op.From, op.To) }
func (op *Rename) isOp()            {}

// Mkdir records the creation of a directory that was empty at creation
// time. Undo removes it recursively, taking along anything added since.
type Mkdir struct {
	Path string
}

func (op *Mkdir) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.MkdirAll(op.Path, 0755)
}

func (op *Mkdir) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.RemoveAll(op.Path)
}

func (op *Mkdir) Describe() string { return fmt.Sprintf("create directory %q", op.Path) }
func (op *Mkdir) isOp()            {}

// Rmdir records the recursive deletion of a directory with contents; Snap
// is the full pre-delete capture undo restores from.
type Rmdir struct {
	Path string
	Snap *snapshot.Snapshot
}

func (op *Rmdir) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return fsys.RemoveAll(op.Path)
}

func (op *Rmdir) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	return op.Snap.Restore(fsys, op.Path)
}

func (op *Rmdir) Describe() string { return fmt.Sprintf("delete directory %q", op.Path) }
func (op *Rmdir) isOp()            {}

// Batch groups an ordered sequence of operations recorded and reverted as
// one unit. Execute replays in forward order; Rollback replays inverses in
// reverse order. Replay is best-effort: a failing inner action does not
// stop the remaining ones, and all errors are joined.
type Batch struct {
	Ops []Op
}

func (op *Batch) Execute(ctx context.Context, fsys filesystem.FullFileSystem) error {
	var errs []error
	for _, inner := range op.Ops {
		if err := inner.Execute(ctx, fsys); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", inner.Describe(), err))
		}
	}
	return errors.Join(errs...)
}

func (op *Batch) Rollback(ctx context.Context, fsys filesystem.FullFileSystem) error {
	var errs []error
	for i := len(op.Ops) - 1; i >= 0; i-- {
		if err := op.Ops[i].Rollback(ctx, fsys); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", op.Ops[i].Describe(), err))
		}
	}
	return errors.Join(errs...)
}

func (op *Batch) Describe() string { return fmt.Sprintf("batch of %d operations", len(op.Ops)) }
func (op *Batch) isOp()            {}
