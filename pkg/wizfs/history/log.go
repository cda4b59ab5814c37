package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
)

// entry pairs a recorded operation with its identity for logging.
type entry struct {
	id string
	op Op
}

// Log holds the undo and redo stacks for one workspace. History is linear:
// recording a new operation clears the redo stack. The log lives for the
// process only; nothing persists across sessions.
type Log struct {
	fsys   filesystem.FullFileSystem
	logger zerolog.Logger
	undo   []entry
	redo   []entry
}

// NewLog creates an empty transaction log bound to fsys.
func NewLog(fsys filesystem.FullFileSystem, logger zerolog.Logger) *Log {
	return &Log{fsys: fsys, logger: logger}
}

// Record pushes an already-applied operation onto the undo stack and
// clears the redo stack.
func (l *Log) Record(op Op) {
	e := entry{id: core.NewID(), op: op}
	l.undo = append(l.undo, e)
	l.redo = nil
	l.logger.Debug().
		Str("entry", e.id).
		Str("op", op.Describe()).
		Int("undo_depth", len(l.undo)).
		Msg("recorded operation")
}

// Undo pops the newest record and applies its inverse. It returns false
// when the undo stack is empty, letting the caller delegate to host-level
// generic undo. A failed inverse is surfaced but the record still moves to
// the redo stack; history may then diverge from disk state. This is a
// documented best-effort limitation.
func (l *Log) Undo(ctx context.Context) (bool, error) {
	if len(l.undo) == 0 {
		return false, nil
	}
	e := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	err := e.op.Rollback(ctx, l.fsys)
	l.redo = append(l.redo, e)
	if err != nil {
		l.logger.Warn().Err(err).Str("op", e.op.Describe()).Msg("undo completed with errors")
		return true, err
	}
	l.logger.Info().Str("op", e.op.Describe()).Msg("undid operation")
	return true, nil
}

// Redo pops the newest undone record and applies its forward action,
// moving it back to the undo stack. Same failure policy as Undo.
func (l *Log) Redo(ctx context.Context) (bool, error) {
	if len(l.redo) == 0 {
		return false, nil
	}
	e := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	err := e.op.Execute(ctx, l.fsys)
	l.undo = append(l.undo, e)
	if err != nil {
		l.logger.Warn().Err(err).Str("op", e.op.Describe()).Msg("redo completed with errors")
		return true, err
	}
	l.logger.Info().Str("op", e.op.Describe()).Msg("redid operation")
	return true, nil
}

// Len returns the depths of the undo and redo stacks.
func (l *Log) Len() (undo, redo int) {
	return len(l.undo), len(l.redo)
}
