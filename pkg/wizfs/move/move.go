// Package move orchestrates multi-item drag/drop moves: it validates that
// the gesture cannot corrupt a Wiz folder, resolves name collisions per
// item, performs the renames, and records the whole gesture as one
// undoable batch.
package move

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wizkit/wizfs/pkg/wizfs/core"
	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/freename"
	"github.com/wizkit/wizfs/pkg/wizfs/history"
	"github.com/wizkit/wizfs/pkg/wizfs/wizfolder"
)

// exampleLimit caps how many item names a summary notice lists.
const exampleLimit = 5

// Controller performs drag/drop moves against one workspace filesystem.
type Controller struct {
	fsys     filesystem.FullFileSystem
	log      *history.Log
	notifier core.Notifier
	logger   zerolog.Logger
}

// NewController creates a move controller recording into log.
func NewController(fsys filesystem.FullFileSystem, log *history.Log, notifier core.Notifier, logger zerolog.Logger) *Controller {
	return &Controller{fsys: fsys, log: log, notifier: notifier, logger: logger}
}

// Result summarizes one gesture.
type Result struct {
	Moved   []Pair
	Renamed []string
	Skipped []string
}

// Pair is one realized source-to-destination move.
type Pair struct {
	From string
	To   string
}

// Move relocates sources into destDir. Wiz-folder sources are skipped
// with a notice, as are sources living inside a wiz folder: a document's
// files never leave it. Sources already in destDir are silent no-ops;
// name collisions resolve per item; everything that physically moved is
// recorded as a single batch so one undo reverts the gesture. destDir ""
// means the workspace root.
func (c *Controller) Move(ctx context.Context, sources []string, destDir string) (*Result, error) {
	if err := c.checkDestination(destDir); err != nil {
		c.notifier.Warn(err.Error())
		return nil, err
	}

	res := &Result{}
	reserved := make(freename.Reserved)
	var ops []history.Op

	for _, src := range sources {
		name := path.Base(src)
		if wizfolder.IsWizFolder(c.fsys, src) {
			res.Skipped = append(res.Skipped, name)
			c.notifier.Warn(fmt.Sprintf("%q is a wiz folder and cannot be relocated", name))
			continue
		}
		if wizfolder.InsideWizFolder(c.fsys, src) {
			res.Skipped = append(res.Skipped, name)
			c.notifier.Warn(fmt.Sprintf("%q belongs to a wiz folder and cannot be moved out", name))
			continue
		}
		if path.Dir(src) == parentKey(destDir) {
			continue
		}

		free, err := freename.Pick(c.fsys, destDir, name, reserved)
		if err != nil {
			res.Skipped = append(res.Skipped, name)
			c.notifier.Warn(fmt.Sprintf("could not place %q: %v", name, err))
			continue
		}
		dest := path.Join(destDir, free)
		if err := c.fsys.Rename(src, dest); err != nil {
			res.Skipped = append(res.Skipped, name)
			c.notifier.Warn(fmt.Sprintf("could not move %q: %v", name, err))
			c.logger.Warn().Err(err).Str("from", src).Str("to", dest).Msg("move failed")
			continue
		}
		reserved.Add(destDir, free)
		res.Moved = append(res.Moved, Pair{From: src, To: dest})
		if free != name {
			res.Renamed = append(res.Renamed, free)
		}
		ops = append(ops, &history.Rename{From: src, To: dest})
	}

	if len(ops) > 0 {
		c.log.Record(&history.Batch{Ops: ops})
	}
	c.summarize(res)
	return res, nil
}

// checkDestination rejects a gesture whose resolved destination is a wiz
// folder or lies inside one. Nothing mutates on rejection.
func (c *Controller) checkDestination(destDir string) error {
	if destDir == "" {
		return nil
	}
	if wizfolder.IsWizFolder(c.fsys, destDir) {
		return &core.LegalityError{Path: destDir, Reason: "cannot move items into a wiz folder"}
	}
	if wizfolder.InsideWizFolder(c.fsys, path.Join(destDir, "x")) {
		return &core.LegalityError{Path: destDir, Reason: "destination lies inside a wiz folder"}
	}
	return nil
}

func (c *Controller) summarize(res *Result) {
	if len(res.Renamed) == 0 && len(res.Skipped) == 0 {
		return
	}
	var parts []string
	if n := len(res.Renamed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d renamed (%s)", n, examples(res.Renamed)))
	}
	if n := len(res.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped (%s)", n, examples(res.Skipped)))
	}
	c.notifier.Info("move: " + strings.Join(parts, ", "))
}

func examples(names []string) string {
	if len(names) > exampleLimit {
		return strings.Join(names[:exampleLimit], ", ") + ", …"
	}
	return strings.Join(names, ", ")
}

// parentKey normalizes the root spelling so path.Dir results compare
// against it: path.Dir("a.txt") is ".", the root destination is "".
func parentKey(destDir string) string {
	if destDir == "" {
		return "."
	}
	return destDir
}
