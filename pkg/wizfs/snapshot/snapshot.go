// Package snapshot captures a directory tree (structure plus file
// contents) in memory so a recursive deletion can be reversed. File
// contents are held zstd-compressed for the lifetime of the snapshot.
package snapshot

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
)

// Shared codec. zstd encoders and decoders are safe for concurrent use
// through EncodeAll/DecodeAll.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// FileEntry is one captured file: its path relative to the snapshot root
// and its zstd-compressed content.
type FileEntry struct {
	Path       string
	Compressed []byte
	Size       int64
}

// Snapshot is a recursive capture of a directory. Directories holds every
// subdirectory path relative to the root ("" denotes the root itself),
// sorted shortest-first so replaying the list in order always creates a
// parent before its children.
type Snapshot struct {
	Directories []string
	Files       []FileEntry
}

// Take walks dir recursively and captures every directory and file under
// it, the root included.
func Take(fsys filesystem.FullFileSystem, dir string) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := walk(fsys, dir, "", snap); err != nil {
		return nil, err
	}
	sort.Slice(snap.Directories, func(i, j int) bool {
		a, b := snap.Directories[i], snap.Directories[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return snap, nil
}

func walk(fsys filesystem.FullFileSystem, root, rel string, snap *Snapshot) error {
	snap.Directories = append(snap.Directories, rel)

	abs := join(root, rel)
	entries, err := fs.ReadDir(fsys, abs)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", abs, err)
	}
	for _, entry := range entries {
		entryRel := join(rel, entry.Name())
		if entry.IsDir() {
			if err := walk(fsys, root, entryRel, snap); err != nil {
				return err
			}
			continue
		}
		data, err := fs.ReadFile(fsys, join(root, entryRel))
		if err != nil {
			return fmt.Errorf("read file %q: %w", entryRel, err)
		}
		snap.Files = append(snap.Files, FileEntry{
			Path:       entryRel,
			Compressed: encoder.EncodeAll(data, nil),
			Size:       int64(len(data)),
		})
	}
	return nil
}

// Restore recreates the captured tree under dir: every directory in listed
// order first, then every file. Restoring over an already-matching tree
// overwrites in place, so a second invocation is a no-op.
func (s *Snapshot) Restore(fsys filesystem.FullFileSystem, dir string) error {
	for _, rel := range s.Directories {
		if err := fsys.MkdirAll(join(dir, rel), 0755); err != nil {
			return fmt.Errorf("restore dir %q: %w", rel, err)
		}
	}
	for _, f := range s.Files {
		data, err := decoder.DecodeAll(f.Compressed, nil)
		if err != nil {
			return fmt.Errorf("decompress %q: %w", f.Path, err)
		}
		if err := fsys.WriteFile(join(dir, f.Path), data, 0644); err != nil {
			return fmt.Errorf("restore file %q: %w", f.Path, err)
		}
	}
	return nil
}

// FileCount returns the number of captured files.
func (s *Snapshot) FileCount() int {
	return len(s.Files)
}

// TotalSize returns the uncompressed byte total of all captured files.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// join treats "" as the current level, keeping "" as the conventional name
// for the snapshot root.
func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return path.Join(a, b)
	}
}
