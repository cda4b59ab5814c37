package filesystem

import (
	"io/fs"
)

// ReadFS is the read side of a workspace tree, an alias for fs.FS so the
// standard helpers and fstest apply directly.
type ReadFS = fs.FS

// WriteFS is the mutation side. Names are slash-separated and relative to
// the workspace root, as with fs.FS.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldpath, newpath string) error
}

// FileSystem is a tree that can be both read and mutated.
type FileSystem interface {
	ReadFS
	WriteFS
}

// StatFS is a readable tree that can also answer Stat without opening.
type StatFS interface {
	ReadFS
	Stat(name string) (fs.FileInfo, error)
}

// FullFileSystem is what most of the package operates on: read, write
// and Stat together.
type FullFileSystem interface {
	FileSystem
	Stat(name string) (fs.FileInfo, error)
}

// Exists reports whether name exists in the filesystem.
func Exists(fsys StatFS, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory.
func IsDir(fsys StatFS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}
