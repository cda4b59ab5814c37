package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

var errNotEmpty = errors.New("directory not empty")

// TestFileSystem is an in-memory FullFileSystem over fstest.MapFS, so
// pure-logic tests can run without touching the OS. Mutations mirror os
// semantics where they matter: Remove refuses non-empty directories and
// Rename carries a directory's children along.
type TestFileSystem struct {
	fstest.MapFS
}

// NewTestFileSystem returns an empty in-memory tree.
func NewTestFileSystem() *TestFileSystem {
	return &TestFileSystem{
		MapFS: make(fstest.MapFS),
	}
}

// NewTestFileSystemFromMap wraps an existing MapFS map.
func NewTestFileSystemFromMap(files map[string]*fstest.MapFile) *TestFileSystem {
	return &TestFileSystem{
		MapFS: files,
	}
}

func (tfs *TestFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	tfs.MapFS[name] = &fstest.MapFile{
		Data: data,
		Mode: perm,
	}
	return nil
}

func (tfs *TestFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if !fs.ValidPath(path) {
		return &fs.PathError{Op: "mkdirall", Path: path, Err: fs.ErrInvalid}
	}
	tfs.MapFS[path] = &fstest.MapFile{
		Mode: perm | fs.ModeDir,
	}
	return nil
}

// Remove deletes a single entry. Like os.Remove it refuses a directory
// that still has children.
func (tfs *TestFileSystem) Remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}
	for path := range tfs.MapFS {
		if path != name && isSubPath(name, path) {
			return &fs.PathError{Op: "remove", Path: name, Err: errNotEmpty}
		}
	}
	if _, exists := tfs.MapFS[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(tfs.MapFS, name)
	return nil
}

func (tfs *TestFileSystem) RemoveAll(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "removeall", Path: name, Err: fs.ErrInvalid}
	}
	for path := range tfs.MapFS {
		if path == name || isSubPath(name, path) {
			delete(tfs.MapFS, path)
		}
	}
	return nil
}

// Rename moves an entry, carrying a directory's children along the way
// os.Rename does.
func (tfs *TestFileSystem) Rename(oldpath, newpath string) error {
	if !fs.ValidPath(oldpath) || !fs.ValidPath(newpath) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrInvalid}
	}

	file, exists := tfs.MapFS[oldpath]
	if !exists {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if _, exists := tfs.MapFS[newpath]; exists {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrExist}
	}

	var children []string
	for path := range tfs.MapFS {
		if path != oldpath && isSubPath(oldpath, path) {
			children = append(children, path)
		}
	}
	for _, path := range children {
		tfs.MapFS[newpath+path[len(oldpath):]] = tfs.MapFS[path]
		delete(tfs.MapFS, path)
	}
	tfs.MapFS[newpath] = file
	delete(tfs.MapFS, oldpath)
	return nil
}

// isSubPath returns true if child is a subpath of parent.
func isSubPath(parent, child string) bool {
	if parent == "" || parent == "." {
		return true
	}
	if child == parent {
		return true
	}
	if len(child) <= len(parent) {
		return false
	}
	return child[:len(parent)+1] == parent+"/"
}

// TestHelper provides utilities for exercising filesystem-backed components
// in tests.
type TestHelper struct {
	t   *testing.T
	fs  *TestFileSystem
	ctx context.Context
}

// NewTestHelper creates a new test helper with a fresh filesystem.
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{
		t:   t,
		fs:  NewTestFileSystem(),
		ctx: context.Background(),
	}
}

// NewTestHelperWithFiles creates a test helper with predefined files.
func NewTestHelperWithFiles(t *testing.T, files map[string]*fstest.MapFile) *TestHelper {
	return &TestHelper{
		t:   t,
		fs:  NewTestFileSystemFromMap(files),
		ctx: context.Background(),
	}
}

// FileSystem returns the test filesystem.
func (th *TestHelper) FileSystem() *TestFileSystem {
	return th.fs
}

// Context returns the test context.
func (th *TestHelper) Context() context.Context {
	return th.ctx
}

// WriteFile writes a file and fails the test on error.
func (th *TestHelper) WriteFile(name string, data []byte, perm fs.FileMode) {
	th.t.Helper()
	if err := th.fs.WriteFile(name, data, perm); err != nil {
		th.t.Fatalf("Failed to write file %s: %v", name, err)
	}
}

// MkdirAll creates directories and fails the test on error.
func (th *TestHelper) MkdirAll(path string, perm fs.FileMode) {
	th.t.Helper()
	if err := th.fs.MkdirAll(path, perm); err != nil {
		th.t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// ReadFile reads a file and fails the test on error.
func (th *TestHelper) ReadFile(name string) []byte {
	th.t.Helper()
	data, err := fs.ReadFile(th.fs, name)
	if err != nil {
		th.t.Fatalf("Failed to read file %s: %v", name, err)
	}
	return data
}

// FileExists checks if a path exists.
func (th *TestHelper) FileExists(name string) bool {
	_, err := th.fs.Stat(name)
	return err == nil
}

// AssertFileContent checks that a file has the expected content.
func (th *TestHelper) AssertFileContent(name string, expected []byte) {
	th.t.Helper()
	actual := th.ReadFile(name)
	if string(actual) != string(expected) {
		th.t.Errorf("File %s content mismatch:\nExpected: %q\nActual: %q", name, expected, actual)
	}
}

// AssertFileNotExists checks that a path does not exist.
func (th *TestHelper) AssertFileNotExists(name string) {
	th.t.Helper()
	if th.FileExists(name) {
		th.t.Errorf("Expected file %s to not exist, but it does", name)
	}
}

// AssertDirExists checks that a path exists and is a directory.
func (th *TestHelper) AssertDirExists(name string) {
	th.t.Helper()
	info, err := th.fs.Stat(name)
	if err != nil {
		th.t.Errorf("Expected directory %s to exist: %v", name, err)
		return
	}
	if !info.IsDir() {
		th.t.Errorf("Expected %s to be a directory", name)
	}
}
