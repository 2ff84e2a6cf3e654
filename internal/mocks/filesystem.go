// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shshouse/MikuModManager/internal/ports"
)

// MockFileSystem implements ports.FileSystem as an in-memory tree.
// Paths are slash-separated and cleaned before lookup.
type MockFileSystem struct {
	// Files maps paths to file contents
	Files map[string][]byte
	// DirSet records paths that exist as directories
	DirSet map[string]bool
	// Errors maps paths to errors returned by every operation on that path
	Errors map[string]error
	// ReadErrors maps paths to errors returned only by ReadFile/Open
	ReadErrors map[string]error
	// WriteErrors maps paths to errors returned only by WriteFile/Create/MkdirAll
	WriteErrors map[string]error
	// RemoveErrors maps paths to errors returned only by Remove/RemoveAll
	RemoveErrors map[string]error
}

// NewMockFileSystem creates a new mock filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:        make(map[string][]byte),
		DirSet:       map[string]bool{"/": true},
		Errors:       make(map[string]error),
		ReadErrors:   make(map[string]error),
		WriteErrors:  make(map[string]error),
		RemoveErrors: make(map[string]error),
	}
}

func clean(name string) string {
	return path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
}

func pathErr(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: err}
}

func (m *MockFileSystem) injected(name string, opErrors map[string]error) error {
	if err, ok := m.Errors[name]; ok {
		return err
	}
	if err, ok := opErrors[name]; ok {
		return err
	}
	return nil
}

// ReadDir returns the immediate children of a directory, sorted by name.
func (m *MockFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	p := clean(name)
	if err := m.injected(p, m.ReadErrors); err != nil {
		return nil, err
	}
	if _, ok := m.Files[p]; ok {
		return nil, pathErr("readdir", name, syscall.ENOTDIR)
	}
	if !m.DirSet[p] {
		return nil, pathErr("open", name, fs.ErrNotExist)
	}

	var entries []os.DirEntry
	for d := range m.DirSet {
		if d != p && path.Dir(d) == p {
			entries = append(entries, &mockDirEntry{info: &mockFileInfo{name: path.Base(d), isDir: true, mode: fs.ModeDir | 0755}})
		}
	}
	for f, data := range m.Files {
		if path.Dir(f) == p {
			entries = append(entries, &mockDirEntry{info: &mockFileInfo{name: path.Base(f), size: int64(len(data)), mode: 0644}})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	p := clean(name)
	if err, ok := m.Errors[p]; ok {
		return nil, err
	}
	if m.DirSet[p] {
		return &mockFileInfo{name: path.Base(p), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	if data, ok := m.Files[p]; ok {
		return &mockFileInfo{name: path.Base(p), size: int64(len(data)), mode: 0644}, nil
	}
	return nil, pathErr("stat", name, fs.ErrNotExist)
}

// Lstat behaves like Stat; the mock has no symlinks.
func (m *MockFileSystem) Lstat(name string) (os.FileInfo, error) {
	return m.Stat(name)
}

// MkdirAll marks path and all of its ancestors as directories.
func (m *MockFileSystem) MkdirAll(name string, perm os.FileMode) error {
	p := clean(name)
	if err := m.injected(p, m.WriteErrors); err != nil {
		return err
	}
	for d := p; ; d = path.Dir(d) {
		if _, ok := m.Files[d]; ok {
			return pathErr("mkdir", d, syscall.ENOTDIR)
		}
		m.DirSet[d] = true
		if d == "/" {
			break
		}
	}
	return nil
}

// WriteFile writes data to the named file. The parent must exist.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	p := clean(name)
	if err := m.injected(p, m.WriteErrors); err != nil {
		return err
	}
	if m.DirSet[p] {
		return pathErr("open", name, syscall.EISDIR)
	}
	if !m.DirSet[path.Dir(p)] {
		return pathErr("open", name, fs.ErrNotExist)
	}
	m.Files[p] = append([]byte(nil), data...)
	return nil
}

// ReadFile reads the named file and returns the contents.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	p := clean(name)
	if err := m.injected(p, m.ReadErrors); err != nil {
		return nil, err
	}
	if m.DirSet[p] {
		return nil, pathErr("read", name, syscall.EISDIR)
	}
	if content, ok := m.Files[p]; ok {
		return content, nil
	}
	return nil, pathErr("open", name, fs.ErrNotExist)
}

// Remove removes the named file or empty directory.
func (m *MockFileSystem) Remove(name string) error {
	p := clean(name)
	if err := m.injected(p, m.RemoveErrors); err != nil {
		return err
	}
	if _, ok := m.Files[p]; ok {
		delete(m.Files, p)
		return nil
	}
	if !m.DirSet[p] {
		return pathErr("remove", name, fs.ErrNotExist)
	}
	for d := range m.DirSet {
		if path.Dir(d) == p && d != p {
			return pathErr("remove", name, syscall.ENOTEMPTY)
		}
	}
	for f := range m.Files {
		if path.Dir(f) == p {
			return pathErr("remove", name, syscall.ENOTEMPTY)
		}
	}
	delete(m.DirSet, p)
	return nil
}

// RemoveAll removes path and any children it contains.
func (m *MockFileSystem) RemoveAll(name string) error {
	p := clean(name)
	if err := m.injected(p, m.RemoveErrors); err != nil {
		return err
	}
	for k := range m.Files {
		if within(p, k) {
			delete(m.Files, k)
		}
	}
	for k := range m.DirSet {
		if k != "/" && within(p, k) {
			delete(m.DirSet, k)
		}
	}
	return nil
}

// Rename renames (moves) oldpath to newpath, including directory contents.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	from, to := clean(oldpath), clean(newpath)
	if err := m.injected(from, m.WriteErrors); err != nil {
		return err
	}
	if _, ok := m.Files[from]; !ok && !m.DirSet[from] {
		return pathErr("rename", oldpath, fs.ErrNotExist)
	}
	moved := make(map[string][]byte)
	for k, v := range m.Files {
		if within(from, k) {
			delete(m.Files, k)
			moved[to+strings.TrimPrefix(k, from)] = v
		}
	}
	for k, v := range moved {
		m.Files[k] = v
	}
	var dirs []string
	for k := range m.DirSet {
		if within(from, k) {
			delete(m.DirSet, k)
			dirs = append(dirs, to+strings.TrimPrefix(k, from))
		}
	}
	for _, d := range dirs {
		m.DirSet[d] = true
	}
	return nil
}

// Open opens the named file for reading.
func (m *MockFileSystem) Open(name string) (fs.File, error) {
	p := clean(name)
	content, err := m.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return &mockFile{info: &mockFileInfo{name: path.Base(p), size: int64(len(content))}, r: bytes.NewReader(content)}, nil
}

// Create creates or truncates the named file. The content is stored on Close.
func (m *MockFileSystem) Create(name string) (io.WriteCloser, error) {
	if err := m.WriteFile(name, nil, 0644); err != nil {
		return nil, err
	}
	return &mockWriter{fs: m, name: clean(name)}, nil
}

// within reports whether p is root or lies below it.
func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements os.DirEntry for testing.
type mockDirEntry struct {
	info *mockFileInfo
}

func (d *mockDirEntry) Name() string               { return d.info.name }
func (d *mockDirEntry) IsDir() bool                { return d.info.isDir }
func (d *mockDirEntry) Type() fs.FileMode          { return d.info.mode.Type() }
func (d *mockDirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// mockFile implements fs.File for testing.
type mockFile struct {
	info *mockFileInfo
	r    *bytes.Reader
}

func (f *mockFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *mockFile) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *mockFile) Close() error               { return nil }

// mockWriter buffers writes and stores them in the mock on Close.
type mockWriter struct {
	fs   *MockFileSystem
	name string
	buf  bytes.Buffer
}

func (w *mockWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *mockWriter) Close() error {
	w.fs.Files[w.name] = w.buf.Bytes()
	return nil
}

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
