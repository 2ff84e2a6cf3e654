// Package treeops implements the recursive filesystem primitives every other
// core package builds on: scanning, copying, deleting and creating trees, plus
// the single-file helpers that create missing parents before writing.
//
// None of the bulk operations are transactional. A failure partway through a
// copy or delete leaves whatever was already done on disk.
package treeops

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Service performs tree operations through a FileSystem.
type Service struct {
	fs  ports.FileSystem
	log zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for mutation traces.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// New creates a Service backed by fsys.
func New(fsys ports.FileSystem, opts ...Option) *Service {
	s := &Service{fs: fsys, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FS returns the underlying filesystem.
func (s *Service) FS() ports.FileSystem {
	return s.fs
}

// ScanSubdirectories returns the names of root's immediate child directories.
// A missing root yields an empty result.
func (s *Service) ScanSubdirectories(root string) ([]string, error) {
	entries, err := s.fs.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperr.FromOS("read directory", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ListAllFiles returns the absolute path of every regular file below root,
// depth first. A missing root yields an empty result.
func (s *Service) ListAllFiles(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.IOError, "resolving path").WithPath(root)
	}

	files := []string{}
	if _, err := s.fs.Stat(absRoot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return files, nil
		}
		return nil, apperr.FromOS("stat", absRoot, err)
	}
	if err := s.collectFiles(absRoot, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Service) collectFiles(dir string, files *[]string) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return apperr.FromOS("read directory", dir, err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if err := s.collectFiles(p, files); err != nil {
				return err
			}
		case e.Type().IsRegular():
			*files = append(*files, p)
		}
	}
	return nil
}

// CopyTree recursively copies src into dst, creating dst and every
// subdirectory. A pre-existing dst is fine; existing files are overwritten.
// The first failing file aborts the copy. Symlinks are not followed and not
// copied.
func (s *Service) CopyTree(src, dst string) error {
	info, err := s.fs.Stat(src)
	if err != nil {
		return apperr.FromOS("stat", src, err)
	}
	if !info.IsDir() {
		return apperr.Newf(apperr.NotADirectory, "source is not a directory: %s", src).WithPath(src)
	}
	if err := checkNotNested(src, dst); err != nil {
		return err
	}
	return s.copyDir(src, dst)
}

// checkNotNested rejects a destination equal to src or below it, which would
// otherwise copy the new directory into itself until paths get too long.
func checkNotNested(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return apperr.Wrap(err, apperr.IOError, "resolving source path").WithPath(src)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return apperr.Wrap(err, apperr.IOError, "resolving destination path").WithPath(dst)
	}
	if absDst == absSrc || strings.HasPrefix(absDst, strings.TrimSuffix(absSrc, string(filepath.Separator))+string(filepath.Separator)) {
		return apperr.Newf(apperr.InvalidName, "cannot copy %s into itself (%s)", src, dst).WithPath(dst)
	}
	return nil
}

func (s *Service) copyDir(src, dst string) error {
	if err := s.fs.MkdirAll(dst, dirPerm); err != nil {
		return apperr.FromOS("create directory", dst, err)
	}

	entries, err := s.fs.ReadDir(src)
	if err != nil {
		return apperr.FromOS("read directory", src, err)
	}

	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		switch {
		case e.IsDir():
			if err := s.copyDir(from, to); err != nil {
				return err
			}
		case e.Type()&fs.ModeSymlink != 0:
			s.log.Warn().Str("path", from).Msg("skipping symlink during copy")
		case e.Type().IsRegular():
			if err := s.copyContents(from, to); err != nil {
				return err
			}
		}
	}
	s.log.Debug().Str("src", src).Str("dst", dst).Msg("copied directory")
	return nil
}

// copyContents streams one regular file. The parent of to must exist.
func (s *Service) copyContents(from, to string) error {
	in, err := s.fs.Open(from)
	if err != nil {
		return apperr.FromOS("open", from, err)
	}
	defer func() { _ = in.Close() }()

	out, err := s.fs.Create(to)
	if err != nil {
		return apperr.FromOS("create", to, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() // Best effort cleanup on error path
		return apperr.Wrapf(err, apperr.IOError, "copying %s to %s", from, to).WithPath(to)
	}
	if err := out.Close(); err != nil {
		return apperr.FromOS("close", to, err)
	}
	return nil
}

// DeleteTree removes root and everything below it. A missing root is
// NotFound.
func (s *Service) DeleteTree(root string) error {
	if _, err := s.fs.Lstat(root); err != nil {
		return apperr.FromOS("stat", root, err)
	}
	if err := s.fs.RemoveAll(root); err != nil {
		return apperr.FromOS("remove", root, err)
	}
	s.log.Debug().Str("path", root).Msg("deleted tree")
	return nil
}

// CreateTree creates path and any missing ancestors. It is idempotent.
func (s *Service) CreateTree(path string) error {
	if err := s.fs.MkdirAll(path, dirPerm); err != nil {
		return apperr.FromOS("create directory", path, err)
	}
	return nil
}

// WriteFile writes data to path, creating missing parent directories first.
func (s *Service) WriteFile(path string, data []byte) error {
	if err := s.CreateTree(filepath.Dir(path)); err != nil {
		return err
	}
	if err := s.fs.WriteFile(path, data, filePerm); err != nil {
		return apperr.FromOS("write", path, err)
	}
	s.log.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote file")
	return nil
}

// ReadFile returns the contents of path.
func (s *Service) ReadFile(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, apperr.FromOS("read", path, err)
	}
	return data, nil
}

// CopyFile copies a single regular file, creating missing parents of to.
func (s *Service) CopyFile(from, to string) error {
	info, err := s.fs.Stat(from)
	if err != nil {
		return apperr.FromOS("stat", from, err)
	}
	if info.IsDir() {
		return apperr.Newf(apperr.NotAFile, "source is a directory: %s", from).WithPath(from)
	}
	if err := s.CreateTree(filepath.Dir(to)); err != nil {
		return err
	}
	if err := s.copyContents(from, to); err != nil {
		return err
	}
	s.log.Debug().Str("src", from).Str("dst", to).Msg("copied file")
	return nil
}

// DeleteFile removes a single file. Directories are rejected with NotAFile.
func (s *Service) DeleteFile(path string) error {
	info, err := s.fs.Lstat(path)
	if err != nil {
		return apperr.FromOS("stat", path, err)
	}
	if info.IsDir() {
		return apperr.Newf(apperr.NotAFile, "refusing to delete directory as file: %s", path).WithPath(path)
	}
	if err := s.fs.Remove(path); err != nil {
		return apperr.FromOS("remove", path, err)
	}
	s.log.Debug().Str("path", path).Msg("deleted file")
	return nil
}

// FileExists reports whether anything exists at path.
func (s *Service) FileExists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (s *Service) IsDir(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && info.IsDir()
}

// AppDir returns the current working directory, which is the default managed
// root when nothing else is configured.
func AppDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", apperr.Wrap(err, apperr.IOError, "resolving working directory")
	}
	return dir, nil
}
