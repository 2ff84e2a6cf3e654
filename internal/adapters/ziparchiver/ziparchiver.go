// Package ziparchiver provides an archiver adapter using the archive/zip package.
package ziparchiver

import (
	"archive/zip"
	"errors"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// MaxDecompressSize is the maximum allowed uncompressed member size (10GB).
// This prevents decompression bomb attacks (G110).
const MaxDecompressSize = 10 * 1024 * 1024 * 1024 // 10GB

const (
	dirPerm  = 0755
	filePerm = 0644
)

// ZipArchiver implements ports.Archiver using archive/zip.
type ZipArchiver struct {
	log zerolog.Logger
}

// Option configures a ZipArchiver.
type Option func(*ZipArchiver)

// WithLogger sets the logger used to report skipped members.
func WithLogger(l zerolog.Logger) Option {
	return func(a *ZipArchiver) {
		a.log = l
	}
}

// New creates a new ZipArchiver adapter.
func New(opts ...Option) *ZipArchiver {
	a := &ZipArchiver{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Create creates a zip archive of sourceDir at destPath.
// Returns the number of files archived.
func (a *ZipArchiver) Create(destPath, sourceDir string) (int, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return 0, apperr.FromOS("stat", sourceDir, err)
	}
	if !info.IsDir() {
		return 0, apperr.Newf(apperr.NotADirectory, "not a directory: %s", sourceDir).WithPath(sourceDir)
	}

	zipFile, err := os.Create(destPath)
	if err != nil {
		return 0, apperr.FromOS("create", destPath, err)
	}

	w := zip.NewWriter(zipFile)
	fileCount := 0

	walkErr := filepath.Walk(sourceDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == sourceDir {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return err
		}
		archivePath := filepath.ToSlash(relPath)

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Keep empty directories as explicit markers.
			header.Name = archivePath + "/"
			_, err := w.CreateHeader(header)
			return err
		}

		header.Name = archivePath
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}

		file, err := os.Open(p)
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(writer, file)
		_ = file.Close() // Explicitly ignore close error - data already copied
		if copyErr != nil {
			return copyErr
		}

		fileCount++
		return nil
	})

	// Close zip writer first to flush data
	if closeErr := w.Close(); closeErr != nil {
		_ = zipFile.Close() // Best effort cleanup on error path
		return 0, apperr.Wrap(closeErr, apperr.IOError, "closing zip writer")
	}

	// Then close the file
	if closeErr := zipFile.Close(); closeErr != nil {
		return 0, apperr.Wrap(closeErr, apperr.IOError, "closing zip file")
	}

	if walkErr != nil {
		return fileCount, apperr.FromOS("archive", sourceDir, walkErr)
	}
	return fileCount, nil
}

// Extract extracts a zip archive to destDir.
//
// Members are processed in declared order. A member whose name cannot be
// confined under destDir (parent segments, absolute names, drive letters) or
// that is a symlink is skipped and listed in the report. Any I/O failure stops
// the extraction; members already written stay on disk.
func (a *ZipArchiver) Extract(zipPath, destDir string) (ports.ExtractReport, error) {
	var report ports.ExtractReport

	r, err := openReader(zipPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, apperr.FromOS("open", zipPath, err)
		}
		return report, apperr.Wrapf(err, apperr.CorruptArchive, "cannot read archive %s", zipPath).WithPath(zipPath)
	}
	defer func() { _ = r.Close() }()

	// Get cleaned absolute path for destination
	absDestDir, err := filepath.Abs(destDir)
	if err != nil {
		return report, apperr.Wrap(err, apperr.IOError, "resolving destination path")
	}
	absDestDir = filepath.Clean(absDestDir)

	for _, f := range r.File {
		if f.Mode()&os.ModeSymlink != 0 {
			a.log.Warn().Str("entry", f.Name).Msg("skipping symlink archive entry")
			report.Skipped = append(report.Skipped, f.Name)
			continue
		}

		fpath, ok := confine(absDestDir, f.Name)
		if !ok {
			a.log.Warn().Str("entry", f.Name).Msg("skipping archive entry outside extraction root")
			report.Skipped = append(report.Skipped, f.Name)
			continue
		}

		if isDirMarker(f.Name) {
			if err := os.MkdirAll(fpath, dirPerm); err != nil {
				return report, apperr.FromOS("create directory", fpath, err)
			}
			report.Dirs++
			continue
		}

		if fpath == absDestDir {
			report.Skipped = append(report.Skipped, f.Name)
			continue
		}

		// Create parent directories
		if err := os.MkdirAll(filepath.Dir(fpath), dirPerm); err != nil {
			return report, apperr.FromOS("create directory", filepath.Dir(fpath), err)
		}

		if err := extractFile(f, fpath); err != nil {
			return report, err
		}
		a.log.Debug().Str("entry", f.Name).Str("path", fpath).Msg("extracted")
		report.Files++
	}

	return report, nil
}

// openReader opens zipPath. Archives holding non-local member names are still
// returned; those members are filtered one by one during extraction.
func openReader(zipPath string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		return r, nil
	}
	return r, err
}

// isDirMarker reports whether a member name denotes a directory.
func isDirMarker(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`)
}

// confine resolves a stored member name against absDestDir. It returns false
// when the name is absolute, carries a volume name or contains a parent
// segment, or when the joined path would leave absDestDir.
func confine(absDestDir, name string) (string, bool) {
	normalized := strings.ReplaceAll(name, `\`, "/")
	if path.IsAbs(normalized) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", false
	}
	if hasDriveLetter(normalized) {
		return "", false
	}
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return "", false
		}
	}

	fpath := filepath.Join(absDestDir, filepath.FromSlash(normalized))
	if !isWithinDir(absDestDir, fpath) {
		return "", false
	}
	return fpath, true
}

// hasDriveLetter reports whether name starts with a Windows drive such as "C:".
// A single letter before the colon counts as a drive on every platform, so
// "a:b.txt" is refused as well; "1:b.txt" and "ab:c.txt" are not.
func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// extractFile extracts a single file from the zip.
func extractFile(f *zip.File, destPath string) error {
	// SECURITY: Limit decompression size to prevent zip bombs (G110)
	declaredSize := f.UncompressedSize64
	if declaredSize > MaxDecompressSize {
		return apperr.Newf(apperr.CorruptArchive, "member %s too large: %d bytes exceeds limit of %d bytes",
			f.Name, declaredSize, uint64(MaxDecompressSize))
	}

	rc, err := f.Open()
	if err != nil {
		return apperr.Wrapf(err, apperr.CorruptArchive, "opening member %s", f.Name)
	}
	defer func() { _ = rc.Close() }()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return apperr.FromOS("create", destPath, err)
	}
	defer func() { _ = outFile.Close() }()

	// Use LimitReader to enforce size limit during decompression
	// Add 1 byte to detect if actual size exceeds declared size
	limitedReader := io.LimitReader(rc, int64(declaredSize)+1)
	written, err := io.Copy(outFile, limitedReader)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return apperr.FromOS("write", destPath, err)
		}
		return apperr.Wrapf(err, apperr.CorruptArchive, "decompressing member %s", f.Name)
	}

	// Check if more data was available than declared (corrupted/malicious zip)
	if written > int64(declaredSize) {
		return apperr.Newf(apperr.CorruptArchive, "member %s: decompressed size exceeds declared size", f.Name)
	}

	if err := outFile.Close(); err != nil {
		return apperr.FromOS("close", destPath, err)
	}
	return nil
}

// isWithinDir checks if the target path is within the base directory.
func isWithinDir(absBaseDir, targetPath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absTarget = filepath.Clean(absTarget)

	return strings.HasPrefix(absTarget, absBaseDir+string(filepath.Separator)) ||
		absTarget == absBaseDir
}

// List returns the members of the archive in declared order.
func (a *ZipArchiver) List(zipPath string) ([]ports.ArchiveEntry, error) {
	r, err := openReader(zipPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.FromOS("open", zipPath, err)
		}
		return nil, apperr.Wrapf(err, apperr.CorruptArchive, "cannot read archive %s", zipPath).WithPath(zipPath)
	}
	defer func() { _ = r.Close() }()

	entries := make([]ports.ArchiveEntry, 0, len(r.File))
	for _, f := range r.File {
		// Safe conversion: check for overflow before uint64 -> int64
		size := int64(0)
		if f.UncompressedSize64 <= math.MaxInt64 {
			size = int64(f.UncompressedSize64)
		}
		entries = append(entries, ports.ArchiveEntry{
			Name:  f.Name,
			Size:  size,
			IsDir: isDirMarker(f.Name),
			CRC32: f.CRC32,
		})
	}

	return entries, nil
}

// Compile-time check that ZipArchiver implements ports.Archiver.
var _ ports.Archiver = (*ZipArchiver)(nil)
