// Package installer extracts mod archives into uniquely named folders under a
// target directory and keeps track of what was installed there.
package installer

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/identity"
	"github.com/shshouse/MikuModManager/internal/ports"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

// Installer installs mod archives.
type Installer struct {
	tree     *treeops.Service
	archiver ports.Archiver
	hasher   *identity.Hasher
	clock    ports.Clock
	dedup    bool
	log      zerolog.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the installer logger.
func WithLogger(l zerolog.Logger) Option {
	return func(i *Installer) {
		i.log = l
	}
}

// WithClock sets the clock used for index timestamps.
func WithClock(c ports.Clock) Option {
	return func(i *Installer) {
		i.clock = c
	}
}

// WithDedup turns on checksum de-duplication. Every installed archive is
// recorded in the target's index and an archive whose content is already
// installed there is refused.
func WithDedup(enabled bool) Option {
	return func(i *Installer) {
		i.dedup = enabled
	}
}

// New creates an Installer.
func New(tree *treeops.Service, archiver ports.Archiver, opts ...Option) *Installer {
	i := &Installer{
		tree:     tree,
		archiver: archiver,
		hasher:   identity.NewHasher(tree.FS()),
		clock:    ports.RealClock{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FolderName derives the install folder from an archive path by stripping the
// final extension. A name with only a leading dot is kept whole.
func FolderName(archivePath string) (string, error) {
	base := filepath.Base(archivePath)
	stem := base
	if ext := filepath.Ext(base); ext != base {
		stem = strings.TrimSuffix(base, ext)
	}
	if err := validateFolder(stem); err != nil {
		return "", apperr.Newf(apperr.InvalidName, "cannot derive folder name from %q", archivePath).WithPath(archivePath)
	}
	return stem, nil
}

func validateFolder(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) ||
		strings.TrimSpace(name) == "" {
		return apperr.Newf(apperr.InvalidName, "invalid folder name %q", name)
	}
	return nil
}

// Install extracts archivePath into targetDir/<archive stem> and returns the
// absolute path of that folder.
//
// An existing folder of the same name stops the install before anything is
// written. Members that would land outside the folder are skipped. A failure
// during extraction leaves the members already written on disk.
func (i *Installer) Install(archivePath, targetDir string) (string, error) {
	info, err := i.tree.FS().Stat(archivePath)
	if err != nil {
		return "", apperr.FromOS("stat", archivePath, err)
	}
	if info.IsDir() {
		return "", apperr.Newf(apperr.NotAFile, "archive is a directory: %s", archivePath).WithPath(archivePath)
	}

	folder, err := FolderName(archivePath)
	if err != nil {
		return "", err
	}

	if err := i.tree.CreateTree(targetDir); err != nil {
		return "", err
	}

	extractDir := filepath.Join(targetDir, folder)
	if i.tree.FileExists(extractDir) {
		return "", apperr.Newf(apperr.AlreadyExists, "mod folder already exists: %s", extractDir).WithPath(extractDir)
	}

	var entry *IndexEntry
	if i.dedup {
		entry, err = i.checkDuplicate(archivePath, targetDir, info.Size())
		if err != nil {
			return "", err
		}
		entry.Folder = folder
	}

	if err := i.tree.CreateTree(extractDir); err != nil {
		return "", err
	}

	report, err := i.archiver.Extract(archivePath, extractDir)
	if err != nil {
		return "", err
	}
	i.log.Info().
		Str("archive", archivePath).
		Str("folder", extractDir).
		Int("files", report.Files).
		Int("skipped", len(report.Skipped)).
		Msg("installed mod")

	if entry != nil {
		if err := i.record(targetDir, *entry); err != nil {
			return "", err
		}
	}

	abs, err := filepath.Abs(extractDir)
	if err != nil {
		return "", apperr.Wrap(err, apperr.IOError, "resolving install path").WithPath(extractDir)
	}
	return abs, nil
}

// checkDuplicate refuses archives whose content is already installed in
// targetDir and returns the index entry to record after a successful install.
// Entries whose folder was removed by hand no longer count.
func (i *Installer) checkDuplicate(archivePath, targetDir string, size int64) (*IndexEntry, error) {
	digest, err := i.hasher.Checksum(archivePath)
	if err != nil {
		return nil, err
	}
	idx, err := LoadIndex(i.tree, targetDir)
	if err != nil {
		return nil, err
	}
	if existing := idx.FindChecksum(digest); existing != nil &&
		i.tree.IsDir(filepath.Join(targetDir, existing.Folder)) {
		return nil, apperr.Newf(apperr.AlreadyExists, "archive content already installed as %s", existing.Folder).
			WithPath(filepath.Join(targetDir, existing.Folder))
	}
	return &IndexEntry{
		Archive:     filepath.Base(archivePath),
		Checksum:    digest.String(),
		SizeBytes:   size,
		InstalledAt: i.clock.Now().UTC(),
	}, nil
}

func (i *Installer) record(targetDir string, entry IndexEntry) error {
	idx, err := LoadIndex(i.tree, targetDir)
	if err != nil {
		return err
	}
	idx.Remove(entry.Folder)
	idx.Add(entry)
	return idx.Save(i.tree, targetDir)
}

// Uninstall deletes targetDir/folder and drops it from the index.
func (i *Installer) Uninstall(targetDir, folder string) error {
	if err := validateFolder(folder); err != nil {
		return err
	}
	if err := i.tree.DeleteTree(filepath.Join(targetDir, folder)); err != nil {
		return err
	}

	if !i.tree.FileExists(IndexPath(targetDir)) {
		return nil
	}
	idx, err := LoadIndex(i.tree, targetDir)
	if err != nil {
		return err
	}
	if idx.Remove(folder) {
		return idx.Save(i.tree, targetDir)
	}
	return nil
}

// Installed returns the folder names present in targetDir.
func (i *Installer) Installed(targetDir string) ([]string, error) {
	return i.tree.ScanSubdirectories(targetDir)
}

// List returns the members of an archive without extracting it.
func (i *Installer) List(archivePath string) ([]ports.ArchiveEntry, error) {
	return i.archiver.List(archivePath)
}

// Export packs an installed mod folder into a zip archive at archivePath and
// returns the number of files written.
func (i *Installer) Export(folderPath, archivePath string) (int, error) {
	if !i.tree.IsDir(folderPath) {
		if i.tree.FileExists(folderPath) {
			return 0, apperr.Newf(apperr.NotADirectory, "not a mod folder: %s", folderPath).WithPath(folderPath)
		}
		return 0, apperr.Newf(apperr.NotFound, "mod folder not found: %s", folderPath).WithPath(folderPath)
	}
	if i.tree.FileExists(archivePath) {
		return 0, apperr.Newf(apperr.AlreadyExists, "archive already exists: %s", archivePath).WithPath(archivePath)
	}
	if err := i.tree.CreateTree(filepath.Dir(archivePath)); err != nil {
		return 0, err
	}

	count, err := i.archiver.Create(archivePath, folderPath)
	if err != nil {
		return 0, err
	}
	i.log.Info().Str("folder", folderPath).Str("archive", archivePath).Int("files", count).Msg("exported mod")
	return count, nil
}
