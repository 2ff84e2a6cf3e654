package ports

// Archiver abstracts zip archive operations for testability.
// Production code uses ZipArchiver adapter; tests use MockArchiver.
type Archiver interface {
	// Create creates a zip archive of sourceDir at destPath.
	// Entries are stored relative to sourceDir, without a folder prefix.
	// Returns the number of files archived.
	Create(destPath, sourceDir string) (fileCount int, err error)

	// Extract extracts every member of the archive at zipPath into destDir.
	// Members that would resolve outside destDir are skipped and reported.
	Extract(zipPath, destDir string) (ExtractReport, error)

	// List returns the members of the archive in declared order.
	List(zipPath string) ([]ArchiveEntry, error)
}

// ArchiveEntry describes one member of an archive.
type ArchiveEntry struct {
	Name  string
	Size  int64
	IsDir bool
	CRC32 uint32
}

// ExtractReport summarises an extraction.
type ExtractReport struct {
	Files   int
	Dirs    int
	Skipped []string
}
