package mocks

import (
	"github.com/shshouse/MikuModManager/internal/ports"
)

// MockArchiver implements ports.Archiver for testing.
type MockArchiver struct {
	// CreateCalls records calls to Create
	CreateCalls []CreateCall
	// ExtractCalls records calls to Extract
	ExtractCalls []ExtractCall
	// ListResults maps zip paths to entry listings
	ListResults map[string][]ports.ArchiveEntry
	// ExtractReport is returned by every successful Extract
	ExtractReport ports.ExtractReport
	// Errors maps method names to errors
	Errors map[string]error
	// CreateResult is the default file count to return
	CreateResult int
}

// CreateCall records parameters of a Create call.
type CreateCall struct {
	DestPath  string
	SourceDir string
}

// ExtractCall records parameters of an Extract call.
type ExtractCall struct {
	ZipPath string
	DestDir string
}

// NewMockArchiver creates a new mock archiver.
func NewMockArchiver() *MockArchiver {
	return &MockArchiver{
		ListResults:  make(map[string][]ports.ArchiveEntry),
		Errors:       make(map[string]error),
		CreateResult: 1, // Default to 1 file
	}
}

// Create records the call and returns CreateResult.
func (m *MockArchiver) Create(destPath, sourceDir string) (int, error) {
	m.CreateCalls = append(m.CreateCalls, CreateCall{
		DestPath:  destPath,
		SourceDir: sourceDir,
	})
	if err, ok := m.Errors["Create"]; ok {
		return 0, err
	}
	return m.CreateResult, nil
}

// Extract records the call and returns ExtractReport.
func (m *MockArchiver) Extract(zipPath, destDir string) (ports.ExtractReport, error) {
	m.ExtractCalls = append(m.ExtractCalls, ExtractCall{
		ZipPath: zipPath,
		DestDir: destDir,
	})
	if err, ok := m.Errors["Extract"]; ok {
		return ports.ExtractReport{}, err
	}
	return m.ExtractReport, nil
}

// List returns the configured listing for zipPath.
func (m *MockArchiver) List(zipPath string) ([]ports.ArchiveEntry, error) {
	if err, ok := m.Errors["List"]; ok {
		return nil, err
	}
	return m.ListResults[zipPath], nil
}

// Compile-time check that MockArchiver implements ports.Archiver.
var _ ports.Archiver = (*MockArchiver)(nil)
