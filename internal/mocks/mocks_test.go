package mocks

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/shshouse/MikuModManager/internal/ports"
)

func TestMockFileSystem(t *testing.T) {
	mockFS := NewMockFileSystem()

	if err := mockFS.MkdirAll("/test", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	// Test WriteFile and ReadFile
	if err := mockFS.WriteFile("/test/file.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	content, err := mockFS.ReadFile("/test/file.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q, expected %q", string(content), "hello")
	}

	// Test Stat after WriteFile
	info, err := mockFS.Stat("/test/file.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("size = %d, expected 5", info.Size())
	}

	// Test ReadFile for non-existent file
	_, err = mockFS.ReadFile("/nonexistent")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile should fail with ErrNotExist, got %v", err)
	}

	// Test error injection
	mockFS.Errors["/error/path"] = errors.New("injected error")
	_, err = mockFS.ReadFile("/error/path")
	if err == nil || err.Error() != "injected error" {
		t.Errorf("Expected injected error, got: %v", err)
	}
}

func TestMockFileSystemWriteNeedsParent(t *testing.T) {
	mockFS := NewMockFileSystem()

	err := mockFS.WriteFile("/missing/file.txt", []byte("x"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("WriteFile without parent should fail with ErrNotExist, got %v", err)
	}
}

func TestMockFileSystemReadDir(t *testing.T) {
	mockFS := NewMockFileSystem()
	_ = mockFS.MkdirAll("/games/project-a", 0755)
	_ = mockFS.MkdirAll("/games/project-b/nested", 0755)
	_ = mockFS.WriteFile("/games/notes.txt", []byte("n"), 0644)

	entries, err := mockFS.ReadDir("/games")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("ReadDir returned %d entries, expected 3", len(entries))
	}
	want := []struct {
		name  string
		isDir bool
	}{{"notes.txt", false}, {"project-a", true}, {"project-b", true}}
	for i, w := range want {
		if entries[i].Name() != w.name || entries[i].IsDir() != w.isDir {
			t.Errorf("entry[%d] = %s (dir=%v), expected %s (dir=%v)",
				i, entries[i].Name(), entries[i].IsDir(), w.name, w.isDir)
		}
	}

	if _, err := mockFS.ReadDir("/games/notes.txt"); err == nil {
		t.Error("ReadDir on a file should fail")
	}
}

func TestMockFileSystemRemove(t *testing.T) {
	mockFS := NewMockFileSystem()
	_ = mockFS.MkdirAll("/a/b", 0755)
	_ = mockFS.WriteFile("/a/b/c.txt", []byte("c"), 0644)

	if err := mockFS.Remove("/a/b"); err == nil {
		t.Error("Remove of non-empty directory should fail")
	}
	if err := mockFS.RemoveAll("/a"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := mockFS.Stat("/a/b/c.txt"); err == nil {
		t.Error("file should be gone after RemoveAll")
	}
	if _, err := mockFS.Stat("/"); err != nil {
		t.Errorf("root should survive RemoveAll: %v", err)
	}

	mockFS.RemoveErrors["/locked"] = errors.New("in use")
	if err := mockFS.RemoveAll("/locked"); err == nil {
		t.Error("expected injected remove error")
	}
}

func TestMockFileSystemRenameAndCreate(t *testing.T) {
	mockFS := NewMockFileSystem()
	_ = mockFS.MkdirAll("/dir", 0755)

	w, err := mockFS.Create("/dir/tmp")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = w.Write([]byte("payload"))
	_ = w.Close()

	if err := mockFS.Rename("/dir/tmp", "/dir/final"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	f, err := mockFS.Open("/dir/final")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, expected payload", data)
	}
	if _, err := mockFS.Stat("/dir/tmp"); err == nil {
		t.Error("old name should be gone after Rename")
	}
}

func TestMockArchiver(t *testing.T) {
	archiver := NewMockArchiver()
	archiver.CreateResult = 5

	count, err := archiver.Create("/export.zip", "/source")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Create returned %d, expected 5", count)
	}
	if len(archiver.CreateCalls) != 1 {
		t.Errorf("CreateCalls = %d, expected 1", len(archiver.CreateCalls))
	}

	archiver.ExtractReport = ports.ExtractReport{Files: 2}
	report, err := archiver.Extract("/mod.zip", "/dest")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if report.Files != 2 || len(archiver.ExtractCalls) != 1 {
		t.Errorf("unexpected extract result %+v, calls %d", report, len(archiver.ExtractCalls))
	}

	archiver.ListResults["/mod.zip"] = []ports.ArchiveEntry{{Name: "file1.txt", Size: 100, CRC32: 12345}}
	entries, err := archiver.List("/mod.zip")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List returned %d entries, expected 1", len(entries))
	}

	archiver.Errors["Create"] = errors.New("disk full")
	_, err = archiver.Create("/another.zip", "/source")
	if err == nil || err.Error() != "disk full" {
		t.Errorf("Expected 'disk full' error, got: %v", err)
	}
}

func TestMockCollaborators(t *testing.T) {
	d := NewMockDiscovery()
	d.Results["miku"] = []string{"/games/miku"}
	got, err := d.Candidates("miku")
	if err != nil || len(got) != 1 {
		t.Errorf("Candidates = %v, %v", got, err)
	}

	o := &MockOpener{}
	_ = o.Open("https://example.com")
	if len(o.Opened) != 1 {
		t.Errorf("Opened = %v", o.Opened)
	}

	l := &MockLauncher{Err: errors.New("spawn failed")}
	if err := l.Launch("/g/game.exe", "/g", "-windowed"); err == nil {
		t.Error("expected launch error")
	}
	if len(l.Calls) != 1 || l.Calls[0].Args != "-windowed" {
		t.Errorf("Calls = %+v", l.Calls)
	}
}
