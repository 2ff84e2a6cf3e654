package ziparchiver

import (
	"archive/zip"
	"bytes"
	"hash/crc32"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/shshouse/MikuModManager/internal/apperr"
)

type zipMember struct {
	name    string
	content string
}

// writeZip builds an archive with the given members in order. Names ending in
// "/" become directory markers.
func writeZip(t *testing.T, path string, members []zipMember) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, m := range members {
		fw, err := w.Create(m.name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", m.name, err)
		}
		if m.content != "" {
			if _, err := fw.Write([]byte(m.content)); err != nil {
				t.Fatalf("Failed to write zip entry %s: %v", m.name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
}

func TestIsWithinDir(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		target   string
		expected bool
	}{
		{"valid path within directory", "/home/user/dest", "/home/user/dest/subdir/file.txt", true},
		{"exact match", "/home/user/dest", "/home/user/dest", true},
		{"parent directory traversal blocked", "/home/user/dest", "/home/user/dest/../../../etc/passwd", false},
		{"sibling directory blocked", "/home/user/dest", "/home/user/other/file.txt", false},
		{"prefix match but different directory", "/home/user", "/home/username/evil.txt", false},
		{"double dot in filename allowed", "/home/user/dest", "/home/user/dest/file..txt", true},
		{"absolute path outside base", "/home/user/dest", "/tmp/evil.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			absBase, _ := filepath.Abs(tt.baseDir)
			absBase = filepath.Clean(absBase)

			result := isWithinDir(absBase, tt.target)
			if result != tt.expected {
				t.Errorf("isWithinDir(%q, %q) = %v, expected %v", absBase, tt.target, result, tt.expected)
			}
		})
	}
}

func TestConfine(t *testing.T) {
	base, _ := filepath.Abs("/mods/CoolMod")

	tests := []struct {
		name  string
		entry string
		ok    bool
	}{
		{"plain file", "readme.txt", true},
		{"nested file", "data/model.bin", true},
		{"directory marker", "data/", true},
		{"parent traversal", "../evil.txt", false},
		{"embedded parent traversal", "data/../../evil.txt", false},
		{"parent segment that stays inside", "data/../readme.txt", false},
		{"absolute unix path", "/etc/passwd", false},
		{"backslash traversal", `..\evil.txt`, false},
		{"drive letter", `C:\Windows\evil.dll`, false},
		{"dotted filename", "file..txt", true},
		{"lowercase drive letter", "c:/evil.dll", false},
		{"drive relative", "a:b.txt", false},
		{"digit before colon", "1:b.txt", true},
		{"word before colon", "ab:c.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok && runtime.GOOS == "windows" && strings.Contains(tt.entry, ":") {
				t.Skip("colons are volume separators on windows")
			}
			_, ok := confine(base, tt.entry)
			if ok != tt.ok {
				t.Errorf("confine(%q) ok = %v, expected %v", tt.entry, ok, tt.ok)
			}
		})
	}
}

func TestExtractValidArchive(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "CoolMod.zip")
	writeZip(t, zipPath, []zipMember{
		{name: "readme.txt", content: "hello"},
		{name: "data/model.bin", content: "\x00\x01\x02"},
		{name: "empty/"},
	})

	destDir := filepath.Join(tempDir, "dest")
	report, err := New().Extract(zipPath, destDir)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if report.Files != 2 {
		t.Errorf("report.Files = %d, expected 2", report.Files)
	}
	if report.Dirs != 1 {
		t.Errorf("report.Dirs = %d, expected 1", report.Dirs)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("report.Skipped = %v, expected none", report.Skipped)
	}

	content, err := os.ReadFile(filepath.Join(destDir, "data", "model.bin"))
	if err != nil {
		t.Fatalf("Failed to read extracted file: %v", err)
	}
	if string(content) != "\x00\x01\x02" {
		t.Errorf("Extracted content = %q", string(content))
	}

	info, err := os.Stat(filepath.Join(destDir, "empty"))
	if err != nil || !info.IsDir() {
		t.Errorf("empty directory marker not created: %v", err)
	}
}

func TestExtractSkipsTraversalEntries(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "malicious.zip")
	writeZip(t, zipPath, []zipMember{
		{name: "../evil.txt", content: "malicious content"},
		{name: "ok.txt", content: "fine"},
		{name: "/abs.txt", content: "absolute"},
	})

	destDir := filepath.Join(tempDir, "dest")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatalf("Failed to create dest dir: %v", err)
	}

	report, err := New().Extract(zipPath, destDir)
	if err != nil {
		t.Fatalf("Extract should skip, not fail: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "evil.txt")); err == nil {
		t.Error("Malicious file was created outside destination - ZipSlip vulnerability!")
	}
	if _, err := os.Stat(filepath.Join(destDir, "ok.txt")); err != nil {
		t.Errorf("valid sibling entry was not extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "abs.txt")); err == nil {
		t.Error("absolute entry should be skipped, not re-rooted")
	}
	if len(report.Skipped) != 2 {
		t.Errorf("report.Skipped = %v, expected 2 entries", report.Skipped)
	}
}

func TestExtractSkipsSymlinkEntries(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "links.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(f)
	header := &zip.FileHeader{Name: "link", Method: zip.Store}
	header.SetMode(os.ModeSymlink | 0777)
	fw, err := w.CreateHeader(header)
	if err != nil {
		t.Fatalf("Failed to create symlink entry: %v", err)
	}
	if _, err := fw.Write([]byte("/etc/passwd")); err != nil {
		t.Fatal(err)
	}
	fw, err = w.Create("ok.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("fine")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(tempDir, "dest")
	report, err := New().Extract(zipPath, destDir)
	if err != nil {
		t.Fatalf("Extract should skip, not fail: %v", err)
	}

	if len(report.Skipped) != 1 || report.Skipped[0] != "link" {
		t.Errorf("report.Skipped = %v, expected [link]", report.Skipped)
	}
	if report.Files != 1 {
		t.Errorf("report.Files = %d, expected 1", report.Files)
	}
	if _, err := os.Lstat(filepath.Join(destDir, "link")); err == nil {
		t.Error("symlink entry should not be created")
	}
}

// writeRawMember stores data under name with a caller-chosen declared size.
func writeRawMember(t *testing.T, zipPath, name string, data []byte, declared uint64) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: declared,
	})
	if err != nil {
		t.Fatalf("Failed to create raw entry: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zipPath, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractRejectsOversizedMember(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared uint64
	}{
		{"more data than declared", bytes.Repeat([]byte("A"), 4096), 10},
		{"declared size over cap", []byte("tiny"), MaxDecompressSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			zipPath := filepath.Join(tempDir, "bomb.zip")
			writeRawMember(t, zipPath, "bomb.bin", tt.data, tt.declared)

			_, err := New().Extract(zipPath, filepath.Join(tempDir, "dest"))
			if !apperr.HasCode(err, apperr.CorruptArchive) {
				t.Errorf("expected CorruptArchive, got %v", err)
			}
		})
	}
}

func TestExtractEntryWithColonInName(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "colon.zip")
	writeZip(t, zipPath, []zipMember{{name: "1:b.txt", content: "x"}})

	report, err := New().Extract(zipPath, filepath.Join(tempDir, "dest"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if runtime.GOOS == "windows" {
		return
	}
	if report.Files != 1 || len(report.Skipped) != 0 {
		t.Errorf("report = %+v, expected 1:b.txt extracted", report)
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	tempDir := t.TempDir()
	zipPath := filepath.Join(tempDir, "broken.zip")
	if err := os.WriteFile(zipPath, []byte("this is not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New().Extract(zipPath, filepath.Join(tempDir, "dest"))
	if !apperr.HasCode(err, apperr.CorruptArchive) {
		t.Errorf("expected CorruptArchive, got %v", err)
	}
}

func TestExtractMissingArchive(t *testing.T) {
	tempDir := t.TempDir()

	_, err := New().Extract(filepath.Join(tempDir, "nope.zip"), tempDir)
	if !apperr.HasCode(err, apperr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestCreateAndListRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	sourceDir := filepath.Join(tempDir, "CoolMod")

	testFiles := map[string]string{
		"readme.txt":     "hello",
		"data/model.bin": "model",
	}
	for path, content := range testFiles {
		fullPath := filepath.Join(sourceDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	zipPath := filepath.Join(tempDir, "out.zip")
	a := New()
	count, err := a.Create(zipPath, sourceDir)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if count != len(testFiles) {
		t.Errorf("count = %d, expected %d", count, len(testFiles))
	}

	entries, err := a.List(zipPath)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	found := make(map[string]int64)
	for _, e := range entries {
		if !e.IsDir {
			found[e.Name] = e.Size
		}
	}
	for path, content := range testFiles {
		size, ok := found[path]
		if !ok {
			t.Errorf("expected %s in archive, entries: %v", path, entries)
			continue
		}
		if size != int64(len(content)) {
			t.Errorf("%s size = %d, expected %d", path, size, len(content))
		}
	}

	// Extracting the packed archive reproduces the tree.
	destDir := filepath.Join(tempDir, "roundtrip")
	if _, err := a.Extract(zipPath, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for path, content := range testFiles {
		got, err := os.ReadFile(filepath.Join(destDir, path))
		if err != nil {
			t.Errorf("reading %s: %v", path, err)
			continue
		}
		if string(got) != content {
			t.Errorf("%s = %q, expected %q", path, got, content)
		}
	}
}

func TestCreateRejectsFileSource(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New().Create(filepath.Join(tempDir, "out.zip"), file)
	if !apperr.HasCode(err, apperr.NotADirectory) {
		t.Errorf("expected NotADirectory, got %v", err)
	}
}
