package installer

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/identity"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

// IndexFileName is the per-target-directory record of installed archives.
const IndexFileName = ".mod_index.json"

// IndexEntry records one installed archive.
type IndexEntry struct {
	Folder      string    `json:"folder"`
	Archive     string    `json:"archive"`
	Checksum    string    `json:"checksum"`
	SizeBytes   int64     `json:"size_bytes"`
	InstalledAt time.Time `json:"installed_at"`
}

// Index lists the archives installed into one target directory, oldest first.
type Index struct {
	Mods []IndexEntry `json:"mods"`
}

// IndexPath returns the index location for targetDir.
func IndexPath(targetDir string) string {
	return filepath.Join(targetDir, IndexFileName)
}

// LoadIndex reads the index for targetDir. A missing index is empty.
func LoadIndex(tree *treeops.Service, targetDir string) (*Index, error) {
	path := IndexPath(targetDir)

	data, err := tree.ReadFile(path)
	if err != nil {
		if apperr.HasCode(err, apperr.NotFound) {
			return &Index{Mods: []IndexEntry{}}, nil
		}
		return nil, err
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, apperr.Wrapf(err, apperr.ParseError, "parsing mod index %s", path).WithPath(path)
	}
	if idx.Mods == nil {
		idx.Mods = []IndexEntry{}
	}
	return &idx, nil
}

// Save writes the index for targetDir.
func (idx *Index) Save(tree *treeops.Service, targetDir string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.IOError, "encoding mod index")
	}
	return tree.WriteFile(IndexPath(targetDir), data)
}

// Add appends entry.
func (idx *Index) Add(entry IndexEntry) {
	idx.Mods = append(idx.Mods, entry)
}

// FindChecksum returns the entry whose checksum matches digest, or nil.
// Entries with an unreadable or zero checksum never match.
func (idx *Index) FindChecksum(digest identity.Digest) *IndexEntry {
	for i := range idx.Mods {
		stored, err := identity.ParseDigest(idx.Mods[i].Checksum)
		if err != nil || stored.IsZero() {
			continue
		}
		if stored == digest {
			return &idx.Mods[i]
		}
	}
	return nil
}

// Remove drops every entry for folder and reports whether any was removed.
func (idx *Index) Remove(folder string) bool {
	kept := idx.Mods[:0]
	for _, e := range idx.Mods {
		if e.Folder != folder {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(idx.Mods)
	idx.Mods = kept
	return removed
}
