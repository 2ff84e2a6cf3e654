// Package locator guesses which file in a game install is the one to launch.
package locator

import (
	"path/filepath"
	"strings"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// excluded marks executables that are installers or helpers, never the game.
var excluded = []string{"uninstall", "setup", "launcher"}

// Locator searches an install directory for the game executable.
type Locator struct {
	fs        ports.FileSystem
	names     []string
	extension string
}

// New creates a Locator. Empty names or extension fall back to the platform
// defaults.
func New(fsys ports.FileSystem, names []string, extension string) *Locator {
	if len(names) == 0 {
		names = DefaultNames()
	}
	if extension == "" {
		extension = DefaultExtension()
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Locator{fs: fsys, names: names, extension: extension}
}

// FindExecutable returns the path of the game executable in installDir.
//
// The well-known names are tried first, matched exactly. Otherwise the first
// file in directory order with the platform extension wins, skipping names
// that look like installers or launchers. This is a heuristic.
func (l *Locator) FindExecutable(installDir string) (string, error) {
	for _, name := range l.names {
		p := filepath.Join(installDir, name)
		if info, err := l.fs.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	entries, err := l.fs.ReadDir(installDir)
	if err != nil {
		return "", apperr.FromOS("read directory", installDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), l.extension) {
			continue
		}
		if isExcluded(e.Name()) {
			continue
		}
		return filepath.Join(installDir, e.Name()), nil
	}

	return "", apperr.Newf(apperr.NotFound, "no executable found in %s", installDir).WithPath(installDir)
}

func isExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range excluded {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
