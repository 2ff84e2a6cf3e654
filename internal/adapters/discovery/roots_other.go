//go:build !windows

package discovery

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

func platformRoots() []string {
	return []string{
		filepath.Join(xdg.DataHome, "Steam", "steamapps", "common"),
		filepath.Join(xdg.Home, ".steam", "steam", "steamapps", "common"),
		filepath.Join(xdg.Home, "Games"),
	}
}

// registryCandidates has nothing to probe off Windows.
func registryCandidates(string) ([]string, error) {
	return nil, nil
}
