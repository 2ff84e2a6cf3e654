//go:build windows

package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"
)

func platformRoots() []string {
	var roots []string
	for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles"} {
		base := os.Getenv(env)
		if base == "" {
			continue
		}
		roots = append(roots,
			filepath.Join(base, "Steam", "steamapps", "common"),
			base,
		)
	}
	return roots
}

const uninstallKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

// registryCandidates reads InstallLocation from every uninstall entry whose
// DisplayName contains product, case-insensitively.
func registryCandidates(product string) ([]string, error) {
	needle := strings.ToLower(product)
	var found []string
	var firstErr error

	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		paths, err := scanUninstall(root, needle)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		found = append(found, paths...)
	}
	return found, firstErr
}

func scanUninstall(root registry.Key, needle string) ([]string, error) {
	k, err := registry.OpenKey(root, uninstallKey, registry.ENUMERATE_SUB_KEYS|registry.READ)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, name := range names {
		sub, err := registry.OpenKey(k, name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		display, _, derr := sub.GetStringValue("DisplayName")
		location, _, lerr := sub.GetStringValue("InstallLocation")
		sub.Close()
		if derr != nil || lerr != nil || location == "" {
			continue
		}
		if strings.Contains(strings.ToLower(display), needle) {
			found = append(found, strings.Trim(location, `"`))
		}
	}
	return found, nil
}
