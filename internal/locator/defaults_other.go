//go:build !windows

package locator

// DefaultExtension is the executable extension on this platform.
func DefaultExtension() string { return ".x86_64" }

// DefaultNames are the executable names tried before scanning.
func DefaultNames() []string {
	return []string{"game.x86_64", "Game.x86_64", "start.sh", "run.sh"}
}
