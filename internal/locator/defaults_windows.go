//go:build windows

package locator

// DefaultExtension is the executable extension on this platform.
func DefaultExtension() string { return ".exe" }

// DefaultNames are the executable names tried before scanning.
func DefaultNames() []string {
	return []string{"Game.exe", "game.exe", "Start.exe", "start.exe", "main.exe"}
}
