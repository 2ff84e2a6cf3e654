//go:build !windows && !darwin

package execproc

func openCommand(target string) (string, []string) {
	return "xdg-open", []string{target}
}
