//go:build darwin

package execproc

func openCommand(target string) (string, []string) {
	return "open", []string{target}
}
