package ports

// Discovery finds candidate installation directories for a product.
// Implementations probe well-known filesystem locations and, on Windows,
// the registry.
type Discovery interface {
	// Candidates returns absolute paths that look like installs of product.
	// No candidates is not an error.
	Candidates(product string) ([]string, error)
}

// Opener hands a URL or directory to the platform's default handler.
// It does not wait for the handler to exit.
type Opener interface {
	Open(target string) error
}

// Launcher starts a game process detached from the caller.
type Launcher interface {
	// Launch starts executable in workDir with the whitespace-delimited args.
	// Only the spawn is reported; the child's exit status is not awaited.
	Launch(executable, workDir, args string) error
}
