// Package manager ties the core packages together into the operations the
// command line exposes: registering games, installing mods into them and
// launching them.
package manager

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/adapters/discovery"
	"github.com/shshouse/MikuModManager/internal/adapters/execproc"
	"github.com/shshouse/MikuModManager/internal/adapters/osfs"
	"github.com/shshouse/MikuModManager/internal/adapters/ziparchiver"
	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/config"
	"github.com/shshouse/MikuModManager/internal/gamestatus"
	"github.com/shshouse/MikuModManager/internal/identity"
	"github.com/shshouse/MikuModManager/internal/installer"
	"github.com/shshouse/MikuModManager/internal/locator"
	"github.com/shshouse/MikuModManager/internal/ports"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

// Deps are the collaborators a Service runs against.
type Deps struct {
	FS        ports.FileSystem
	Archiver  ports.Archiver
	Discovery ports.Discovery
	Opener    ports.Opener
	Launcher  ports.Launcher
	Clock     ports.Clock
	IDs       ports.IDGenerator
	Logger    zerolog.Logger
}

// Service provides game and mod operations with injected dependencies.
type Service struct {
	appDir  string
	modsDir string

	tree      *treeops.Service
	store     *gamestatus.Store
	installer *installer.Installer
	hasher    *identity.Hasher
	locator   *locator.Locator
	discovery ports.Discovery
	opener    ports.Opener
	launcher  ports.Launcher
	log       zerolog.Logger
}

// NewService creates a Service for cfg with the given dependencies. Nil clock
// and ID generator fall back to the real ones.
func NewService(cfg *config.Config, deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = ports.RealClock{}
	}
	if deps.IDs == nil {
		deps.IDs = ports.UUIDGenerator{}
	}
	log := deps.Logger

	tree := treeops.New(deps.FS, treeops.WithLogger(log.With().Str("component", "treeops").Logger()))
	return &Service{
		appDir:  cfg.ResolvedAppDir(),
		modsDir: cfg.ResolvedModsDir(),
		tree:    tree,
		store: gamestatus.NewStore(tree,
			gamestatus.WithClock(deps.Clock),
			gamestatus.WithIDGenerator(deps.IDs),
			gamestatus.WithLogger(log.With().Str("component", "gamestatus").Logger())),
		installer: installer.New(tree, deps.Archiver,
			installer.WithDedup(cfg.DedupInstalls),
			installer.WithClock(deps.Clock),
			installer.WithLogger(log.With().Str("component", "installer").Logger())),
		hasher:    identity.NewHasher(deps.FS),
		locator:   locator.New(deps.FS, cfg.Executable.Names, cfg.Executable.Extension),
		discovery: deps.Discovery,
		opener:    deps.Opener,
		launcher:  deps.Launcher,
		log:       log,
	}
}

// NewDefaultService creates a Service with real production dependencies.
func NewDefaultService(cfg *config.Config, log zerolog.Logger) *Service {
	fsys := osfs.New()
	proc := execproc.New(execproc.WithLogger(log.With().Str("component", "execproc").Logger()))
	return NewService(cfg, Deps{
		FS:        fsys,
		Archiver:  ziparchiver.New(ziparchiver.WithLogger(log.With().Str("component", "ziparchiver").Logger())),
		Discovery: discovery.New(fsys, cfg.ResolvedExtraPaths(), discovery.WithLogger(log)),
		Opener:    proc,
		Launcher:  proc,
		Logger:    log,
	})
}

// AppDir returns the managed root.
func (s *Service) AppDir() string {
	return s.appDir
}

// GameDir returns the managed directory of the named game.
func (s *Service) GameDir(name string) string {
	return filepath.Join(s.appDir, gamestatus.GamesDir, name)
}

// ModsDir returns the directory mods for the named game are installed into.
func (s *Service) ModsDir(name string) string {
	return filepath.Join(s.modsDir, name)
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return apperr.Newf(apperr.InvalidName, "invalid game name %q", name)
	}
	return nil
}

// game returns the status of a registered game.
func (s *Service) game(name string) (*gamestatus.GameStatus, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	return s.store.Read(s.GameDir(name))
}
