package manager

import (
	"path/filepath"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/gamestatus"
)

// RegisterGame creates the managed directory and status record for a game.
// installPath, when set, must be an existing directory.
func (s *Service) RegisterGame(name, installPath, launchOptions string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	if installPath != "" {
		abs, err := filepath.Abs(installPath)
		if err != nil {
			return "", apperr.Wrap(err, apperr.IOError, "resolving install path").WithPath(installPath)
		}
		info, err := s.tree.FS().Stat(abs)
		if err != nil {
			return "", apperr.FromOS("stat", abs, err)
		}
		if !info.IsDir() {
			return "", apperr.Newf(apperr.NotADirectory, "install path is not a directory: %s", abs).WithPath(abs)
		}
		installPath = abs
	}

	dir := s.GameDir(name)
	if s.tree.FileExists(gamestatus.StatusPath(dir)) {
		return "", apperr.Newf(apperr.AlreadyExists, "game already registered: %s", name).WithPath(dir)
	}

	path, err := s.store.Create(name, dir, launchOptions, installPath)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("game", name).Str("dir", dir).Msg("registered game")
	return path, nil
}

// Game returns the status of a registered game.
func (s *Service) Game(name string) (*gamestatus.GameStatus, error) {
	return s.game(name)
}

// ListGames returns every registered game.
func (s *Service) ListGames() ([]gamestatus.Registered, error) {
	return s.store.ListRegistered(s.appDir)
}

// ScanUnregistered returns managed directories without a status record.
func (s *Service) ScanUnregistered() ([]string, error) {
	return s.store.ScanUnregistered(s.appDir)
}

// SetLaunchOptions replaces the launch options of a registered game.
func (s *Service) SetLaunchOptions(name, options string) (*gamestatus.GameStatus, error) {
	if _, err := s.game(name); err != nil {
		return nil, err
	}
	return s.store.Update(s.GameDir(name), gamestatus.Update{LaunchOptions: &options})
}

// AddPlayTime credits seconds of play to a registered game.
func (s *Service) AddPlayTime(name string, seconds uint64) (*gamestatus.GameStatus, error) {
	if _, err := s.game(name); err != nil {
		return nil, err
	}
	return s.store.AddPlayTime(s.GameDir(name), seconds)
}

// DeleteGame removes the managed directory of a game. The game install
// itself is never touched. With purgeMods the game's mods directory goes too.
func (s *Service) DeleteGame(name string, purgeMods bool) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.tree.DeleteTree(s.GameDir(name)); err != nil {
		return err
	}
	if purgeMods && s.tree.FileExists(s.ModsDir(name)) {
		if err := s.tree.DeleteTree(s.ModsDir(name)); err != nil {
			return err
		}
	}
	s.log.Info().Str("game", name).Bool("purge_mods", purgeMods).Msg("deleted game")
	return nil
}

// LaunchGame finds the game executable under the recorded install path and
// starts it with the recorded launch options. It returns the executable.
func (s *Service) LaunchGame(name string) (string, error) {
	status, err := s.game(name)
	if err != nil {
		return "", err
	}
	if s.launcher == nil {
		return "", apperr.New(apperr.LaunchFailed, "no launcher configured")
	}

	exe, err := s.locator.FindExecutable(status.GamePath)
	if err != nil {
		return "", err
	}
	if err := s.launcher.Launch(exe, filepath.Dir(exe), status.LaunchOptions); err != nil {
		return "", err
	}
	s.log.Info().Str("game", name).Str("exe", exe).Msg("launched game")
	return exe, nil
}

// OpenGameFolder opens the game install in the platform file browser.
func (s *Service) OpenGameFolder(name string) error {
	status, err := s.game(name)
	if err != nil {
		return err
	}
	if s.opener == nil {
		return apperr.New(apperr.LaunchFailed, "no opener configured")
	}
	return s.opener.Open(status.GamePath)
}

// OpenURL hands target to the platform default handler.
func (s *Service) OpenURL(target string) error {
	if s.opener == nil {
		return apperr.New(apperr.LaunchFailed, "no opener configured")
	}
	return s.opener.Open(target)
}

// DiscoverInstalls returns candidate install directories for product.
func (s *Service) DiscoverInstalls(product string) ([]string, error) {
	if s.discovery == nil {
		return []string{}, nil
	}
	return s.discovery.Candidates(product)
}
