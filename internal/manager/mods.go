package manager

import (
	"path/filepath"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/identity"
	"github.com/shshouse/MikuModManager/internal/ports"
)

// InstallMod extracts archive into the game's mods directory and records the
// new folder in the game's status. It returns the installed folder.
func (s *Service) InstallMod(name, archive string) (string, error) {
	if _, err := s.game(name); err != nil {
		return "", err
	}

	path, err := s.installer.Install(archive, s.ModsDir(name))
	if err != nil {
		return "", err
	}
	if _, err := s.store.AddMod(s.GameDir(name), filepath.Base(path)); err != nil {
		return path, err
	}
	return path, nil
}

// UninstallMod deletes an installed mod folder and drops it from the game's
// status. A folder already gone from disk is still dropped from the status.
func (s *Service) UninstallMod(name, folder string) error {
	status, err := s.game(name)
	if err != nil {
		return err
	}

	err = s.installer.Uninstall(s.ModsDir(name), folder)
	if err != nil && !(apperr.HasCode(err, apperr.NotFound) && contains(status.InstalledMods, folder)) {
		return err
	}
	_, err = s.store.RemoveMod(s.GameDir(name), folder)
	return err
}

// ListMods returns the mod folders present for a game.
func (s *Service) ListMods(name string) ([]string, error) {
	if _, err := s.game(name); err != nil {
		return nil, err
	}
	return s.installer.Installed(s.ModsDir(name))
}

// ExportMod packs an installed mod folder into archive.
func (s *Service) ExportMod(name, folder, archive string) (int, error) {
	if err := validName(name); err != nil {
		return 0, err
	}
	if err := validName(folder); err != nil {
		return 0, err
	}
	return s.installer.Export(filepath.Join(s.ModsDir(name), folder), archive)
}

// InspectArchive lists an archive's members without installing it.
func (s *Service) InspectArchive(archive string) ([]ports.ArchiveEntry, error) {
	return s.installer.List(archive)
}

// Checksum returns the content digest of a file.
func (s *Service) Checksum(path string) (identity.Digest, error) {
	return s.hasher.Checksum(path)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
