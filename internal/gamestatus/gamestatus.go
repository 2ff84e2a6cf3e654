// Package gamestatus persists the per-game status record kept in every
// managed game directory.
//
// The store takes no locks. Two writers targeting the same directory race and
// the last rename wins; callers serialise access per game.
package gamestatus

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/ports"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

// FileName is the status document inside a managed game directory.
const FileName = "game_status.json"

// GamesDir is the directory under the app dir holding managed games.
const GamesDir = "game"

// TimeFormat is the layout of LastUpdated (ISO-8601 with offset).
const TimeFormat = time.RFC3339Nano

// GameStatus is the persisted record for one managed game.
type GameStatus struct {
	GameName      string   `json:"game_name"`
	GamePath      string   `json:"game_path"`
	LaunchOptions string   `json:"launch_options"`
	InstalledMods []string `json:"installed_mods"`
	PlayTime      uint64   `json:"play_time"`
	LastUpdated   string   `json:"last_updated"`
}

// UpdatedAt parses LastUpdated.
func (g *GameStatus) UpdatedAt() (time.Time, error) {
	t, err := time.Parse(TimeFormat, g.LastUpdated)
	if err != nil {
		return time.Time{}, apperr.Wrapf(err, apperr.ParseError, "invalid last_updated %q", g.LastUpdated)
	}
	return t, nil
}

// Update lists the fields to change. Nil fields are left as they are; a
// non-nil pointer to an empty value clears the field.
type Update struct {
	LaunchOptions *string
	InstalledMods *[]string
}

// StatusPath returns the status file location for statusDir.
func StatusPath(statusDir string) string {
	return filepath.Join(statusDir, FileName)
}

// Store reads and writes status records.
type Store struct {
	tree  *treeops.Service
	clock ports.Clock
	ids   ports.IDGenerator
	log   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for last_updated.
func WithClock(c ports.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithIDGenerator sets the generator used for temporary file names.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore creates a Store writing through tree.
func NewStore(tree *treeops.Service, opts ...Option) *Store {
	s := &Store{
		tree:  tree,
		clock: ports.RealClock{},
		ids:   ports.UUIDGenerator{},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) now() string {
	return s.clock.Now().Format(TimeFormat)
}

// Create writes a fresh record to statusDir/game_status.json, replacing any
// existing file. installPath is the game's real install location; when empty
// statusDir is recorded instead.
func (s *Store) Create(gameName, statusDir, launchOptions, installPath string) (string, error) {
	gamePath := installPath
	if gamePath == "" {
		gamePath = statusDir
	}
	status := &GameStatus{
		GameName:      gameName,
		GamePath:      gamePath,
		LaunchOptions: launchOptions,
		InstalledMods: []string{},
		PlayTime:      0,
		LastUpdated:   s.now(),
	}
	if err := s.write(statusDir, status); err != nil {
		return "", err
	}
	return StatusPath(statusDir), nil
}

// Read loads the record in statusDir.
func (s *Store) Read(statusDir string) (*GameStatus, error) {
	path := StatusPath(statusDir)
	data, err := s.tree.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var status *GameStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, apperr.Wrapf(err, apperr.ParseError, "parsing %s", path).WithPath(path)
	}
	if status == nil || status.GameName == "" {
		return nil, apperr.Newf(apperr.ParseError, "parsing %s: missing game_name", path).WithPath(path)
	}
	if status.InstalledMods == nil {
		status.InstalledMods = []string{}
	}
	return status, nil
}

// defaultStatus is the record assumed when updating a directory that was never
// created: named after the directory and pointing at it.
func (s *Store) defaultStatus(statusDir string) *GameStatus {
	return &GameStatus{
		GameName:      filepath.Base(filepath.Clean(statusDir)),
		GamePath:      statusDir,
		InstalledMods: []string{},
	}
}

// load reads the record in statusDir, falling back to the default record when
// there is none. A corrupt record is an error, not a fallback.
func (s *Store) load(statusDir string) (*GameStatus, error) {
	status, err := s.Read(statusDir)
	if apperr.HasCode(err, apperr.NotFound) {
		return s.defaultStatus(statusDir), nil
	}
	return status, err
}

// Update merges the supplied fields into the record in statusDir and
// refreshes last_updated. A missing record is synthesised first.
func (s *Store) Update(statusDir string, u Update) (*GameStatus, error) {
	return s.modify(statusDir, func(status *GameStatus) {
		if u.LaunchOptions != nil {
			status.LaunchOptions = *u.LaunchOptions
		}
		if u.InstalledMods != nil {
			status.InstalledMods = append([]string{}, (*u.InstalledMods)...)
		}
	})
}

// AddPlayTime adds seconds to the recorded play time. The total saturates at
// math.MaxUint64 rather than wrapping.
func (s *Store) AddPlayTime(statusDir string, seconds uint64) (*GameStatus, error) {
	return s.modify(statusDir, func(status *GameStatus) {
		if seconds > math.MaxUint64-status.PlayTime {
			status.PlayTime = math.MaxUint64
			return
		}
		status.PlayTime += seconds
	})
}

// AddMod appends folder to installed_mods unless already listed.
func (s *Store) AddMod(statusDir, folder string) (*GameStatus, error) {
	return s.modify(statusDir, func(status *GameStatus) {
		for _, m := range status.InstalledMods {
			if m == folder {
				return
			}
		}
		status.InstalledMods = append(status.InstalledMods, folder)
	})
}

// RemoveMod drops folder from installed_mods.
func (s *Store) RemoveMod(statusDir, folder string) (*GameStatus, error) {
	return s.modify(statusDir, func(status *GameStatus) {
		kept := make([]string, 0, len(status.InstalledMods))
		for _, m := range status.InstalledMods {
			if m != folder {
				kept = append(kept, m)
			}
		}
		status.InstalledMods = kept
	})
}

func (s *Store) modify(statusDir string, apply func(*GameStatus)) (*GameStatus, error) {
	status, err := s.load(statusDir)
	if err != nil {
		return nil, err
	}
	apply(status)
	status.LastUpdated = s.now()
	if err := s.write(statusDir, status); err != nil {
		return nil, err
	}
	return status, nil
}

// write encodes status next to its final location and renames it into place.
func (s *Store) write(statusDir string, status *GameStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return apperr.Wrap(err, apperr.IOError, "encoding game status")
	}

	path := StatusPath(statusDir)
	tmp := fmt.Sprintf("%s.%s.tmp", path, s.ids.New())
	if err := s.tree.WriteFile(tmp, data); err != nil {
		return err
	}
	if err := s.tree.FS().Rename(tmp, path); err != nil {
		_ = s.tree.FS().Remove(tmp) // Best effort cleanup on error path
		return apperr.FromOS("rename", path, err)
	}
	s.log.Debug().Str("path", path).Str("game", status.GameName).Msg("wrote game status")
	return nil
}

// ScanUnregistered returns the directories under appDir/game that hold no
// status file. A missing appDir/game yields an empty result.
func (s *Store) ScanUnregistered(appDir string) ([]string, error) {
	gamesDir := filepath.Join(appDir, GamesDir)
	names, err := s.tree.ScanSubdirectories(gamesDir)
	if err != nil {
		return nil, err
	}

	unregistered := []string{}
	for _, name := range names {
		dir := filepath.Join(gamesDir, name)
		if !s.tree.FileExists(StatusPath(dir)) {
			unregistered = append(unregistered, dir)
		}
	}
	return unregistered, nil
}

// Registered pairs a managed directory with its record.
type Registered struct {
	Dir    string
	Status *GameStatus
}

// ListRegistered returns the record of every registered game under
// appDir/game. Directories whose record cannot be parsed are logged and
// skipped.
func (s *Store) ListRegistered(appDir string) ([]Registered, error) {
	gamesDir := filepath.Join(appDir, GamesDir)
	names, err := s.tree.ScanSubdirectories(gamesDir)
	if err != nil {
		return nil, err
	}

	games := []Registered{}
	for _, name := range names {
		dir := filepath.Join(gamesDir, name)
		status, err := s.Read(dir)
		if err != nil {
			if !apperr.HasCode(err, apperr.NotFound) {
				s.log.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable game status")
			}
			continue
		}
		games = append(games, Registered{Dir: dir, Status: status})
	}
	return games, nil
}
