package gamestatus

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shshouse/MikuModManager/internal/adapters/osfs"
	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/mocks"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

var start = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newStore(opts ...Option) *Store {
	opts = append([]Option{WithClock(mocks.TickingClock(start, time.Second))}, opts...)
	return NewStore(treeops.New(osfs.New()), opts...)
}

func strPtr(s string) *string { return &s }

func TestCreateMyGame(t *testing.T) {
	base := t.TempDir()
	statusDir := filepath.Join(base, "games", "mg")
	s := newStore()

	path, err := s.Create("MyGame", statusDir, "-windowed", "/installs/MyGame")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(statusDir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "MyGame", raw["game_name"])
	assert.Equal(t, "/installs/MyGame", raw["game_path"])
	assert.Equal(t, "-windowed", raw["launch_options"])
	assert.Equal(t, []interface{}{}, raw["installed_mods"])
	assert.Equal(t, float64(0), raw["play_time"])
	assert.Equal(t, "2024-01-15T10:30:00Z", raw["last_updated"])
}

func TestCreateWithoutInstallPath(t *testing.T) {
	statusDir := filepath.Join(t.TempDir(), "mg")
	s := newStore()

	_, err := s.Create("MyGame", statusDir, "", "")
	require.NoError(t, err)

	status, err := s.Read(statusDir)
	require.NoError(t, err)
	assert.Equal(t, statusDir, status.GamePath)
}

func TestCreateOverwrites(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()

	_, err := s.Create("Old", statusDir, "-a", "")
	require.NoError(t, err)
	_, err = s.AddMod(statusDir, "SomeMod")
	require.NoError(t, err)

	_, err = s.Create("New", statusDir, "-b", "")
	require.NoError(t, err)

	status, err := s.Read(statusDir)
	require.NoError(t, err)
	assert.Equal(t, "New", status.GameName)
	assert.Empty(t, status.InstalledMods)
}

func TestReadMissing(t *testing.T) {
	_, err := newStore().Read(t.TempDir())
	assert.True(t, apperr.HasCode(err, apperr.NotFound), "got %v", err)
}

func TestReadCorrupt(t *testing.T) {
	statusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(statusDir, FileName), []byte(`{"game_name": 42`), 0644))

	_, err := newStore().Read(statusDir)
	assert.True(t, apperr.HasCode(err, apperr.ParseError), "got %v", err)
}

func TestReadEmptyDocument(t *testing.T) {
	for _, doc := range []string{"null", "{}", `{"game_name": ""}`} {
		statusDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(statusDir, FileName), []byte(doc), 0644))

		_, err := newStore().Read(statusDir)
		assert.True(t, apperr.HasCode(err, apperr.ParseError), "%s: got %v", doc, err)
	}
}

func TestUpdateModsOnlyKeepsLaunchOptions(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()

	_, err := s.Create("MyGame", statusDir, "-windowed", "/installs/MyGame")
	require.NoError(t, err)
	before, err := s.Read(statusDir)
	require.NoError(t, err)

	mods := []string{"CoolMod", "OtherMod"}
	_, err = s.Update(statusDir, Update{InstalledMods: &mods})
	require.NoError(t, err)

	after, err := s.Read(statusDir)
	require.NoError(t, err)
	assert.Equal(t, "-windowed", after.LaunchOptions)
	assert.Equal(t, mods, after.InstalledMods)
	assert.Equal(t, "/installs/MyGame", after.GamePath)

	t0, err := before.UpdatedAt()
	require.NoError(t, err)
	t1, err := after.UpdatedAt()
	require.NoError(t, err)
	assert.True(t, t1.After(t0), "last_updated should move forward: %s -> %s", t0, t1)
}

func TestUpdateLaunchOptionsOnly(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()

	_, err := s.Create("MyGame", statusDir, "-windowed", "")
	require.NoError(t, err)
	mods := []string{"CoolMod"}
	_, err = s.Update(statusDir, Update{InstalledMods: &mods})
	require.NoError(t, err)

	status, err := s.Update(statusDir, Update{LaunchOptions: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", status.LaunchOptions)
	assert.Equal(t, []string{"CoolMod"}, status.InstalledMods)
}

func TestUpdateWithoutRecordSynthesisesDefault(t *testing.T) {
	statusDir := filepath.Join(t.TempDir(), "Some Game")
	s := newStore()

	_, err := s.Update(statusDir, Update{LaunchOptions: strPtr("-fullscreen")})
	require.NoError(t, err)

	status, err := s.Read(statusDir)
	require.NoError(t, err)
	assert.Equal(t, "Some Game", status.GameName)
	assert.Equal(t, statusDir, status.GamePath)
	assert.Equal(t, "-fullscreen", status.LaunchOptions)
	assert.Empty(t, status.InstalledMods)
	assert.Equal(t, uint64(0), status.PlayTime)
}

func TestUpdateCorruptRecordFails(t *testing.T) {
	statusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(statusDir, FileName), []byte("garbage"), 0644))

	_, err := newStore().Update(statusDir, Update{LaunchOptions: strPtr("-x")})
	assert.True(t, apperr.HasCode(err, apperr.ParseError), "got %v", err)

	data, err := os.ReadFile(filepath.Join(statusDir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))
}

func TestAddPlayTime(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()
	_, err := s.Create("MyGame", statusDir, "", "")
	require.NoError(t, err)

	_, err = s.AddPlayTime(statusDir, 90)
	require.NoError(t, err)
	status, err := s.AddPlayTime(statusDir, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(120), status.PlayTime)
}

func TestAddPlayTimeSaturates(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()
	_, err := s.Create("MyGame", statusDir, "", "")
	require.NoError(t, err)

	_, err = s.AddPlayTime(statusDir, math.MaxUint64-5)
	require.NoError(t, err)
	status, err := s.AddPlayTime(statusDir, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), status.PlayTime)

	status, err = s.AddPlayTime(statusDir, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), status.PlayTime)

	reread, err := s.Read(statusDir)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), reread.PlayTime)
}

func TestAddAndRemoveMod(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()
	_, err := s.Create("MyGame", statusDir, "", "")
	require.NoError(t, err)

	_, err = s.AddMod(statusDir, "A")
	require.NoError(t, err)
	_, err = s.AddMod(statusDir, "B")
	require.NoError(t, err)
	status, err := s.AddMod(statusDir, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, status.InstalledMods)

	status, err = s.RemoveMod(statusDir, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, status.InstalledMods)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	statusDir := t.TempDir()
	s := newStore()
	_, err := s.Create("MyGame", statusDir, "", "")
	require.NoError(t, err)
	_, err = s.AddPlayTime(statusDir, 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(statusDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestWriteUsesTempThenRename(t *testing.T) {
	mfs := mocks.NewMockFileSystem()
	s := NewStore(treeops.New(mfs),
		WithClock(mocks.FixedClock()),
		WithIDGenerator(mocks.NewStubIDGenerator()))

	// The first write fails at the temp file.
	mfs.WriteErrors["/games/mg/game_status.json.id-1.tmp"] = errors.New("disk full")
	_, err := s.Create("MyGame", "/games/mg", "", "")
	assert.True(t, apperr.HasCode(err, apperr.IOError), "got %v", err)
	_, ok := mfs.Files["/games/mg/game_status.json"]
	assert.False(t, ok, "target must not be written when the temp write fails")

	_, err = s.Create("MyGame", "/games/mg", "", "")
	require.NoError(t, err)
	_, ok = mfs.Files["/games/mg/game_status.json"]
	assert.True(t, ok)
	_, ok = mfs.Files["/games/mg/game_status.json.id-2.tmp"]
	assert.False(t, ok)
}

func TestScanUnregistered(t *testing.T) {
	appDir := t.TempDir()
	s := newStore()

	_, err := s.Create("Registered", filepath.Join(appDir, GamesDir, "Registered"), "", "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, GamesDir, "NewGame"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, GamesDir, "stray.txt"), []byte("x"), 0644))

	got, err := s.ScanUnregistered(appDir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(appDir, GamesDir, "NewGame")}, got)
}

func TestScanUnregisteredMissingGamesDir(t *testing.T) {
	got, err := newStore().ScanUnregistered(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListRegistered(t *testing.T) {
	appDir := t.TempDir()
	s := newStore()

	_, err := s.Create("Alpha", filepath.Join(appDir, GamesDir, "Alpha"), "", "")
	require.NoError(t, err)
	_, err = s.Create("Beta", filepath.Join(appDir, GamesDir, "Beta"), "", "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, GamesDir, "Unregistered"), 0755))
	broken := filepath.Join(appDir, GamesDir, "Broken")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, FileName), []byte("{"), 0644))

	games, err := s.ListRegistered(appDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, g := range games {
		names[g.Status.GameName] = true
	}
	assert.Equal(t, map[string]bool{"Alpha": true, "Beta": true}, names)
}
