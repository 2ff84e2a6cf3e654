// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shshouse/MikuModManager/internal/apperr"
	"github.com/shshouse/MikuModManager/internal/config"
	"github.com/shshouse/MikuModManager/internal/gamestatus"
	"github.com/shshouse/MikuModManager/internal/identity"
	"github.com/shshouse/MikuModManager/internal/logging"
	"github.com/shshouse/MikuModManager/internal/manager"
	"github.com/shshouse/MikuModManager/internal/ports"
	"github.com/shshouse/MikuModManager/internal/treeops"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
	ConfigPath() string
	DefaultConfig() *config.Config
}

// GameService provides the game and mod operations for the CLI.
type GameService interface {
	AppDir() string
	GameDir(name string) string
	RegisterGame(name, installPath, launchOptions string) (string, error)
	Game(name string) (*gamestatus.GameStatus, error)
	ListGames() ([]gamestatus.Registered, error)
	ScanUnregistered() ([]string, error)
	SetLaunchOptions(name, options string) (*gamestatus.GameStatus, error)
	AddPlayTime(name string, seconds uint64) (*gamestatus.GameStatus, error)
	DeleteGame(name string, purgeMods bool) error
	LaunchGame(name string) (string, error)
	OpenGameFolder(name string) error
	OpenURL(target string) error
	DiscoverInstalls(product string) ([]string, error)
	InstallMod(name, archive string) (string, error)
	UninstallMod(name, folder string) error
	ListMods(name string) ([]string, error)
	ExportMod(name, folder, archive string) (int, error)
	InspectArchive(archive string) ([]ports.ArchiveEntry, error)
	Checksum(path string) (identity.Digest, error)
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc  ConfigService
	NewService func(cfg *config.Config) GameService
	SetupLog   func(level string, w io.Writer)

	// Global flags
	configPath string
	logLevel   string
	appDir     string

	cfg *config.Config
	svc GameService

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:      os.Stdout,
		Err:      os.Stderr,
		Version:  version,
		Args:     os.Args,
		Exit:     os.Exit,
		SetupLog: logging.SetupLogger,
		green:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:   color.New(color.FgYellow).SprintFunc(),
		cyan:     color.New(color.FgCyan).SprintFunc(),
		gray:     color.New(color.FgHiBlack).SprintFunc(),
		red:      color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:      out,
		Err:      errOut,
		Version:  "test",
		Args:     args,
		Exit:     func(int) {},
		SetupLog: func(string, io.Writer) {},
		green:    noColor,
		yellow:   noColor,
		cyan:     noColor,
		gray:     noColor,
		red:      noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load(path string) (*config.Config, error) { return config.Load(path) }
func (d *defaultConfigService) Save(cfg *config.Config, path string) error {
	return cfg.Save(path)
}
func (d *defaultConfigService) ConfigPath() string            { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() *config.Config { return config.DefaultConfig() }

// defaultGameService builds the production manager.
func defaultGameService(cfg *config.Config) GameService {
	return manager.NewDefaultService(cfg, logging.GetLogger("manager"))
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) resolvedConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return c.configSvc().ConfigPath()
}

// loadConfig loads the config once and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := c.configSvc().Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	switch c.appDir {
	case "":
	case ".":
		wd, err := treeops.AppDir()
		if err != nil {
			return nil, err
		}
		cfg.AppDir = wd
	default:
		cfg.AppDir = c.appDir
	}

	c.cfg = cfg
	return cfg, nil
}

// service returns the game service for the loaded config.
func (c *CLI) service() (GameService, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if c.SetupLog != nil {
		c.SetupLog(cfg.LogLevel, c.Err)
	}

	factory := c.NewService
	if factory == nil {
		factory = defaultGameService
	}
	c.svc = factory(cfg)
	return c.svc, nil
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	root := c.rootCmd()
	root.SetOut(c.Out)
	root.SetErr(c.Err)
	if len(c.Args) > 1 {
		root.SetArgs(c.Args[1:])
	} else {
		root.SetArgs([]string{})
	}

	if err := root.Execute(); err != nil {
		logger := logging.GetLogger("cli")
		logger.Debug().Err(err).Str("code", string(apperr.CodeOf(err))).Msg("command failed")
		fmt.Fprintf(c.Err, "%s %v\n", c.red("Error:"), err)
		c.Exit(1)
	}
}

func (c *CLI) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mikumod",
		Short:         "Manage local games and their mods",
		Version:       c.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("mikumod v{{.Version}}\n")

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $MIKUMOD_CONFIG or the XDG config dir)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log_level from the config")
	root.PersistentFlags().StringVar(&c.appDir, "app-dir", "", `override app_dir ("." for the working directory)`)

	root.AddCommand(
		c.gameCmd(),
		c.modCmd(),
		c.configCmd(),
		c.checksumCmd(),
		c.discoverCmd(),
		c.openCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *CLI) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.Out, "mikumod v%s\n", c.Version)
		},
	}
}

func (c *CLI) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.configSvc()
			path := c.resolvedConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := svc.Save(svc.DefaultConfig(), path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(c.Out, "%s Created config at %s\n", c.green("*"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, "mikumod config:")
			fmt.Fprintf(c.Out, "  Config:    %s\n", c.resolvedConfigPath())
			fmt.Fprintf(c.Out, "  App dir:   %s\n", cfg.ResolvedAppDir())
			fmt.Fprintf(c.Out, "  Mods dir:  %s\n", cfg.ResolvedModsDir())
			fmt.Fprintf(c.Out, "  Log level: %s\n", cfg.LogLevel)
			if cfg.DedupInstalls {
				fmt.Fprintf(c.Out, "  Dedup:     %s\n", c.green("on"))
			} else {
				fmt.Fprintf(c.Out, "  Dedup:     %s\n", c.gray("off"))
			}
			for _, p := range cfg.ResolvedExtraPaths() {
				fmt.Fprintf(c.Out, "  Probe:     %s\n", p)
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func (c *CLI) checksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <file>...",
		Short: "Print content digests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			for _, p := range args {
				d, err := svc.Checksum(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Out, "%s  %s\n", d, p)
			}
			return nil
		},
	}
}

func (c *CLI) discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <product>",
		Short: "Find existing installs of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			paths, err := svc.DiscoverInstalls(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintf(c.Out, "No installs found for %s\n", args[0])
				return nil
			}
			for _, p := range paths {
				fmt.Fprintf(c.Out, "  %s %s\n", c.green("*"), p)
			}
			return nil
		},
	}
}

func (c *CLI) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <url-or-path>",
		Short: "Open a URL or folder with the default handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			return svc.OpenURL(args[0])
		},
	}
}

// Compile-time check that the manager satisfies GameService.
var _ GameService = (*manager.Service)(nil)
