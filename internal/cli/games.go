package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) gameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "game",
		Aliases: []string{"games"},
		Short:   "Manage registered games",
	}
	cmd.AddCommand(
		c.gameAddCmd(),
		c.gameListCmd(),
		c.gameScanCmd(),
		c.gameShowCmd(),
		c.gameLaunchCmd(),
		c.gameOpenCmd(),
		c.gameRemoveCmd(),
		c.gameOptionsCmd(),
		c.gamePlaytimeCmd(),
	)
	return cmd
}

func (c *CLI) gameAddCmd() *cobra.Command {
	var launchOptions string
	cmd := &cobra.Command{
		Use:   "add <name> <install-path>",
		Short: "Register a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			statusPath, err := svc.RegisterGame(args[0], args[1], launchOptions)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s Registered %s\n", c.green("*"), args[0])
			fmt.Fprintf(c.Out, "  %s\n", c.gray(statusPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&launchOptions, "launch-options", "", "arguments passed to the game executable")
	return cmd
}

func (c *CLI) gameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			games, err := svc.ListGames()
			if err != nil {
				return err
			}
			if len(games) == 0 {
				fmt.Fprintln(c.Out, "No games registered")
				return nil
			}

			fmt.Fprintf(c.Out, "%-20s %5s %12s  %s\n", "GAME", "MODS", "PLAY TIME", "PATH")
			for _, g := range games {
				st := g.Status
				fmt.Fprintf(c.Out, "%-20s %5d %12s  %s\n",
					c.cyan(st.GameName), len(st.InstalledMods), FormatPlayTime(st.PlayTime), st.GamePath)
			}
			return nil
		},
	}
}

func (c *CLI) gameScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List game directories without a status record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			names, err := svc.ScanUnregistered()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(c.Out, "No unregistered game directories")
				return nil
			}
			for _, n := range names {
				fmt.Fprintf(c.Out, "  %s %s\n", c.yellow("?"), n)
			}
			return nil
		},
	}
}

func (c *CLI) gameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a game's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			st, err := svc.Game(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Out, "%s\n", c.cyan(st.GameName))
			fmt.Fprintf(c.Out, "  Path:      %s\n", st.GamePath)
			if st.LaunchOptions != "" {
				fmt.Fprintf(c.Out, "  Options:   %s\n", st.LaunchOptions)
			}
			fmt.Fprintf(c.Out, "  Play time: %s\n", FormatPlayTime(st.PlayTime))
			updated := st.LastUpdated
			if t, err := st.UpdatedAt(); err == nil {
				updated = t.Format(time.DateTime)
			}
			fmt.Fprintf(c.Out, "  Updated:   %s\n", c.gray(updated))
			fmt.Fprintf(c.Out, "  Mods:      %d\n", len(st.InstalledMods))
			for _, m := range st.InstalledMods {
				fmt.Fprintf(c.Out, "    %s %s\n", c.green("*"), m)
			}
			return nil
		},
	}
}

func (c *CLI) gameLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch <name>",
		Short: "Start a game's executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			exe, err := svc.LaunchGame(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s Launched %s\n", c.green("*"), exe)
			return nil
		},
	}
}

func (c *CLI) gameOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <name>",
		Short: "Open a game's install folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			return svc.OpenGameFolder(args[0])
		},
	}
}

func (c *CLI) gameRemoveCmd() *cobra.Command {
	var purgeMods bool
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Unregister a game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			if err := svc.DeleteGame(args[0], purgeMods); err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s Removed %s\n", c.green("*"), args[0])
			if purgeMods {
				fmt.Fprintf(c.Out, "  %s\n", c.gray("installed mods deleted"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&purgeMods, "purge-mods", false, "also delete the game's installed mods")
	return cmd
}

func (c *CLI) gameOptionsCmd() *cobra.Command {
	var clearOpts bool
	cmd := &cobra.Command{
		Use:   "options <name> [-- options...]",
		Short: "Show or set a game's launch options",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			name := args[0]

			if len(args) == 1 && !clearOpts {
				st, err := svc.Game(name)
				if err != nil {
					return err
				}
				if st.LaunchOptions == "" {
					fmt.Fprintln(c.Out, c.gray("(none)"))
				} else {
					fmt.Fprintln(c.Out, st.LaunchOptions)
				}
				return nil
			}

			options := strings.Join(args[1:], " ")
			if _, err := svc.SetLaunchOptions(name, options); err != nil {
				return err
			}
			if options == "" {
				fmt.Fprintf(c.Out, "%s Cleared launch options for %s\n", c.green("*"), name)
			} else {
				fmt.Fprintf(c.Out, "%s Launch options for %s: %s\n", c.green("*"), name, options)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearOpts, "clear", false, "remove all launch options")
	return cmd
}

func (c *CLI) gamePlaytimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "playtime <name> <seconds>",
		Short: "Add to a game's recorded play time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[1], err)
			}
			svc, err := c.service()
			if err != nil {
				return err
			}
			st, err := svc.AddPlayTime(args[0], seconds)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s %s play time: %s\n", c.green("*"), st.GameName, FormatPlayTime(st.PlayTime))
			return nil
		},
	}
}
