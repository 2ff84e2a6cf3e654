package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shshouse/MikuModManager/internal/logging"
)

func (c *CLI) modCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mod",
		Aliases: []string{"mods"},
		Short:   "Install and manage mods",
	}
	cmd.AddCommand(
		c.modInstallCmd(),
		c.modUninstallCmd(),
		c.modListCmd(),
		c.modExportCmd(),
		c.modInspectCmd(),
	)
	return cmd
}

func (c *CLI) modInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <game> <archive.zip>...",
		Short: "Extract mod archives for a game",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			done := logging.LogOperationStart(logging.GetLogger("cli"), "mod install")
			defer done()

			game := args[0]
			failed := 0
			for _, archive := range args[1:] {
				dir, err := svc.InstallMod(game, archive)
				if err != nil {
					fmt.Fprintf(c.Err, "  %s %s: %v\n", c.red("x"), archive, err)
					failed++
					continue
				}
				fmt.Fprintf(c.Out, "  %s %s\n", c.green("*"), dir)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d archives failed to install", failed, len(args)-1)
			}
			return nil
		},
	}
}

func (c *CLI) modUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <game> <folder>",
		Short: "Remove an installed mod",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			if err := svc.UninstallMod(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s Uninstalled %s\n", c.green("*"), args[1])
			return nil
		},
	}
}

func (c *CLI) modListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <game>",
		Short: "List installed mods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			mods, err := svc.ListMods(args[0])
			if err != nil {
				return err
			}
			if len(mods) == 0 {
				fmt.Fprintf(c.Out, "No mods installed for %s\n", args[0])
				return nil
			}
			for _, m := range mods {
				fmt.Fprintf(c.Out, "  %s %s\n", c.green("*"), m)
			}
			return nil
		},
	}
}

func (c *CLI) modExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <game> <folder> <archive.zip>",
		Short: "Pack an installed mod into a zip archive",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			n, err := svc.ExportMod(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Out, "%s Exported %s (%d files) to %s\n", c.green("*"), args[1], n, args[2])
			return nil
		},
	}
}

func (c *CLI) modInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive.zip>",
		Short: "List the members of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			entries, err := svc.InspectArchive(args[0])
			if err != nil {
				return err
			}

			var total int64
			files := 0
			for _, e := range entries {
				if e.IsDir {
					fmt.Fprintf(c.Out, "  %10s  %s\n", c.gray("dir"), e.Name)
					continue
				}
				fmt.Fprintf(c.Out, "  %10s  %s\n", FormatSize(e.Size), e.Name)
				total += e.Size
				files++
			}
			fmt.Fprintf(c.Out, "%d files, %s\n", files, FormatSize(total))
			return nil
		},
	}
}
