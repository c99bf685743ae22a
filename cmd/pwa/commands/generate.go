package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/pwa/internal/app"
	"go.trai.ch/pwa/internal/ui/style"
)

func (c *CLI) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the web app manifest and service worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			force, _ := cmd.Flags().GetBool("force")
			watch, _ := cmd.Flags().GetBool("watch")

			opts := app.GenerateOptions{Dir: dir, Force: force}
			if watch {
				return c.app.Watch(cmd.Context(), opts)
			}

			res, err := c.app.Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			check := lipgloss.NewStyle().Foreground(style.Green).Render(style.Check)
			for _, p := range res.Written {
				_, _ = fmt.Fprintf(out, "%s %s\n", check, p)
			}
			source := "fresh scan"
			if res.CacheHit {
				source = "scan cache"
			}
			_, _ = fmt.Fprintf(out, "%d caching route(s), inventory from %s\n", res.Routes, source)
			return nil
		},
	}
	cmd.Flags().StringP("dir", "C", ".", "Project directory")
	cmd.Flags().BoolP("force", "f", false, "Ignore the scan cache and rescan the project")
	cmd.Flags().BoolP("watch", "w", false, "Regenerate whenever a project file changes")
	return cmd
}
