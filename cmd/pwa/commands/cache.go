package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/pwa/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the scan cache",
	}
	cmd.PersistentFlags().StringP("dir", "C", ".", "Project directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scan cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			entries, err := c.app.ListCache(cmd.Context(), dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "scan cache is empty")
				return nil
			}
			t := newTable("KEY", "PROJECT", "CAPTURED", "WATCHED", "STATE")
			for _, e := range entries {
				state := "fresh"
				if e.Expired {
					state = "expired"
				}
				t.Row(e.Key, e.ProjectPath, e.CapturedAt.Format(time.RFC3339), strconv.Itoa(e.WatchedFiles), state)
			}
			_, _ = fmt.Fprintln(out, t.Render())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop entries older than the configured max age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			removed, err := c.app.PruneCache(cmd.Context(), dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
			return nil
		},
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove this project's entry, or the whole cache with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			all, _ := cmd.Flags().GetBool("all")
			return c.app.ClearCache(cmd.Context(), app.ClearOptions{Dir: dir, All: all})
		},
	}
	clearCmd.Flags().BoolP("all", "a", false, "Remove the whole cache document")
	cmd.AddCommand(clearCmd)

	return cmd
}
