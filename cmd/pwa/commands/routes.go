package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.trai.ch/pwa/internal/engine/policy"
	"go.trai.ch/pwa/internal/ui/style"
)

func (c *CLI) newRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the compiled runtime caching table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			format, _ := cmd.Flags().GetString("output")

			routes, err := c.app.Routes(cmd.Context(), dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := policy.RuntimeCaching(routes)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			case "table":
			default:
				return fmt.Errorf("unknown output format %q (want table or json)", format)
			}

			t := newTable("PRIORITY", "HANDLER", "CACHE", "KIND", "PATTERN")
			for _, r := range routes {
				t.Row(strconv.Itoa(r.Priority), string(r.Handler), r.Options.CacheName, string(r.Kind), r.Matcher.String())
			}
			_, _ = fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().StringP("dir", "C", ".", "Project directory")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	return cmd
}

// newTable returns a borderless table with styled headers.
func newTable(headers ...string) *table.Table {
	cell := lipgloss.NewStyle().PaddingRight(2)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Heading.PaddingRight(2)
			}
			return cell
		})
}
