package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bichil/orgchart/pkg/chart/layout"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
)

func (c *CLI) showCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the chart as a tree",
		Long: `Print the rooted tree of the chart. Units that cannot be reached from
the root are listed separately.

With --format json or yaml the nested tree is printed instead, for scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			g := s.editor.Chart()
			switch format {
			case "tree":
				fmt.Fprintln(c.out, StyleTitle.Render(i18n.T(s.editor.Lang(), i18n.Title)))
				printChart(c.out, g, i18n.T(s.editor.Lang(), i18n.Orphans))
				return nil
			case "json":
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(g.Tree())
			case "yaml":
				enc := yaml.NewEncoder(c.out)
				enc.SetIndent(2)
				if err := enc.Encode(g.Tree()); err != nil {
					return err
				}
				return enc.Close()
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want tree, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: tree, json, yaml")
	return cmd
}

func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show slot and chart state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			g := s.editor.Chart()
			root := "-"
			if n, ok := g.Root(); ok {
				root = n.Label + " (" + n.ID + ")"
			}
			printKeyValue(c.out, "Slot", s.editor.Slot())
			printKeyValue(c.out, "Backend", s.store.Name())
			printKeyValue(c.out, "Source", string(s.source))
			printKeyValue(c.out, "Root", root)
			printKeyValue(c.out, "Units", strconv.Itoa(g.NodeCount()))
			printKeyValue(c.out, "Lines", strconv.Itoa(g.EdgeCount()))
			printKeyValue(c.out, "Orphans", strconv.Itoa(len(g.Orphans())))

			if err := g.Validate(); err != nil {
				printWarning(c.out, "%v", err)
			}
			if overlaps := layout.Overlaps(g.Nodes(), export.NodeWidth); len(overlaps) > 0 {
				printWarning(c.out, "%d overlapping units", len(overlaps))
				for _, o := range overlaps {
					printDetail(c.out, "%s and %s at y=%g are %gpx apart", o.A, o.B, o.Y, o.Gap)
				}
				printNextStep(c.out, "Tidy the chart", appName+" layout")
			}
			return nil
		},
	}
}
