package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/editor"
)

func (c *CLI) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Arrange the chart as a top-down tree",
		Long: `Reposition every unit reachable from the root: each level sits one level
height below its parent and siblings are spread evenly, centered under the
parent. Running it twice gives the same result. Unattached units keep their
positions.

Level height and sibling gap come from the [layout] section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				moved, err := ed.AutoLayout()
				if err != nil {
					return false, err
				}
				printSuccess(c.out, "Laid out chart (%d unit(s) moved)", moved)
				return moved > 0, nil
			})
		},
	}
}

func (c *CLI) scatterCommand() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Apply the jittered tree layout",
		Long: `Lay the chart out as a tree, then jitter every unit by a seeded random
offset. The same --seed always gives the same positions; without it the
current time is used and printed so the result can be reproduced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				moved, err := ed.Scatter(seed)
				if err != nil {
					return false, err
				}
				printSuccess(c.out, "Scattered chart (%d unit(s) moved)", moved)
				printDetail(c.out, "seed %d", seed)
				return moved > 0, nil
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	return cmd
}
