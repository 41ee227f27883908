package cli

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/i18n"
)

func (c *CLI) addCommand() *cobra.Command {
	var (
		label string
		x, y  float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a detached unit",
		Long: `Add a unit that reports to nobody yet. It gets the default label unless
--label is given, and sits at (500, 500) unless --x/--y move it. Use
"connect" to attach it below another unit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				n, err := ed.AddNode()
				if err != nil {
					return false, err
				}
				if label != "" {
					if _, err := ed.Rename(n.ID, label); err != nil {
						return false, err
					}
					n.Label = label
				}
				if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
					pos := n.Position
					if cmd.Flags().Changed("x") {
						pos.X = x
					}
					if cmd.Flags().Changed("y") {
						pos.Y = y
					}
					if _, err := ed.Move(n.ID, pos); err != nil {
						return false, err
					}
				}
				printSuccess(c.out, "Added %s", nodeLabel(n))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "unit label")
	cmd.Flags().Float64Var(&x, "x", editor.NewNodePosition.X, "canvas x")
	cmd.Flags().Float64Var(&y, "y", editor.NewNodePosition.Y, "canvas y")
	return cmd
}

func (c *CLI) addChildCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:               "add-child PARENT",
		Short:             "Add a unit reporting to PARENT",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				n, ok, err := ed.AddChild(args[0])
				if err != nil {
					return false, err
				}
				if !ok {
					printWarning(c.out, "unit %q not found; nothing changed", args[0])
					return false, nil
				}
				if label != "" {
					if _, err := ed.Rename(n.ID, label); err != nil {
						return false, err
					}
					n.Label = label
				}
				printSuccess(c.out, "Added %s under %s", nodeLabel(n), args[0])
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "unit label")
	return cmd
}

func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename ID LABEL...",
		Short:             "Change a unit's label",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args[1:], " ")
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				ok, err := ed.Rename(args[0], label)
				if err != nil {
					return false, err
				}
				if !ok {
					printWarning(c.out, "unit %q not found; nothing changed", args[0])
					return false, nil
				}
				printSuccess(c.out, "Renamed %s to %q", args[0], label)
				return true, nil
			})
		},
	}
}

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move ID X Y",
		Short: "Place a unit at a canvas position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				ok, err := ed.Move(args[0], pos)
				if err != nil {
					return false, err
				}
				if !ok {
					printWarning(c.out, "unit %q not found; nothing changed", args[0])
					return false, nil
				}
				printSuccess(c.out, "Moved %s to (%g, %g)", args[0], pos.X, pos.Y)
				return true, nil
			})
		},
	}
}

func parsePosition(xs, ys string) (chart.Position, error) {
	x, err := parseCoord(xs)
	if err != nil {
		return chart.Position{}, errors.New(errors.ErrCodeInvalidInput, "x %q is not a finite number", xs)
	}
	y, err := parseCoord(ys)
	if err != nil {
		return chart.Position{}, errors.New(errors.ErrCodeInvalidInput, "y %q is not a finite number", ys)
	}
	return chart.Position{X: x, Y: y}, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect SOURCE TARGET",
		Short: "Make TARGET report to SOURCE",
		Long: `Add a reporting line from SOURCE (the superior unit) to TARGET. The line
is refused when TARGET already has a parent, is the root, or is an ancestor
of SOURCE.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				e, err := ed.Connect(args[0], args[1])
				if err != nil {
					return false, err
				}
				printSuccess(c.out, "Connected %s %s %s", e.Source, iconArrow, e.Target)
				printDetail(c.out, "line %s", e.ID)
				return true, nil
			})
		},
	}
}

func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect EDGE | SOURCE TARGET",
		Short: "Remove a reporting line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ed *editor.Editor) (bool, error) {
				id := args[0]
				if len(args) == 2 {
					id = findEdge(ed.Chart(), args[0], args[1])
				}
				ok, err := ed.Disconnect(id)
				if err != nil {
					return false, err
				}
				if !ok {
					printWarning(c.out, "no such line; nothing changed")
					return false, nil
				}
				printSuccess(c.out, "Disconnected %s", id)
				return true, nil
			})
		},
	}
}

func findEdge(g *chart.Graph, source, target string) string {
	for _, e := range g.Edges() {
		if e.Source == source && e.Target == target {
			return e.ID
		}
	}
	return ""
}

func (c *CLI) deleteCommand() *cobra.Command {
	var (
		cascade bool
		newRoot string
	)

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a unit",
		Long: `Delete a unit and its reporting lines. Its subordinates stay in the
chart unattached unless --cascade removes them too.

The root cannot be deleted on its own: a replacement is chosen from the
other units, either with --new-root or interactively, and promoted in the
same step.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(cmd.Context(), args[0], cascade, newRoot)
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete every unit below")
	cmd.Flags().StringVar(&newRoot, "new-root", "", "unit that replaces a deleted root")
	return cmd
}

func (c *CLI) runDelete(ctx context.Context, id string, cascade bool, newRoot string) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.writable(); err != nil {
		return err
	}

	ed := s.editor
	n, ok := ed.Chart().Node(id)
	if !ok {
		printWarning(c.out, "unit %q not found; nothing changed", id)
		return nil
	}
	if ok, err := c.confirm(i18n.T(ed.Lang(), i18n.ConfirmDelete, n.Label)); err != nil || !ok {
		if err == nil {
			printInfo(c.out, "%s", i18n.T(ed.Lang(), i18n.Cancel))
		}
		return err
	}

	var (
		res     editor.DeleteResult
		removed = []string{id}
	)
	if cascade {
		removed, res, err = ed.RequestDeleteSubtree(id)
	} else {
		res, err = ed.RequestDelete(id)
	}
	if err != nil {
		return err
	}

	switch res {
	case editor.NeedsNewRoot:
		return c.replaceRoot(ctx, s, newRoot)
	case editor.Deleted:
		if ok, err := c.save(ctx, s); err != nil || !ok {
			return err
		}
		printSuccess(c.out, "Deleted %d unit(s)", len(removed))
		if cascade && len(removed) > 1 {
			printDetail(c.out, "%s", strings.Join(removed, ", "))
		}
	}
	return nil
}

func (c *CLI) promoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote ID",
		Short: "Replace the root with ID",
		Long: `Make ID the root. ID loses its own reporting line and the current root
is deleted; the old root's other subordinates stay unattached.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNodeIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.writable(); err != nil {
				return err
			}

			ed := s.editor
			root, ok := ed.Chart().Root()
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "chart has no root")
			}
			if ok, err := c.confirm(i18n.T(ed.Lang(), i18n.ConfirmDelete, root.Label)); err != nil || !ok {
				return err
			}
			if _, err := ed.RequestDelete(root.ID); err != nil {
				return err
			}
			return c.replaceRoot(ctx, s, args[0])
		},
	}
}

// replaceRoot finishes a pending root deletion. With no choice it asks
// interactively, or fails listing the candidates when stdin is not a terminal.
func (c *CLI) replaceRoot(ctx context.Context, s *session, choice string) error {
	ed := s.editor
	old, _ := ed.PendingRoot()
	candidates := ed.Candidates()
	if len(candidates) == 0 {
		ed.CancelRootSelection()
		return errors.New(errors.ErrCodeRootDeletion, "%q is the only unit and cannot be deleted", old.Label)
	}

	if choice == "" && c.interactive {
		picked, err := runRootSelect(ed.Lang(), old, candidates)
		if err != nil {
			ed.CancelRootSelection()
			return err
		}
		choice = picked
	}
	if choice == "" {
		ed.CancelRootSelection()
		if c.interactive {
			printInfo(c.out, "%s", i18n.T(ed.Lang(), i18n.Cancel))
			return nil
		}
		ids := make([]string, len(candidates))
		for i, n := range candidates {
			ids[i] = n.ID
		}
		return errors.New(errors.ErrCodeRootDeletion,
			"%q is the root; pass --new-root with one of: %s", old.ID, strings.Join(ids, ", "))
	}

	if err := ed.ChooseRoot(choice); err != nil {
		ed.CancelRootSelection()
		return err
	}
	if ok, err := c.save(ctx, s); err != nil || !ok {
		return err
	}
	printSuccess(c.out, "Root replaced: %s %s %s", old.ID, iconArrow, choice)
	return nil
}
