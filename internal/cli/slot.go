package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/chart"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/snapshot"
	"github.com/bichil/orgchart/pkg/storage"
)

func (c *CLI) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the current chart to its slot",
		Long: `Write the chart to the configured slot. An empty slot is filled with the
default chart, so later edits have a baseline to compare against.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if ok, err := c.save(cmd.Context(), s); err != nil || !ok {
				return err
			}
			printSuccess(c.out, "%s", i18n.T(s.editor.Lang(), i18n.Saved))
			printDetail(c.out, "%s · %s", s.store.Name(), s.editor.Slot())
			return nil
		},
	}
}

func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved chart and return to the default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			lang := s.editor.Lang()
			if s.source != snapshot.SourceDefault {
				ok, err := c.confirm(i18n.T(lang, i18n.ConfirmReset))
				if err != nil || !ok {
					return err
				}
			}
			if err := s.tracker.Clear(ctx); err != nil {
				return err
			}
			printSuccess(c.out, "%s", i18n.T(lang, i18n.ResetDone))
			return nil
		},
	}
}

func (c *CLI) importCommand() *cobra.Command {
	var relayout bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the chart with a JSON or YAML snapshot",
		Long: `Replace the chart in the slot with the snapshot in FILE. The format
follows the extension (.json, .yaml, .yml); "-" reads JSON from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.readSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := g.Validate(); err != nil {
				printWarning(c.out, "imported chart has problems: %v", err)
			}
			return c.runImport(cmd.Context(), g, relayout)
		},
	}

	cmd.Flags().BoolVar(&relayout, "layout", false, "run the tree layout after importing")
	return cmd
}

func (c *CLI) readSnapshot(path string) (*chart.Graph, error) {
	if path == "-" {
		return export.ReadJSON(c.in)
	}
	return export.ReadFile(path)
}

func (c *CLI) runImport(ctx context.Context, g *chart.Graph, relayout bool) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.writable(); err != nil {
		return err
	}
	if err := s.editor.Replace(g); err != nil {
		return err
	}
	if relayout {
		if _, err := s.editor.AutoLayout(); err != nil {
			return err
		}
	}
	if ok, err := c.save(ctx, s); err != nil || !ok {
		return err
	}
	printSuccess(c.out, "Imported %d unit(s) into %s", g.NodeCount(), s.editor.Slot())
	return nil
}

func (c *CLI) slotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage storage slots",
	}
	cmd.AddCommand(c.slotListCommand())
	cmd.AddCommand(c.slotDeleteCommand())
	cmd.AddCommand(c.slotPathCommand())
	return cmd
}

func (c *CLI) slotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			store, err := c.openStore(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			lister, ok := store.(storage.Lister)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "%s backend cannot list slots", store.Name())
			}
			keys, err := lister.Keys(ctx)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "list slots")
			}
			if len(keys) == 0 {
				printInfo(c.out, "no saved slots in %s", store.Name())
				return nil
			}
			for _, k := range keys {
				marker := "  "
				if k == cfg.Slot {
					marker = StyleHighlight.Render("* ")
				}
				fmt.Fprintln(c.out, marker+k)
			}
			return nil
		},
	}
}

func (c *CLI) slotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateSlotName(args[0]); err != nil {
				return err
			}
			ok, err := c.confirm(fmt.Sprintf("Delete slot %q?", args[0]))
			if err != nil || !ok {
				return err
			}

			ctx := cmd.Context()
			store, err := c.openStore(ctx, c.settings().Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "delete slot %q", args[0])
			}
			printSuccess(c.out, "Deleted slot %s", args[0])
			return nil
		},
	}
}

func (c *CLI) slotPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the current slot is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			store, err := c.openStore(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			if fs, ok := store.(*storage.FileStore); ok {
				fmt.Fprintln(c.out, fs.Path(cfg.Slot))
				return nil
			}
			fmt.Fprintf(c.out, "%s:%s\n", store.Name(), cfg.Slot)
			return nil
		},
	}
}
