package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/buildinfo"
	"github.com/bichil/orgchart/pkg/cache"
	"github.com/bichil/orgchart/pkg/config"
	"github.com/bichil/orgchart/pkg/editor"
	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/snapshot"
	"github.com/bichil/orgchart/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orgchart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer
	in  *bufio.Reader
	cfg *config.Config

	// persistent flags
	configPath string
	slot       string
	backend    string
	lang       string
	yes        bool

	// interactive is set when stdin is a terminal; it enables the bubbletea
	// pickers.
	interactive bool

	// overridable in tests
	rasterizer export.Rasterizer
	openStore  func(ctx context.Context, cfg storage.Config) (storage.Store, error)
}

// New creates a new CLI instance with a default logger. Command output goes
// to stdout and prompts read stdin.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:      newLogger(w, level),
		out:         os.Stdout,
		in:          bufio.NewReader(os.Stdin),
		interactive: isTerminal(os.Stdin),
		openStore:   storage.Open,
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetIO redirects command output and prompt input.
// Interactive pickers are disabled afterwards.
func (c *CLI) SetIO(out io.Writer, in io.Reader) {
	c.out = out
	c.in = bufio.NewReader(in)
	c.interactive = false
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orgchart edits organization charts",
		Long:         `Orgchart keeps an organization chart of units and reporting lines in a storage slot and lets you edit, lay out, serve and export it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default ~/.config/orgchart/config.toml)")
	pf.StringVar(&c.slot, "slot", "", "storage slot holding the chart")
	pf.StringVar(&c.backend, "backend", "", "storage backend: "+strings.Join(storage.Backends, ", "))
	pf.StringVar(&c.lang, "lang", "", "interface language (mn, en)")
	pf.BoolVarP(&c.yes, "yes", "y", false, "assume yes for confirmation prompts")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.addChildCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.promoteCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.scatterCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.slotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads settings and applies the persistent flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.slot != "" {
		cfg.Slot = c.slot
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if c.lang != "" {
		cfg.UI.Lang = c.lang
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "slot", cfg.Slot, "backend", cfg.Storage.Backend)
	return nil
}

// settings returns the loaded settings, falling back to defaults for commands
// run without the root pre-run (tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Sessions
// =============================================================================

// session is one opened slot: the store and an editor over its chart.
type session struct {
	store   storage.Store
	tracker *snapshot.Tracker
	editor  *editor.Editor
	source  snapshot.Source
}

func (s *session) Close() error { return s.store.Close() }

// openSession opens the configured store and loads the slot. Load failures
// fall back to the default chart; only failing to open the store is an error.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	cfg := c.settings()
	store, err := c.openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	tracker := snapshot.NewTracker(store, cfg.Slot, c.Logger)
	ed, src := editor.Open(ctx, tracker,
		editor.WithLogger(c.Logger),
		editor.WithLang(cfg.UI.Language()),
		editor.WithLayout(cfg.Layout.Options()),
		editor.WithScatter(cfg.Layout.Scatter()),
	)
	if src == snapshot.SourceMalformed || src == snapshot.SourceUnavailable {
		c.Logger.Warn("slot could not be loaded, using the default chart", "slot", cfg.Slot, "source", src)
	}
	return &session{store: store, tracker: tracker, editor: ed, source: src}, nil
}

// mutate opens the slot, applies fn and saves when fn reports a change. A
// slot that could not be read is refused before fn runs.
func (c *CLI) mutate(ctx context.Context, fn func(ed *editor.Editor) (bool, error)) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.writable(); err != nil {
		return err
	}
	changed, err := fn(s.editor)
	if err != nil || !changed {
		return err
	}
	_, err = c.save(ctx, s)
	return err
}

// writable fails when the slot's contents were never read, so an edit would
// land on the fallback chart instead.
func (s *session) writable() error {
	if s.source != snapshot.SourceUnavailable {
		return nil
	}
	return errors.New(errors.ErrCodeSlotUnreadable,
		"slot %q could not be read; nothing was changed", s.editor.Slot())
}

// save writes the chart to the slot. Overwriting a malformed slot asks first;
// a declined prompt reports false without error.
func (c *CLI) save(ctx context.Context, s *session) (bool, error) {
	ed := s.editor
	if ed.NeedsConfirm(editor.ActionSave) {
		ok, err := c.confirm(i18n.T(ed.Lang(), i18n.ConfirmOverwrite, ed.Slot()))
		if err != nil {
			return false, err
		}
		if !ok {
			printInfo(c.out, "%s", i18n.T(ed.Lang(), i18n.Cancel))
			return false, nil
		}
	}
	if err := ed.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// confirm asks a yes/no question unless --yes is set or prompts are disabled.
func (c *CLI) confirm(question string) (bool, error) {
	if c.yes || !c.settings().UI.Confirm {
		return true, nil
	}
	fmt.Fprint(c.out, StyleWarning.Render(question)+" [y/N] ")
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "т", "тийм":
		return true, nil
	}
	return false, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an export runner backed by the artifact cache.
func (c *CLI) newRunner(noCache bool) (*export.Runner, error) {
	cfg := c.settings()
	ch, err := c.newCache(noCache || cfg.Export.NoCache)
	if err != nil {
		return nil, err
	}
	r := c.rasterizer
	if r == nil {
		r = export.RSVGRasterizer{Path: cfg.Export.RSVGPath}
	}
	runner := export.NewRunner(ch, r, c.Logger)
	runner.Options = cfg.Export.Options()
	return runner, nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
