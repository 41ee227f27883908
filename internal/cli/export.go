package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/pkg/errors"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/i18n"
	"github.com/bichil/orgchart/pkg/upload"
)

type exportFlags struct {
	output     string
	upload     bool
	noCache    bool
	scale      float64
	padding    float64
	background string
}

func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags
	defaults := export.DefaultOptions()

	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}

	cmd := &cobra.Command{
		Use:   "export [FORMAT]",
		Short: "Export the chart as " + strings.Join(formats, ", "),
		Long: `Export the chart. FORMAT is one of ` + strings.Join(formats, ", ") + ` and defaults to png.

Images are drawn with Graphviz at the units' canvas positions; png is
rasterized from the svg with rsvg-convert. Rendered images are cached by
chart content, so exporting an unchanged chart again is instant.

The file is written to org-chart.<format> unless -o names another path;
"-o -" writes to stdout. --upload sends the file to the S3 bucket configured
in the [upload] section and prints its URL.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: formats,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := string(export.FormatPNG)
			if len(args) == 1 {
				name = args[0]
			}
			format, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
			return c.runExport(cmd, format, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: org-chart.<format>)")
	cmd.Flags().BoolVar(&flags.upload, "upload", false, "upload the result and print its URL")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the image cache")
	cmd.Flags().Float64Var(&flags.scale, "scale", defaults.Scale, "png zoom factor")
	cmd.Flags().Float64Var(&flags.padding, "padding", defaults.Padding, "margin around the chart in pixels")
	cmd.Flags().StringVar(&flags.background, "background", defaults.Background, "background color")
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, format export.Format, flags exportFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if cmd.Flags().Changed("scale") {
		runner.Options.Scale = flags.scale
	}
	if cmd.Flags().Changed("padding") {
		runner.Options.Padding = flags.padding
	}
	if cmd.Flags().Changed("background") {
		runner.Options.Background = flags.background
	}

	var uploader upload.Uploader
	if flags.upload {
		if uploader, err = c.newUploader(); err != nil {
			return err
		}
	}

	output := flags.output
	if output == "" && !flags.upload {
		output = format.FileName()
	}
	if output != "" && output != "-" {
		if err := errors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	g := s.editor.Chart()
	lang := s.editor.Lang()
	s.Close()

	if timeout := c.settings().Export.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	spin := newSpinner(ctx, c.spinnerOut(), "Exporting "+string(format))
	spin.Start()
	art, err := runner.Render(ctx, g, format)
	spin.Stop()
	if err != nil {
		printError(c.out, "%s", exportMessage(lang, err))
		return err
	}

	if output != "" {
		if err := c.writeArtifact(output, art.Data); err != nil {
			return err
		}
	}
	if output != "-" {
		if format == export.FormatPNG {
			printSuccess(c.out, "%s", i18n.T(lang, i18n.PNGExported))
		} else {
			printSuccess(c.out, "Exported %s", format)
		}
		if output != "" {
			printFile(c.out, output)
		}
		printStats(c.out, g.NodeCount(), g.EdgeCount(), art.Cached)
	}

	if uploader != nil {
		url, err := uploader.Upload(ctx, art.Format.FileName(), art.Data, art.Format.ContentType())
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, "  "+StyleDim.Render(iconArrow)+" "+StyleLink.Render(url))
	}

	prog.done(fmt.Sprintf("Exported %s (%d bytes)", format, len(art.Data)))
	return nil
}

// exportMessage is the localized line shown when an export fails.
func exportMessage(lang i18n.Lang, err error) string {
	switch {
	case stderrors.Is(err, export.ErrNoDiagram):
		return i18n.T(lang, i18n.DiagramNotFound)
	case errors.Is(err, errors.ErrCodeBusy), errors.Is(err, errors.ErrCodeInvalidFormat):
		return errors.UserMessage(err)
	default:
		return i18n.T(lang, i18n.ExportFailed, errors.UserMessage(err))
	}
}

func (c *CLI) writeArtifact(path string, data []byte) error {
	if path == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

func (c *CLI) newUploader() (upload.Uploader, error) {
	cfg := c.settings().Upload
	if !cfg.Enabled() {
		return nil, errors.New(errors.ErrCodeUnsupported, "uploads are not configured; set [upload] endpoint and bucket")
	}
	return upload.NewS3Uploader(cfg)
}

func (c *CLI) spinnerOut() io.Writer {
	if c.interactive {
		return os.Stderr
	}
	return io.Discard
}
