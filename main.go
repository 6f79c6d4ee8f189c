// Command twirl renders parametric polygon animations as stacked solids,
// slice image stacks or a terminal preview.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/twirl/internal/config"
	"github.com/chazu/twirl/pkg/export"
	"github.com/chazu/twirl/pkg/preview"
	"github.com/chazu/twirl/pkg/volume"
)

const usage = `usage: twirl <command> [flags] script.twirl

commands:
  export   write the stacked solid as STL
  slices   write one image per depth index
  preview  step through the slices in the terminal
  check    evaluate and validate a script

Run 'twirl <command> -h' for the flags of a command.
`

var (
	errUsage       = errors.New("usage")
	errCheckFailed = errors.New("check failed")
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "twirl: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:], cfg, logger, os.Stdout); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			os.Exit(0)
		case errors.Is(err, errUsage):
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		case errors.Is(err, errCheckFailed):
			os.Exit(1)
		}
		slog.Error("twirl failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches one subcommand. Flags override the environment config.
func run(args []string, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet("twirl "+cmd, flag.ContinueOnError)
	fs.Float64Var(&cfg.Bound, "bound", cfg.Bound, "half-width of the square render area")
	fs.IntVar(&cfg.Resolution, "res", cfg.Resolution, "slice resolution in pixels")
	fs.IntVar(&cfg.Depth, "depth", cfg.Depth, "default depth for transforms without :depth")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "render workers (0 = one per CPU)")
	fs.StringVar(&cfg.Kernel, "kernel", cfg.Kernel, "geometry kernel: sdfx or manifold")

	switch cmd {
	case "export":
		out := fs.String("o", "", "output STL path (default <script>.stl)")
		split := fs.Bool("split", false, "write one STL per shape")
		fs.IntVar(&cfg.Stride, "stride", cfg.Stride, "export every n-th depth index")
		path, app, err := parse(fs, args, cfg, logger)
		if err != nil {
			return err
		}
		if *out == "" {
			*out = strings.TrimSuffix(path, filepath.Ext(path)) + ".stl"
		}
		paths, err := app.ExportSolid(path, *out, *split)
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
		return err

	case "slices":
		out := fs.String("o", "slices", "output directory")
		format := fs.String("format", "png", "image format: png, tiff or bmp")
		wire := fs.Bool("wire", false, "draw outlines instead of filled shapes")
		path, app, err := parse(fs, args, cfg, logger)
		if err != nil {
			return err
		}
		f, err := export.ParseFormat(*format)
		if err != nil {
			return err
		}
		paths, err := app.ExportSlices(path, *out, f, *wire)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d slices to %s\n", len(paths), *out)
		return nil

	case "preview":
		filled := fs.Bool("filled", false, "fill shapes instead of drawing outlines")
		watch := fs.Bool("watch", false, "reload when the script changes")
		path, app, err := parse(fs, args, cfg, logger)
		if err != nil {
			return err
		}
		return runPreview(app, path, !*filled, *watch)

	case "check":
		asYAML := fs.Bool("yaml", false, "print the report as YAML")
		meshes := fs.Bool("mesh", false, "tessellate every shape and report mesh sizes")
		path, app, err := parse(fs, args, cfg, logger)
		if err != nil {
			return err
		}
		r, err := app.Load(path)
		if err != nil {
			return err
		}
		if *meshes && r.OK() {
			if err := app.MeshStats(r); err != nil {
				return err
			}
		}
		if err := writeReport(stdout, r, *asYAML); err != nil {
			return err
		}
		if !r.OK() {
			return errCheckFailed
		}
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// parse reads the flags, validates the resulting config and returns the
// single script argument with an App built for it.
func parse(fs *flag.FlagSet, args []string, cfg *config.Config, logger *slog.Logger) (string, *App, error) {
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}
	if fs.NArg() != 1 {
		return "", nil, fmt.Errorf("%s expects one script: %w", fs.Name(), errUsage)
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return fs.Arg(0), NewApp(cfg, logger), nil
}

func runPreview(app *App, path string, fast, watch bool) error {
	v, err := app.Volume(path, fast)
	if err != nil {
		return err
	}
	// Log lines would tear the full-screen view.
	app.log = slog.New(slog.DiscardHandler)

	p := preview.NewProgram(v, preview.WithTitle(filepath.Base(path)))
	if !watch {
		_, err = p.Run()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := app.Watch(ctx, path, fast, func(v *volume.Volume, err error) {
			p.Send(preview.VolumeMsg{Volume: v, Err: err})
		})
		if err != nil {
			p.Send(preview.VolumeMsg{Err: err})
		}
	}()
	_, err = p.Run()
	return err
}
