package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/twirl/internal/config"
	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/engine"
	"github.com/chazu/twirl/pkg/export"
	"github.com/chazu/twirl/pkg/kernel"
	"github.com/chazu/twirl/pkg/kernel/manifold"
	"github.com/chazu/twirl/pkg/kernel/sdfx"
	"github.com/chazu/twirl/pkg/raster"
	"github.com/chazu/twirl/pkg/volume"
)

// App wires the script engine, the renderers and the exporters together.
// Every CLI subcommand is a thin wrapper around one App method.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	engine *engine.Engine
	kernel kernel.Kernel
}

// NewApp creates an App with an engine and a geometry kernel configured
// from cfg. A nil logger discards log output.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	eng := engine.NewEngine()
	eng.Depth = cfg.Depth
	eng.Timeout = cfg.EvalTimeout
	return &App{
		cfg:    cfg,
		log:    logger,
		engine: eng,
		kernel: newKernel(cfg, logger),
	}
}

// newKernel returns the configured kernel. The manifold kernel needs the
// manifold build tag; without it the sdfx kernel is used instead.
func newKernel(cfg *config.Config, logger *slog.Logger) kernel.Kernel {
	if cfg.Kernel == config.KernelManifold {
		k, err := manifold.New()
		if err == nil {
			return k
		}
		logger.Warn("falling back to sdfx kernel", "error", err)
	}
	return sdfx.NewWithCells(cfg.MeshCells)
}

// Issue is one problem found in a script, in a form the check report can
// print or serialize.
type Issue struct {
	Line     int    `yaml:"line,omitempty"`
	Shape    *int   `yaml:"shape,omitempty"`
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Severity)
	if i.Line > 0 {
		fmt.Fprintf(&b, " line %d", i.Line)
	}
	if i.Shape != nil {
		fmt.Fprintf(&b, " shape %d", *i.Shape)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// MeshStat summarizes one shape's tessellated solid.
type MeshStat struct {
	Name      string `yaml:"name"`
	Vertices  int    `yaml:"vertices"`
	Triangles int    `yaml:"triangles"`
}

// Report is the result of evaluating and checking a script.
type Report struct {
	Script   string     `yaml:"script,omitempty"`
	Shapes   int        `yaml:"shapes"`
	Depth    int        `yaml:"depth"`
	Errors   []Issue    `yaml:"errors,omitempty"`
	Warnings []Issue    `yaml:"warnings,omitempty"`
	Meshes   []MeshStat `yaml:"meshes,omitempty"`

	anim   *animation.Animation
	frames []animation.Frames
}

// OK reports whether the script can be rendered.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the report's errors into one error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, is := range r.Errors {
		errs[i] = errors.New(is.String())
	}
	return errors.Join(errs...)
}

func validationIssues(vs []animation.ValidationError) []Issue {
	out := make([]Issue, 0, len(vs))
	for _, v := range vs {
		is := Issue{Severity: v.Severity.String(), Message: v.Message}
		if v.Entry >= 0 {
			entry := v.Entry
			is.Shape = &entry
		}
		out = append(out, is)
	}
	return out
}

// Evaluate runs a script and checks the resulting animation: evaluation
// errors, structural validation, then rendering and the bounds check.
func (a *App) Evaluate(source string) *Report {
	r := &Report{}
	res, err := a.engine.Check(source)
	if err != nil {
		a.log.Error("evaluate", "error", err)
		r.Errors = append(r.Errors, Issue{Severity: "error", Message: err.Error()})
		return r
	}
	for _, e := range res.Errors {
		r.Errors = append(r.Errors, Issue{Line: e.Line, Severity: "error", Message: e.Message})
	}
	if res.Animation == nil {
		return r
	}
	r.anim = res.Animation
	r.Shapes = res.Animation.Len()
	r.Errors = append(r.Errors, validationIssues(res.Validation.Errors)...)
	r.Warnings = append(r.Warnings, validationIssues(res.Validation.Warnings)...)
	if !r.OK() {
		return r
	}

	frames, err := res.Animation.Render()
	if err != nil {
		r.Errors = append(r.Errors, Issue{Severity: "error", Message: err.Error()})
		return r
	}
	r.frames = frames
	r.Depth = frames[0].Depth()
	r.Warnings = append(r.Warnings, validationIssues(animation.CheckBounds(frames, a.cfg.Bound))...)
	for _, w := range r.Warnings {
		a.log.Warn("check", "issue", w.String())
	}
	return r
}

// Load reads and evaluates a script file.
func (a *App) Load(path string) (*Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	r := a.Evaluate(string(src))
	r.Script = path
	a.log.Debug("loaded script", "path", path, "shapes", r.Shapes, "depth", r.Depth)
	return r, nil
}

// frames loads path and fails unless it renders.
func (a *App) frames(path string) ([]animation.Frames, error) {
	r, err := a.Load(path)
	if err != nil {
		return nil, err
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return r.frames, nil
}

func (a *App) grid() raster.Grid {
	return raster.Grid{Bound: a.cfg.Bound, Resolution: a.cfg.Resolution}
}

func (a *App) solidOptions() export.SolidOptions {
	return export.SolidOptions{
		LayerHeight:   a.cfg.LayerHeight,
		ExtrudeHeight: a.cfg.ExtrudeHeight,
		Stride:        a.cfg.Stride,
	}
}

// Volume renders a script file into a boolean volume. fast selects
// wireframe rendering.
func (a *App) Volume(path string, fast bool) (*volume.Volume, error) {
	frames, err := a.frames(path)
	if err != nil {
		return nil, err
	}
	v, err := volume.Assemble(frames, a.grid(), volume.Options{Fast: fast, Workers: a.cfg.Workers})
	if err != nil {
		return nil, err
	}
	a.log.Info("rendered volume", "slices", v.Len(), "resolution", a.cfg.Resolution, "voxels", v.Count(), "wireframe", fast)
	return v, nil
}

// ExportSolid writes the stacked-extrusion solid of a script to out as
// STL. With split set, every shape is written to its own file named
// <out>-<index>.stl instead.
func (a *App) ExportSolid(path, out string, split bool) ([]string, error) {
	frames, err := a.frames(path)
	if err != nil {
		return nil, err
	}
	opts := a.solidOptions()
	if !split {
		if err := export.WriteSTL(out, frames, a.kernel, opts); err != nil {
			return nil, err
		}
		a.log.Info("wrote solid", "path", out, "shapes", len(frames))
		return []string{out}, nil
	}

	solids, err := export.Solids(frames, a.kernel, opts)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(out, filepath.Ext(out))
	paths := make([]string, 0, len(solids))
	for i, s := range solids {
		p := fmt.Sprintf("%s-%d.stl", base, i)
		if err := a.kernel.WriteSTL(s, p); err != nil {
			return paths, fmt.Errorf("shape %d: %w", i, err)
		}
		paths = append(paths, p)
	}
	a.log.Info("wrote solids", "files", len(paths))
	return paths, nil
}

// ExportSlices renders a script file and writes one image per depth index
// into dir.
func (a *App) ExportSlices(path, dir string, f export.Format, fast bool) ([]string, error) {
	v, err := a.Volume(path, fast)
	if err != nil {
		return nil, err
	}
	paths, err := export.WriteSlices(v, dir, f)
	if err != nil {
		return paths, err
	}
	a.log.Info("wrote slices", "dir", dir, "files", len(paths), "format", string(f))
	return paths, nil
}

// MeshStats tessellates every shape of a checked report and records the
// mesh sizes on it.
func (a *App) MeshStats(r *Report) error {
	if err := r.Err(); err != nil {
		return err
	}
	meshes, err := export.Meshes(r.frames, a.kernel, a.solidOptions())
	if err != nil {
		return err
	}
	r.Meshes = r.Meshes[:0]
	for _, m := range meshes {
		r.Meshes = append(r.Meshes, MeshStat{Name: m.Name, Vertices: m.VertexCount(), Triangles: m.TriangleCount()})
	}
	return nil
}
