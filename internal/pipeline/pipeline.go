// Package pipeline drives one wfgraph run: parse, extract, render, write the
// artifacts to the work directory and relocate them into the output tree.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-graphviz"
	"github.com/google/uuid"
	"github.com/rendis/wfgraph/internal/config"
	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/expressions"
	"github.com/rendis/wfgraph/internal/extract"
	"github.com/rendis/wfgraph/internal/logging"
	"github.com/rendis/wfgraph/internal/output"
	"github.com/rendis/wfgraph/pkg/schema"
	"golang.org/x/sync/errgroup"
)

// Artifact extensions, in the order they are written and relocated.
const (
	extPNG     = ".png"
	extDOT     = ".dot"
	extMermaid = ".mmd"
)

// Runner executes single and multi runs with one resolved configuration.
type Runner struct {
	cfg       config.Config
	extractor *extract.Extractor
	organizer *output.Organizer
	style     diagram.Style
	logger    *slog.Logger
}

// New builds a Runner. A nil logger uses slog.Default().
func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ex, err := extract.New(extract.Options{
		Prefix:               cfg.Prefix,
		StatusChangeExecutor: cfg.StatusChangeExecutor,
		Logger:               logger,
	})
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		extractor: ex,
		organizer: &output.Organizer{Root: cfg.OutputDir, Logger: logger},
		style:     diagram.DefaultStyle(),
		logger:    logger,
	}, nil
}

// RunSingle renders the one state machine in src as name (the configured
// default name when empty) and returns the relocated artifact paths.
func (r *Runner) RunSingle(ctx context.Context, src, name string) ([]string, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	if name == "" {
		name = r.cfg.DefaultName
	}
	if err := output.CheckPathPart(name); err != nil {
		return nil, schema.NewError(schema.ErrCodeUsage, "invalid output name").WithCause(err)
	}
	r.logger.InfoContext(ctx, "single run started", slog.String("source", src), slog.String("name", name))

	root, err := extract.ParseFile(src)
	if err != nil {
		return nil, err
	}
	statuses := r.extractor.Statuses(root)
	r.logger.DebugContext(ctx, "statuses extracted", slog.Int("count", len(statuses)))

	artifacts, err := r.renderTo(ctx, diagram.Build("", statuses), name)
	if err != nil {
		return nil, err
	}
	moved, err := r.organizer.Relocate(artifacts, "")
	if err != nil {
		return moved, err
	}
	r.logger.InfoContext(ctx, "single run finished", slog.Int("artifacts", len(moved)))
	return moved, nil
}

// RunMulti renders one diagram per actionable in src that passes selector
// (nil selects all) and relocates them under the client directory.
func (r *Runner) RunMulti(ctx context.Context, src string, selector *expressions.Selector) ([]string, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	r.logger.InfoContext(ctx, "multi run started", slog.String("source", src))

	root, err := extract.ParseFile(src)
	if err != nil {
		return nil, err
	}
	doc := r.extractor.Document(root)
	ctx = logging.WithClient(ctx, doc.Client)
	if err := output.CheckPathPart(doc.Client); err != nil {
		return nil, schema.NewError(schema.ErrCodeInput, "client cannot name a directory").
			WithCause(err).WithDetails(map[string]any{"path": src})
	}

	selected, err := r.selectActionables(ctx, doc.Actionables, selector)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "actionables selected",
		slog.Int("total", len(doc.Actionables)), slog.Int("selected", len(selected)))

	for _, a := range selected {
		if err := output.CheckPathPart(a.Type); err != nil {
			return nil, schema.NewError(schema.ErrCodeInput, "actionableType cannot name a file").
				WithCause(err).WithActionable(a.Type).WithDetails(map[string]any{"path": src})
		}
	}

	names := uniqueNames(selected)
	perActionable := make([][]string, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Parallel, 1))
	for i, a := range selected {
		g.Go(func() error {
			actx := logging.WithActionableType(gctx, a.Type)
			artifacts, err := r.renderTo(actx, diagram.Build(a.DiagramName(), a.Statuses), names[i])
			if err != nil {
				if ge, ok := err.(*schema.GraphError); ok {
					return ge.WithActionable(a.Type)
				}
				return err
			}
			perActionable[i] = artifacts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var artifacts []string
	for _, a := range perActionable {
		artifacts = append(artifacts, a...)
	}
	moved, err := r.organizer.Relocate(artifacts, doc.Client)
	if err != nil {
		return moved, err
	}
	r.logger.InfoContext(ctx, "multi run finished", slog.Int("artifacts", len(moved)))
	return moved, nil
}

func (r *Runner) selectActionables(ctx context.Context, all []*schema.Actionable, selector *expressions.Selector) ([]*schema.Actionable, error) {
	if selector == nil {
		return all, nil
	}
	var selected []*schema.Actionable
	for _, a := range all {
		ok, err := selector.Match(a)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.logger.DebugContext(logging.WithActionableType(ctx, a.Type), "actionable filtered out")
			continue
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// uniqueNames returns the artifact base name of each actionable. Repeated
// diagram names get a "-<n>" suffix so they do not overwrite each other in
// the work directory.
func uniqueNames(actionables []*schema.Actionable) []string {
	seen := make(map[string]int, len(actionables))
	names := make([]string, len(actionables))
	for i, a := range actionables {
		name := a.DiagramName()
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		names[i] = name
	}
	return names
}

type artifact struct {
	ext  string
	data []byte
}

// renderTo renders model and writes its artifacts into the work directory.
func (r *Runner) renderTo(ctx context.Context, model *diagram.DiagramModel, name string) ([]string, error) {
	rendered, err := diagram.Render(ctx, model, r.style, graphviz.PNG, graphviz.XDOT)
	if err != nil {
		return nil, err
	}

	files := []artifact{
		{extPNG, rendered[graphviz.PNG]},
		{extDOT, rendered[graphviz.XDOT]},
	}
	if r.cfg.Mermaid {
		files = append(files, artifact{extMermaid, []byte(diagram.RenderMermaid(model))})
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(r.cfg.WorkDir, name+f.ext)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return paths, schema.NewErrorf(schema.ErrCodeOutput, "write %s", path).WithCause(err)
		}
		paths = append(paths, path)
	}
	r.logger.DebugContext(ctx, "diagram written",
		slog.String("name", name), slog.Int("nodes", len(model.Nodes)), slog.Int("edges", len(model.Edges)))
	return paths, nil
}
