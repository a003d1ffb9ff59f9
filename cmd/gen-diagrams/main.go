// gen-diagrams renders the bundled example documents for README documentation.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/extract"
	"github.com/rendis/wfgraph/pkg/schema"
)

func main() {
	if err := run(context.Background(), "examples", filepath.Join("docs", "assets")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, examplesDir, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	ex, err := extract.New(extract.Options{Prefix: extract.DefaultPrefix})
	if err != nil {
		return err
	}

	ticket, err := extract.ParseFile(filepath.Join(examplesDir, "ticket.xml"))
	if err != nil {
		return err
	}
	if err := write(ctx, outDir, "ticket", diagram.Build("Ticket", ex.Statuses(ticket))); err != nil {
		return err
	}

	acme, err := extract.ParseFile(filepath.Join(examplesDir, "acme.xml"))
	if err != nil {
		return err
	}
	for _, a := range ex.Document(acme).Actionables {
		if err := write(ctx, outDir, a.DiagramName(), diagram.Build(a.DiagramName(), a.Statuses)); err != nil {
			return err
		}
	}
	return nil
}

// write stores the PNG and a fenced Mermaid block for model under outDir.
func write(ctx context.Context, outDir, name string, model *diagram.DiagramModel) error {
	mermaid := diagram.RenderMermaid(model)
	mdPath := filepath.Join(outDir, name+"-mermaid.md")
	if err := os.WriteFile(mdPath, []byte("```mermaid\n"+mermaid+"```\n"), 0o644); err != nil {
		return schema.NewErrorf(schema.ErrCodeOutput, "write %s", mdPath).WithCause(err)
	}
	fmt.Printf("=== %s (Mermaid) ===\n%s\n", name, mermaid)

	png, err := diagram.RenderImage(ctx, model, diagram.DefaultStyle())
	if err != nil {
		return err
	}
	pngPath := filepath.Join(outDir, name+".png")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return schema.NewErrorf(schema.ErrCodeOutput, "write %s", pngPath).WithCause(err)
	}
	fmt.Printf("Written: %s (%d bytes)\n", pngPath, len(png))
	return nil
}
