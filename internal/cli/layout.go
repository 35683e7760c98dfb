package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/render"
)

// sizeFlags are the viewport and pagination flags shared by layout and
// render.
type sizeFlags struct {
	viewport  float64
	container float64
	pages     int
	seed      uint64
}

func (f *sizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.viewport, "viewport", pipeline.DefaultViewportWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&f.container, "container", 0, "container width (default: min(viewport, 1200))")
	cmd.Flags().IntVar(&f.pages, "pages", pipeline.DefaultPages, "number of pages to display (1 page = 20 cards)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed when no catalog is given")
}

func (f *sizeFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	opts.ViewportWidth = f.viewport
	opts.ContainerWidth = f.container
	opts.Pages = f.pages
	opts.Seed = flagOr(cmd, "seed", f.seed, opts.Seed)
}

// layoutCommand creates the layout command for computing gallery layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		sizes   sizeFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [catalog.json]",
		Short: "Compute the masonry layout of a catalog",
		Long: `Compute the masonry layout of a catalog.

The layout command filters and sorts the catalog, takes the first --pages
pages, and places every card in the shortest column. The output is a
layout.json file (same format as 'render -f json') that 'render' can turn into
HTML, SVG or PNG without recomputing.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			opts := c.pipelineOptions()
			sizes.apply(cmd, &opts)
			q, err := filters.query()
			if err != nil {
				return err
			}
			opts.Query = q
			return c.runLayout(cmd, input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	sizes.register(cmd)
	filters.register(cmd)

	return cmd
}

// runLayout loads or generates the catalog, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	catalog, err := loadCatalog(input)
	if err != nil {
		return err
	}
	opts.Catalog = catalog
	opts.Formats = []string{render.FormatJSON}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = "gallery.layout.json"
		if input != "" {
			outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
		}
	}

	if err := os.WriteFile(outputPath, result.Artifacts[render.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete (%d columns, %s)", result.View.Columns, result.View.Breakpoint)
	printFile(outputPath)
	printStats(result.Stats.Vehicles, result.Stats.Visible, result.Stats.Placed, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", "rigwall render "+outputPath)

	return nil
}
