package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/pipeline"
)

const defaultCatalogFile = "catalog.json"

// generateCommand creates the generate command for building a catalog.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output   string
		seed     uint64
		viewport float64
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a vehicle catalog from the image roster",
		Long: `Build a vehicle catalog from the image roster.

Every roster image becomes one vehicle with a random owner, description,
sale date, sales rep and display height. The same --seed always produces the
same catalog. Heights are drawn for the breakpoint of --viewport.

The catalog is written as JSON and can be passed to filter, layout and render.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Seed = flagOr(cmd, "seed", seed, opts.Seed)
			opts.ViewportWidth = viewport
			return c.runGenerate(cmd, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultCatalogFile, "output file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: config seed, 0 = random)")
	cmd.Flags().Float64Var(&viewport, "viewport", pipeline.DefaultViewportWidth, "viewport width the heights are drawn for")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.SetDefaults()
	prog := newProgress(c.Logger)
	vs, cached, err := runner.GenerateWithCacheInfo(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("generate catalog: %w", err)
	}
	prog.done(fmt.Sprintf("Generated %d vehicles", len(vs)))

	if err := catalog.WriteFile(vs, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Catalog generated (seed %d, %s)", opts.Seed, opts.Breakpoint())
	printFile(output)
	printStats(len(vs), len(vs), 0, cached)
	printNewline()
	printNextStep("Browse", "rigwall filter "+output)
	printNextStep("Render", "rigwall render "+output)
	return nil
}
