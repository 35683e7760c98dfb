package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/httputil"
	"github.com/matzehuels/rigwall/pkg/imageprobe"
	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/render"
)

// probeCacheTTL is how long remote image sizes stay cached on disk.
const probeCacheTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // base path; each format appends its extension
	formats string // comma-separated output formats
	images  string // local photo directory
	measure bool   // measure real image heights instead of trusting the catalog
	title   string
	scale   float64
	noCache bool
	refresh bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro      renderOpts
		sizes   sizeFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "render [catalog.json | layout.json]",
		Short: "Render the gallery to HTML, SVG, JSON or PNG",
		Long: `Render the gallery to HTML, SVG, JSON or PNG.

The input is either a catalog (from 'generate') or a layout (from 'layout' or
'render -f json'). A catalog is filtered and laid out first; a layout is
rendered as is, so filter and size flags do not apply to it. Without input a
catalog is generated from the configured seed.

PNG output draws the photos from --images when given, and gray placeholders
otherwise. --measure probes the real image sizes for the layout instead of
using the heights recorded in the catalog.`,
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
			if cmd.Flags().Changed("format") {
				if opts.Formats, err = render.ParseFormats(ro.formats); err != nil {
					return err
				}
			}
			opts.Title = flagOr(cmd, "title", ro.title, opts.Title)
			opts.Scale = flagOr(cmd, "scale", ro.scale, opts.Scale)
			opts.Refresh = ro.refresh
			ro.images = flagOr(cmd, "images", ro.images, c.Config.Gallery.Images)
			return c.runRender(cmd, input, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output base path (default: <input> or gallery)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", render.FormatHTML, "output formats: html, svg, json, png (comma-separated)")
	cmd.Flags().StringVar(&ro.images, "images", "", "directory holding the roster photos")
	cmd.Flags().BoolVar(&ro.measure, "measure", false, "measure image heights from --images")
	cmd.Flags().StringVar(&ro.title, "title", render.DefaultTitle, "page title")
	cmd.Flags().Float64Var(&ro.scale, "scale", pipeline.DefaultScale, "PNG scale factor (max 4)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "ignore cached results")
	sizes.register(cmd)
	filters.register(cmd)

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, ro renderOpts) error {
	ctx := cmd.Context()
	var data []byte
	if input != "" {
		var err error
		if data, err = os.ReadFile(input); err != nil {
			return fmt.Errorf("read %s: %w", input, err)
		}
	}

	if ro.images != "" {
		prober, err := c.newProber(ro.images, ro.noCache)
		if err != nil {
			return err
		}
		opts.Images = prober
		opts.ImageSource = imageSource(ro.images)
		if ro.measure {
			opts.Measurer = prober
		}
	} else if ro.measure {
		printWarning("--measure needs --images; using catalog heights")
	}

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	var (
		artifacts map[string][]byte
		vehicles  int
		visible   int
		placed    int
		cached    bool
	)
	if isLayout(data) {
		view, seed, err := render.ReadJSON(data)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("parse layout %s: %w", input, err)
		}
		if opts.Seed == 0 {
			opts.Seed = seed
		}
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, view, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render: %w", err)
		}
		vehicles, visible, placed = view.Total, view.Total, len(view.Items)
	} else {
		if data != nil {
			if opts.Catalog, err = loadCatalog(input); err != nil {
				spinner.StopWithError("Render failed")
				return err
			}
		}
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		artifacts, cached = result.Artifacts, result.CacheInfo.RenderHit
		vehicles, visible, placed = result.Stats.Vehicles, result.Stats.Visible, result.Stats.Placed
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := outputBase(ro.output, input)
	paths, err := writeArtifacts(base, opts.Formats, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(p)
	}
	printStats(vehicles, visible, placed, cached)
	return nil
}

// isLayout reports whether data holds a layout object rather than a
// catalog array.
func isLayout(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

// outputBase picks the path prefix the format extensions are appended to.
func outputBase(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == "" {
		return "gallery"
	}
	base := strings.TrimSuffix(input, ".layout.json")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeArtifacts writes one file per format in the requested order.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("no %s output produced", f)
		}
		path := base + "." + f
		if f == render.FormatJSON {
			path = base + ".layout.json"
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// newProber returns an image prober over dir. Remote image sizes are cached
// next to the pipeline cache unless caching is off.
func (c *CLI) newProber(dir string, noCache bool) (*imageprobe.Prober, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("images: %s is not a directory", dir)
	}
	opts := []imageprobe.Option{
		imageprobe.WithFS(os.DirFS(dir), c.Config.Roster.WithDefaults().ImagePrefix),
		imageprobe.WithLogger(c.Logger),
	}
	if !noCache && !c.Config.Cache.Disabled {
		if root, err := c.cacheDir(); err == nil {
			if hc, err := httputil.NewCache(filepath.Join(root, "http"), probeCacheTTL); err == nil {
				opts = append(opts, imageprobe.WithCache(hc))
			}
		}
	}
	return imageprobe.New(opts...), nil
}

// imageSource resolves an --images directory for cache keys, so the same
// folder reached through different relative paths shares entries.
func imageSource(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
