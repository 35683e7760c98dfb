package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/pipeline"
)

// filterFlags are the filter and sort flags shared by filter, layout and
// render.
type filterFlags struct {
	category string
	company  string
	year     int
	location string
	rep      string
	sort     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", filter.CategoryAll, "category: all, carriers, light-duty, medium-duty, heavy-duty, service-bodies")
	cmd.Flags().StringVar(&f.company, "company", "", "show only this company")
	cmd.Flags().IntVar(&f.year, "year", 0, "model year")
	cmd.Flags().StringVar(&f.location, "location", "", "state the owner is in")
	cmd.Flags().StringVar(&f.rep, "rep", "", "sales rep")
	cmd.Flags().StringVar(&f.sort, "sort", string(filter.Newest), "sort: newest, oldest, owner-az, owner-za")

	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := []string{filter.CategoryAll}
		for _, c := range catalog.Categories {
			names = append(names, string(c))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(filter.SortModes))
		for i, m := range filter.SortModes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

// query encodes the flags as gallery query parameters, normalized so equal
// selections produce equal queries.
func (f *filterFlags) query() (url.Values, error) {
	q := url.Values{}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set(filter.ParamCategory, f.category)
	set(filter.ParamCompany, f.company)
	set(filter.ParamLocation, f.location)
	set(filter.ParamSalesRep, f.rep)
	set(filter.ParamSort, f.sort)
	if f.year != 0 {
		q.Set(filter.ParamYear, strconv.Itoa(f.year))
	}
	state, mode, err := filter.ParseQuery(q)
	if err != nil {
		return nil, err
	}
	return state.Query(mode), nil
}

// filterCommand creates the filter command for listing the catalog.
func (c *CLI) filterCommand() *cobra.Command {
	var (
		flags   filterFlags
		seed    uint64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "filter [catalog.json]",
		Short: "List catalog vehicles filtered and sorted",
		Long: `List catalog vehicles filtered and sorted.

Reads a catalog written by 'generate', or generates one from the configured
seed when no file is given. Filters combine with AND and the result is
printed as a table in the selected order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			opts := c.pipelineOptions()
			opts.Seed = flagOr(cmd, "seed", seed, opts.Seed)
			return c.runFilter(cmd, input, opts, &flags, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed when no catalog is given")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFilter(cmd *cobra.Command, input string, opts pipeline.Options, flags *filterFlags, noCache bool) error {
	q, err := flags.query()
	if err != nil {
		return err
	}
	state, mode, _ := filter.ParseQuery(q)

	vs, cached, err := c.catalogFor(cmd, input, opts, noCache)
	if err != nil {
		return err
	}

	visible := filter.Apply(vs, state, mode)
	c.Logger.Debug("applied filters", "query", q.Encode(), "visible", len(visible))
	if len(visible) == 0 {
		printWarning("No vehicles match these filters")
		printStats(len(vs), 0, 0, cached)
		return nil
	}

	fmt.Println(vehicleTable(visible))
	printStats(len(vs), len(visible), 0, cached)
	return nil
}

// catalogFor loads input, or generates the catalog for opts when input is
// empty. The bool reports a cache hit.
func (c *CLI) catalogFor(cmd *cobra.Command, input string, opts pipeline.Options, noCache bool) ([]catalog.Vehicle, bool, error) {
	if input != "" {
		vs, err := loadCatalog(input)
		return vs, false, err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	vs, cached, err := runner.GenerateWithCacheInfo(cmd.Context(), opts)
	if err != nil {
		return nil, false, fmt.Errorf("generate catalog: %w", err)
	}
	return vs, cached, nil
}
