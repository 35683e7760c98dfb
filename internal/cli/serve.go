package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/buildinfo"
	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/server"
	"github.com/matzehuels/rigwall/pkg/submit"
)

// serveCommand creates the serve command for the HTTP gallery.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		images  string
		redis   string
		catalog string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery over HTTP",
		Long: `Serve the gallery over HTTP.

Each visitor gets a session (cookie) holding their own filters, pagination
and lightbox. The page works without JavaScript through query parameters;
with JavaScript it drives the JSON API under /api.

--images serves the roster photos under /images/ and lets /render.png draw
them. --redis shares the render cache between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := c.Config.Server
			addr = flagOr(cmd, "addr", addr, srv.Addr)
			redis = flagOr(cmd, "redis", redis, srv.Redis)
			images = flagOr(cmd, "images", images, c.Config.Gallery.Images)
			return c.runServe(cmd, addr, images, redis, catalog, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&images, "images", "", "directory holding the roster photos")
	cmd.Flags().StringVar(&redis, "redis", "", "redis address or URL for the render cache")
	cmd.Flags().StringVar(&catalog, "catalog", "", "serve this catalog instead of generating one per session")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr, images, redisAddr, catalogPath string, noCache bool) error {
	ctx := cmd.Context()

	vs, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	store, keyer, err := c.serveCache(cmd, redisAddr, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	desk, err := submit.NewDesk(submit.WithLogger(c.Logger))
	if err != nil {
		return fmt.Errorf("submission desk: %w", err)
	}

	g := c.Config.Gallery
	opts := server.Options{
		Gallery: gallery.Options{
			Catalog:        vs,
			Roster:         c.Config.Roster,
			Seed:           c.Config.Seed,
			PageSize:       g.PageSize,
			Gaps:           g.Gaps(),
			CaptionHeight:  g.CaptionHeight,
			MeasureTimeout: g.MeasureTimeout,
		},
		Title:          c.Config.Render.Title,
		Runner:         runner,
		Desk:           desk,
		SessionTTL:     c.Config.Server.SessionTTL,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		SubmitRate:     c.Config.Server.SubmitRate,
		SubmitBurst:    c.Config.Server.SubmitBurst,
		ReadTimeout:    c.Config.Server.ReadTimeout,
		WriteTimeout:   c.Config.Server.WriteTimeout,
		Logger:         c.Logger,
	}
	if images != "" {
		prober, err := c.newProber(images, noCache)
		if err != nil {
			return err
		}
		opts.Images = os.DirFS(images)
		opts.PNGImages = prober
		opts.PNGSource = imageSource(images)
	}

	s, err := server.New(opts)
	if err != nil {
		return err
	}

	printSuccess("Serving rigwall %s", buildinfo.Version)
	printKeyValue("Address", addr)
	if images != "" {
		printKeyValue("Images", images)
	}
	if redisAddr != "" {
		printKeyValue("Cache", "redis "+redisAddr)
	}
	printNewline()

	return s.ListenAndServe(ctx, addr)
}

// serveCache picks the render cache: redis when an address is given, the
// local file cache otherwise. Redis keys are scoped to the build version so
// instances running different releases never share renders.
func (c *CLI) serveCache(cmd *cobra.Command, redisAddr string, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || redisAddr == "" {
		store, err := c.newCache(noCache)
		return store, nil, err
	}
	store, err := cache.NewRedisCache(cmd.Context(), redisAddr, cache.WithRedisPrefix(appName+":"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis %s: %w", redisAddr, err)
	}
	c.Logger.Info("using redis cache", "addr", redisAddr)
	return store, cache.NewScopedKeyer(nil, buildinfo.Version+":"), nil
}
