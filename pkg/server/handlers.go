package server

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/rigwall/pkg/buildinfo"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/render"
	"github.com/matzehuels/rigwall/pkg/session"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "rigwall_session"

// Query parameters that size a new session or a rendered page.
const (
	ParamViewport  = "viewport"
	ParamContainer = "container"
	ParamSeed      = "seed"
	ParamPages     = "pages"
)

// session returns the caller's session, starting a new one sized from the
// viewport and container parameters and filtered by the query when the
// cookie is missing, unknown or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	ctx := r.Context()
	if c, err := r.Cookie(SessionCookie); err == nil {
		sess, err := s.sessions.Get(ctx, c.Value)
		switch {
		case err == nil:
			s.setCookie(w, sess.ID)
			return sess, nil
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
			s.logger.Debug("starting new session", "reason", err)
		default:
			return nil, err
		}
	}

	q := r.URL.Query()
	vw, cw, err := viewportParams(q)
	if err != nil {
		return nil, err
	}
	app := gallery.New(s.opts.Gallery)
	if err := app.Init(ctx, vw, cw, q); err != nil {
		return nil, err
	}
	sess := session.New(app, s.opts.SessionTTL)
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, err
	}
	s.setCookie(w, sess.ID)
	s.logger.Debug("session created", "id", sess.ID, "seed", app.Seed())
	return sess, nil
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// viewportParams reads the viewport and container widths, defaulting to a
// desktop window.
func viewportParams(q url.Values) (viewportWidth, containerWidth float64, err error) {
	viewportWidth, err = widthParam(q, ParamViewport, pipeline.DefaultViewportWidth)
	if err != nil {
		return 0, 0, err
	}
	containerWidth, err = widthParam(q, ParamContainer, min(viewportWidth, pipeline.DefaultContainerWidth))
	if err != nil {
		return 0, 0, err
	}
	return viewportWidth, containerWidth, nil
}

func widthParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
		return 0, rwerrors.New(rwerrors.ErrCodeInvalidViewport, "invalid %s width %q", name, raw)
	}
	return w, nil
}

// withApp runs fn on the caller's gallery and answers with the resulting
// view.
func (s *Server) withApp(w http.ResponseWriter, r *http.Request, fn func(context.Context, *gallery.App) error) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var view gallery.View
	err = sess.Do(func(app *gallery.App) error {
		if err := fn(r.Context(), app); err != nil {
			return err
		}
		view = app.View()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, rwerrors.UserMessage(err), rwerrors.HTTPStatus(err))
		return
	}
	q := r.URL.Query()
	var page []byte
	err = sess.Do(func(app *gallery.App) error {
		if err := app.Restore(r.Context(), q); err != nil {
			return err
		}
		if raw := q.Get(render.ParamLightbox); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return rwerrors.New(rwerrors.ErrCodeInvalidInput, "invalid lightbox id %q", raw)
			}
			if err := app.OpenID(id); err != nil {
				return err
			}
		}
		var err error
		page, err = render.RenderHTML(app.View(),
			render.WithTitle(s.opts.Title),
			render.WithImageBase("/"),
			render.WithAPI("/api"),
			render.WithCaptionHeight(app.CaptionHeight()),
		)
		return err
	})
	if err != nil {
		status := rwerrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("render page", "err", err)
		}
		http.Error(w, rwerrors.UserMessage(err), status)
		return
	}
	w.Header().Set("Content-Type", render.ContentTypes[render.FormatHTML])
	_, _ = w.Write(page)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	s.withApp(w, r, func(context.Context, *gallery.App) error { return nil })
}

type filtersRequest struct {
	Category *string `json:"category"`
	Sort     *string `json:"sort"`
	Year     *int    `json:"year"`
	Location *string `json:"location"`
	SalesRep *string `json:"rep"`

	// Apply commits the staged year, location and rep.
	Apply bool `json:"apply"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error {
		if req.Category != nil {
			if err := app.SetCategory(ctx, *req.Category); err != nil {
				return err
			}
		}
		if req.Sort != nil {
			mode, err := filter.ParseSortMode(*req.Sort)
			if err != nil {
				return err
			}
			if err := app.SetSort(ctx, mode); err != nil {
				return err
			}
		}
		if req.Year != nil {
			app.SetDraftYear(*req.Year)
		}
		if req.Location != nil {
			app.SetDraftLocation(*req.Location)
		}
		if req.SalesRep != nil {
			app.SetDraftSalesRep(*req.SalesRep)
		}
		if req.Apply {
			return app.ApplyFilters(ctx)
		}
		return nil
	})
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error { return app.ClearFilters(ctx) })
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Company string `json:"company"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Company == "" {
		s.writeError(w, r, rwerrors.New(rwerrors.ErrCodeInvalidInput, "company is required"))
		return
	}
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error {
		return app.FilterByCompany(ctx, req.Company)
	})
}

func (s *Server) handleClearCompany(w http.ResponseWriter, r *http.Request) {
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error { return app.ClearCompany(ctx) })
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error { return app.LoadMore(ctx) })
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Viewport  float64 `json:"viewport"`
		Container float64 `json:"container"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Viewport <= 0 || req.Container < 0 {
		s.writeError(w, r, rwerrors.New(rwerrors.ErrCodeInvalidViewport,
			"invalid viewport %v / container %v", req.Viewport, req.Container))
		return
	}
	s.withApp(w, r, func(ctx context.Context, app *gallery.App) error {
		return app.Resize(ctx, req.Viewport, req.Container)
	})
}

func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var choices filter.Choices
	_ = sess.Do(func(app *gallery.App) error {
		choices = app.Choices()
		return nil
	})
	writeJSON(w, http.StatusOK, choices)
}

func idParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, rwerrors.New(rwerrors.ErrCodeInvalidInput, "invalid vehicle id %q", raw)
	}
	return id, nil
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = sess.Do(func(app *gallery.App) error {
		v, ok := app.Vehicle(id)
		if !ok {
			return rwerrors.New(rwerrors.ErrCodeVehicleNotFound, "vehicle %d not found", id)
		}
		writeJSON(w, http.StatusOK, v)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleLightboxOpen(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withApp(w, r, func(_ context.Context, app *gallery.App) error { return app.OpenID(id) })
}

func (s *Server) handleLightboxKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withApp(w, r, func(_ context.Context, app *gallery.App) error {
		app.HandleKey(req.Key)
		return nil
	})
}

func (s *Server) handleLightboxSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withApp(w, r, func(_ context.Context, app *gallery.App) error {
		if !app.SelectImage(req.Index) {
			return rwerrors.New(rwerrors.ErrCodeInvalidInput, "no lightbox image %d", req.Index)
		}
		return nil
	})
}

func (s *Server) handleLightboxClose(w http.ResponseWriter, r *http.Request) {
	s.withApp(w, r, func(_ context.Context, app *gallery.App) error {
		app.Close()
		return nil
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if ok, wait := s.limiter.allow(clientKey(r)); !ok {
		retry := int(math.Ceil(wait.Seconds()))
		s.writeError(w, r, rwerrors.Wrap(rwerrors.ErrCodeRateLimited,
			&rwerrors.RateLimitedError{RetryAfter: retry}, "too many submissions, try again later"))
		return
	}
	sub, err := s.desk.Decode(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	receipt, err := s.desk.Accept(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// renderOptions builds a pipeline run from the request query.
func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	if err := render.ValidateFormat(format); err != nil {
		return pipeline.Options{}, err
	}
	state, mode, err := filter.ParseQuery(q)
	if err != nil {
		return pipeline.Options{}, err
	}
	vw, cw, err := viewportParams(q)
	if err != nil {
		return pipeline.Options{}, err
	}

	seed := s.opts.Gallery.Seed
	if raw := q.Get(ParamSeed); raw != "" {
		if seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return pipeline.Options{}, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "invalid seed %q", raw)
		}
	}
	pages := pipeline.DefaultPages
	if raw := q.Get(ParamPages); raw != "" {
		if pages, err = strconv.Atoi(raw); err != nil || pages < 1 || pages > 100 {
			return pipeline.Options{}, rwerrors.New(rwerrors.ErrCodeInvalidInput, "invalid pages %q", raw)
		}
	}

	return pipeline.Options{
		Seed:           seed,
		Roster:         s.opts.Gallery.Roster,
		Catalog:        s.opts.Gallery.Catalog,
		ViewportWidth:  vw,
		ContainerWidth: cw,
		Query:          state.Query(mode),
		Pages:          pages,
		Formats:        []string{format},
		Title:          s.opts.Title,
		ImageBase:      "/",
		Images:         s.opts.PNGImages,
		ImageSource:    s.opts.PNGSource,
		Logger:         s.logger,
	}, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.renderOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", render.ContentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	_, _ = w.Write(result.Artifacts[format])
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Sessions: s.sessions.Len(),
		Info:     buildinfo.Current(),
	})
}
