package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/pipeline"
	"github.com/matzehuels/rigwall/pkg/submit"
	"github.com/matzehuels/rigwall/pkg/viewport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Gallery.Seed == 0 {
		opts.Gallery.Seed = 7
	}
	opts.Gallery.Now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// client replays the session cookie like a browser.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, h: s.Handler()}
}

func (c *client) do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) view(method, target string, body any) gallery.View {
	c.t.Helper()
	rec := c.do(method, target, body)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("%s %s = %d: %s", method, target, rec.Code, rec.Body)
	}
	var v gallery.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		c.t.Fatalf("decode view: %v", err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body, err)
	}
	return body.Code
}

func TestGalleryStartsSession(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	v := c.view("GET", "/api/gallery?viewport=1200&container=1000", nil)

	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatal("no session cookie set")
	}
	if !c.cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if v.Columns != 3 || v.ItemWidth != 240 {
		t.Errorf("columns = %d x %v, want 3 x 240", v.Columns, v.ItemWidth)
	}
	if len(v.Items) != 20 || v.Total != 29 {
		t.Errorf("items = %d of %d, want 20 of 29", len(v.Items), v.Total)
	}
	if !v.LoadMore.Visible || v.LoadMore.Label != "Load More (9 remaining)" {
		t.Errorf("load more = %+v", v.LoadMore)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newServer(t, Options{})
	a, b := newClient(t, s), newClient(t, s)
	a.view("GET", "/api/gallery", nil)
	b.view("GET", "/api/gallery", nil)

	if v := a.view("POST", "/api/gallery/more", nil); v.Displayed != 29 || v.LoadMore.Visible {
		t.Errorf("after load more: displayed %d, button %v", v.Displayed, v.LoadMore.Visible)
	}
	if v := b.view("GET", "/api/gallery", nil); v.Displayed != 20 {
		t.Errorf("other session displayed %d, want 20", v.Displayed)
	}
	if a.cookie.Value == b.cookie.Value {
		t.Error("clients share a session id")
	}
	if n := s.Sessions().Len(); n != 2 {
		t.Errorf("sessions = %d, want 2", n)
	}
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	c.cookie = &http.Cookie{Name: SessionCookie, Value: "stale"}
	c.view("GET", "/api/gallery", nil)
	if c.cookie.Value == "stale" {
		t.Error("stale cookie was kept")
	}
}

func TestCategoryFilter(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	v := c.view("POST", "/api/gallery/filters", map[string]any{"category": "heavy-duty"})
	if len(v.Items) == 0 {
		t.Fatal("no heavy duty vehicles")
	}
	for _, it := range v.Items {
		if it.Category != catalog.HeavyDuty {
			t.Errorf("item %d has category %s", it.ID, it.Category)
		}
	}
	if v.Filters.Category != "heavy-duty" {
		t.Errorf("applied category = %q", v.Filters.Category)
	}

	rec := c.do("POST", "/api/gallery/filters", map[string]any{"category": "boats"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_FILTER" {
		t.Errorf("bad category = %d %s", rec.Code, rec.Body)
	}
	if v := c.view("GET", "/api/gallery", nil); v.Filters.Category != "heavy-duty" {
		t.Errorf("rejected filter changed state: %q", v.Filters.Category)
	}
}

func TestSortFilter(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	v := c.view("POST", "/api/gallery/filters", map[string]any{"sort": "owner-az"})
	if v.Sort != filter.OwnerAsc || v.SortLabel != filter.OwnerAsc.Label() {
		t.Errorf("sort = %s (%s)", v.Sort, v.SortLabel)
	}
	rec := c.do("POST", "/api/gallery/filters", map[string]any{"sort": "random"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_SORT" {
		t.Errorf("bad sort = %d %s", rec.Code, rec.Body)
	}
}

func TestDraftFiltersNeedApply(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	choices := c.do("GET", "/api/filters/options", nil)
	var ch filter.Choices
	if err := json.Unmarshal(choices.Body.Bytes(), &ch); err != nil {
		t.Fatal(err)
	}
	if len(ch.Locations) == 0 {
		t.Fatal("no locations")
	}
	loc := ch.Locations[0]

	v := c.view("POST", "/api/gallery/filters", map[string]any{"location": loc})
	if v.Filters.Location != "" || v.Draft.Location != loc {
		t.Errorf("staged: applied %q draft %q", v.Filters.Location, v.Draft.Location)
	}
	v = c.view("POST", "/api/gallery/filters", map[string]any{"apply": true})
	if v.Filters.Location != loc {
		t.Errorf("applied location = %q, want %q", v.Filters.Location, loc)
	}
	for _, it := range v.Items {
		if catalog.Location(it.Owner) != loc {
			t.Errorf("item %d owner %q outside %s", it.ID, it.Owner, loc)
		}
	}

	v = c.view("POST", "/api/gallery/filters/clear", nil)
	if !v.Filters.IsDefault() || v.Total != 29 {
		t.Errorf("after clear: %+v, total %d", v.Filters, v.Total)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	rec := c.do("POST", "/api/gallery/filters", map[string]any{"colour": "red"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
		t.Errorf("unknown field = %d %s", rec.Code, rec.Body)
	}
}

func TestCompanyFilter(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	owner := c.view("GET", "/api/gallery", nil).Items[0].Owner

	v := c.view("POST", "/api/gallery/company", map[string]any{"company": owner})
	if !v.Company.Active || v.Company.Name != owner {
		t.Errorf("company = %+v", v.Company)
	}
	if !strings.Contains(v.Query, "company=") {
		t.Errorf("query %q lacks company", v.Query)
	}

	v = c.view("DELETE", "/api/gallery/company", nil)
	if v.Company.Active || v.Total != 29 {
		t.Errorf("after clear: %+v, total %d", v.Company, v.Total)
	}

	rec := c.do("POST", "/api/gallery/company", map[string]any{"company": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty company = %d", rec.Code)
	}
}

func TestResize(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	c.view("GET", "/api/gallery?viewport=1200&container=1000", nil)

	v := c.view("POST", "/api/gallery/resize", map[string]any{"viewport": 375, "container": 355})
	if v.Breakpoint != viewport.Mobile || v.Columns != 2 {
		t.Errorf("after resize: %s with %d columns", v.Breakpoint, v.Columns)
	}
	if len(v.Items) != 20 {
		t.Errorf("resize changed displayed count to %d", len(v.Items))
	}

	rec := c.do("POST", "/api/gallery/resize", map[string]any{"viewport": 0})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_VIEWPORT" {
		t.Errorf("zero viewport = %d %s", rec.Code, rec.Body)
	}
	rec = c.do("GET", "/api/gallery?viewport=wide", nil)
	if rec.Code != http.StatusOK {
		// Existing session: sizing parameters only apply to new sessions.
		t.Errorf("existing session with bad width = %d", rec.Code)
	}
}

func TestBadViewportOnNewSession(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	rec := c.do("GET", "/api/gallery?viewport=-5", nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_VIEWPORT" {
		t.Errorf("negative viewport = %d %s", rec.Code, rec.Body)
	}
}

func TestLightbox(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	v := c.view("POST", "/api/lightbox/open/3", nil)
	if v.Lightbox == nil || v.Lightbox.ID != 3 || v.Lightbox.Index != 0 {
		t.Fatalf("lightbox = %+v", v.Lightbox)
	}
	if v.Lightbox.Count != 4 {
		t.Errorf("count = %d, want 4", v.Lightbox.Count)
	}

	v = c.view("POST", "/api/lightbox/key", map[string]any{"key": "ArrowRight"})
	if v.Lightbox.Index != 1 {
		t.Errorf("after ArrowRight index = %d", v.Lightbox.Index)
	}
	v = c.view("POST", "/api/lightbox/select", map[string]any{"index": 3})
	if v.Lightbox.Index != 3 || v.Lightbox.HasNext {
		t.Errorf("after select: %+v", v.Lightbox)
	}
	rec := c.do("POST", "/api/lightbox/select", map[string]any{"index": 9})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("select out of range = %d", rec.Code)
	}

	v = c.view("POST", "/api/lightbox/key", map[string]any{"key": "Escape"})
	if v.Lightbox != nil {
		t.Error("Escape did not close the lightbox")
	}

	c.view("POST", "/api/lightbox/open/3", nil)
	if v := c.view("DELETE", "/api/lightbox", nil); v.Lightbox != nil {
		t.Error("DELETE did not close the lightbox")
	}

	for target, want := range map[string]int{
		"/api/lightbox/open/999": http.StatusNotFound,
		"/api/lightbox/open/abc": http.StatusBadRequest,
	} {
		if rec := c.do("POST", target, nil); rec.Code != want {
			t.Errorf("POST %s = %d, want %d", target, rec.Code, want)
		}
	}
}

func TestVehicle(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	rec := c.do("GET", "/api/vehicles/5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET vehicle = %d: %s", rec.Code, rec.Body)
	}
	var v catalog.Vehicle
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.ID != 5 || v.Owner == "" {
		t.Errorf("vehicle = %+v", v)
	}

	rec = c.do("GET", "/api/vehicles/500", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "VEHICLE_NOT_FOUND" {
		t.Errorf("missing vehicle = %d %s", rec.Code, rec.Body)
	}
}

func TestPage(t *testing.T) {
	c := newClient(t, newServer(t, Options{Title: "Fleet"}))
	rec := c.do("GET", "/?category=heavy-duty", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	page := rec.Body.String()
	for _, want := range []string{"<title>Fleet</title>", `data-api="/api"`, `class="gallery-item`, `src="/images/`} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q", want)
		}
	}
	if strings.Contains(page, `data-category="carriers"`) {
		t.Error("category filter from the URL was not applied")
	}

	// The shared URL state replaces the session's filters.
	if v := c.view("GET", "/api/gallery", nil); v.Filters.Category != "heavy-duty" {
		t.Errorf("session category = %q", v.Filters.Category)
	}
	c.do("GET", "/", nil)
	if v := c.view("GET", "/api/gallery", nil); !v.Filters.IsDefault() {
		t.Errorf("plain URL kept filters %+v", v.Filters)
	}

	rec = c.do("GET", "/?lightbox=2", nil)
	if !strings.Contains(rec.Body.String(), `id="lightbox"`) {
		t.Error("lightbox parameter did not open the modal")
	}

	if rec := c.do("GET", "/?sort=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad sort = %d", rec.Code)
	}
	if rec := c.do("GET", "/?lightbox=404", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown lightbox = %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, nil)
	c := newClient(t, newServer(t, Options{Runner: runner}))

	rec := c.do("GET", "/render.svg?seed=5&category=carriers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("render = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("<svg")) &&
		!bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("<?xml")) {
		t.Errorf("body is not SVG: %.40s", rec.Body)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q", got)
	}

	again := c.do("GET", "/render.svg?seed=5&category=carriers", nil)
	if got := again.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q", got)
	}
	if diff := cmp.Diff(rec.Body.String(), again.Body.String()); diff != "" {
		t.Errorf("cached render differs (-first +second):\n%s", diff)
	}

	for target, want := range map[string]string{
		"/render.gif":              "INVALID_FORMAT",
		"/render.json?seed=x":      "INVALID_INPUT",
		"/render.json?pages=0":     "INVALID_INPUT",
		"/render.json?year=abc":    "INVALID_FILTER",
		"/render.html?viewport=-1": "INVALID_VIEWPORT",
	} {
		rec := c.do("GET", target, nil)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != want {
			t.Errorf("GET %s = %d %s, want 400 %s", target, rec.Code, rec.Body, want)
		}
	}
}

func TestSubmit(t *testing.T) {
	c := newClient(t, newServer(t, Options{SubmitBurst: 2, SubmitRate: 0.01}))
	good := submit.Submission{Name: "Dana", Email: "dana@example.com", Photos: []string{"rollback.jpg"}}

	rec := c.do("POST", "/api/submissions", good)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit = %d: %s", rec.Code, rec.Body)
	}
	var receipt submit.Receipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatal(err)
	}
	if receipt.Message != submit.ThankYou || receipt.Photos != 1 {
		t.Errorf("receipt = %+v", receipt)
	}

	rec = c.do("POST", "/api/submissions", map[string]any{"name": "Dana", "photos": []string{}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid submit = %d: %s", rec.Code, rec.Body)
	}
	var body errorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Code != "INVALID_SUBMISSION" || len(body.Fields) == 0 {
		t.Errorf("error body = %+v", body)
	}

	rec = c.do("POST", "/api/submissions", good)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third submit = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestLimiterSet(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiterSet(1, 2)
	l.now = func() time.Time { return now }

	for i := range 2 {
		if ok, _ := l.allow("a"); !ok {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	ok, wait := l.allow("a")
	if ok || wait <= 0 || wait > time.Second {
		t.Errorf("over burst: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := l.allow("b"); !ok {
		t.Error("other client limited")
	}

	now = now.Add(time.Second)
	if ok, _ := l.allow("a"); !ok {
		t.Error("token not refilled")
	}

	now = now.Add(time.Hour)
	l.prune(time.Minute)
	if len(l.limiters) != 0 {
		t.Errorf("prune left %d limiters", len(l.limiters))
	}
}

func TestImages(t *testing.T) {
	images := fstest.MapFS{"rollback.jpg": {Data: []byte("jpeg bytes")}}
	c := newClient(t, newServer(t, Options{Images: images}))
	rec := c.do("GET", "/images/rollback.jpg", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg bytes" {
		t.Errorf("GET image = %d %q", rec.Code, rec.Body)
	}
	if rec := c.do("GET", "/images/missing.jpg", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing image = %d", rec.Code)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	c := newClient(t, newServer(t, Options{}))
	rec := c.do("GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	var h healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Version == "" {
		t.Errorf("health = %+v", h)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("no request id header")
	}

	if rec := c.do("GET", "/nowhere", nil); rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("unknown route = %d %s", rec.Code, rec.Body)
	}
}

func TestCORS(t *testing.T) {
	h := newServer(t, Options{AllowedOrigins: []string{"https://dealer.example"}}).Handler()

	req := httptest.NewRequest("OPTIONS", "/api/gallery/more", nil)
	req.Header.Set("Origin", "https://dealer.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dealer.example" {
		t.Errorf("allowed origin = %q", got)
	}

	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}
