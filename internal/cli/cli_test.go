package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/render"
)

// runCLI executes the root command with isolated config and cache dirs.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestGenerateThenRender(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")

	if err := runCLI(t, "generate", "-o", catalogPath, "--seed", "7"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	vs, err := catalog.ReadFile(catalogPath)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if len(vs) != 29 {
		t.Fatalf("catalog has %d vehicles, want 29", len(vs))
	}

	base := filepath.Join(dir, "site")
	if err := runCLI(t, "render", catalogPath, "-f", "html,json,svg", "-o", base, "--category", "carriers"); err != nil {
		t.Fatalf("render: %v", err)
	}
	html, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(html), render.DefaultTitle) {
		t.Error("html output missing page title")
	}
	for _, ext := range []string{".svg", ".layout.json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	// A layout renders without recomputing.
	layoutBase := filepath.Join(dir, "again")
	if err := runCLI(t, "render", base+".layout.json", "-f", "svg", "-o", layoutBase); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	again, _ := os.ReadFile(layoutBase + ".svg")
	first, _ := os.ReadFile(base + ".svg")
	if !bytes.Equal(again, first) {
		t.Error("svg rendered from layout differs from svg rendered from catalog")
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "layout.json")
	if err := runCLI(t, "layout", "--seed", "7", "--viewport", "480", "--pages", "2", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	view, seed, err := render.ReadJSON(data)
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}
	if seed != 7 {
		t.Errorf("seed = %d, want 7", seed)
	}
	if view.Columns != 2 {
		t.Errorf("columns = %d, want 2 on a mobile viewport", view.Columns)
	}
	if view.Displayed != 29 {
		t.Errorf("displayed = %d, want 29 after two pages", view.Displayed)
	}
}

func TestFilterRejectsBadSort(t *testing.T) {
	if err := runCLI(t, "filter", "--seed", "7", "--sort", "price"); err == nil {
		t.Error("filter with an unknown sort should fail")
	}
}

func TestSubmitCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(good, []byte(`{"name":"Dana","email":"dana@example.com","photos":["rotator.jpg"]}`), 0o644)
	os.WriteFile(bad, []byte(`{"name":"","email":"nope","photos":[]}`), 0o644)

	if err := runCLI(t, "submit", good); err != nil {
		t.Errorf("submit valid form: %v", err)
	}
	if err := runCLI(t, "submit", bad); err == nil {
		t.Error("submit invalid form should fail")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigwall.toml")
	if err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if err := runCLI(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show with written file: %v", err)
	}
	if err := runCLI(t, "config", "init", path); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
}
