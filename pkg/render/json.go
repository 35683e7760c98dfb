package render

import (
	"encoding/json"

	"github.com/matzehuels/rigwall/pkg/buildinfo"
	"github.com/matzehuels/rigwall/pkg/gallery"
)

// JSONOption configures JSON rendering.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed    uint64
	compact bool
}

// WithJSONSeed records the catalog seed so the output can be regenerated.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Version string `json:"version"`
	Seed    uint64 `json:"seed,omitempty"`
	gallery.View
}

// RenderJSON exports the view with the generator version and seed.
func RenderJSON(v gallery.View, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Version: buildinfo.Version, Seed: r.seed, View: v}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON parses output of [RenderJSON] back into a view and seed.
func ReadJSON(data []byte) (gallery.View, uint64, error) {
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return gallery.View{}, 0, err
	}
	return out.View, out.Seed, nil
}
