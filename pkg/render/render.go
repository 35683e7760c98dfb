package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/gallery"
)

// Format names.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
)

// Formats lists every supported format.
var Formats = []string{FormatHTML, FormatSVG, FormatJSON, FormatPNG}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatHTML: "text/html; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatPNG:  "image/png",
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return rwerrors.New(rwerrors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ParseFormats splits a comma separated list ("html,png"), dropping blanks
// and duplicates.
func ParseFormats(list string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, rwerrors.New(rwerrors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}

// Options collects the per-format options for [Render].
type Options struct {
	HTML []HTMLOption
	SVG  []SVGOption
	JSON []JSONOption
	PNG  []PNGOption
}

// Render produces every requested format, keyed by format name.
func Render(ctx context.Context, v gallery.View, formats []string, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatHTML:
			data, err = RenderHTML(v, opts.HTML...)
		case FormatSVG:
			data = RenderSVG(v, opts.SVG...)
		case FormatJSON:
			data, err = RenderJSON(v, opts.JSON...)
		case FormatPNG:
			data, err = RenderPNG(ctx, v, opts.PNG...)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}
