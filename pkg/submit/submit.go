// Package submit validates visitor photo submissions and acknowledges them.
//
// There is no upload transport. A submission is checked against an embedded
// JSON Schema and, when valid, answered with a [Receipt] carrying the
// thank-you message shown to the visitor.
package submit

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
)

// ThankYou is the acknowledgement shown after a valid submission.
const ThankYou = "Thank you for submitting your photos! We will review them and add them to the gallery soon."

// MaxPhotos is the largest number of photos per submission.
const MaxPhotos = 10

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "rigwall/submission.json"

// Submission is the photo submission form.
type Submission struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Company string   `json:"company,omitempty"`
	Vehicle string   `json:"vehicle,omitempty"`
	Message string   `json:"message,omitempty"`
	Photos  []string `json:"photos"`
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID         uuid.UUID `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Photos     int       `json:"photos"`
	Message    string    `json:"message"`
}

// FieldError is one failed constraint, keyed by form field ("" for the
// whole form).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed constraint of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Field == "" {
			parts[i] = f.Message
		} else {
			parts[i] = f.Field + ": " + f.Message
		}
	}
	return strings.Join(parts, "; ")
}

// Desk validates and accepts submissions. It is safe for concurrent use.
type Desk struct {
	schema *jsonschema.Schema
	now    func() time.Time
	logger *log.Logger
}

// Option configures a Desk.
type Option func(*Desk)

// WithClock overrides the receipt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Desk) { d.now = now }
}

// WithLogger sets the logger for accepted submissions.
func WithLogger(l *log.Logger) Option {
	return func(d *Desk) { d.logger = l }
}

// NewDesk compiles the submission schema.
func NewDesk(opts ...Option) (*Desk, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add submission schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile submission schema: %w", err)
	}

	d := &Desk{schema: schema, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return d, nil
}

// Decode reads a JSON submission and validates it as sent, so unknown
// fields and wrong types are reported rather than silently dropped.
func (d *Desk) Decode(r io.Reader) (Submission, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Submission{}, fmt.Errorf("read submission: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Submission{}, rwerrors.Wrap(rwerrors.ErrCodeInvalidSubmission, err, "submission is not valid JSON")
	}
	if err := d.validate(raw); err != nil {
		return Submission{}, err
	}
	var s Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return Submission{}, rwerrors.Wrap(rwerrors.ErrCodeInvalidSubmission, err, "decode submission")
	}
	return s, nil
}

// Validate checks s against the schema. The error wraps a
// [*ValidationError] and carries code INVALID_SUBMISSION.
func (d *Desk) Validate(s Submission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	return d.validate(raw)
}

func (d *Desk) validate(raw any) error {
	err := d.schema.Validate(raw)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return rwerrors.Wrap(rwerrors.ErrCodeInvalidSubmission, err, "invalid submission")
	}
	return rwerrors.Wrap(rwerrors.ErrCodeInvalidSubmission, &ValidationError{Fields: fieldErrors(ve)}, "invalid submission")
}

// fieldErrors flattens the schema error tree into its leaves.
func fieldErrors(ve *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, FieldError{Field: fieldName(e.InstanceLocation), Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// fieldName turns a JSON pointer ("/photos/2") into its top-level field.
func fieldName(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	name, _, _ := strings.Cut(ptr, "/")
	return name
}

// Accept validates s and issues a receipt.
func (d *Desk) Accept(ctx context.Context, s Submission) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if err := d.Validate(s); err != nil {
		return Receipt{}, err
	}
	r := Receipt{
		ID:         uuid.New(),
		ReceivedAt: d.now().UTC(),
		Photos:     len(s.Photos),
		Message:    ThankYou,
	}
	d.logger.Info("photo submission received", "id", r.ID, "photos", r.Photos, "company", s.Company)
	return r, nil
}
