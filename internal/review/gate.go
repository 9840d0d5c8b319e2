package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"

	"github.com/ticketgate/backend/internal/ai"
	"github.com/ticketgate/backend/internal/checklist"
)

var (
	ErrConfiguration = errors.New("review backend is not configured")
	ErrValidation    = errors.New("invalid review request")
	ErrBackend       = errors.New("review backend failed")
	ErrParse         = errors.New("could not parse review verdict")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type Status string

const (
	StatusOK Status = "OK"
	StatusNG Status = "NG"
)

// Verdict is the outcome of one review. Build it with Approved or Rejected.
type Verdict struct {
	Status   Status   `json:"status"`
	Feedback []string `json:"feedback"`
	Summary  string   `json:"summary,omitempty"`
}

func Approved(summary string) Verdict {
	return Verdict{Status: StatusOK, Feedback: []string{}, Summary: summary}
}

// Rejected returns an NG verdict. Blank items are dropped; callers must
// pass at least one non-blank item.
func Rejected(feedback ...string) Verdict {
	items := make([]string, 0, len(feedback))
	for _, f := range feedback {
		if s := strings.TrimSpace(f); s != "" {
			items = append(items, s)
		}
	}
	return Verdict{Status: StatusNG, Feedback: items}
}

func (v Verdict) OK() bool { return v.Status == StatusOK }

// MarshalJSON always writes summary on OK verdicts and never on NG ones.
func (v Verdict) MarshalJSON() ([]byte, error) {
	feedback := v.Feedback
	if feedback == nil {
		feedback = []string{}
	}
	if v.Status == StatusOK {
		return json.Marshal(struct {
			Status   Status   `json:"status"`
			Feedback []string `json:"feedback"`
			Summary  string   `json:"summary"`
		}{v.Status, feedback, v.Summary})
	}
	return json.Marshal(struct {
		Status   Status   `json:"status"`
		Feedback []string `json:"feedback"`
	}{v.Status, feedback})
}

type Request struct {
	Title    string             `json:"title"`
	Category checklist.Category `json:"category"`
	Content  string             `json:"content"`
	Metadata map[string]string  `json:"metadata,omitempty"`
}

func (r Request) validate() error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return &ValidationError{Field: "title"}
	case strings.TrimSpace(string(r.Category)) == "":
		return &ValidationError{Field: "category"}
	case strings.TrimSpace(r.Content) == "":
		return &ValidationError{Field: "content"}
	}
	return nil
}

// Gate judges whether a ticket's instructions are complete enough for a
// builder to act on. It holds no per-call state and is safe for
// concurrent use.
type Gate struct {
	generator ai.Generator
	logger    zerolog.Logger
}

func NewGate(generator ai.Generator, logger zerolog.Logger) *Gate {
	return &Gate{generator: generator, logger: logger.With().Str("component", "review").Logger()}
}

// Review checks configuration, validates req, calls the generator once
// and decodes its verdict. Configuration and validation failures never
// reach the backend.
func (g *Gate) Review(ctx context.Context, req Request) (Verdict, error) {
	if g == nil || !ai.IsConfigured(g.generator) {
		return Verdict{}, ErrConfiguration
	}
	if err := req.validate(); err != nil {
		return Verdict{}, err
	}

	fieldOrder := make([]string, 0)
	for _, f := range checklist.TemplateFieldsFor(req.Category) {
		fieldOrder = append(fieldOrder, f.Name)
	}
	system := BuildSystemInstruction(req.Category)
	payload := BuildUserPayload(req.Title, req.Content, req.Metadata, fieldOrder)

	start := time.Now()
	text, err := g.generator.Generate(ctx, system, payload)
	if err != nil {
		g.logger.Warn().Err(err).Str("category", string(req.Category)).Dur("latency", time.Since(start)).Msg("review backend call failed")
		return Verdict{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	v, err := ParseVerdict(text)
	if err != nil {
		g.logger.Warn().Err(err).Str("category", string(req.Category)).Int("response_len", len(text)).Msg("review verdict unreadable")
		return Verdict{}, err
	}
	g.logger.Info().
		Str("category", string(req.Category)).
		Str("status", string(v.Status)).
		Int("feedback", len(v.Feedback)).
		Dur("latency", time.Since(start)).
		Msg("review completed")
	return v, nil
}

type rawVerdict struct {
	Status   string   `json:"status"`
	Feedback []string `json:"feedback"`
	Summary  *string  `json:"summary"`
}

// ParseVerdict extracts the JSON object spanning the first '{' to the
// last '}' of text and maps it to a Verdict. Comments and trailing
// commas inside the object are tolerated. Status must be exactly "OK"
// or "NG".
func ParseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Verdict{}, fmt.Errorf("%w: no json object in response", ErrParse)
	}

	// the whole span must be one object; a second verdict after the first is malformed
	var raw rawVerdict
	if err := json.Unmarshal(jsonc.ToJSON([]byte(text[start:end+1])), &raw); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	switch Status(raw.Status) {
	case StatusOK:
		summary := ""
		if raw.Summary != nil {
			summary = strings.TrimSpace(*raw.Summary)
		}
		return Approved(summary), nil
	case StatusNG:
		v := Rejected(raw.Feedback...)
		if len(v.Feedback) == 0 {
			return Verdict{}, fmt.Errorf("%w: NG verdict without feedback", ErrParse)
		}
		return v, nil
	default:
		return Verdict{}, fmt.Errorf("%w: unknown status %q", ErrParse, raw.Status)
	}
}
