package omr

import (
	"errors"
	"fmt"
)

const (
	// DefaultFillThreshold is the minimum darkness fraction used when a
	// template does not set fill_threshold.
	DefaultFillThreshold = 0.12

	// DefaultBubbleRadius is the reference-space radius used when a
	// template does not set bubble_radius.
	DefaultBubbleRadius = 6.0

	// DefaultFirstQuestionID is the question that maps into ChoicesQ1.
	DefaultFirstQuestionID = "Q1"
)

// TemplatePoint is a bubble centre in template space.
type TemplatePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TemplateRect is a rectangle in template space. (X1, Y1) is inclusive,
// (X2, Y2) is exclusive.
type TemplateRect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Question is one row of bubbles, index-aligned with its choice list.
type Question struct {
	ID      string          `json:"id"`
	Bubbles []TemplatePoint `json:"bubbles"`
}

// FieldKind selects how an identity field is read.
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldBarcode FieldKind = "barcode"
)

// Field is an identity region on the sheet (student number, exam code)
// that is read alongside the bubbles.
type Field struct {
	ID     string       `json:"id"`
	Kind   FieldKind    `json:"kind"`
	Region TemplateRect `json:"region"`
}

// Template is the validated sheet geometry and choice labels. It is
// loaded once per batch and must not be mutated afterwards.
type Template struct {
	SheetWidth    int        `json:"sheet_width"`
	SheetHeight   int        `json:"sheet_height"`
	BubbleRadius  float64    `json:"bubble_radius"`
	FillThreshold float64    `json:"fill_threshold"`
	Questions     []Question `json:"questions"`
	Choices       []string   `json:"choices"`
	ChoicesQ1     []string   `json:"choices_q1,omitempty"`
	Fields        []Field    `json:"fields,omitempty"`

	// FirstQuestionID names the question that uses ChoicesQ1. Empty means
	// DefaultFirstQuestionID.
	FirstQuestionID string `json:"first_question_id,omitempty"`
}

// Validate checks the fields every scan depends on. Any failure is a
// *ConfigError.
func (t *Template) Validate() error {
	if t == nil {
		return &ConfigError{Err: errors.New("template is nil")}
	}
	if t.SheetWidth <= 0 || t.SheetHeight <= 0 {
		return configErrorf("sheet_size", "reference dimensions must be positive, got %dx%d", t.SheetWidth, t.SheetHeight)
	}
	if t.BubbleRadius <= 0 {
		return configErrorf("bubble_radius", "must be positive, got %g", t.BubbleRadius)
	}
	if t.FillThreshold < 0 || t.FillThreshold > 1 {
		return configErrorf("fill_threshold", "must be within [0,1], got %g", t.FillThreshold)
	}
	if len(t.Questions) == 0 {
		return configErrorf("questions", "at least one question is required")
	}
	if len(t.Choices) == 0 {
		return configErrorf("choices", "at least one choice label is required")
	}

	seen := make(map[string]bool, len(t.Questions))
	for i, q := range t.Questions {
		if q.ID == "" {
			return configErrorf("questions", "question %d has no id", i)
		}
		if seen[q.ID] {
			return configErrorf("questions", "duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}

	for i, f := range t.Fields {
		if f.ID == "" {
			return configErrorf("fields", "field %d has no id", i)
		}
		if seen[f.ID] {
			return configErrorf("fields", "field id %q collides with another column", f.ID)
		}
		seen[f.ID] = true
		if f.Kind != FieldText && f.Kind != FieldBarcode {
			return configErrorf("fields", "field %q has unknown kind %q", f.ID, f.Kind)
		}
		if f.Region.X2 <= f.Region.X1 || f.Region.Y2 <= f.Region.Y1 {
			return configErrorf("fields", "field %q has an empty region", f.ID)
		}
	}
	return nil
}

// Check reports non-fatal inconsistencies, such as a question whose bubble
// count differs from its choice list. Answers for such questions are still
// produced; indexes past the end of the list map to the empty label.
func (t *Template) Check() []string {
	var warnings []string
	for _, q := range t.Questions {
		choices := t.ChoicesFor(q.ID)
		if len(q.Bubbles) != len(choices) {
			warnings = append(warnings, fmt.Sprintf("question %s has %d bubbles but %d choices", q.ID, len(q.Bubbles), len(choices)))
		}
	}
	return warnings
}

// FirstQuestion returns the id of the question that uses ChoicesQ1.
func (t *Template) FirstQuestion() string {
	if t.FirstQuestionID == "" {
		return DefaultFirstQuestionID
	}
	return t.FirstQuestionID
}

// ChoicesFor returns the choice labels for a question id.
func (t *Template) ChoicesFor(questionID string) []string {
	if questionID == t.FirstQuestion() && len(t.ChoicesQ1) > 0 {
		return t.ChoicesQ1
	}
	return t.Choices
}

// QuestionIDs returns question ids in template order, which is also the
// output column order.
func (t *Template) QuestionIDs() []string {
	ids := make([]string, len(t.Questions))
	for i, q := range t.Questions {
		ids[i] = q.ID
	}
	return ids
}

// FieldIDs returns identity field ids in template order.
func (t *Template) FieldIDs() []string {
	ids := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		ids[i] = f.ID
	}
	return ids
}
