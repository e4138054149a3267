// Package config loads template documents and run settings.
//
// Template documents may be JSON, YAML or TOML; the file extension picks
// the codec. Run settings merge command-line flags, OMR_-prefixed
// environment variables, an optional config file and built-in defaults,
// in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

// templateDoc mirrors the on-disk template layout.
type templateDoc struct {
	SheetSize       []float64     `mapstructure:"sheet_size"`
	BubbleRadius    float64       `mapstructure:"bubble_radius"`
	FillThreshold   float64       `mapstructure:"fill_threshold"`
	Questions       []questionDoc `mapstructure:"questions"`
	Choices         []string      `mapstructure:"choices"`
	ChoicesQ1       []string      `mapstructure:"choices_q1"`
	Fields          []fieldDoc    `mapstructure:"fields"`
	FirstQuestionID string        `mapstructure:"first_question_id"`
}

type questionDoc struct {
	ID      string      `mapstructure:"id"`
	Bubbles [][]float64 `mapstructure:"bubbles"`
}

type fieldDoc struct {
	ID     string    `mapstructure:"id"`
	Kind   string    `mapstructure:"kind"`
	Region []float64 `mapstructure:"region"`
}

// FormatFromPath returns the viper codec name for a template file.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	}
	return "", fmt.Errorf("unsupported template format %q", filepath.Ext(path))
}

// LoadTemplate reads and validates a template file. A missing file is
// reported as an error wrapping os.ErrNotExist; every other problem with
// the document is an *omr.ConfigError.
func LoadTemplate(path string) (*omr.Template, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &omr.ConfigError{Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return ParseTemplate(data, format)
}

// ParseTemplate decodes a template document in the given format ("json",
// "yaml" or "toml"), applies defaults and validates the result.
func ParseTemplate(data []byte, format string) (*omr.Template, error) {
	v := viper.New()
	v.SetConfigType(format)
	v.SetDefault("fill_threshold", omr.DefaultFillThreshold)
	v.SetDefault("bubble_radius", omr.DefaultBubbleRadius)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &omr.ConfigError{Err: fmt.Errorf("failed to parse %s document: %w", format, err)}
	}
	for _, key := range []string{"sheet_size", "questions", "choices"} {
		if !v.IsSet(key) {
			return nil, &omr.ConfigError{Field: key, Err: errors.New("missing required field")}
		}
	}

	var doc templateDoc
	if err := v.Unmarshal(&doc); err != nil {
		return nil, &omr.ConfigError{Err: fmt.Errorf("failed to decode template: %w", err)}
	}

	tmpl, err := doc.template()
	if err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (d *templateDoc) template() (*omr.Template, error) {
	if len(d.SheetSize) != 2 {
		return nil, &omr.ConfigError{Field: "sheet_size", Err: fmt.Errorf("expected [width, height], got %d values", len(d.SheetSize))}
	}
	w, h := d.SheetSize[0], d.SheetSize[1]
	if w != math.Trunc(w) || h != math.Trunc(h) {
		return nil, &omr.ConfigError{Field: "sheet_size", Err: fmt.Errorf("dimensions must be whole pixels, got %gx%g", w, h)}
	}

	t := &omr.Template{
		SheetWidth:      int(w),
		SheetHeight:     int(h),
		BubbleRadius:    d.BubbleRadius,
		FillThreshold:   d.FillThreshold,
		Choices:         d.Choices,
		ChoicesQ1:       d.ChoicesQ1,
		FirstQuestionID: d.FirstQuestionID,
		Questions:       make([]omr.Question, len(d.Questions)),
	}

	for i, q := range d.Questions {
		bubbles := make([]omr.TemplatePoint, len(q.Bubbles))
		for j, b := range q.Bubbles {
			if len(b) != 2 {
				return nil, &omr.ConfigError{Field: "questions", Err: fmt.Errorf("question %q bubble %d is not an [x, y] pair", q.ID, j)}
			}
			bubbles[j] = omr.TemplatePoint{X: b[0], Y: b[1]}
		}
		t.Questions[i] = omr.Question{ID: q.ID, Bubbles: bubbles}
	}

	for _, f := range d.Fields {
		if len(f.Region) != 4 {
			return nil, &omr.ConfigError{Field: "fields", Err: fmt.Errorf("field %q region must be [x1, y1, x2, y2]", f.ID)}
		}
		t.Fields = append(t.Fields, omr.Field{
			ID:     f.ID,
			Kind:   omr.FieldKind(strings.ToLower(f.Kind)),
			Region: omr.TemplateRect{X1: f.Region[0], Y1: f.Region[1], X2: f.Region[2], Y2: f.Region[3]},
		})
	}
	return t, nil
}
