package omr

import (
	"fmt"
	"strings"
)

// QuestionScore is the full scoring trace for one question of one sheet.
type QuestionScore struct {
	ID       string    `json:"id"`
	Bubbles  []Point   `json:"bubbles"`
	Scores   []float64 `json:"scores"`
	Selected int       `json:"selected"`
	Answer   string    `json:"answer"`
}

// Sheet is the scored form of one image.
type Sheet struct {
	File      string          `json:"file"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Radius    int             `json:"radius"`
	Scaling   *Scaling        `json:"-"`
	Questions []QuestionScore `json:"questions"`
}

// ScanResult is the terminal per-image artifact: one answer label per
// question id ("" when nothing cleared the threshold), identity fields,
// and the error that replaced the answers when the image failed.
type ScanResult struct {
	File    string            `json:"file"`
	Answers map[string]string `json:"answers,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether the image produced an error instead of answers.
func (r ScanResult) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// ErrorResult builds the ScanResult for an image that failed.
func ErrorResult(file string, err error) ScanResult {
	return ScanResult{File: file, Error: err.Error(), Err: err}
}

// DebugRow is the diagnostic record for one question of one image.
type DebugRow struct {
	File       string    `json:"file"`
	QuestionID string    `json:"qid"`
	Coords     []Point   `json:"coords"`
	Scores     []float64 `json:"scores"`
}

// CoordsString renders the scaled coordinates as "[[x, y], [x, y]]".
func (d DebugRow) CoordsString() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range d.Coords {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[%d, %d]", p.X, p.Y)
	}
	b.WriteByte(']')
	return b.String()
}

// ScoresString renders the scores as comma-separated 3-decimal values.
func (d DebugRow) ScoresString() string {
	parts := make([]string, len(d.Scores))
	for i, s := range d.Scores {
		parts[i] = fmt.Sprintf("%.3f", s)
	}
	return strings.Join(parts, ",")
}

// ScanSheet scales t onto s and scores every question in template order.
// The returned error is a *ConfigError for a template with invalid sheet
// dimensions and a plain error for an image with no pixels.
func ScanSheet(file string, s PixelSampler, t *Template) (*Sheet, error) {
	scaling, err := Scale(s.Width(), s.Height(), t)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		File:      file,
		Width:     s.Width(),
		Height:    s.Height(),
		Radius:    scaling.Radius,
		Scaling:   scaling,
		Questions: make([]QuestionScore, len(scaling.Questions)),
	}
	for i, q := range scaling.Questions {
		scores := ScoreQuestion(s, q, scaling.Radius)
		selected := SelectIndex(scores, t.FillThreshold)
		sheet.Questions[i] = QuestionScore{
			ID:       q.ID,
			Bubbles:  q.Bubbles,
			Scores:   scores,
			Selected: selected,
			Answer:   t.Label(q.ID, selected),
		}
	}
	return sheet, nil
}

// Result converts the sheet into its ScanResult.
func (s *Sheet) Result() ScanResult {
	answers := make(map[string]string, len(s.Questions))
	for _, q := range s.Questions {
		answers[q.ID] = q.Answer
	}
	return ScanResult{File: s.File, Answers: answers}
}

// DebugRows returns one diagnostic row per question in template order.
func (s *Sheet) DebugRows() []DebugRow {
	rows := make([]DebugRow, len(s.Questions))
	for i, q := range s.Questions {
		rows[i] = DebugRow{File: s.File, QuestionID: q.ID, Coords: q.Bubbles, Scores: q.Scores}
	}
	return rows
}

// Question returns the score trace for id, or nil.
func (s *Sheet) Question(id string) *QuestionScore {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
