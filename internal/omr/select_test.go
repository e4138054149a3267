package omr

import "testing"

func TestBestIndex(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"empty", nil, NoSelection},
		{"single", []float64{0.4}, 0},
		{"clear winner", []float64{0.1, 0.5, 0.2}, 1},
		{"tie goes to lowest index", []float64{0.30, 0.30, 0.10}, 0},
		{"later tie does not displace", []float64{0.1, 0.6, 0.2, 0.6}, 1},
		{"all zero", []float64{0, 0, 0, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestIndex(tt.scores); got != tt.want {
				t.Errorf("BestIndex(%v): got %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}

func TestSelectIndex_Threshold(t *testing.T) {
	const threshold = 0.12
	tests := []struct {
		name   string
		scores []float64
		thr    float64
		want   int
	}{
		{"tied maxima above threshold", []float64{0.30, 0.30, 0.10}, threshold, 0},
		{"exactly at threshold", []float64{0.05, threshold, 0.01}, threshold, NoSelection},
		{"just above threshold", []float64{0.05, threshold + 1e-9, 0.01}, threshold, 1},
		{"all zero, positive threshold", []float64{0, 0, 0}, threshold, NoSelection},
		{"all zero, zero threshold", []float64{0, 0, 0}, 0, NoSelection},
		{"no bubbles", []float64{}, threshold, NoSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectIndex(tt.scores, tt.thr); got != tt.want {
				t.Errorf("SelectIndex(%v, %g): got %d, want %d", tt.scores, tt.thr, got, tt.want)
			}
		})
	}
}

// selectAnswer runs the same selection ScanSheet applies to one question.
func selectAnswer(tmpl *Template, questionID string, scores []float64) string {
	return tmpl.Label(questionID, SelectIndex(scores, tmpl.FillThreshold))
}

func TestSelect_FirstQuestionMapping(t *testing.T) {
	tmpl := sampleTemplate()

	scores := make([]float64, 11)
	scores[7] = 0.8

	if got := selectAnswer(tmpl, "Q1", scores); got != "7" {
		t.Errorf("Q1: got %q, want %q from choices_q1", got, "7")
	}
	// The same index on an ordinary question is past the five-choice list.
	if got := selectAnswer(tmpl, "Q2", scores); got != "" {
		t.Errorf("Q2: got %q, want empty label", got)
	}
}

func TestSelect_FirstQuestionFallback(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.ChoicesQ1 = nil

	if got := selectAnswer(tmpl, "Q1", []float64{0, 0, 0.5, 0, 0}); got != "C" {
		t.Errorf("Q1 without choices_q1: got %q, want C", got)
	}
}

func TestSelect_CustomFirstQuestion(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.FirstQuestionID = "Q3"

	scores := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.9}
	if got := selectAnswer(tmpl, "Q3", scores); got != "10" {
		t.Errorf("Q3 as first question: got %q, want 10", got)
	}
	if got := selectAnswer(tmpl, "Q1", scores); got != "" {
		t.Errorf("Q1 after reassignment: got %q, want empty label", got)
	}
}

func TestLabel(t *testing.T) {
	tmpl := sampleTemplate()
	tests := []struct {
		name  string
		qid   string
		index int
		want  string
	}{
		{"ordinary", "Q2", 4, "E"},
		{"no selection", "Q2", NoSelection, ""},
		{"past end", "Q2", 5, ""},
		{"first question", "Q1", 10, "10"},
		{"first question past end", "Q1", 11, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tmpl.Label(tt.qid, tt.index); got != tt.want {
				t.Errorf("Label(%s, %d): got %q, want %q", tt.qid, tt.index, got, tt.want)
			}
		})
	}
}
