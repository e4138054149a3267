package omr

import (
	"errors"
	"testing"
)

// markedSheet renders sampleTemplate at 2x scale with the given bubble
// filled for each question id.
func markedSheet(t *testing.T, tmpl *Template, marks map[string]int) rgbaSampler {
	t.Helper()
	s, err := Scale(tmpl.SheetWidth*2, tmpl.SheetHeight*2, tmpl)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	img := newCanvas(tmpl.SheetWidth*2, tmpl.SheetHeight*2, white)
	for _, q := range s.Questions {
		idx, ok := marks[q.ID]
		if !ok {
			continue
		}
		b := q.Bubbles[idx]
		fillDisk(img, b.X, b.Y, s.Radius/2, black)
	}
	return rgbaSampler{img}
}

func TestScanSheet(t *testing.T) {
	tmpl := sampleTemplate()
	sampler := markedSheet(t, tmpl, map[string]int{"Q1": 3, "Q2": 4})

	sheet, err := ScanSheet("sheet-001.png", sampler, tmpl)
	if err != nil {
		t.Fatalf("ScanSheet failed: %v", err)
	}

	if sheet.Radius != 6 {
		t.Errorf("Radius: got %d, want 6", sheet.Radius)
	}

	res := sheet.Result()
	want := map[string]string{"Q1": "3", "Q2": "E", "Q3": ""}
	for qid, w := range want {
		if got := res.Answers[qid]; got != w {
			t.Errorf("%s: got %q, want %q", qid, got, w)
		}
	}
	if res.File != "sheet-001.png" {
		t.Errorf("File: got %q", res.File)
	}
	if res.Failed() {
		t.Errorf("result should not be failed: %v", res.Err)
	}

	q3 := sheet.Question("Q3")
	if q3 == nil {
		t.Fatal("Question(Q3) returned nil")
	}
	if q3.Selected != NoSelection {
		t.Errorf("Q3 Selected: got %d, want NoSelection", q3.Selected)
	}
}

func TestScanSheet_QuestionOrder(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Questions[0], tmpl.Questions[2] = tmpl.Questions[2], tmpl.Questions[0]

	sheet, err := ScanSheet("a.png", markedSheet(t, tmpl, nil), tmpl)
	if err != nil {
		t.Fatalf("ScanSheet failed: %v", err)
	}
	rows := sheet.DebugRows()
	for i, id := range tmpl.QuestionIDs() {
		if rows[i].QuestionID != id {
			t.Errorf("row %d: got %s, want %s", i, rows[i].QuestionID, id)
		}
	}
}

func TestScanSheet_ZeroBubbles(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.Questions = append(tmpl.Questions, Question{ID: "Q4"})

	sheet, err := ScanSheet("a.png", markedSheet(t, tmpl, nil), tmpl)
	if err != nil {
		t.Fatalf("ScanSheet failed: %v", err)
	}
	if got, ok := sheet.Result().Answers["Q4"]; !ok || got != "" {
		t.Errorf("Q4: got %q (present=%v), want empty label", got, ok)
	}
}

func TestScanSheet_InvalidTemplate(t *testing.T) {
	tmpl := sampleTemplate()
	tmpl.SheetWidth = 0

	_, err := ScanSheet("a.png", rgbaSampler{newCanvas(10, 10, white)}, tmpl)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestDebugRow_Strings(t *testing.T) {
	row := DebugRow{
		File:       "a.png",
		QuestionID: "Q2",
		Coords:     []Point{{X: 12, Y: 34}, {X: 56, Y: 78}},
		Scores:     []float64{0.1234, 0, 1},
	}
	if got := row.CoordsString(); got != "[[12, 34], [56, 78]]" {
		t.Errorf("CoordsString: got %q", got)
	}
	if got := row.ScoresString(); got != "0.123,0.000,1.000" {
		t.Errorf("ScoresString: got %q", got)
	}

	empty := DebugRow{}
	if got := empty.CoordsString(); got != "[]" {
		t.Errorf("empty CoordsString: got %q", got)
	}
	if got := empty.ScoresString(); got != "" {
		t.Errorf("empty ScoresString: got %q", got)
	}
}

func TestErrorResult(t *testing.T) {
	err := &DecodeError{File: "b.png", Err: errors.New("unexpected EOF")}
	res := ErrorResult("b.png", err)

	if !res.Failed() {
		t.Error("ErrorResult should be failed")
	}
	if res.Error != "decode b.png: unexpected EOF" {
		t.Errorf("Error: got %q", res.Error)
	}
	var decErr *DecodeError
	if !errors.As(res.Err, &decErr) {
		t.Error("Err should unwrap to *DecodeError")
	}
}
