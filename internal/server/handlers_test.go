package server

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

// testTemplateJSON describes a 100x50 sheet with two five-choice
// questions whose bubbles sit 15 units apart.
const testTemplateJSON = `{
  "sheet_size": [100, 50],
  "bubble_radius": 3,
  "questions": [
    {"id": "Q1", "bubbles": [[10, 15], [25, 15], [40, 15], [55, 15], [70, 15]]},
    {"id": "Q2", "bubbles": [[10, 35], [25, 35], [40, 35], [55, 35], [70, 35]]}
  ],
  "choices": ["A", "B", "C", "D", "E"]
}`

// writeFixture writes the template and one 200x100 sheet with Q1=B and
// Q2 blank into a temp dir and returns their paths.
func writeFixture(t *testing.T) (templatePath, sheetPath string) {
	t.Helper()
	dir := t.TempDir()

	templatePath = filepath.Join(dir, "template.json")
	if err := os.WriteFile(templatePath, []byte(testTemplateJSON), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	// Q1 bubble 1 scales to (50, 30) with radius 6; mark the inner half.
	region := omr.CircleRegion(50, 30, 3, 200, 100)
	for _, s := range region.Spans {
		for x := s.X0; x <= s.X1; x++ {
			img.SetRGBA(x, s.Y, color.RGBA{0, 0, 0, 255})
		}
	}

	sheetPath = filepath.Join(dir, "scans", "sheet-001.png")
	if err := os.MkdirAll(filepath.Dir(sheetPath), 0o755); err != nil {
		t.Fatalf("failed to create scans folder: %v", err)
	}
	f, err := os.Create(sheetPath)
	if err != nil {
		t.Fatalf("failed to create sheet: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode sheet: %v", err)
	}
	return templatePath, sheetPath
}

// callTool runs one tools/call round trip and decodes the text payload.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()
	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode %s result: %v", name, err)
	}
	return resp
}

func TestHandleToolsCall_TemplateValidate(t *testing.T) {
	tmplPath, _ := writeFixture(t)
	s := New(nil, nil)

	var rep TemplateReport
	callTool(t, s, "omr_template_validate", map[string]interface{}{"template": tmplPath}, &rep)
	if !rep.Valid {
		t.Fatalf("template should be valid: %s", rep.Error)
	}
	if strings.Join(rep.Questions, ",") != "Q1,Q2" {
		t.Errorf("Questions: got %v", rep.Questions)
	}
	if rep.FillThreshold != omr.DefaultFillThreshold {
		t.Errorf("FillThreshold: got %g", rep.FillThreshold)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"sheet_size": [0, 0], "questions": [], "choices": []}`), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	rep = TemplateReport{}
	resp := callTool(t, s, "omr_template_validate", map[string]interface{}{"template": bad}, &rep)
	if resp.Error != nil {
		t.Fatalf("invalid template should not be a protocol error: %+v", resp.Error)
	}
	if rep.Valid || rep.Error == "" {
		t.Errorf("expected valid=false with a reason, got %+v", rep)
	}
}

func TestHandleToolsCall_ScanSheet(t *testing.T) {
	tmplPath, sheetPath := writeFixture(t)
	overlay := filepath.Join(t.TempDir(), "overlay.png")

	var rep SheetReport
	resp := callTool(t, New(nil, nil), "omr_scan_sheet", map[string]interface{}{
		"template":      tmplPath,
		"path":          sheetPath,
		"overlay_path":  overlay,
		"include_debug": true,
	}, &rep)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	if rep.Result.File != "sheet-001.png" {
		t.Errorf("File: got %q, want sheet-001.png", rep.Result.File)
	}
	if rep.Result.Answers["Q1"] != "B" || rep.Result.Answers["Q2"] != "" {
		t.Errorf("answers: got %v", rep.Result.Answers)
	}
	if len(rep.Debug) != 2 {
		t.Errorf("debug rows: got %d, want 2", len(rep.Debug))
	}
	if rep.OverlayPath != overlay {
		t.Errorf("OverlayPath: got %q", rep.OverlayPath)
	}
	if _, err := os.Stat(overlay); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestHandleToolsCall_ScanSheetMissingImage(t *testing.T) {
	tmplPath, _ := writeFixture(t)

	var rep SheetReport
	callTool(t, New(nil, nil), "omr_scan_sheet", map[string]interface{}{
		"template": tmplPath,
		"path":     "/nonexistent/sheet.png",
	}, &rep)
	if rep.Result.Error == "" {
		t.Error("missing image should produce a result error")
	}
}

func TestHandleToolsCall_ScanBatch(t *testing.T) {
	tmplPath, sheetPath := writeFixture(t)
	scans := filepath.Dir(sheetPath)
	if err := os.WriteFile(filepath.Join(scans, "sheet-002.png"), []byte("corrupt"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt sheet: %v", err)
	}
	outDir := t.TempDir()
	output := filepath.Join(outDir, "results.csv")
	debug := filepath.Join(outDir, "scores_debug.csv")

	var rep BatchReport
	resp := callTool(t, New(nil, nil), "omr_scan_batch", map[string]interface{}{
		"template":     tmplPath,
		"scans":        scans,
		"output":       output,
		"debug_output": debug,
		"workers":      2,
	}, &rep)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if rep.Images != 2 || rep.Failed != 1 {
		t.Errorf("summary: got %d images, %d failed", rep.Images, rep.Failed)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("results not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || lines[0] != "file,Q1,Q2" {
		t.Fatalf("unexpected results:\n%s", data)
	}
	if !strings.HasSuffix(lines[1], "sheet-001.png,B,") || !strings.HasSuffix(lines[2], "sheet-002.png,,") {
		t.Errorf("unexpected rows:\n%s", data)
	}

	dbg, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("debug rows not written: %v", err)
	}
	if !strings.HasPrefix(string(dbg), "file,qid,coords,scores\n") {
		t.Errorf("unexpected debug header:\n%s", dbg)
	}
}

func TestHandleToolsCall_ScanBatchEmptyFolder(t *testing.T) {
	tmplPath, _ := writeFixture(t)
	resp := callTool(t, New(nil, nil), "omr_scan_batch", map[string]interface{}{
		"template": tmplPath,
		"scans":    t.TempDir(),
		"output":   filepath.Join(t.TempDir(), "results.csv"),
	}, nil)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected tool error for an empty folder, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_BubbleScores(t *testing.T) {
	tmplPath, sheetPath := writeFixture(t)

	var rep BubbleScores
	callTool(t, New(nil, nil), "omr_bubble_scores", map[string]interface{}{
		"template": tmplPath,
		"path":     sheetPath,
		"question": "Q1",
	}, &rep)

	if len(rep.Scores) != 5 {
		t.Fatalf("scores: got %v", rep.Scores)
	}
	if rep.Selected != 1 || rep.Answer != "B" {
		t.Errorf("selection: got %d/%q, want 1/B", rep.Selected, rep.Answer)
	}
	if rep.Scores[1] <= rep.Threshold {
		t.Errorf("marked score %f should exceed threshold %f", rep.Scores[1], rep.Threshold)
	}
	if rep.Radius != 6 {
		t.Errorf("Radius: got %d, want 6", rep.Radius)
	}
	if rep.Bubbles[1] != (omr.Point{X: 50, Y: 30}) {
		t.Errorf("bubble centre: got %+v", rep.Bubbles[1])
	}
}

func TestHandleToolsCall_BubbleScoresUnknownQuestion(t *testing.T) {
	tmplPath, sheetPath := writeFixture(t)
	resp := callTool(t, New(nil, nil), "omr_bubble_scores", map[string]interface{}{
		"template": tmplPath,
		"path":     sheetPath,
		"question": "Q9",
	}, nil)
	if resp.Error == nil {
		t.Error("expected an error for an unknown question")
	}
}

func TestHandleToolsCall_CropBubble(t *testing.T) {
	tmplPath, sheetPath := writeFixture(t)

	var rep struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
	}
	callTool(t, New(nil, nil), "omr_crop_bubble", map[string]interface{}{
		"template": tmplPath,
		"path":     sheetPath,
		"question": "Q1",
		"bubble":   1,
		"scale":    2,
	}, &rep)

	// 13x13 window doubled.
	if rep.Width != 26 || rep.Height != 26 {
		t.Errorf("dimensions: got %dx%d, want 26x26", rep.Width, rep.Height)
	}
	if _, err := base64.StdEncoding.DecodeString(rep.ImageBase64); err != nil {
		t.Errorf("invalid base64: %v", err)
	}

	resp := callTool(t, New(nil, nil), "omr_crop_bubble", map[string]interface{}{
		"template": tmplPath,
		"path":     sheetPath,
		"question": "Q1",
		"bubble":   5,
	}, nil)
	if resp.Error == nil {
		t.Error("expected an error for a bubble index past the end")
	}
}

func TestHandleToolsCall_ImageTools(t *testing.T) {
	_, sheetPath := writeFixture(t)
	s := New(nil, nil)

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	callTool(t, s, "image_load", map[string]interface{}{"path": sheetPath}, &info)
	if info.Width != 200 || info.Height != 100 || info.Format != "png" {
		t.Errorf("image_load: got %+v", info)
	}

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	callTool(t, s, "image_dimensions", map[string]interface{}{"path": sheetPath}, &dims)
	if dims.Width != 200 || dims.Height != 100 {
		t.Errorf("image_dimensions: got %+v", dims)
	}

	var col struct {
		Hex       string  `json:"hex"`
		Luminance float64 `json:"luminance"`
	}
	callTool(t, s, "image_sample_color", map[string]interface{}{"path": sheetPath, "x": 50, "y": 30}, &col)
	if col.Hex != "#000000" || col.Luminance != 0 {
		t.Errorf("image_sample_color: got %+v", col)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New(nil, nil)
	tests := []struct {
		name     string
		params   string
		wantCode int
	}{
		{"invalid params", `not json`, -32602},
		{"unknown tool", `{"name":"image_explode","arguments":{}}`, -32000},
		{"missing arguments", `{"name":"image_load"}`, -32000},
		{"missing file", `{"name":"image_dimensions","arguments":{"path":"/nonexistent.png"}}`, -32000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(tt.params)})
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("got %+v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}
