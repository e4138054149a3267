package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/ironsheep/omr-scanner/internal/batch"
	"github.com/ironsheep/omr-scanner/internal/config"
	"github.com/ironsheep/omr-scanner/internal/imaging"
	"github.com/ironsheep/omr-scanner/internal/omr"
	"github.com/ironsheep/omr-scanner/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_scan_sheet", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Scanning
	case "omr_template_validate":
		return s.handleTemplateValidate(args)
	case "omr_scan_sheet":
		return s.handleScanSheet(args)
	case "omr_scan_batch":
		return s.handleScanBatch(args)

	// Template tuning
	case "omr_bubble_scores":
		return s.handleBubbleScores(args)
	case "omr_crop_bubble":
		return s.handleCropBubble(args)

	// Image inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Scanning Handlers ===

type templateArgs struct {
	Template string `json:"template"`
}

// TemplateReport summarises a template for omr_template_validate.
type TemplateReport struct {
	Valid         bool     `json:"valid"`
	Error         string   `json:"error,omitempty"`
	SheetWidth    int      `json:"sheet_width,omitempty"`
	SheetHeight   int      `json:"sheet_height,omitempty"`
	BubbleRadius  float64  `json:"bubble_radius,omitempty"`
	FillThreshold float64  `json:"fill_threshold,omitempty"`
	Questions     []string `json:"questions,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

func (s *Server) handleTemplateValidate(args json.RawMessage) (interface{}, error) {
	var a templateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tmpl, err := config.LoadTemplate(a.Template)
	if err != nil {
		return &TemplateReport{Valid: false, Error: err.Error()}, nil
	}
	return &TemplateReport{
		Valid:         true,
		SheetWidth:    tmpl.SheetWidth,
		SheetHeight:   tmpl.SheetHeight,
		BubbleRadius:  tmpl.BubbleRadius,
		FillThreshold: tmpl.FillThreshold,
		Questions:     tmpl.QuestionIDs(),
		Fields:        tmpl.FieldIDs(),
		Warnings:      tmpl.Check(),
	}, nil
}

type scanSheetArgs struct {
	Template     string `json:"template"`
	Path         string `json:"path"`
	OverlayPath  string `json:"overlay_path"`
	IncludeDebug bool   `json:"include_debug"`
}

// SheetReport is the omr_scan_sheet result.
type SheetReport struct {
	Result      omr.ScanResult `json:"result"`
	Debug       []omr.DebugRow `json:"debug,omitempty"`
	OverlayPath string         `json:"overlay_path,omitempty"`
}

// overlayFile writes the overlay of a single sheet to a fixed path.
type overlayFile string

func (p overlayFile) WriteOverlay(_ string, img image.Image, sheet *omr.Sheet) error {
	return imaging.SaveOverlay(string(p), img, sheet)
}

func (s *Server) handleScanSheet(args json.RawMessage) (interface{}, error) {
	var a scanSheetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tmpl, err := config.LoadTemplate(a.Template)
	if err != nil {
		return nil, err
	}

	d := &batch.Driver{
		Template: tmpl,
		Workers:  1,
		Debug:    a.IncludeDebug,
		Fields:   s.fields,
		Logger:   s.logger,
	}
	if a.OverlayPath != "" {
		d.Overlays = overlayFile(a.OverlayPath)
	}

	src := batch.Source{ID: filepath.Base(a.Path), Load: func() (image.Image, error) { return s.cache.Load(a.Path) }}
	out, err := d.Run(context.Background(), []batch.Source{src})
	if err != nil {
		return nil, err
	}

	rep := &SheetReport{Result: out.Results[0], Debug: out.Debug}
	if a.OverlayPath != "" && !rep.Result.Failed() {
		rep.OverlayPath = a.OverlayPath
	}
	return rep, nil
}

type scanBatchArgs struct {
	Template    string `json:"template"`
	Scans       string `json:"scans"`
	Pattern     string `json:"pattern"`
	Output      string `json:"output"`
	DebugOutput string `json:"debug_output"`
	OverlayDir  string `json:"overlay_dir"`
	Workers     int    `json:"workers"`
	ErrorColumn bool   `json:"error_column"`
}

// BatchReport is the omr_scan_batch result.
type BatchReport struct {
	Images      int              `json:"images"`
	Failed      int              `json:"failed"`
	Output      string           `json:"output"`
	DebugOutput string           `json:"debug_output,omitempty"`
	Results     []omr.ScanResult `json:"results"`
}

func (s *Server) handleScanBatch(args json.RawMessage) (interface{}, error) {
	var a scanBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Pattern == "" {
		a.Pattern = config.DefaultPattern
	}
	if a.Output == "" {
		return nil, errors.New("output path is required")
	}

	tmpl, err := config.LoadTemplate(a.Template)
	if err != nil {
		return nil, err
	}
	paths, err := batch.FindScans(a.Scans, a.Pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matching %s in %s", a.Pattern, a.Scans)
	}

	d := &batch.Driver{
		Template: tmpl,
		Workers:  a.Workers,
		Debug:    a.DebugOutput != "",
		Fields:   s.fields,
		Logger:   s.logger,
	}
	if a.OverlayDir != "" {
		if err := os.MkdirAll(a.OverlayDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create overlay folder: %w", err)
		}
		d.Overlays = batch.OverlayDir(a.OverlayDir)
	}

	out, err := d.Run(context.Background(), batch.FileSources(paths))
	if err != nil {
		return nil, err
	}

	opts := report.ResultsOptions{
		FieldIDs:    tmpl.FieldIDs(),
		QuestionIDs: tmpl.QuestionIDs(),
		ErrorColumn: a.ErrorColumn,
	}
	if err := report.WriteFile(a.Output, func(w io.Writer) error {
		return report.WriteResults(w, out.Results, opts)
	}); err != nil {
		return nil, err
	}
	if d.Debug {
		if err := report.WriteFile(a.DebugOutput, func(w io.Writer) error {
			return report.WriteDebug(w, out.Debug)
		}); err != nil {
			return nil, err
		}
	}

	return &BatchReport{
		Images:      len(out.Results),
		Failed:      out.Failed(),
		Output:      a.Output,
		DebugOutput: a.DebugOutput,
		Results:     out.Results,
	}, nil
}

// === Template Tuning Handlers ===

type bubbleArgs struct {
	Template string  `json:"template"`
	Path     string  `json:"path"`
	Question string  `json:"question"`
	Bubble   int     `json:"bubble"`
	Pad      int     `json:"pad"`
	Scale    float64 `json:"scale"`
}

// BubbleScores is the omr_bubble_scores result.
type BubbleScores struct {
	omr.QuestionScore
	Radius    int      `json:"radius"`
	Threshold float64  `json:"threshold"`
	Choices   []string `json:"choices"`
}

// scoreSheet loads the template and image and scores the whole sheet.
func (s *Server) scoreSheet(templatePath, imagePath string) (*omr.Template, image.Image, *omr.Sheet, error) {
	tmpl, err := config.LoadTemplate(templatePath)
	if err != nil {
		return nil, nil, nil, err
	}
	img, err := s.cache.Load(imagePath)
	if err != nil {
		return nil, nil, nil, &omr.DecodeError{File: imagePath, Err: err}
	}
	sheet, err := omr.ScanSheet(imagePath, imaging.NewSampler(img), tmpl)
	if err != nil {
		return nil, nil, nil, err
	}
	return tmpl, img, sheet, nil
}

func (s *Server) handleBubbleScores(args json.RawMessage) (interface{}, error) {
	var a bubbleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tmpl, _, sheet, err := s.scoreSheet(a.Template, a.Path)
	if err != nil {
		return nil, err
	}
	q := sheet.Question(a.Question)
	if q == nil {
		return nil, fmt.Errorf("unknown question: %s", a.Question)
	}
	return &BubbleScores{
		QuestionScore: *q,
		Radius:        sheet.Radius,
		Threshold:     tmpl.FillThreshold,
		Choices:       tmpl.ChoicesFor(q.ID),
	}, nil
}

func (s *Server) handleCropBubble(args json.RawMessage) (interface{}, error) {
	var a bubbleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 4.0
	}
	if a.Pad < 0 {
		a.Pad = 0
	}
	_, img, sheet, err := s.scoreSheet(a.Template, a.Path)
	if err != nil {
		return nil, err
	}
	q := sheet.Question(a.Question)
	if q == nil {
		return nil, fmt.Errorf("unknown question: %s", a.Question)
	}
	if a.Bubble < 0 || a.Bubble >= len(q.Bubbles) {
		return nil, fmt.Errorf("question %s has no bubble %d", q.ID, a.Bubble)
	}
	return imaging.CropBubble(img, q.Bubbles[a.Bubble], sheet.Radius, a.Pad, a.Scale)
}

// === Image Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	// A reload picks up a rescanned file at the same path.
	s.cache.Evict(a.Path)
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}
