package batch

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/omr-scanner/internal/imaging"
	"github.com/ironsheep/omr-scanner/internal/logging"
	"github.com/ironsheep/omr-scanner/internal/omr"
)

// FieldReader reads one identity field from a decoded sheet. region is the
// field rectangle already scaled to image pixels.
type FieldReader interface {
	ReadField(ctx context.Context, img image.Image, field omr.Field, region image.Rectangle) (string, error)
}

// OverlayWriter receives every successfully scored sheet.
type OverlayWriter interface {
	WriteOverlay(file string, img image.Image, sheet *omr.Sheet) error
}

// OverlayDir writes overlay PNGs into a folder.
type OverlayDir string

// WriteOverlay saves the overlay as <dir>/<name>_overlay.png.
func (d OverlayDir) WriteOverlay(file string, img image.Image, sheet *omr.Sheet) error {
	return imaging.SaveOverlay(imaging.OverlayPath(string(d), file), img, sheet)
}

// Driver scores batches of images against one template.
type Driver struct {
	Template *omr.Template

	// Workers bounds concurrent images. Zero or less means GOMAXPROCS.
	Workers int

	// Debug collects DebugRows in the Output.
	Debug bool

	// Fields reads identity fields when the template defines any. Nil
	// leaves them empty.
	Fields FieldReader

	// Overlays, when set, receives each scored sheet.
	Overlays OverlayWriter

	Logger *zap.Logger
}

// Output holds the results of one batch in input order.
type Output struct {
	Results []omr.ScanResult
	Debug   []omr.DebugRow
}

// Failed counts results that carry an error.
func (o *Output) Failed() int {
	n := 0
	for _, r := range o.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

type outcome struct {
	result omr.ScanResult
	debug  []omr.DebugRow
}

// Run scores every source and returns exactly one ScanResult per source.
// The only error Run returns is an *omr.ConfigError for an invalid
// template, raised before any source is loaded. When ctx is cancelled,
// sources that have not started yet get a ScanResult carrying ctx.Err().
func (d *Driver) Run(ctx context.Context, sources []Source) (*Output, error) {
	if err := d.Template.Validate(); err != nil {
		return nil, err
	}

	logger := d.logger()
	for _, w := range d.Template.Check() {
		logger.Warn("template inconsistency", zap.String("detail", w))
	}

	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]outcome, len(sources))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{result: omr.ErrorResult(src.ID, err)}
				return nil
			}
			outcomes[i] = d.scan(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	out := &Output{Results: make([]omr.ScanResult, len(outcomes))}
	for i, o := range outcomes {
		out.Results[i] = o.result
		if d.Debug {
			out.Debug = append(out.Debug, o.debug...)
		}
	}
	logger.Info("batch complete",
		zap.Int("images", len(out.Results)),
		zap.Int("failed", out.Failed()),
	)
	return out, nil
}

// scan processes one source. It never returns an error: every failure is
// folded into the ScanResult.
func (d *Driver) scan(ctx context.Context, src Source) outcome {
	logger := logging.WithOperation(d.logger(), "batch.scan", src.ID)

	img, err := src.Load()
	if err != nil {
		err = &omr.DecodeError{File: src.ID, Err: err}
		logger.Warn("image failed", zap.Error(err))
		return outcome{result: omr.ErrorResult(src.ID, err)}
	}

	sampler, sheet, err := scoreSheet(src.ID, img, d.Template)
	if err != nil {
		logger.Warn("image failed", zap.Error(err))
		return outcome{result: omr.ErrorResult(src.ID, err)}
	}

	if logger.Core().Enabled(zap.DebugLevel) {
		for _, q := range sheet.Questions {
			logger.Debug("scores",
				zap.String("question", q.ID),
				zap.Float64s("scores", q.Scores),
				zap.String("answer", q.Answer),
			)
		}
	}

	result := sheet.Result()
	if len(d.Template.Fields) > 0 {
		result.Fields = d.readFields(ctx, logger, sampler.Image(), sheet)
	}

	if d.Overlays != nil {
		if err := d.Overlays.WriteOverlay(src.ID, sampler.Image(), sheet); err != nil {
			logger.Warn("overlay not written", zap.Error(err))
		}
	}

	logger.Info("Processed " + src.ID)

	var debug []omr.DebugRow
	if d.Debug {
		debug = sheet.DebugRows()
	}
	return outcome{result: result, debug: debug}
}

// readFields reads every template field. A field that cannot be read is
// left empty and logged.
func (d *Driver) readFields(ctx context.Context, logger *zap.Logger, img image.Image, sheet *omr.Sheet) map[string]string {
	values := make(map[string]string, len(d.Template.Fields))
	for _, f := range d.Template.Fields {
		values[f.ID] = ""
		if d.Fields == nil {
			continue
		}
		region := sheet.Scaling.Rect(f.Region).Intersect(img.Bounds())
		if region.Empty() {
			logger.Warn("field outside image", zap.String("field", f.ID))
			continue
		}
		v, err := d.Fields.ReadField(ctx, img, f, region)
		if err != nil {
			logger.Warn("field not read", zap.String("field", f.ID), zap.Error(err))
			continue
		}
		values[f.ID] = v
	}
	return values
}

// scoreSheet normalises img and runs omr.ScanSheet, converting both
// errors and panics into an *omr.ScoringError.
func scoreSheet(file string, img image.Image, t *omr.Template) (s *imaging.Sampler, sheet *omr.Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, sheet = nil, nil
			err = &omr.ScoringError{File: file, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	s = imaging.NewSampler(img)
	sheet, err = omr.ScanSheet(file, s, t)
	if err != nil {
		return nil, nil, &omr.ScoringError{File: file, Err: err}
	}
	return s, sheet, nil
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
