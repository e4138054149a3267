package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/ironsheep/omr-scanner/internal/batch"
	"github.com/ironsheep/omr-scanner/internal/config"
	"github.com/ironsheep/omr-scanner/internal/logging"
	"github.com/ironsheep/omr-scanner/internal/ocr"
	"github.com/ironsheep/omr-scanner/internal/report"
	"github.com/ironsheep/omr-scanner/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := "scan"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		printVersion(os.Stdout)
		return 0
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	}

	logger, err := logging.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	switch cmd {
	case "scan":
		return runScan(logger, args)
	case "serve":
		return runServe(logger)
	case "validate":
		return runValidate(os.Stdout, args)
	default:
		fmt.Fprintf(os.Stderr, "omr-scan: unknown command %q\n\n", cmd)
		printUsage(os.Stderr)
		return 2
	}
}

func runScan(logger *zap.Logger, args []string) int {
	fs := config.NewFlagSet("scan")
	settings, err := config.LoadSettings(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 2
	}

	tmpl, err := config.LoadTemplate(settings.Template)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Template not found: %s\n", settings.Template)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 1
	}
	if settings.FirstQuestionID != "" {
		tmpl.FirstQuestionID = settings.FirstQuestionID
	}

	paths, err := batch.FindScans(settings.Scans, settings.Pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No files matching %s found in %s\n", settings.Pattern, settings.Scans)
		return 1
	}

	d := &batch.Driver{
		Template: tmpl,
		Workers:  settings.Workers,
		Debug:    settings.Debug,
		Fields:   &ocr.FieldReader{Text: ocr.TextReader{TessdataPrefix: settings.Tessdata}},
		Logger:   logger.Named("batch"),
	}
	if settings.OverlayDir != "" {
		if err := os.MkdirAll(settings.OverlayDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "omr-scan: failed to create overlay folder: %v\n", err)
			return 1
		}
		d.Overlays = batch.OverlayDir(settings.OverlayDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := d.Run(ctx, batch.FileSources(paths))
	if err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 1
	}

	opts := report.ResultsOptions{
		FieldIDs:    tmpl.FieldIDs(),
		QuestionIDs: tmpl.QuestionIDs(),
		ErrorColumn: settings.ErrorColumn,
	}
	if err := report.WriteFile(settings.Output, func(w io.Writer) error {
		return report.WriteResults(w, out.Results, opts)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
		return 1
	}
	logger.Info("wrote results", zap.String("path", settings.Output), zap.Int("rows", len(out.Results)))

	if settings.Debug {
		if err := report.WriteFile(settings.DebugOutput, func(w io.Writer) error {
			return report.WriteDebug(w, out.Debug)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "omr-scan: %v\n", err)
			return 1
		}
		logger.Info("wrote debug scores", zap.String("path", settings.DebugOutput), zap.Int("rows", len(out.Debug)))
	}
	return 0
}

func runServe(logger *zap.Logger) int {
	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	fields := &ocr.FieldReader{Text: ocr.TextReader{TessdataPrefix: os.Getenv("OMR_TESSDATA")}}
	if err := server.New(fields, logger).Run(); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

func runValidate(w io.Writer, args []string) int {
	path := config.DefaultTemplate
	if len(args) > 0 {
		path = args[0]
	}

	tmpl, err := config.LoadTemplate(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}

	fmt.Fprintf(w, "%s: ok\n", path)
	fmt.Fprintf(w, "  sheet size:     %dx%d\n", tmpl.SheetWidth, tmpl.SheetHeight)
	fmt.Fprintf(w, "  bubble radius:  %g\n", tmpl.BubbleRadius)
	fmt.Fprintf(w, "  fill threshold: %g\n", tmpl.FillThreshold)
	fmt.Fprintf(w, "  questions:      %d\n", len(tmpl.Questions))
	if len(tmpl.Fields) > 0 {
		fmt.Fprintf(w, "  fields:         %v\n", tmpl.FieldIDs())
	}
	for _, warning := range tmpl.Check() {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	return 0
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "omr-scan %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Tesseract:  %s\n", ocr.TesseractVersion())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "omr-scan - score scanned multiple-choice answer sheets")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  omr-scan [scan] [flags]     Score every sheet in the scans folder")
	fmt.Fprintln(w, "  omr-scan validate [file]    Check a template file")
	fmt.Fprintln(w, "  omr-scan serve              Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  omr-scan version            Print version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Scan flags:")
	fs := config.NewFlagSet("scan")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  OMR_LOG_LEVEL=debug     Log level (debug, info, warn, error)")
	fmt.Fprintln(w, "  OMR_<SETTING>=value     Override any scan setting, e.g. OMR_WORKERS=4")
	fmt.Fprintln(w, "  OMR_TESSDATA=dir        tessdata directory for the MCP server")
}
