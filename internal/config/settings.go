package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. OMR_WORKERS.
const EnvPrefix = "OMR"

// Settings holds the options of one scan run.
type Settings struct {
	Template    string `mapstructure:"template"`
	Scans       string `mapstructure:"scans"`
	Pattern     string `mapstructure:"pattern"`
	Output      string `mapstructure:"output"`
	Debug       bool   `mapstructure:"debug"`
	DebugOutput string `mapstructure:"debug_output"`
	OverlayDir  string `mapstructure:"overlay_dir"`
	ErrorColumn bool   `mapstructure:"error_column"`

	// Workers bounds the number of images scored at once. Zero or less
	// means GOMAXPROCS.
	Workers int `mapstructure:"workers"`

	// FirstQuestionID overrides the template's designated first question
	// when non-empty.
	FirstQuestionID string `mapstructure:"first_question_id"`

	// Tessdata points Tesseract at a tessdata directory for text fields.
	Tessdata string `mapstructure:"tessdata"`
}

// Default values. Workers defaults to zero, which the batch driver
// resolves to GOMAXPROCS.
const (
	DefaultTemplate    = "template.json"
	DefaultScans       = "scans"
	DefaultPattern     = "*.png"
	DefaultOutput      = "results.csv"
	DefaultDebugOutput = "scores_debug.csv"
)

// settingKeys maps viper keys to their flag names.
var settingKeys = map[string]string{
	"template":          "template",
	"scans":             "scans",
	"pattern":           "pattern",
	"output":            "output",
	"debug":             "debug",
	"debug_output":      "debug-output",
	"overlay_dir":       "overlay-dir",
	"error_column":      "error-column",
	"workers":           "workers",
	"first_question_id": "first-question",
	"tessdata":          "tessdata",
}

// NewFlagSet returns the flag set for the scan command.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("template", "t", DefaultTemplate, "template file (.json, .yaml, .toml)")
	fs.StringP("scans", "s", DefaultScans, "folder containing scanned sheets")
	fs.StringP("pattern", "p", DefaultPattern, "glob matched against file names in the scans folder")
	fs.StringP("output", "o", DefaultOutput, "results CSV path, or - for stdout")
	fs.BoolP("debug", "d", false, "write per-question scores to the debug CSV")
	fs.String("debug-output", DefaultDebugOutput, "debug CSV path")
	fs.String("overlay-dir", "", "write an annotated PNG per sheet into this folder")
	fs.Bool("error-column", false, "append an error column to the results CSV")
	fs.IntP("workers", "w", 0, "images scored in parallel (0 = number of CPUs)")
	fs.String("first-question", "", "question id that uses choices_q1 (default from template, else Q1)")
	fs.String("tessdata", "", "tessdata directory for text identity fields")
	fs.StringP("config", "c", "", "settings file (.json, .yaml, .toml)")
	return fs
}

// LoadSettings parses args with fs and resolves every setting. Flags win
// over OMR_* environment variables, which win over the --config file,
// which wins over defaults.
func LoadSettings(fs *pflag.FlagSet, args []string) (*Settings, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("template", DefaultTemplate)
	v.SetDefault("scans", DefaultScans)
	v.SetDefault("pattern", DefaultPattern)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("debug", false)
	v.SetDefault("debug_output", DefaultDebugOutput)
	v.SetDefault("overlay_dir", "")
	v.SetDefault("error_column", false)
	v.SetDefault("workers", 0)
	v.SetDefault("first_question_id", "")
	v.SetDefault("tessdata", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range settingKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings that cannot describe a run.
func (s *Settings) Validate() error {
	if s.Template == "" {
		return errors.New("template path is required")
	}
	if s.Scans == "" {
		return errors.New("scans folder is required")
	}
	if s.Pattern == "" {
		return errors.New("file pattern is required")
	}
	if s.Output == "" {
		return errors.New("output path is required")
	}
	if s.Debug && s.DebugOutput == "" {
		return errors.New("debug output path is required when debug is on")
	}
	return nil
}
