package omr

import "fmt"

// ConfigError reports a malformed or missing template field. It is fatal
// for a batch run and is raised before any image is processed.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("invalid template: %v", e.Err)
	}
	return fmt.Sprintf("invalid template field %q: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError reports an image that could not be read or decoded.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ScoringError reports an unexpected failure while scaling or scoring one
// image, including recovered panics.
type ScoringError struct {
	File string
	Err  error
}

func (e *ScoringError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("score %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ScoringError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}
