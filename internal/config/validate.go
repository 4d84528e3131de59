package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidMaxFileSize indicates a non-positive file-size cap
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrInvalidThreshold indicates a rename threshold outside (0, 1]
	ErrInvalidThreshold = errors.New("invalid rename threshold")

	// ErrEmptyBaseRef indicates a missing default base ref
	ErrEmptyBaseRef = errors.New("empty base ref")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Analysis.Workers))
	}
	if cfg.Analysis.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.Analysis.CacheSize))
	}
	if cfg.Analysis.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidMaxFileSize, cfg.Analysis.MaxFileSize))
	}

	if cfg.Diff.RenameThreshold <= 0 || cfg.Diff.RenameThreshold > 1 {
		errs = append(errs, fmt.Errorf("%w: rename_threshold must be in (0, 1], got %g", ErrInvalidThreshold, cfg.Diff.RenameThreshold))
	}
	if strings.TrimSpace(cfg.Diff.BaseRef) == "" {
		errs = append(errs, fmt.Errorf("%w: base_ref is required", ErrEmptyBaseRef))
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	format := strings.ToLower(cfg.Output.Format)
	if format != "text" && format != "json" {
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'json', got '%s'", ErrInvalidFormat, cfg.Output.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
