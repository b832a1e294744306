package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoRoot is returned when no site root is configured.
	ErrNoRoot = errors.New("no site root specified")

	// ErrNoSitemapFile is returned when the sitemap file name is empty.
	ErrNoSitemapFile = errors.New("sitemap file name must not be empty")

	// ErrNoIndexFile is returned when the index file name is empty.
	ErrNoIndexFile = errors.New("index file name must not be empty")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDebounce is returned when the watcher debounce is negative.
	ErrInvalidDebounce = errors.New("invalid debounce: must be non-negative")

	// ErrInvalidComponent is returned when a component entry has an empty id or route.
	ErrInvalidComponent = errors.New("invalid component: placeholder id and route must not be empty")

	// ErrInvalidPattern is the sentinel matched by PatternError.
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// PatternError reports an ignore pattern that doublestar cannot compile.
type PatternError struct {
	Pattern string
}

// Error implements error.
func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidPattern, e.Pattern)
}

// Is makes errors.Is(err, ErrInvalidPattern) match.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}
