package types

import (
	"fmt"
	"time"
)

// Sentinel errors for programmatic checks.
var (
	ErrEmptyInput     = fmt.Errorf("input text is empty")
	ErrNoBoundaries   = fmt.Errorf("no boundaries detected")
	ErrStreamConsumed = fmt.Errorf("stream already consumed")
)

// BoundaryDetectionError reports a strategy-internal fault while locating
// split points. The assembler catches it and falls back; it never reaches
// the caller unless the fallback also fails.
type BoundaryDetectionError struct {
	Strategy string
	TextLen  int
	Err      error
}

func (e *BoundaryDetectionError) Error() string {
	return fmt.Sprintf("boundary detection failed (strategy=%s, text=%d bytes): %v", e.Strategy, e.TextLen, e.Err)
}

func (e *BoundaryDetectionError) Unwrap() error { return e.Err }

// FormatParsingError reports that a structural parser choked on malformed
// content of a declared format.
type FormatParsingError struct {
	Format ContentFormat
	Offset int
	Err    error
}

func (e *FormatParsingError) Error() string {
	return fmt.Sprintf("format parsing failed (format=%s, offset=%d): %v", e.Format, e.Offset, e.Err)
}

func (e *FormatParsingError) Unwrap() error { return e.Err }

// StreamProcessingError reports an I/O or buffering fault in the streaming
// buffer.
type StreamProcessingError struct {
	Source string
	Offset int64
	Err    error
}

func (e *StreamProcessingError) Error() string {
	return fmt.Sprintf("stream processing failed (source=%s, offset=%d): %v", e.Source, e.Offset, e.Err)
}

func (e *StreamProcessingError) Unwrap() error { return e.Err }

// ParallelProcessingError reports a worker-pool fault with completion
// counts. Emitted only when enough segments fail that the merged result is
// not trustworthy.
type ParallelProcessingError struct {
	Completed int
	Failed    int
	Err       error
}

func (e *ParallelProcessingError) Error() string {
	return fmt.Sprintf("parallel processing failed (%d completed, %d failed): %v", e.Completed, e.Failed, e.Err)
}

func (e *ParallelProcessingError) Unwrap() error { return e.Err }

// TimeoutExceededError reports that a unit of work exceeded its deadline.
type TimeoutExceededError struct {
	Elapsed time.Duration
	Limit   time.Duration
}

func (e *TimeoutExceededError) Error() string {
	return fmt.Sprintf("timeout exceeded (elapsed=%s, limit=%s)", e.Elapsed, e.Limit)
}

// TokenEstimationError reports an estimator fault.
type TokenEstimationError struct {
	Strategy TokenEstimationStrategy
	Err      error
}

func (e *TokenEstimationError) Error() string {
	return fmt.Sprintf("token estimation failed (strategy=%s): %v", e.Strategy, e.Err)
}

func (e *TokenEstimationError) Unwrap() error { return e.Err }

// ValidationError reports a bad option value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a fault while loading process-wide defaults.
type ConfigurationError struct {
	Variable string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Variable, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ResourceExhaustionError reports that an operation would exceed a memory or
// size budget.
type ResourceExhaustionError struct {
	Resource string
	Needed   int64
	Limit    int64
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("resource exhausted (%s: needed %d, limit %d)", e.Resource, e.Needed, e.Limit)
}

// RecoveryFailureError reports that both the primary path and the emergency
// fallback failed. This is the only terminal error shape the assembler may
// surface for a chunking fault; it carries both failures.
type RecoveryFailureError struct {
	Primary  error
	Fallback error
}

func (e *RecoveryFailureError) Error() string {
	return fmt.Sprintf("recovery failed (primary: %v; fallback: %v)", e.Primary, e.Fallback)
}

func (e *RecoveryFailureError) Unwrap() error { return e.Primary }
