// Package errs defines the engine's semantic error kinds. Each is a
// distinct Go type so callers can discriminate with errors.As instead of
// string-matching, the way the rest of the corpus wraps errors with fmt.Errorf
// and %w but still wants a few call sites to branch on kind.
package errs

import "fmt"

// ConfigurationError is fatal: missing required input, unknown variable,
// corrupt rate table. No partial result is returned.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Msg }

// DanglingReferenceError marks a transfer to/from an unknown account name.
// It is logged and the dependent event is skipped; the projection continues.
type DanglingReferenceError struct {
	AccountName string
	Context     string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference to account %q (%s)", e.AccountName, e.Context)
}

// GeneratorOverflow is fatal: a single bill/interest/pension/RMD/spending
// generator would emit more than the 10,000-occurrence safety bound.
type GeneratorOverflow struct {
	Source string
	Count  int
}

func (e *GeneratorOverflow) Error() string {
	return fmt.Sprintf("generator overflow: %s emitted more than %d occurrences (got %d)", e.Source, MaxOccurrences, e.Count)
}

// MaxOccurrences is the generator loop's safety bound.
const MaxOccurrences = 10000

// NumericError aborts the current Monte Carlo iteration with a diagnostic
// when a NaN or infinite value appears in a balance update.
type NumericError struct {
	AccountID string
	Detail    string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric error on account %s: %s", e.AccountID, e.Detail)
}

// ConvergenceWarning is logged, not fatal: push/pull could not settle within
// its single allotted retry. The engine proceeds with the last attempt state.
type ConvergenceWarning struct {
	SegmentID string
}

func (e *ConvergenceWarning) Error() string {
	return fmt.Sprintf("push/pull did not converge for segment %s after one retry", e.SegmentID)
}

// CancellationSignaled indicates the orchestrator returned a partial result
// because the caller's cancellation token fired at a segment boundary.
type CancellationSignaled struct{}

func (e *CancellationSignaled) Error() string { return "projection cancelled" }
