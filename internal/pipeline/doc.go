// Package pipeline runs site checks as an ordered sequence of steps.
//
// A Step receives the report of one site root and appends its CheckResult.
// A step that cannot run records a fatal result; with WithContinueOnError the
// remaining checks still execute, since they share no state.
//
// BatchProcessor checks several roots concurrently with errgroup, giving each
// root a fresh pipeline.
package pipeline
