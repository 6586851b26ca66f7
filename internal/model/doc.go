// Package model defines the core data structures used throughout linkprobe.
//
// This package contains the following main types:
//   - ProbeOutcome: The result of one HTTP probe of one URL
//   - Verdict: Valid or Dead, derived from a status code
//   - ClassificationResult: The valid and dead partitions of a run
//   - ReconciliationReport: URLs that ended without any status code
//   - RunReport: Everything known about one run of the engine
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The probe, classify, pipeline, database and report packages
// all exchange these types.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
