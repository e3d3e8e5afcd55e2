// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package charts

import "fmt"

// UpstreamError marks an external API failure. Aggregation queries
// surface a single error for the whole requested window rather than
// partial results.
type UpstreamError struct {
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("upstream failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("upstream failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps an enrichment cache store failure.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
