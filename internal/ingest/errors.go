// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package ingest

import "fmt"

// ValidationError marks a malformed inbound payload. The request is
// rejected with no mutation.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("validation failed: %s", e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ParseError marks a failed identifier extraction. The identifier is
// the dedup key, so this is a hard failure: no record is created.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed: %s", e.Msg)
}

// PersistenceError wraps a store failure surfaced as a server error.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
