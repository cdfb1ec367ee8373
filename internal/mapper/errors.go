// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mapper

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed records.
var (
	ErrMissingName   = errors.New("missing product name")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidNumber = errors.New("invalid number")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownShape  = errors.New("unknown record shape")
)

// RecordError describes one source record that failed normalization.
// Index is the record's position in the fetched batch.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
