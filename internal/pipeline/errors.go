// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package pipeline

import (
	"errors"
	"fmt"
)

// Pipeline stages
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StagePublish   = "publish"
)

// Sentinel errors
var (
	ErrSourceFetch    = errors.New("source fetch failed")
	ErrEmptySource    = errors.New("source returned no records")
	ErrNoValidRecords = errors.New("no record survived normalization")
	ErrNoTargets      = errors.New("no probe targets available")
	ErrPublish        = errors.New("publish failed")
)

// StageError reports the stage a pass failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, sentinel, err error) error {
	if err == nil {
		return &StageError{Stage: stage, Err: sentinel}
	}
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %w", sentinel, err)}
}

// StageOf returns the failed stage of err, or "" if err is not a StageError.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
