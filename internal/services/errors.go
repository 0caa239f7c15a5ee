package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/models"
)

var (
	// ErrDocument means the upload is not a readable PDF or has no pages.
	ErrDocument = errors.New("unreadable document")
	// ErrNoResult is returned by the vision client once every attempt failed.
	ErrNoResult = errors.New("no result")
	// ErrQualityParse means the quality review reply could not be decoded.
	ErrQualityParse = errors.New("quality review unparseable")
	// ErrExtraction means no resume text could be obtained.
	ErrExtraction = errors.New("resume text extraction failed")
	// ErrAnalysis means the scoring call failed.
	ErrAnalysis = errors.New("resume analysis failed")
	// ErrRoleNotFound means the requested rubric profile does not exist.
	ErrRoleNotFound = errors.New("role profile not found")
)

type ErrorKind string

const (
	KindDocument           ErrorKind = "document_error"
	KindNetwork            ErrorKind = "network_failure"
	KindQualityParse       ErrorKind = "quality_parse_failure"
	KindExtraction         ErrorKind = "extraction_failure"
	KindAnalysis           ErrorKind = "analysis_failure"
	KindVerdictUnparseable ErrorKind = "verdict_unparseable"
	KindRole               ErrorKind = "role_not_found"
	KindCanceled           ErrorKind = "canceled"
	KindInternal           ErrorKind = "internal"
)

// Fatal reports whether an error of this kind stops the pipeline.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindNetwork, KindQualityParse, KindVerdictUnparseable:
		return false
	}
	return true
}

// KindOf classifies err against the sentinel errors of this package.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDocument):
		return KindDocument
	case errors.Is(err, ErrExtraction):
		return KindExtraction
	case errors.Is(err, ErrAnalysis):
		return KindAnalysis
	case errors.Is(err, ErrQualityParse):
		return KindQualityParse
	case errors.Is(err, ErrNoResult):
		return KindNetwork
	case errors.Is(err, ErrRoleNotFound):
		return KindRole
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}

// StageError records the pipeline stage a fatal error stopped at.
type StageError struct {
	Stage models.Stage
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func newStageError(stage models.Stage, err error) *StageError {
	return &StageError{Stage: stage, Kind: KindOf(err), Err: err}
}
