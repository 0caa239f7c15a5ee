package models

import (
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageIdle             Stage = "idle"
	StageRasterizing      Stage = "rasterizing"
	StageQualityReviewing Stage = "quality_reviewing"
	StageExtracting       Stage = "extracting"
	StageScoring          Stage = "scoring"
	StagePresenting       Stage = "presenting"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// ScreeningResult is everything one request produced. It is never persisted.
type ScreeningResult struct {
	ID             uuid.UUID       `json:"id"`
	Role           string          `json:"role"`
	PageCount      int             `json:"page_count"`
	Quality        QualityRecord   `json:"quality"`
	QualityDefault bool            `json:"quality_default"`
	Penalty        int             `json:"penalty"`
	Report         ScreeningReport `json:"report"`
	Presentation   Presentation    `json:"presentation"`
	Warnings       []string        `json:"warnings"`
	Stages         []Stage         `json:"stages"`
	Stage          Stage           `json:"stage"`
	FailureKind    string          `json:"failure_kind,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

func NewScreeningResult(role string) *ScreeningResult {
	return &ScreeningResult{
		ID:        uuid.New(),
		Role:      role,
		Stage:     StageIdle,
		Stages:    []Stage{StageIdle},
		Warnings:  []string{},
		StartedAt: time.Now(),
	}
}

func (r *ScreeningResult) Enter(s Stage) {
	r.Stage = s
	r.Stages = append(r.Stages, s)
}

func (r *ScreeningResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *ScreeningResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
