package models

import "strings"

// ScreeningReport is the scoring model's free-form report. It is the
// authoritative output of a screening.
type ScreeningReport struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

type Verdict string

const (
	VerdictProceed      Verdict = "PROCEED"
	VerdictDoNotProceed Verdict = "DO_NOT_PROCEED"
	VerdictUndetermined Verdict = "UNDETERMINED"
)

func (v Verdict) Label() string {
	switch v {
	case VerdictProceed:
		return "PROCEED TO INTERVIEW"
	case VerdictDoNotProceed:
		return "DO NOT PROCEED"
	}
	return "UNDETERMINED"
}

// Presentation is a best-effort reading of a ScreeningReport. Empty score
// fields mean the pattern was not found.
type Presentation struct {
	Verdict      Verdict           `json:"verdict"`
	Determined   bool              `json:"determined"`
	FinalScore   string            `json:"final_score,omitempty"`
	RoleFitScore string            `json:"role_fit_score,omitempty"`
	Penalty      string            `json:"penalty,omitempty"`
	Sections     map[string]string `json:"sections,omitempty"`
}

// Section returns a report section by heading, ignoring case.
func (p Presentation) Section(heading string) (string, bool) {
	for name, body := range p.Sections {
		if strings.EqualFold(name, heading) {
			return body, true
		}
	}
	return "", false
}
