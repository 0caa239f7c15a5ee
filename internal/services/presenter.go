package services

import (
	"regexp"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	VerdictProceedLiteral      = "**PROCEED TO INTERVIEW**"
	VerdictDoNotProceedLiteral = "**DO NOT PROCEED**"
)

var (
	finalScorePattern   = regexp.MustCompile(`\*\*Final Score:\s*(-?\d+)\s*/\s*4\*\*`)
	roleFitScorePattern = regexp.MustCompile(`\*\*Role-Fit Score:\s*(-?\d+)\s*/\s*4\*\*`)
	penaltyPattern      = regexp.MustCompile(`\*\*Quality Penalty:\s*([-+]?\d+)\*\*`)
	sectionHeading      = regexp.MustCompile(`(?m)^##\s+(.+?)\s*$`)
)

// Presenter reads the verdict and scores back out of a report. It reports
// what the model wrote and decides nothing itself.
type Presenter interface {
	Present(report models.ScreeningReport) models.Presentation
}

type presenter struct{}

func NewPresenter() Presenter {
	return presenter{}
}

func (presenter) Present(report models.ScreeningReport) models.Presentation {
	text := report.Text

	p := models.Presentation{
		Verdict:      verdictOf(text),
		FinalScore:   firstGroup(finalScorePattern, text),
		RoleFitScore: firstGroup(roleFitScorePattern, text),
		Penalty:      firstGroup(penaltyPattern, text),
		Sections:     splitSections(text),
	}
	p.Determined = p.Verdict != models.VerdictUndetermined

	return p
}

// verdictOf only commits when exactly one verdict literal appears. A report
// that still carries both choices from the template is undetermined.
func verdictOf(text string) models.Verdict {
	proceed := strings.Contains(text, VerdictProceedLiteral)
	reject := strings.Contains(text, VerdictDoNotProceedLiteral)

	switch {
	case proceed && !reject:
		return models.VerdictProceed
	case reject && !proceed:
		return models.VerdictDoNotProceed
	}
	return models.VerdictUndetermined
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func splitSections(text string) map[string]string {
	locs := sectionHeading.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	sections := make(map[string]string, len(locs))
	for i, loc := range locs {
		name := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sections[name] = strings.TrimSpace(text[loc[1]:end])
	}
	return sections
}
