package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"alfredoptarigan/resume-screener/internal/models"
)

var (
	proceedColor = lipgloss.Color("42")
	rejectColor  = lipgloss.Color("196")
	unsureColor  = lipgloss.Color("220")
	mutedColor   = lipgloss.Color("244")
)

// RenderResult formats a screening for the terminal: verdict, scores,
// quality summary, warnings, then the full report.
func RenderResult(r *models.ScreeningResult, noColor bool) string {
	var b strings.Builder

	p := r.Presentation
	b.WriteString(stylize(p.Verdict.Label(), noColor, verdictColor(p.Verdict), true))
	b.WriteString("\n")

	if p.FinalScore != "" {
		line := "Final score: " + p.FinalScore + "/4"
		var detail []string
		if p.RoleFitScore != "" {
			detail = append(detail, "role fit "+p.RoleFitScore+"/4")
		}
		detail = append(detail, fmt.Sprintf("quality penalty %d", r.Penalty))
		b.WriteString(line + " (" + strings.Join(detail, ", ") + ")\n")
	}

	b.WriteString(renderQuality(r, noColor))

	meta := fmt.Sprintf("Role: %s | Pages: %d | %s", r.Role, r.PageCount, r.Duration().Round(100*time.Millisecond))
	b.WriteString(stylize(meta, noColor, mutedColor, false))
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range r.Warnings {
			b.WriteString(stylize("! "+w, noColor, unsureColor, false))
			b.WriteString("\n")
		}
	}

	if r.Report.Text != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(r.Report.Text))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderQuality(r *models.ScreeningResult, noColor bool) string {
	q := r.Quality
	if r.QualityDefault {
		return stylize("Quality: "+q.Summary, noColor, mutedColor, false) + "\n"
	}

	source := string(q.DocumentSource)
	if q.AgencyName != nil && *q.AgencyName != "" {
		source += " (" + *q.AgencyName + ")"
	}

	color := proceedColor
	if q.Verdict == models.QualityFail {
		color = rejectColor
	}
	line := fmt.Sprintf("Quality: %s %d/4 | %s", q.Verdict, q.TotalScore, source)

	var b strings.Builder
	b.WriteString(stylize(line, noColor, color, false))
	b.WriteString("\n")
	for _, issue := range q.Issues() {
		b.WriteString("  - " + issue + "\n")
	}
	return b.String()
}

func verdictColor(v models.Verdict) lipgloss.Color {
	switch v {
	case models.VerdictProceed:
		return proceedColor
	case models.VerdictDoNotProceed:
		return rejectColor
	}
	return unsureColor
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color, bold bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}
