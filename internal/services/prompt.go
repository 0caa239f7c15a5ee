package services

import (
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"alfredoptarigan/resume-screener/internal/models"
)

//go:embed prompts/quality_review.md
var qualityReviewPrompt string

//go:embed prompts/extraction.md
var extractionPrompt string

//go:embed prompts/screening.md
var screeningTemplate string

//go:embed prompts/genai_delivery_lead.md
var defaultRubric string

const (
	DefaultRoleSlug  = "genai-delivery-lead"
	DefaultRoleTitle = "GenAI Productization & Delivery Lead (Life Sciences)"
)

// DefaultRoleProfile is the rubric used when no other role is configured.
func DefaultRoleProfile() models.RoleProfile {
	return models.RoleProfile{
		Slug:      DefaultRoleSlug,
		Title:     DefaultRoleTitle,
		Rubric:    strings.TrimSpace(defaultRubric),
		Threshold: models.DefaultThreshold,
	}
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// QualityReviewPrompt asks the vision model for a JSON quality record.
func (pb *PromptBuilder) QualityReviewPrompt() string {
	return strings.TrimSpace(qualityReviewPrompt)
}

// ExtractionPrompt asks the vision model for a verbatim transcription.
func (pb *PromptBuilder) ExtractionPrompt() string {
	return strings.TrimSpace(extractionPrompt)
}

// BuildScreeningPrompt fills the rubric template with the role, the quality
// review outcome and the resume text.
func (pb *PromptBuilder) BuildScreeningPrompt(resumeText string, quality models.QualityRecord, penalty int, role models.RoleProfile) string {
	threshold := role.Threshold
	if threshold <= 0 {
		threshold = models.DefaultThreshold
	}

	rubric := strings.TrimSpace(role.Rubric)
	if role.Title != "" {
		rubric = "Role: " + role.Title + "\n\n" + rubric
	}

	// resume last so placeholder-like text inside it is left alone
	prompt := strings.ReplaceAll(screeningTemplate, "{{RUBRIC}}", rubric)
	prompt = strings.ReplaceAll(prompt, "{{QUALITY}}", pb.qualityBlock(quality, penalty))
	prompt = strings.ReplaceAll(prompt, "{{THRESHOLD}}", strconv.Itoa(threshold))
	prompt = strings.ReplaceAll(prompt, "{{RESUME}}", strings.TrimSpace(resumeText))
	return prompt
}

func (pb *PromptBuilder) qualityBlock(q models.QualityRecord, penalty int) string {
	var b strings.Builder

	source := string(q.DocumentSource)
	if source == "" {
		source = string(models.SourceUnknown)
	}
	if q.AgencyName != nil && strings.TrimSpace(*q.AgencyName) != "" {
		source += " (" + strings.TrimSpace(*q.AgencyName) + ")"
	}

	fmt.Fprintf(&b, "- Document source: %s\n", source)
	fmt.Fprintf(&b, "- Quality score: %d/4\n", q.TotalScore)
	fmt.Fprintf(&b, "- Quality verdict: %s\n", q.Verdict)
	fmt.Fprintf(&b, "- Quality penalty: %d\n", penalty)
	if summary := strings.TrimSpace(q.Summary); summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", summary)
	}

	issues := q.Issues()
	if len(issues) > 0 {
		b.WriteString("- Issues:\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
