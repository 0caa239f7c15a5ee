package models

type ScreenResponse struct {
	ID           string        `json:"id"`
	Role         string        `json:"role"`
	Status       string        `json:"status"`
	Verdict      Verdict       `json:"verdict"`
	FinalScore   string        `json:"final_score,omitempty"`
	Penalty      int           `json:"penalty"`
	PageCount    int           `json:"page_count"`
	Quality      QualityRecord `json:"quality"`
	Report       string        `json:"report"`
	Presentation Presentation  `json:"presentation"`
	Warnings     []string      `json:"warnings"`
	Stages       []Stage       `json:"stages"`
	DurationMS   int64         `json:"duration_ms"`
}

func NewScreenResponse(r *ScreeningResult) ScreenResponse {
	return ScreenResponse{
		ID:           r.ID.String(),
		Role:         r.Role,
		Status:       string(r.Stage),
		Verdict:      r.Presentation.Verdict,
		FinalScore:   r.Presentation.FinalScore,
		Penalty:      r.Penalty,
		PageCount:    r.PageCount,
		Quality:      r.Quality,
		Report:       r.Report.Text,
		Presentation: r.Presentation,
		Warnings:     r.Warnings,
		Stages:       r.Stages,
		DurationMS:   r.Duration().Milliseconds(),
	}
}

type ScreenTextRequest struct {
	Role   string `json:"role"`
	Resume string `json:"resume"`
}

type SessionKeysRequest struct {
	GeminiAPIKey string `json:"gemini_api_key" form:"gemini_api_key"`
	OpenAIAPIKey string `json:"openai_api_key" form:"openai_api_key"`
}

type SessionKeysResponse struct {
	Gemini bool `json:"gemini"`
	OpenAI bool `json:"openai"`
}

type RoleRequest struct {
	Title     string `json:"title"`
	Rubric    string `json:"rubric"`
	Threshold int    `json:"threshold"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
	ID    string `json:"id,omitempty"`
}
