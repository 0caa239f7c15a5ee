package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

const DefaultOpenAIModel = "gpt-5.2"

// Penalty is the score adjustment the scoring model is told to apply for a
// failed quality review.
func Penalty(q models.QualityRecord) int {
	if q.Verdict == models.QualityFail {
		return -1
	}
	return 0
}

// Scorer produces the rubric report for one resume.
type Scorer interface {
	Score(ctx context.Context, resumeText string, quality models.QualityRecord, role models.RoleProfile) (models.ScreeningReport, error)
}

// ChatCompleter is the part of the OpenAI client the scorer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type ScorerConfig struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

type openAIScorer struct {
	client  ChatCompleter
	model   string
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewOpenAIScorer(apiKey string, cfg ScorerConfig, log *zap.Logger) (Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return NewScorer(openai.NewClientWithConfig(clientCfg), cfg.Model, nil, log), nil
}

func NewScorer(client ChatCompleter, model string, prompts *PromptBuilder, log *zap.Logger) Scorer {
	if strings.TrimSpace(model) == "" {
		model = DefaultOpenAIModel
	}
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &openAIScorer{
		client:  client,
		model:   model,
		prompts: prompts,
		log:     logger.OrNop(log).With(zap.String(logger.FieldModel, model)),
	}
}

func (s *openAIScorer) Score(ctx context.Context, resumeText string, quality models.QualityRecord, role models.RoleProfile) (models.ScreeningReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return models.ScreeningReport{}, errors.Wrap(ErrAnalysis, "resume text is empty")
	}

	penalty := Penalty(quality)
	prompt := s.prompts.BuildScreeningPrompt(resumeText, quality, penalty, role)

	s.log.Debug("scoring request",
		zap.String("role", role.Slug),
		zap.Int("penalty", penalty),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.ScreeningReport{}, ctxErr
		}
		s.log.Error("scoring request failed", zap.Error(err))
		return models.ScreeningReport{}, errors.Wrapf(ErrAnalysis, "%v", err)
	}

	if len(resp.Choices) == 0 {
		return models.ScreeningReport{}, errors.Wrap(ErrAnalysis, "response has no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return models.ScreeningReport{}, errors.Wrap(ErrAnalysis, "response content is empty")
	}

	s.log.Debug("scoring response",
		zap.Int("response_length", len(text)),
		zap.String("response_preview", logger.TruncateForLog(text, 200)),
	)

	model := resp.Model
	if model == "" {
		model = s.model
	}
	return models.ScreeningReport{Text: text, Model: model}, nil
}
