package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/retry"
)

const (
	DefaultGeminiModel     = "gemini-2.5-flash"
	defaultVisionTemp      = 0.1
	defaultVisionMaxTokens = 8192
)

// VisionClient sends one prompt plus page images to a vision-capable model.
// Every failure mode ends in ErrNoResult (or the context error), never a panic.
type VisionClient interface {
	Invoke(ctx context.Context, prompt string, images []models.PageImage) (string, error)
	Model() string
}

// ContentGenerator is the part of the genai SDK the client needs.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type VisionConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	BaseURL         string
	Timeout         time.Duration
	Retry           retry.Policy
}

func (c VisionConfig) withDefaults() VisionConfig {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultGeminiModel
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultVisionTemp
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = defaultVisionMaxTokens
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = retry.DefaultPolicy()
	}
	return c
}

var errEmptyResponse = errors.New("response has no text content")

type geminiVisionClient struct {
	generator ContentGenerator
	cfg       VisionConfig
	log       *zap.Logger
}

// NewGeminiVisionClient builds a client against the Gemini API backend.
func NewGeminiVisionClient(ctx context.Context, apiKey string, cfg VisionConfig, log *zap.Logger) (VisionClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	return NewVisionClient(client.Models, cfg, log), nil
}

func NewVisionClient(generator ContentGenerator, cfg VisionConfig, log *zap.Logger) VisionClient {
	cfg = cfg.withDefaults()
	return &geminiVisionClient{
		generator: generator,
		cfg:       cfg,
		log:       logger.OrNop(log).With(zap.String(logger.FieldModel, cfg.Model)),
	}
}

func (g *geminiVisionClient) Model() string {
	return g.cfg.Model
}

func (g *geminiVisionClient) Invoke(ctx context.Context, prompt string, images []models.PageImage) (string, error) {
	contents := buildVisionContents(prompt, images)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.cfg.Temperature),
		MaxOutputTokens: g.cfg.MaxOutputTokens,
	}

	g.log.Debug("invoking vision model",
		zap.Int("images", len(images)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, 120)),
	)

	var text string
	err := retry.Do(ctx, g.cfg.Retry, func(ctx context.Context, attempt int) error {
		resp, err := g.generator.GenerateContent(ctx, g.cfg.Model, contents, genCfg)
		if err != nil {
			return g.classify(ctx, err, attempt)
		}

		out, ok := firstCandidateText(resp)
		if !ok {
			g.log.Warn("vision model returned malformed or empty response", zap.Int("attempt", attempt))
			return errEmptyResponse
		}

		text = out
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.log.Warn("vision model gave no result", zap.Error(err))
		return "", errors.Wrapf(ErrNoResult, "%v", err)
	}

	g.log.Debug("vision model responded",
		zap.Int("chars", len(text)),
		zap.String("response_preview", logger.TruncateForLog(text, 200)),
	)

	return text, nil
}

// classify decides whether a failed call is worth another attempt. Rate
// limits, server errors and transport errors are; other 4xx are not.
func (g *geminiVisionClient) classify(ctx context.Context, err error, attempt int) error {
	if ctx.Err() != nil {
		return retry.Permanent(ctx.Err())
	}

	code := apiErrorCode(err)
	fields := []zap.Field{zap.Int("attempt", attempt), zap.Int("status", code), zap.Error(err)}

	switch {
	case code == http.StatusTooManyRequests:
		g.log.Warn("vision model rate limited", fields...)
		return err
	case code >= http.StatusInternalServerError:
		g.log.Warn("vision model server error", fields...)
		return err
	case code >= http.StatusBadRequest:
		g.log.Error("vision model rejected request", fields...)
		return retry.Permanent(err)
	default:
		g.log.Warn("vision model transport error", fields...)
		return err
	}
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

func buildVisionContents(prompt string, images []models.PageImage) []*genai.Content {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType()))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// firstCandidateText joins the non-thought text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}

	text := strings.TrimSpace(b.String())
	return text, text != ""
}
