package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

// TextExtractor transcribes resume pages through the vision model.
type TextExtractor interface {
	Extract(ctx context.Context, images []models.PageImage) (string, error)
}

type textExtractor struct {
	vision  VisionClient
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewTextExtractor(vision VisionClient, prompts *PromptBuilder, log *zap.Logger) TextExtractor {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &textExtractor{
		vision:  vision,
		prompts: prompts,
		log:     logger.OrNop(log),
	}
}

func (e *textExtractor) Extract(ctx context.Context, images []models.PageImage) (string, error) {
	if len(images) == 0 {
		return "", errors.Wrap(ErrExtraction, "no pages to transcribe")
	}

	text, err := e.vision.Invoke(ctx, e.prompts.ExtractionPrompt(), images)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errors.Wrapf(ErrExtraction, "%v", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Wrap(ErrExtraction, "model returned no text")
	}

	e.log.Info("resume text extracted",
		zap.Int("pages", len(images)),
		zap.Int("chars", utf8.RuneCountInString(text)),
	)

	return text, nil
}
