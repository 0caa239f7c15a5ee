package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

//go:embed prompts/quality_record.schema.json
var qualityRecordSchema string

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

var (
	qualitySchemaOnce sync.Once
	qualitySchema     *jsonschema.Schema
	qualitySchemaErr  error
)

func compiledQualitySchema() (*jsonschema.Schema, error) {
	qualitySchemaOnce.Do(func() {
		qualitySchema, qualitySchemaErr = jsonschema.CompileString("quality_record.schema.json", qualityRecordSchema)
	})
	return qualitySchema, qualitySchemaErr
}

// QualityReview is the outcome of one review. Defaulted is set when Record is
// the fail-open substitute rather than a parsed reply, and Kind says why.
type QualityReview struct {
	Record    models.QualityRecord
	Defaulted bool
	Kind      ErrorKind
	Warnings  []string
}

func defaultedReview(kind ErrorKind, warning string) QualityReview {
	return QualityReview{
		Record:    models.DefaultQualityRecord(),
		Defaulted: true,
		Kind:      kind,
		Warnings:  []string{warning},
	}
}

// QualityReviewer runs the document quality review. It never fails the
// pipeline: any problem yields the default record and a warning.
type QualityReviewer interface {
	Review(ctx context.Context, images []models.PageImage) QualityReview
}

type qualityReviewer struct {
	vision  VisionClient
	prompts *PromptBuilder
	log     *zap.Logger
}

func NewQualityReviewer(vision VisionClient, prompts *PromptBuilder, log *zap.Logger) QualityReviewer {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &qualityReviewer{
		vision:  vision,
		prompts: prompts,
		log:     logger.OrNop(log),
	}
}

func (r *qualityReviewer) Review(ctx context.Context, images []models.PageImage) QualityReview {
	raw, err := r.vision.Invoke(ctx, r.prompts.QualityReviewPrompt(), images)
	if err != nil {
		msg := fmt.Sprintf("quality review unavailable (%v); document passed by default", err)
		r.log.Warn("quality review unavailable, using default record", zap.Error(err))
		return defaultedReview(KindNetwork, msg)
	}

	record, err := TryParseQualityRecord(raw)
	if err != nil {
		msg := fmt.Sprintf("quality review unparseable (%v); document passed by default", err)
		r.log.Warn("quality review unparseable, using default record",
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(raw, 200)),
		)
		return defaultedReview(KindQualityParse, msg)
	}

	var warnings []string
	if !record.Consistent() {
		msg := fmt.Sprintf("quality record inconsistent: total %d, criteria sum %d, verdict %s",
			record.TotalScore, record.CriteriaSum(), record.Verdict)
		r.log.Warn("quality record inconsistent",
			zap.Int("total_score", record.TotalScore),
			zap.Int("criteria_sum", record.CriteriaSum()),
			zap.String("verdict", string(record.Verdict)),
		)
		warnings = append(warnings, msg)
	}

	r.log.Info("quality review complete",
		zap.String("source", string(record.DocumentSource)),
		zap.Int("total_score", record.TotalScore),
		zap.String("verdict", string(record.Verdict)),
	)

	review := QualityReview{Record: record, Warnings: warnings}
	if len(warnings) > 0 {
		review.Kind = KindQualityParse
	}
	return review
}

// TryParseQualityRecord decodes a quality review reply. The JSON may be
// wrapped in a fenced code block. The fallback policy is left to the caller.
func TryParseQualityRecord(text string) (models.QualityRecord, error) {
	payload := extractJSON(text)
	if payload == "" {
		return models.QualityRecord{}, errors.Wrap(ErrQualityParse, "empty reply")
	}

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return models.QualityRecord{}, errors.Wrapf(ErrQualityParse, "decode json: %v", err)
	}

	schema, err := compiledQualitySchema()
	if err != nil {
		return models.QualityRecord{}, errors.Wrap(err, "compile quality schema")
	}
	if err := schema.Validate(doc); err != nil {
		return models.QualityRecord{}, errors.Wrapf(ErrQualityParse, "schema: %v", err)
	}

	var record models.QualityRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &record,
		TagName: "mapstructure",
	})
	if err != nil {
		return models.QualityRecord{}, errors.Wrap(err, "create decoder")
	}
	if err := decoder.Decode(doc); err != nil {
		return models.QualityRecord{}, errors.Wrapf(ErrQualityParse, "decode record: %v", err)
	}

	normalizeIssues(&record.Criteria)
	return record, nil
}

// extractJSON returns the body of the first fenced block, or the outermost
// object of the reply when there is no fence.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

func normalizeIssues(c *models.QualityCriteria) {
	for _, crit := range []*models.Criterion{
		&c.SpellingGrammar,
		&c.FactualConsistency,
		&c.LayoutStructure,
		&c.AttentionToDetail,
	} {
		if crit.Issues == nil {
			crit.Issues = []string{}
		}
	}
}
