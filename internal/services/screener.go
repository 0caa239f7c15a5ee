package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type ScreenRequest struct {
	Document    []byte
	Filename    string
	Role        string
	Credentials credentials.Credentials
}

type TextScreenRequest struct {
	Resume      string
	Role        string
	Credentials credentials.Credentials
}

// ClientFactory builds the upstream model clients for one request from that
// request's credentials.
type ClientFactory interface {
	VisionClient(ctx context.Context, creds credentials.Credentials) (VisionClient, error)
	Scorer(ctx context.Context, creds credentials.Credentials) (Scorer, error)
}

type ModelClientFactory struct {
	Vision  VisionConfig
	Scoring ScorerConfig
	Log     *zap.Logger
}

func (f *ModelClientFactory) VisionClient(ctx context.Context, creds credentials.Credentials) (VisionClient, error) {
	return NewGeminiVisionClient(ctx, creds.GeminiKey, f.Vision, f.Log)
}

func (f *ModelClientFactory) Scorer(_ context.Context, creds credentials.Credentials) (Scorer, error) {
	return NewOpenAIScorer(creds.OpenAIKey, f.Scoring, f.Log)
}

type ScreenerOptions struct {
	// QualityReview disables the document quality review when false; the
	// default record is used in its place.
	QualityReview bool
	DefaultRole   string
}

type Screener interface {
	Screen(ctx context.Context, req ScreenRequest) (*models.ScreeningResult, error)
	ScreenText(ctx context.Context, req TextScreenRequest) (*models.ScreeningResult, error)
}

type screener struct {
	rasterizer Rasterizer
	clients    ClientFactory
	roles      repositories.RoleRepository
	prompts    *PromptBuilder
	presenter  Presenter
	opts       ScreenerOptions
	log        *zap.Logger
}

func NewScreener(
	rasterizer Rasterizer,
	clients ClientFactory,
	roles repositories.RoleRepository,
	opts ScreenerOptions,
	log *zap.Logger,
) Screener {
	if strings.TrimSpace(opts.DefaultRole) == "" {
		opts.DefaultRole = DefaultRoleSlug
	}
	return &screener{
		rasterizer: rasterizer,
		clients:    clients,
		roles:      roles,
		prompts:    NewPromptBuilder(),
		presenter:  NewPresenter(),
		opts:       opts,
		log:        logger.OrNop(log),
	}
}

// run tracks one request through the pipeline stages.
type run struct {
	result *models.ScreeningResult
	log    *zap.Logger
}

func (r *run) enter(stage models.Stage) {
	r.result.Enter(stage)
	r.log.Debug("stage entered", zap.String(logger.FieldStage, string(stage)))
}

func (r *run) warn(kind ErrorKind, msg string) {
	r.result.Warn(msg)
	r.log.Warn("screening warning", zap.String("kind", string(kind)), zap.String("warning", msg))
}

func (r *run) fail(err error) (*models.ScreeningResult, error) {
	stageErr := newStageError(r.result.Stage, err)
	r.result.FailureKind = string(stageErr.Kind)
	r.result.Enter(models.StageFailed)
	r.result.FinishedAt = time.Now()

	r.log.Error("❌ screening failed",
		zap.String(logger.FieldStage, string(stageErr.Stage)),
		zap.String("kind", string(stageErr.Kind)),
		zap.Error(err),
	)
	return r.result, stageErr
}

func (r *run) done() *models.ScreeningResult {
	r.enter(models.StageDone)
	r.result.FinishedAt = time.Now()

	r.log.Info("✅ screening complete",
		zap.String("verdict", string(r.result.Presentation.Verdict)),
		zap.String("final_score", r.result.Presentation.FinalScore),
		zap.Int("warnings", len(r.result.Warnings)),
		zap.Duration("duration", r.result.Duration()),
	)
	return r.result
}

func (s *screener) begin(role string) *run {
	result := models.NewScreeningResult(role)
	return &run{
		result: result,
		log:    s.log.With(zap.String(logger.FieldScreeningID, result.ID.String())),
	}
}

// Screen runs the full pipeline for an uploaded PDF. On failure the partial
// result is returned together with a *StageError.
func (s *screener) Screen(ctx context.Context, req ScreenRequest) (*models.ScreeningResult, error) {
	r := s.begin(s.roleSlug(req.Role))
	r.log.Info("🔄 screening started", zap.String("role", r.result.Role), zap.String("filename", req.Filename), zap.Int("bytes", len(req.Document)))

	role, err := s.lookupRole(ctx, r.result.Role)
	if err != nil {
		return r.fail(err)
	}

	vision, err := s.clients.VisionClient(ctx, req.Credentials)
	if err != nil {
		return r.fail(errors.Wrap(err, "create vision client"))
	}
	scorer, err := s.clients.Scorer(ctx, req.Credentials)
	if err != nil {
		return r.fail(errors.Wrap(err, "create scorer"))
	}

	r.enter(models.StageRasterizing)
	pages, err := s.rasterizer.Rasterize(ctx, req.Document)
	if err != nil {
		return r.fail(err)
	}
	r.result.PageCount = len(pages)
	r.log.Info("📄 document rasterized", zap.Int("pages", len(pages)))

	r.enter(models.StageQualityReviewing)
	if s.opts.QualityReview {
		review := NewQualityReviewer(vision, s.prompts, r.log).Review(ctx, pages)
		r.result.Quality = review.Record
		r.result.QualityDefault = review.Defaulted
		for _, w := range review.Warnings {
			r.warn(review.Kind, w)
		}
	} else {
		r.result.Quality = models.DefaultQualityRecord()
		r.result.Quality.Summary = "Quality review skipped."
		r.result.QualityDefault = true
		r.warn(KindQualityParse, "quality review skipped; document passed by default")
	}
	r.result.Penalty = Penalty(r.result.Quality)

	r.enter(models.StageExtracting)
	text, err := NewTextExtractor(vision, s.prompts, r.log).Extract(ctx, pages)
	if err != nil {
		return r.fail(err)
	}

	return s.scoreAndPresent(ctx, r, scorer, text, *role)
}

// ScreenText scores resume text that was pasted rather than uploaded. There
// is no document to review, so the default quality record applies.
func (s *screener) ScreenText(ctx context.Context, req TextScreenRequest) (*models.ScreeningResult, error) {
	r := s.begin(s.roleSlug(req.Role))
	r.log.Info("🔄 text screening started", zap.String("role", r.result.Role), zap.Int("chars", len(req.Resume)))

	role, err := s.lookupRole(ctx, r.result.Role)
	if err != nil {
		return r.fail(err)
	}

	text := strings.TrimSpace(req.Resume)
	if text == "" {
		return r.fail(errors.Wrap(ErrExtraction, "resume text is empty"))
	}

	scorer, err := s.clients.Scorer(ctx, req.Credentials)
	if err != nil {
		return r.fail(errors.Wrap(err, "create scorer"))
	}

	r.result.Quality = models.DefaultQualityRecord()
	r.result.Quality.Summary = "No document to review; resume text was provided directly."
	r.result.QualityDefault = true
	r.result.Penalty = Penalty(r.result.Quality)

	return s.scoreAndPresent(ctx, r, scorer, text, *role)
}

func (s *screener) scoreAndPresent(ctx context.Context, r *run, scorer Scorer, text string, role models.RoleProfile) (*models.ScreeningResult, error) {
	r.enter(models.StageScoring)
	report, err := scorer.Score(ctx, text, r.result.Quality, role)
	if err != nil {
		return r.fail(err)
	}
	r.result.Report = report

	r.enter(models.StagePresenting)
	r.result.Presentation = s.presenter.Present(report)
	if !r.result.Presentation.Determined {
		r.warn(KindVerdictUnparseable, "verdict could not be read from the report; review the full report text")
	}
	if r.result.Presentation.FinalScore == "" {
		r.warn(KindVerdictUnparseable, "final score could not be read from the report")
	}

	return r.done(), nil
}

func (s *screener) roleSlug(requested string) string {
	if slug := strings.ToLower(strings.TrimSpace(requested)); slug != "" {
		return slug
	}
	return s.opts.DefaultRole
}

func (s *screener) lookupRole(ctx context.Context, slug string) (*models.RoleProfile, error) {
	role, err := s.roles.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrap(ErrRoleNotFound, fmt.Sprintf("%q", slug))
		}
		return nil, errors.Wrap(err, "load role")
	}
	return role, nil
}
