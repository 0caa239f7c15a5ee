package services

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/resume-screener/internal/models"
)

const failingReviewJSON = `{
  "document_source": "AGENCY",
  "agency_name": "Acme Talent",
  "criteria": {
    "spelling_grammar": {"score": 0, "issues": ["'recieved' on page 1"]},
    "factual_consistency": {"score": 1, "issues": []},
    "layout_structure": {"score": 1},
    "attention_to_detail": {"score": 0, "issues": ["mixed date formats"]}
  },
  "total_score": 2,
  "verdict": "FAIL",
  "summary": "Several careless errors."
}`

// stubVision answers every call with the same reply.
type stubVision struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubVision) Invoke(_ context.Context, prompt string, _ []models.PageImage) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func (s *stubVision) Model() string { return "stub-vision" }

func TestTryParseQualityRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, q models.QualityRecord)
	}{
		{
			name:  "fenced block with prose",
			input: "Here is my review:\n```json\n" + failingReviewJSON + "\n```\nThanks.",
			check: func(t *testing.T, q models.QualityRecord) {
				if q.Verdict != models.QualityFail || q.TotalScore != 2 {
					t.Fatalf("unexpected verdict %s %d", q.Verdict, q.TotalScore)
				}
				if q.AgencyName == nil || *q.AgencyName != "Acme Talent" {
					t.Fatalf("unexpected agency %v", q.AgencyName)
				}
				if q.Criteria.SpellingGrammar.Score != 0 || len(q.Criteria.SpellingGrammar.Issues) != 1 {
					t.Fatalf("unexpected spelling criterion %+v", q.Criteria.SpellingGrammar)
				}
				if q.Criteria.LayoutStructure.Issues == nil {
					t.Fatal("missing issues should decode to an empty list")
				}
				if !q.Consistent() {
					t.Fatal("record should be consistent")
				}
			},
		},
		{
			name:  "bare object",
			input: failingReviewJSON,
			check: func(t *testing.T, q models.QualityRecord) {
				if q.DocumentSource != models.SourceAgency {
					t.Fatalf("unexpected source %s", q.DocumentSource)
				}
			},
		},
		{
			name:  "null agency",
			input: strings.Replace(failingReviewJSON, `"Acme Talent"`, "null", 1),
			check: func(t *testing.T, q models.QualityRecord) {
				if q.AgencyName != nil {
					t.Fatalf("expected nil agency, got %q", *q.AgencyName)
				}
			},
		},
		{name: "empty", input: "   ", wantErr: true},
		{name: "prose only", input: "I could not read the document.", wantErr: true},
		{name: "truncated json", input: failingReviewJSON[:80], wantErr: true},
		{name: "missing verdict", input: strings.Replace(failingReviewJSON, `"verdict": "FAIL",`, "", 1), wantErr: true},
		{name: "score out of range", input: strings.Replace(failingReviewJSON, `"total_score": 2`, `"total_score": 7`, 1), wantErr: true},
		{name: "unknown verdict", input: strings.Replace(failingReviewJSON, `"FAIL"`, `"MAYBE"`, 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TryParseQualityRecord(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrQualityParse) {
					t.Fatalf("expected ErrQualityParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestReviewFailsOpen(t *testing.T) {
	tests := []struct {
		name   string
		vision *stubVision
		kind   ErrorKind
	}{
		{name: "no result", vision: &stubVision{err: errors.Wrap(ErrNoResult, "3 attempts")}, kind: KindNetwork},
		{name: "unparseable", vision: &stubVision{reply: "Sorry, I cannot help with that."}, kind: KindQualityParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.WarnLevel)
			reviewer := NewQualityReviewer(tt.vision, nil, zap.New(core))

			review := reviewer.Review(context.Background(), testPages(1))
			record, warnings := review.Record, review.Warnings

			if !review.Defaulted || review.Kind != tt.kind {
				t.Fatalf("expected defaulted review of kind %s, got %v %s", tt.kind, review.Defaulted, review.Kind)
			}
			if record.Verdict != models.QualityPass || record.TotalScore != 4 {
				t.Fatalf("expected default PASS 4/4, got %s %d", record.Verdict, record.TotalScore)
			}
			if len(warnings) != 1 {
				t.Fatalf("expected one warning, got %v", warnings)
			}
			if observed.Len() == 0 {
				t.Fatal("expected a logged warning")
			}
		})
	}
}

func TestReviewReturnsParsedRecord(t *testing.T) {
	vision := &stubVision{reply: "```json\n" + failingReviewJSON + "\n```"}
	review := NewQualityReviewer(vision, nil, nil).Review(context.Background(), testPages(2))
	record, warnings := review.Record, review.Warnings

	if review.Defaulted {
		t.Fatal("parsed record must not be flagged as default")
	}
	if record.Verdict != models.QualityFail {
		t.Fatalf("expected FAIL, got %s", record.Verdict)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(vision.prompts) != 1 || !strings.Contains(vision.prompts[0], "AGENCY") {
		t.Fatal("expected the quality review prompt to be sent")
	}
}

func TestReviewKeepsInconsistentRecord(t *testing.T) {
	inconsistent := strings.Replace(failingReviewJSON, `"total_score": 2`, `"total_score": 3`, 1)
	core, observed := observer.New(zapcore.WarnLevel)

	review := NewQualityReviewer(&stubVision{reply: inconsistent}, nil, zap.New(core)).
		Review(context.Background(), testPages(1))
	record, warnings := review.Record, review.Warnings

	if record.TotalScore != 3 || record.Verdict != models.QualityFail {
		t.Fatalf("record must not be rewritten, got %d %s", record.TotalScore, record.Verdict)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "inconsistent") {
		t.Fatalf("expected inconsistency warning, got %v", warnings)
	}
	if observed.FilterMessage("quality record inconsistent").Len() != 1 {
		t.Fatal("expected inconsistency to be logged")
	}
}
