package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/retry"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     []generateCall
	responses []fakeGenerateResult
	// respond, when set, answers instead of the queue.
	respond func(contents []*genai.Content) (*genai.GenerateContentResponse, error)
}

type fakeGenerateResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeGenerator) enqueue(resp *genai.GenerateContentResponse, err error) *fakeGenerator {
	f.responses = append(f.responses, fakeGenerateResult{resp: resp, err: err})
	return f
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	if f.respond != nil {
		return f.respond(contents)
	}
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func fastVisionConfig() VisionConfig {
	return VisionConfig{
		Model: "gemini-test",
		Retry: retry.Policy{MaxAttempts: 3, Multiplier: 2},
	}
}

func testPages(n int) []models.PageImage {
	pages := make([]models.PageImage, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, models.PageImage{Index: i, Data: []byte{0x89, 'P', 'N', 'G', byte(i)}, Format: models.FormatPNG})
	}
	return pages
}

func TestInvokeBuildsMultimodalRequest(t *testing.T) {
	gen := (&fakeGenerator{}).enqueue(textResponse("  transcribed text "), nil)
	client := NewVisionClient(gen, fastVisionConfig(), zap.NewNop())

	out, err := client.Invoke(context.Background(), "read this", testPages(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "transcribed text" {
		t.Fatalf("unexpected output %q", out)
	}

	call := gen.calls[0]
	if call.model != "gemini-test" {
		t.Fatalf("unexpected model %q", call.model)
	}
	if len(call.contents) != 1 {
		t.Fatalf("expected a single content, got %d", len(call.contents))
	}
	parts := call.contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("expected text plus two images, got %d parts", len(parts))
	}
	if parts[0].Text != "read this" {
		t.Fatalf("first part must be the prompt, got %+v", parts[0])
	}
	for i, p := range parts[1:] {
		if p.InlineData == nil || p.InlineData.MIMEType != "image/png" {
			t.Fatalf("part %d is not inline png: %+v", i+1, p)
		}
		if p.InlineData.Data[4] != byte(i+1) {
			t.Fatalf("images out of order at part %d", i+1)
		}
	}
	if call.config.Temperature == nil || *call.config.Temperature != 0.1 {
		t.Fatalf("expected temperature 0.1, got %v", call.config.Temperature)
	}
	if call.config.MaxOutputTokens != 8192 {
		t.Fatalf("expected 8192 max tokens, got %d", call.config.MaxOutputTokens)
	}
}

func TestInvokeRetriesTransientFailures(t *testing.T) {
	tests := []struct {
		name string
		fail fakeGenerateResult
	}{
		{name: "rate limited", fail: fakeGenerateResult{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}}},
		{name: "server error", fail: fakeGenerateResult{err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}}},
		{name: "empty body", fail: fakeGenerateResult{resp: &genai.GenerateContentResponse{}}},
		{name: "transport", fail: fakeGenerateResult{err: errors.New("connection reset by peer")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			gen.enqueue(tt.fail.resp, tt.fail.err)
			gen.enqueue(textResponse("ok"), nil)

			out, err := NewVisionClient(gen, fastVisionConfig(), nil).Invoke(context.Background(), "p", testPages(1))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != "ok" {
				t.Fatalf("unexpected output %q", out)
			}
			if gen.callCount() != 2 {
				t.Fatalf("expected 2 calls, got %d", gen.callCount())
			}
		})
	}
}

func TestInvokeGivesNoResultAfterThreeAttempts(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	gen := &fakeGenerator{}
	for i := 0; i < 5; i++ {
		gen.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests})
	}

	out, err := NewVisionClient(gen, fastVisionConfig(), zap.New(core)).Invoke(context.Background(), "p", testPages(1))

	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if gen.callCount() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", gen.callCount())
	}
	if observed.FilterMessage("vision model rate limited").Len() != 3 {
		t.Fatalf("expected a diagnostic per attempt, got %d", observed.FilterMessage("vision model rate limited").Len())
	}
}

func TestInvokeStopsOnClientError(t *testing.T) {
	gen := &fakeGenerator{}
	gen.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})
	gen.enqueue(textResponse("should not be reached"), nil)

	_, err := NewVisionClient(gen, fastVisionConfig(), nil).Invoke(context.Background(), "p", testPages(1))
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected a single attempt, got %d", gen.callCount())
	}
}

func TestInvokeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{respond: func([]*genai.Content) (*genai.GenerateContentResponse, error) {
		cancel()
		return nil, context.Canceled
	}}

	_, err := NewVisionClient(gen, fastVisionConfig(), nil).Invoke(ctx, "p", testPages(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected one call, got %d", gen.callCount())
	}
}

func TestFirstCandidateTextSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "answer"},
			}},
		}},
	}

	got, ok := firstCandidateText(resp)
	if !ok || got != "answer" {
		t.Fatalf("expected answer, got %q (%v)", got, ok)
	}

	if _, ok := firstCandidateText(nil); ok {
		t.Fatal("nil response must not yield text")
	}
}

func TestNewGeminiVisionClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiVisionClient(context.Background(), " ", VisionConfig{}, nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}
