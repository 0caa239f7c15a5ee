package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

var promptPenalty = regexp.MustCompile(`- Quality penalty: (-?\d+)`)

// fakeOpenAI serves /v1/chat/completions and writes a rubric report that
// applies the penalty stated in the prompt to a fixed role-fit score.
type fakeOpenAI struct {
	*httptest.Server

	mu      sync.Mutex
	prompts []string
	models  []string
	roleFit int
	status  int
}

func newFakeOpenAI(t *testing.T, roleFit int) *fakeOpenAI {
	t.Helper()

	f := &fakeOpenAI{roleFit: roleFit, status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", f.handle)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOpenAI) BaseURL() string {
	return f.URL + "/v1"
}

func (f *fakeOpenAI) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeOpenAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeOpenAI) handle(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	status := f.status
	roleFit := f.roleFit
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[0].Content)
	}
	f.models = append(f.models, req.Model)
	f.mu.Unlock()

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
		return
	}

	penalty := 0
	if len(req.Messages) > 0 {
		if m := promptPenalty.FindStringSubmatch(req.Messages[0].Content); m != nil {
			penalty, _ = strconv.Atoi(m[1])
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: rubricReport(roleFit, penalty)},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func rubricReport(roleFit, penalty int) string {
	final := roleFit + penalty
	if final < 0 {
		final = 0
	}
	verdict := "**DO NOT PROCEED**"
	if final >= 3 {
		verdict = "**PROCEED TO INTERVIEW**"
	}

	return fmt.Sprintf(`## Scorecard
| Criteria | Score | Evidence |
|----------|-------|----------|
| GenAI literacy (Applied) | 1 | Led RAG evaluation programme |
| Enterprise delivery (PRD / execution) | 1 | Wrote PRDs for workflow tools |
| Stakeholder mgmt + communication | 1 | Ran steering committees |
| Regulated / healthcare familiarity | 1 | Eight years in pharma |

**Role-Fit Score: %d/4**

**Quality Penalty: %d**

**Final Score: %d/4**

## Verdict
%s

## Key Strengths
- Applied GenAI delivery

## Concerns / Gaps
- None significant

## Summary
Strong match for the role.`, roleFit, penalty, final, verdict)
}
