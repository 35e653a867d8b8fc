package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chiRouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/domain/allowlist"
	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/askgate/internal/usecase/health"
	orchestrateuc "github.com/kailas-cloud/askgate/internal/usecase/orchestrate"
	"github.com/kailas-cloud/askgate/internal/usecase/plan"
)

type stubClassifier struct{ inDomain bool }

func (s stubClassifier) InDomain(context.Context, string) bool { return s.inDomain }

type stubPlanner struct{}

func (stubPlanner) Build(_ context.Context, query string) plan.Plan {
	return plan.Plan{Restricted: "site:vinuni.edu.vn " + query, Unrestricted: query}
}

type stubSynth struct{ text string }

func (s stubSynth) Synthesize(_ context.Context, _, _ string, evidence []result.Result) answer.Answer {
	return answer.Answered(s.text, answer.Project(evidence))
}

type stubAdapter struct{ results []result.Result }

func (s stubAdapter) Search(context.Context, string, int, backend.Depth) ([]result.Result, error) {
	return s.results, nil
}

func newTestServer(t *testing.T, inDomain bool) *httptest.Server {
	t.Helper()

	hits := []result.Result{
		result.New("Grading Policy", "https://policy.vinuni.edu.vn/grading", "Appeals within 5 days.", 0.9, backend.Corpus),
	}
	orch := orchestrateuc.New(
		stubClassifier{inDomain: inDomain},
		stubPlanner{},
		stubSynth{text: "Appeals must be filed within 5 days [1]."},
		[]orchestrateuc.Slot{{ID: backend.Corpus, Adapter: stubAdapter{results: hits}, Limit: 6}},
		allowlist.New([]string{"vinuni.edu.vn"}),
		orchestrateuc.Config{EvidenceLimit: 6},
		zap.NewNop(),
	)

	server := NewServer(orch, healthuc.New(nil, nil), zap.NewNop())
	r := chiRouter.NewRouter()
	server.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAsk_Answered(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Post(srv.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"query": "grade appeal deadline?"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Answer != "Appeals must be filed within 5 days [1]." {
		t.Errorf("answer = %q", body.Answer)
	}
	if body.Sentinel != string(answer.None) {
		t.Errorf("sentinel = %q, want NONE", body.Sentinel)
	}
	if len(body.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(body.Citations))
	}
	c := body.Citations[0]
	if c.Title != "Grading Policy" || c.URL != "https://policy.vinuni.edu.vn/grading" || c.Score != 0.9 {
		t.Errorf("citation = %+v", c)
	}
	report, ok := body.Diagnostics.Backends["corpus"]
	if !ok || report.Status != "ok" || report.Kept != 1 {
		t.Errorf("diagnostics = %+v", body.Diagnostics)
	}
}

func TestHandleAsk_Denied(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Post(srv.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"query": "who won the world cup?"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask: %v", err)
	}
	defer resp.Body.Close()

	// Denial is a well-formed 200, not an HTTP error.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body askResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Sentinel != string(answer.Denied) {
		t.Errorf("sentinel = %q, want DENIED", body.Sentinel)
	}
	if len(body.Citations) != 0 {
		t.Errorf("citations = %d, want none", len(body.Citations))
	}
}

func TestHandleAsk_BadRequest(t *testing.T) {
	srv := newTestServer(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query": `},
		{"empty query", `{"query": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/ask", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST /v1/ask: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}
