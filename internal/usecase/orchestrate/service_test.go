package orchestrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/domain/allowlist"
	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/progress"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
	"github.com/kailas-cloud/askgate/internal/usecase/plan"
)

// --- Mocks ---

type mockClassifier struct {
	inDomain bool
	calls    int
}

func (m *mockClassifier) InDomain(_ context.Context, _ string) bool {
	m.calls++
	return m.inDomain
}

type mockPlanner struct {
	plan plan.Plan
}

func (m *mockPlanner) Build(_ context.Context, _ string) plan.Plan {
	return m.plan
}

type mockSynth struct {
	fn    func(evidence []result.Result) answer.Answer
	calls int
}

func (m *mockSynth) Synthesize(_ context.Context, _, _ string, evidence []result.Result) answer.Answer {
	m.calls++
	return m.fn(evidence)
}

func answeringSynth(text string) *mockSynth {
	return &mockSynth{fn: func(evidence []result.Result) answer.Answer {
		return answer.Answered(text, answer.Project(evidence))
	}}
}

type mockAdapter struct {
	results []result.Result
	err     error
	exprs   []string
}

func (m *mockAdapter) Search(_ context.Context, expr string, _ int, _ backend.Depth) ([]result.Result, error) {
	m.exprs = append(m.exprs, expr)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func testPlan() plan.Plan {
	return plan.Plan{
		Restricted:   "site:vinuni.edu.vn grade appeal",
		Unrestricted: "grade appeal deadline",
	}
}

func newService(
	classifier Classifier, synth Synthesizer, slots []Slot, allowed allowlist.Set,
) *Service {
	return New(classifier, &mockPlanner{plan: testPlan()}, synth, slots, allowed, Config{EvidenceLimit: 6}, zap.NewNop())
}

// --- Tests ---

func TestOrchestrate_DeniedSkipsSearchEntirely(t *testing.T) {
	adapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/a", 0.9, backend.Corpus)}}
	synth := answeringSynth("should never run")
	svc := newService(
		&mockClassifier{inDomain: false},
		synth,
		[]Slot{{ID: backend.Corpus, Adapter: adapter, Limit: 6}},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "off topic question", "")

	if out.Sentinel != answer.Denied {
		t.Fatalf("Sentinel = %s, want DENIED", out.Sentinel)
	}
	if out.Text != DeniedText {
		t.Errorf("Text = %q, want the fixed denial body", out.Text)
	}
	if len(adapter.exprs) != 0 {
		t.Error("denied query must not reach any backend")
	}
	if synth.calls != 0 {
		t.Error("denied query must not reach the synthesizer")
	}
	if len(out.Diagnostics.Backends) != 0 {
		t.Errorf("denied diagnostics should record no backend activity, got %v", out.Diagnostics.Backends)
	}
}

func TestOrchestrate_NilAdapterRecordedSkipped(t *testing.T) {
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("unused"),
		[]Slot{
			{ID: backend.Corpus, Limit: 6},
			{ID: backend.Web, DomainScoped: true, Limit: 6},
		},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if out.Text != NothingFoundText {
		t.Errorf("Text = %q, want the nothing-found body", out.Text)
	}
	if out.Sentinel != answer.None {
		t.Errorf("Sentinel = %s, want NONE (not DENIED)", out.Sentinel)
	}
	for _, id := range []backend.ID{backend.Corpus, backend.Web} {
		report, ok := out.Diagnostics.Backends[id]
		if !ok {
			t.Fatalf("missing diagnostics for %s", id)
		}
		if report.Status != backend.StatusSkipped {
			t.Errorf("%s status = %s, want skipped", id, report.Status)
		}
	}
}

func TestOrchestrate_BackendFailureIsLocal(t *testing.T) {
	corpusAdapter := &mockAdapter{err: errors.New("connection refused")}
	webAdapter := &mockAdapter{results: []result.Result{
		res("https://vinuni.edu.vn/1", 0.9, backend.Web),
		res("https://vinuni.edu.vn/2", 0.8, backend.Web),
		res("https://vinuni.edu.vn/3", 0.7, backend.Web),
	}}
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("grounded answer"),
		[]Slot{
			{ID: backend.Corpus, Adapter: corpusAdapter, Limit: 6},
			{ID: backend.Web, Adapter: webAdapter, DomainScoped: true, Limit: 6},
		},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if out.Sentinel != answer.None || out.Text != "grounded answer" {
		t.Fatalf("outcome = %q/%s, want the synthesized answer", out.Text, out.Sentinel)
	}
	if out.Diagnostics.Backends[backend.Corpus].Status != backend.StatusError {
		t.Errorf("corpus status = %s, want error", out.Diagnostics.Backends[backend.Corpus].Status)
	}
	if out.Diagnostics.Backends[backend.Web].Status != backend.StatusOK {
		t.Errorf("web status = %s, want ok", out.Diagnostics.Backends[backend.Web].Status)
	}
	if out.Diagnostics.Evidence != 3 {
		t.Errorf("evidence = %d, want 3", out.Diagnostics.Evidence)
	}
	if len(out.Citations) != 3 {
		t.Errorf("citations = %d, want 3", len(out.Citations))
	}
}

func TestOrchestrate_DomainScopedSearchesBothExpressions(t *testing.T) {
	webAdapter := &mockAdapter{results: []result.Result{
		res("https://policy.vinuni.edu.vn/appeals", 0.9, backend.Web),
		res("https://unrelated.com/seo-spam", 0.95, backend.Web),
	}}
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("ok"),
		[]Slot{{ID: backend.Web, Adapter: webAdapter, DomainScoped: true, Limit: 6}},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if len(webAdapter.exprs) != 2 {
		t.Fatalf("adapter calls = %v, want restricted and unrestricted", webAdapter.exprs)
	}
	if webAdapter.exprs[0] != "site:vinuni.edu.vn grade appeal" {
		t.Errorf("first call = %q, want the restricted expression", webAdapter.exprs[0])
	}
	if webAdapter.exprs[1] != "grade appeal deadline" {
		t.Errorf("second call = %q, want the unrestricted expression", webAdapter.exprs[1])
	}

	// Restricted-call results pass unfiltered; the unrestricted call drops the
	// off-domain hit. The duplicate on-domain URL merges to one entry.
	report := out.Diagnostics.Backends[backend.Web]
	if report.Raw != 4 {
		t.Errorf("raw = %d, want 4 (two calls, two hits each)", report.Raw)
	}
	if report.Kept != 3 {
		t.Errorf("kept = %d, want 3 (one off-domain hit filtered)", report.Kept)
	}
	// The off-domain hit still enters the bundle once, through the restricted
	// call, which is scoped by construction and never filtered.
	if out.Diagnostics.Evidence != 2 {
		t.Errorf("evidence = %d, want 2 distinct URLs", out.Diagnostics.Evidence)
	}
	found := false
	for _, c := range out.Citations {
		if strings.Contains(c.URL, "unrelated.com") {
			found = true
		}
	}
	if !found {
		t.Error("restricted-call results must not be domain-filtered")
	}
}

func TestOrchestrate_NonScopedBackendSearchedOnceUnfiltered(t *testing.T) {
	corpusAdapter := &mockAdapter{results: []result.Result{
		// Corpus documents are trusted; no allowlist filtering applies.
		res("https://archive.example.org/old-policy", 0.8, backend.Corpus),
	}}
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("ok"),
		[]Slot{{ID: backend.Corpus, Adapter: corpusAdapter, Limit: 6}},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if len(corpusAdapter.exprs) != 1 || corpusAdapter.exprs[0] != "grade appeal deadline" {
		t.Errorf("corpus calls = %v, want one unrestricted call", corpusAdapter.exprs)
	}
	if out.Diagnostics.Backends[backend.Corpus].Kept != 1 {
		t.Errorf("kept = %d, want 1 (no filtering for non-scoped backends)", out.Diagnostics.Backends[backend.Corpus].Kept)
	}
}

func TestOrchestrate_DualProvenanceConcatenation(t *testing.T) {
	corpusAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/corpus-doc", 0.9, backend.Corpus)}}
	webAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/web-doc", 0.8, backend.Web)}}

	synth := &mockSynth{fn: func(evidence []result.Result) answer.Answer {
		switch evidence[0].Source() {
		case backend.Corpus:
			return answer.Answered("corpus says 5 days.", answer.Project(evidence))
		default:
			return answer.Answered("web says 5 business days.", answer.Project(evidence))
		}
	}}

	svc := newService(
		&mockClassifier{inDomain: true},
		synth,
		[]Slot{
			{ID: backend.Corpus, Adapter: corpusAdapter, Limit: 6},
			{ID: backend.Web, Adapter: webAdapter, DomainScoped: true, Limit: 6},
		},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if synth.calls != 2 {
		t.Fatalf("synthesizer calls = %d, want one per contributing backend", synth.calls)
	}
	want := "From the document corpus:\ncorpus says 5 days.\n\nFrom the web:\nweb says 5 business days."
	if out.Text != want {
		t.Errorf("Text = %q\nwant  %q", out.Text, want)
	}
	if len(out.Citations) != 2 {
		t.Errorf("citations = %d, want the full merged bundle", len(out.Citations))
	}
}

func TestOrchestrate_PartitionDeniedDoesNotOverrideAnswer(t *testing.T) {
	corpusAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/corpus-doc", 0.9, backend.Corpus)}}
	webAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/web-doc", 0.8, backend.Web)}}

	synth := &mockSynth{fn: func(evidence []result.Result) answer.Answer {
		if evidence[0].Source() == backend.Corpus {
			return answer.NewDenied()
		}
		return answer.Answered("web says 5 business days.", answer.Project(evidence))
	}}

	svc := newService(
		&mockClassifier{inDomain: true},
		synth,
		[]Slot{
			{ID: backend.Corpus, Adapter: corpusAdapter, Limit: 6},
			{ID: backend.Web, Adapter: webAdapter, DomainScoped: true, Limit: 6},
		},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if out.Sentinel != answer.None {
		t.Fatalf("Sentinel = %s, want NONE", out.Sentinel)
	}
	// A single usable section carries no provenance header.
	if out.Text != "web says 5 business days." {
		t.Errorf("Text = %q", out.Text)
	}
}

func TestOrchestrate_AllPartitionsNotFound(t *testing.T) {
	corpusAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/corpus-doc", 0.9, backend.Corpus)}}
	webAdapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/web-doc", 0.8, backend.Web)}}

	synth := &mockSynth{fn: func(evidence []result.Result) answer.Answer {
		return answer.NewNotFound(answer.Project(evidence))
	}}

	svc := newService(
		&mockClassifier{inDomain: true},
		synth,
		[]Slot{
			{ID: backend.Corpus, Adapter: corpusAdapter, Limit: 6},
			{ID: backend.Web, Adapter: webAdapter, DomainScoped: true, Limit: 6},
		},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "cafeteria menu", "")

	if out.Sentinel != answer.NotFound {
		t.Fatalf("Sentinel = %s, want NOT_FOUND", out.Sentinel)
	}
	if len(out.Citations) != 2 {
		t.Errorf("citations = %d, want searched evidence surfaced", len(out.Citations))
	}
}

func TestOrchestrate_EmitsProgressEvents(t *testing.T) {
	adapter := &mockAdapter{results: []result.Result{res("https://vinuni.edu.vn/doc", 0.9, backend.Corpus)}}
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("ok"),
		[]Slot{{ID: backend.Corpus, Adapter: adapter, Limit: 6}},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	var steps []progress.Step
	svc.WithSink(progress.Func(func(e progress.Event) {
		steps = append(steps, e.Step)
	}))

	svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	want := []progress.Step{
		progress.StepValidate,
		progress.StepSearchStart,
		progress.StepSearchDone,
		progress.StepFilterDone,
		progress.StepSynthesize,
		progress.StepDone,
	}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, steps[i], want[i])
		}
	}
}

func TestOrchestrate_EvidenceCapped(t *testing.T) {
	var hits []result.Result
	for i := 0; i < 10; i++ {
		hits = append(hits, res("https://vinuni.edu.vn/doc-"+string(rune('a'+i)), float64(10-i)/10, backend.Corpus))
	}
	adapter := &mockAdapter{results: hits}
	svc := newService(
		&mockClassifier{inDomain: true},
		answeringSynth("ok"),
		[]Slot{{ID: backend.Corpus, Adapter: adapter, Limit: 10}},
		allowlist.New([]string{"vinuni.edu.vn"}),
	)

	out := svc.Orchestrate(context.Background(), "grade appeal deadline", "")

	if out.Diagnostics.Evidence != 6 {
		t.Errorf("evidence = %d, want capped at 6", out.Diagnostics.Evidence)
	}
	if len(out.Citations) != 6 {
		t.Errorf("citations = %d, want 6", len(out.Citations))
	}
}
