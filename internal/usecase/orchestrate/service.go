// Package orchestrate sequences the full retrieval flow: classify, plan,
// per-backend search, domain filtering, merge, synthesis. Its central
// reliability contract is total recovery: Orchestrate never fails, every
// failure mode maps to a well-formed outcome.
package orchestrate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askgate/internal/domain/allowlist"
	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/outcome"
	"github.com/kailas-cloud/askgate/internal/domain/progress"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
	"github.com/kailas-cloud/askgate/internal/domain/search/result"
	"github.com/kailas-cloud/askgate/internal/metrics"
	"github.com/kailas-cloud/askgate/internal/usecase/plan"
)

// Fixed answer bodies for the non-synthesized terminal paths.
const (
	// DeniedText is returned when the classifier rejects the query.
	DeniedText = "I can only help with questions about the topics I cover. Please ask something within that scope."
	// NothingFoundText is returned when the merged evidence bundle is empty.
	NothingFoundText = "I could not find any relevant information for your question."
)

// provenanceHeaders label per-backend answer sections when both subsystems
// produce usable answers.
var provenanceHeaders = map[backend.ID]string{
	backend.Corpus: "From the document corpus:",
	backend.Web:    "From the web:",
}

// Slot declares one backend to the orchestrator. A nil Adapter means the
// backend's credential was absent at startup: it stays skipped for the
// process lifetime and is reported as such in diagnostics.
type Slot struct {
	ID      backend.ID
	Adapter Adapter
	// DomainScoped backends are searched twice: the restricted expression
	// (never filtered) and the unrestricted expression (domain-filtered).
	DomainScoped bool
	Limit        int
	Depth        backend.Depth
}

// Config bounds the evidence bundle and every external call.
type Config struct {
	EvidenceLimit   int
	ClassifyTimeout time.Duration
	PlanTimeout     time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// Service is the retrieval orchestrator.
type Service struct {
	classifier Classifier
	planner    Planner
	synth      Synthesizer
	slots      []Slot
	allowed    allowlist.Set
	cfg        Config
	sink       progress.Sink
	logger     *zap.Logger
}

// New creates an orchestrator. Progress events go nowhere until WithSink.
func New(
	classifier Classifier, planner Planner, synth Synthesizer,
	slots []Slot, allowed allowlist.Set, cfg Config, logger *zap.Logger,
) *Service {
	if cfg.EvidenceLimit <= 0 {
		cfg.EvidenceLimit = 6
	}
	return &Service{
		classifier: classifier,
		planner:    planner,
		synth:      synth,
		slots:      slots,
		allowed:    allowed,
		cfg:        cfg,
		sink:       progress.Nop{},
		logger:     logger,
	}
}

// WithSink sets the progress side-channel. A nil sink restores the no-op.
func (s *Service) WithSink(sink progress.Sink) *Service {
	if sink == nil {
		sink = progress.Nop{}
	}
	s.sink = sink
	return s
}

// searchCall is one adapter invocation within a backend slot.
type searchCall struct {
	expr     string
	filtered bool
}

// Orchestrate answers one query. It never returns an error: classifier
// failure fails open, backend failures contribute empty result sets, and
// generation failure yields the apology answer.
func (s *Service) Orchestrate(ctx context.Context, query, hint string) outcome.Outcome {
	diags := outcome.Diagnostics{Backends: make(map[backend.ID]outcome.BackendReport, len(s.slots))}

	s.emit(progress.StepValidate, "classifying query", nil)

	cctx, cancel := withTimeout(ctx, s.cfg.ClassifyTimeout)
	inDomain := s.classifier.InDomain(cctx, query)
	cancel()

	if !inDomain {
		// The only path that skips search entirely.
		s.emit(progress.StepDone, "query denied", nil)
		return outcome.Outcome{
			Text:        DeniedText,
			Sentinel:    answer.Denied,
			Diagnostics: diags,
		}
	}

	pctx, cancel := withTimeout(ctx, s.cfg.PlanTimeout)
	p := s.planner.Build(pctx, query)
	cancel()

	sets := make([][]result.Result, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot.Adapter == nil {
			diags.Backends[slot.ID] = outcome.BackendReport{Status: backend.StatusSkipped}
			continue
		}

		s.emit(progress.StepSearchStart, "searching "+slot.ID.String(), nil)

		kept, report := s.searchSlot(ctx, slot, s.callsFor(slot, p))
		diags.Backends[slot.ID] = report
		sets = append(sets, kept)

		s.emit(progress.StepSearchDone, "searched "+slot.ID.String(), map[string]any{
			"raw": report.Raw, "kept": report.Kept, "status": string(report.Status),
		})
	}

	merged := Merge(sets, s.cfg.EvidenceLimit)
	diags.Evidence = len(merged)
	s.emit(progress.StepFilterDone, "evidence merged", map[string]any{"evidence": len(merged)})

	if len(merged) == 0 {
		// In-domain but unanswerable; distinct from Denied.
		s.emit(progress.StepDone, "no evidence", nil)
		return outcome.Outcome{
			Text:        NothingFoundText,
			Sentinel:    answer.None,
			Diagnostics: diags,
		}
	}

	s.emit(progress.StepSynthesize, "synthesizing answer", nil)
	ans := s.synthesizeMerged(ctx, query, hint, merged)
	s.emit(progress.StepDone, "done", nil)

	return outcome.Outcome{
		Text:        ans.Text(),
		Sentinel:    ans.Kind(),
		Citations:   ans.Citations(),
		Diagnostics: diags,
	}
}

// callsFor chooses the expressions for one backend slot. Domain-scoped
// backends search both expressions; the restricted-query results are already
// scoped by construction and are never filtered.
func (s *Service) callsFor(slot Slot, p plan.Plan) []searchCall {
	if slot.DomainScoped {
		return []searchCall{
			{expr: p.Restricted, filtered: false},
			{expr: p.Unrestricted, filtered: true},
		}
	}
	return []searchCall{{expr: p.Unrestricted, filtered: false}}
}

// searchSlot runs one backend's calls, catching every error locally.
// No single backend failure aborts the orchestration.
func (s *Service) searchSlot(
	ctx context.Context, slot Slot, calls []searchCall,
) ([]result.Result, outcome.BackendReport) {
	var kept []result.Result
	raw, failures := 0, 0

	for _, call := range calls {
		sctx, cancel := withTimeout(ctx, s.cfg.SearchTimeout)
		start := time.Now()
		res, err := slot.Adapter.Search(sctx, call.expr, slot.Limit, slot.Depth)
		cancel()

		metrics.BackendRequestDuration.WithLabelValues(slot.ID.String()).Observe(time.Since(start).Seconds())

		if err != nil {
			failures++
			metrics.BackendRequestsTotal.WithLabelValues(slot.ID.String(), "error").Inc()
			s.logger.Warn("Backend search failed",
				zap.String("backend", slot.ID.String()),
				zap.Error(err),
			)
			continue
		}

		metrics.BackendRequestsTotal.WithLabelValues(slot.ID.String(), "success").Inc()
		raw += len(res)

		if call.filtered {
			res = s.filterAllowed(res)
		}
		kept = append(kept, res...)
	}

	status := backend.StatusOK
	if failures == len(calls) {
		status = backend.StatusError
	}

	metrics.BackendResultsTotal.WithLabelValues(slot.ID.String(), "raw").Add(float64(raw))
	metrics.BackendResultsTotal.WithLabelValues(slot.ID.String(), "kept").Add(float64(len(kept)))

	return kept, outcome.BackendReport{Status: status, Raw: raw, Kept: len(kept)}
}

// filterAllowed keeps results whose URL host belongs to the allowed set.
func (s *Service) filterAllowed(results []result.Result) []result.Result {
	filtered := make([]result.Result, 0, len(results))
	for _, r := range results {
		if s.allowed.Allows(r.URL()) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// synthesizeMerged runs the synthesizer over the merged bundle. When two
// backend subsystems both contributed evidence, each share is synthesized
// separately and usable answers are concatenated under provenance headers
// instead of re-synthesized into one voice, keeping citation attribution
// traceable per backend.
func (s *Service) synthesizeMerged(
	ctx context.Context, query, hint string, merged []result.Result,
) answer.Answer {
	partitions := s.partitionBySource(merged)

	if len(partitions) == 1 {
		gctx, cancel := withTimeout(ctx, s.cfg.GenerateTimeout)
		defer cancel()
		return s.synth.Synthesize(gctx, query, hint, merged)
	}

	type section struct {
		id   backend.ID
		text string
	}

	var sections []section
	notFound := false
	for _, part := range partitions {
		gctx, cancel := withTimeout(ctx, s.cfg.GenerateTimeout)
		ans := s.synth.Synthesize(gctx, query, hint, part.evidence)
		cancel()

		switch ans.Kind() {
		case answer.None:
			sections = append(sections, section{id: part.id, text: ans.Text()})
		case answer.NotFound:
			notFound = true
		case answer.Denied:
			// One subsystem judging the query off-topic does not override
			// a usable answer from the other.
		}
	}

	switch {
	case len(sections) == 1:
		// A single usable answer needs no provenance header.
		return answer.Answered(sections[0].text, answer.Project(merged))
	case len(sections) > 1:
		parts := make([]string, 0, len(sections))
		for _, sec := range sections {
			header := provenanceHeaders[sec.id]
			if header == "" {
				header = "From " + sec.id.String() + ":"
			}
			parts = append(parts, header+"\n"+sec.text)
		}
		return answer.Answered(strings.Join(parts, "\n\n"), answer.Project(merged))
	case notFound:
		return answer.NewNotFound(answer.Project(merged))
	default:
		return answer.NewDenied()
	}
}

// sourcePartition is one backend's share of the merged bundle.
type sourcePartition struct {
	id       backend.ID
	evidence []result.Result
}

// partitionBySource splits the merged bundle by producing backend, keeping
// slot declaration order for determinism.
func (s *Service) partitionBySource(merged []result.Result) []sourcePartition {
	bySource := make(map[backend.ID][]result.Result)
	for _, r := range merged {
		bySource[r.Source()] = append(bySource[r.Source()], r)
	}

	partitions := make([]sourcePartition, 0, len(bySource))
	for _, slot := range s.slots {
		if evidence, ok := bySource[slot.ID]; ok {
			partitions = append(partitions, sourcePartition{id: slot.ID, evidence: evidence})
			delete(bySource, slot.ID)
		}
	}
	// Results from backends outside the slot list (not expected) still count.
	for id, evidence := range bySource {
		partitions = append(partitions, sourcePartition{id: id, evidence: evidence})
	}
	return partitions
}

func (s *Service) emit(step progress.Step, message string, data map[string]any) {
	s.sink.Emit(progress.Event{Step: step, Message: message, Data: data})
}

// withTimeout bounds a call; a non-positive duration leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
