package outcome

import (
	"github.com/kailas-cloud/askgate/internal/domain/answer"
	"github.com/kailas-cloud/askgate/internal/domain/search/backend"
)

// BackendReport records how one backend fared within a single orchestration call.
type BackendReport struct {
	Status backend.Status
	// Raw is the number of results the backend returned.
	Raw int
	// Kept is the number of results that survived domain filtering.
	Kept int
}

// Diagnostics describes what happened during one orchestration call.
type Diagnostics struct {
	Backends map[backend.ID]BackendReport
	// Evidence is the merged evidence bundle size handed to the synthesizer.
	Evidence int
}

// Outcome is the orchestrator's return value. It is always well-formed:
// every failure mode maps to an explanatory text, never an error.
type Outcome struct {
	Text        string
	Sentinel    answer.Sentinel
	Citations   []answer.Citation
	Diagnostics Diagnostics
}
