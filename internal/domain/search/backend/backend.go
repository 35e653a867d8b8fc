package backend

// ID identifies a search backend.
type ID string

const (
	// Corpus is the curated policy-document corpus (vector index).
	Corpus ID = "corpus"
	// Web is the live web-search provider.
	Web ID = "web"
)

// String returns the backend identifier.
func (id ID) String() string { return string(id) }

// Depth controls how thoroughly a backend searches.
type Depth string

const (
	// DepthBasic is the cheap, fast search mode.
	DepthBasic Depth = "basic"
	// DepthAdvanced is the slower, higher-recall search mode.
	DepthAdvanced Depth = "advanced"
)

// ParseDepth maps a string to a Depth, defaulting to DepthBasic.
func ParseDepth(s string) Depth {
	if s == string(DepthAdvanced) {
		return DepthAdvanced
	}
	return DepthBasic
}

// Status records how a backend fared within one orchestration call.
type Status string

const (
	// StatusOK means the backend ran and responded.
	StatusOK Status = "ok"
	// StatusError means the backend ran and failed; it contributed zero results.
	StatusError Status = "error"
	// StatusSkipped means the backend was not configured for this process.
	StatusSkipped Status = "skipped"
)
