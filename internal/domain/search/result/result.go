package result

import "github.com/kailas-cloud/askgate/internal/domain/search/backend"

// Result is a single ranked hit from a search backend, normalized at the
// adapter boundary. URL is the identity key for de-duplication.
type Result struct {
	title   string
	url     string
	content string
	score   float64
	source  backend.ID
}

// New creates a search result. A backend without scores passes 0.
func New(title, url, content string, score float64, source backend.ID) Result {
	return Result{title: title, url: url, content: content, score: score, source: source}
}

// Title returns the document title.
func (r *Result) Title() string { return r.title }

// URL returns the document URL.
func (r *Result) URL() string { return r.url }

// Content returns the snippet or full text.
func (r *Result) Content() string { return r.content }

// Score returns the backend-assigned relevance score.
func (r *Result) Score() float64 { return r.score }

// Source returns the backend that produced this result.
func (r *Result) Source() backend.ID { return r.source }
