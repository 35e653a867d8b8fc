// Package answer models the synthesizer's tagged output. The DENIED and
// NOT_FOUND wire tokens are mapped to a Sentinel kind by exact-match
// post-processing so the rest of the system never string-compares answer text.
package answer

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/askgate/internal/domain/search/result"
)

// Sentinel tags an Answer as normal, denied, or unanswerable.
type Sentinel string

const (
	// None marks a normal grounded answer.
	None Sentinel = "NONE"
	// Denied marks a query judged out of domain.
	Denied Sentinel = "DENIED"
	// NotFound marks evidence that did not answer the question.
	NotFound Sentinel = "NOT_FOUND"
)

// previewLimit bounds CitationRecord content previews.
const previewLimit = 150

// Citation is the stable, UI-safe projection of a search result. It never
// carries backend-internal fields.
type Citation struct {
	Title          string
	URL            string
	ContentPreview string
	Score          float64
}

// Answer is the synthesizer's result.
type Answer struct {
	kind      Sentinel
	text      string
	citations []Citation
}

// Answered creates a normal grounded answer.
func Answered(text string, citations []Citation) Answer {
	return Answer{kind: None, text: text, citations: citations}
}

// NewDenied creates an out-of-domain answer. It carries no citations.
func NewDenied() Answer {
	return Answer{kind: Denied}
}

// NewNotFound creates an unanswerable answer that still surfaces its evidence.
func NewNotFound(citations []Citation) Answer {
	return Answer{kind: NotFound, citations: citations}
}

// Kind returns the sentinel tag.
func (a *Answer) Kind() Sentinel { return a.kind }

// Text returns the answer body. Empty for Denied and NotFound.
func (a *Answer) Text() string { return a.text }

// Citations returns the citation projection.
func (a *Answer) Citations() []Citation { return a.citations }

// Project maps an evidence bundle to its citation records, truncating previews.
func Project(evidence []result.Result) []Citation {
	if len(evidence) == 0 {
		return nil
	}
	citations := make([]Citation, 0, len(evidence))
	for i := range evidence {
		r := &evidence[i]
		citations = append(citations, Citation{
			Title:          r.Title(),
			URL:            r.URL(),
			ContentPreview: preview(r.Content()),
			Score:          r.Score(),
		})
	}
	return citations
}

// preview truncates content to previewLimit runes on a rune boundary.
func preview(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= previewLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLimit-1]) + "…"
}
