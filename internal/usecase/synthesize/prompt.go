package synthesize

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/askgate/internal/domain/search/result"
)

// Sentinel wire tokens. These literals are a private contract between the
// grounding prompt and the raw completion output; any other text is a normal
// answer body. A truthful answer that coincides with a token is
// indistinguishable from the sentinel (see the post-processing tests).
const (
	tokenDenied   = "DENIED"
	tokenNotFound = "NOT_FOUND"
)

const systemPrompt = `You answer questions using ONLY the documents supplied below.
Rules:
- Base every statement on the documents. Never use outside knowledge.
- If the question is not about the documents' subject area, reply with exactly: ` + tokenDenied + `
- If the documents do not contain the answer, reply with exactly: ` + tokenNotFound + `
- Otherwise give a concise answer and mention which document numbers support it.`

// buildUserPrompt serializes the evidence bundle and the question into the
// generation prompt. Each document is labeled with an index, title, and URL.
func buildUserPrompt(query, hint string, evidence []result.Result) string {
	var b strings.Builder

	b.WriteString("Documents:\n")
	for i := range evidence {
		r := &evidence[i]
		fmt.Fprintf(&b, "[%d] %s\nURL: %s\n%s\n\n", i+1, r.Title(), r.URL(), r.Content())
	}

	if hint != "" {
		b.WriteString("Context: ")
		b.WriteString(hint)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}
