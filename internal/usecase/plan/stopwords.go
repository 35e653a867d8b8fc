package plan

// stopWords is the manual-fallback stop-word list for keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "by": {}, "can": {}, "do": {}, "does": {}, "exist": {},
	"for": {}, "from": {}, "get": {}, "has": {}, "have": {}, "how": {}, "i": {},
	"if": {}, "in": {}, "is": {}, "it": {}, "me": {}, "much": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "so": {}, "tell": {}, "that": {}, "the": {},
	"their": {}, "there": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "would": {}, "you": {}, "your": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
