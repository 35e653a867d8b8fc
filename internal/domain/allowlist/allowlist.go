// Package allowlist implements domain-based result filtering.
package allowlist

import (
	"net/url"
	"strings"
)

// Set is an immutable set of allowed domain suffixes. A host passes the filter
// if it equals an entry exactly or ends with "." + entry, so a spoofed host that
// merely contains an entry as a substring does not match.
type Set struct {
	domains []string
}

// New creates a Set from domain suffixes. Entries are lowercased and a leading
// "*." or "." is stripped, so "*.vinuni.edu.vn" and "vinuni.edu.vn" are equivalent.
func New(domains []string) Set {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "*.")
		d = strings.TrimPrefix(d, ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return Set{domains: normalized}
}

// Domains returns the normalized entries.
func (s Set) Domains() []string {
	out := make([]string, len(s.domains))
	copy(out, s.domains)
	return out
}

// IsEmpty reports whether the set has no entries.
func (s Set) IsEmpty() bool { return len(s.domains) == 0 }

// Allows reports whether rawURL's host belongs to the set.
// Fails closed: an unparsable URL or a URL without a host is rejected.
func (s Set) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range s.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
