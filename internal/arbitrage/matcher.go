// Package arbitrage contains the cross-venue matching and guaranteed-profit
// calculation that drive opportunity detection.
package arbitrage

import (
	"strings"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Matcher pairs quotes from the two venues that reference the same
// underlying event. It is an interface so the title heuristic below can be
// swapped for a real entity-resolution service (e.g. a shared market
// taxonomy id) without touching the calculator or the store.
type Matcher interface {
	Match(polymarket, kalshi []domain.Quote) []domain.MatchedPair
}

// DefaultPrefixLen is the normalized-title prefix length used when none is
// configured.
const DefaultPrefixLen = 20

// TitleMatcher matches markets by symmetric prefix containment over
// normalized titles: both titles are lowercased and stripped of
// non-alphanumeric characters, then the pair matches if either normalized
// string contains a fixed-length prefix of the other.
//
// This is a deliberately permissive heuristic, not entity resolution. It
// will over-match unrelated markets that share leading text and under-match
// semantically identical markets phrased differently; downstream consumers
// must treat pairs as candidates, not ground truth.
type TitleMatcher struct {
	prefixLen int
}

// NewTitleMatcher creates a TitleMatcher with the given prefix length.
// Non-positive values fall back to DefaultPrefixLen.
func NewTitleMatcher(prefixLen int) *TitleMatcher {
	if prefixLen <= 0 {
		prefixLen = DefaultPrefixLen
	}
	return &TitleMatcher{prefixLen: prefixLen}
}

// Match pairs quotes across the two venues. Complexity is O(|polymarket| ×
// |kalshi|); no index is needed at the expected scale of tens to low
// hundreds of markets per venue. Each quote joins at most one pair per run,
// first-match-wins in Polymarket iteration order.
func (m *TitleMatcher) Match(polymarket, kalshi []domain.Quote) []domain.MatchedPair {
	var pairs []domain.MatchedPair
	usedKalshi := make(map[int]bool, len(kalshi))

	for _, p := range polymarket {
		pNorm := normalizeTitle(p.Title)
		for i, k := range kalshi {
			if usedKalshi[i] {
				continue
			}
			if m.similar(pNorm, normalizeTitle(k.Title)) {
				pairs = append(pairs, domain.MatchedPair{Polymarket: p, Kalshi: k})
				usedKalshi[i] = true
				break
			}
		}
	}
	return pairs
}

// similar reports whether either normalized title contains a prefix of the
// other. The rule is symmetric, so Match(A,B) and Match(B,A) produce the
// same pairs up to venue-label swap.
func (m *TitleMatcher) similar(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, prefix(b, m.prefixLen)) ||
		strings.Contains(b, prefix(a, m.prefixLen))
}

// normalizeTitle lowercases the title and strips every non-alphanumeric
// byte. Titles are compared only in this normalized form.
func normalizeTitle(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Compile-time interface check.
var _ Matcher = (*TitleMatcher)(nil)
