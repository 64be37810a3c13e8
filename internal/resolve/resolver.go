// Package resolve turns free-text queries into course records using a tiered
// matching strategy ordered from most precise to least precise, so an obvious
// exact or prefix hit is never overridden by fuzzy-matching noise.
package resolve

import (
	"strings"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// Match tiers, in priority order.
const (
	TierExact     = "exact"
	TierPrefix    = "prefix"
	TierSynonym   = "synonym"
	TierSubstring = "substring"
	TierOverlap   = "overlap"
	TierInitials  = "initials"
	TierFuzzy     = "fuzzy"
	TierNone      = "none"
)

// Options holds the empirically chosen matching thresholds. They are
// configurable rather than fixed constants.
type Options struct {
	// MaxEditDistance accepts fuzzy matches with distance strictly below it.
	MaxEditDistance int
	// MinOverlapWordLen is the minimum word length counted in overlap scoring.
	MinOverlapWordLen int
	// MaxInitialsLen is the longest query the acronym tier attempts.
	MaxInitialsLen int
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{
		MaxEditDistance:   4,
		MinOverlapWordLen: 3,
		MaxInitialsLen:    5,
	}
}

// candidate is one catalog record with its comparison forms precomputed.
type candidate struct {
	rec       *catalog.CourseRecord
	norm      string
	collapsed string
	words     []string
	acronym   string
}

// Resolver matches free text against the catalog. Resolution is a pure
// function of the loaded catalog and synonym table, with no I/O.
type Resolver struct {
	candidates []candidate
	syns       *Synonyms
	opts       Options
	met        *metrics.Metrics
}

// New builds a resolver over the catalog. met may be nil.
func New(cat *catalog.Catalog, syns *Synonyms, opts Options, met *metrics.Metrics) *Resolver {
	records := cat.Records()
	candidates := make([]candidate, 0, len(records))
	for i := range records {
		rec := &records[i]
		norm := stringutil.Normalize(rec.Name)
		candidates = append(candidates, candidate{
			rec:       rec,
			norm:      norm,
			collapsed: strings.ReplaceAll(norm, " ", ""),
			words:     strings.Fields(norm),
			acronym:   stringutil.Initials(rec.Name),
		})
	}
	return &Resolver{candidates: candidates, syns: syns, opts: opts, met: met}
}

// Resolve returns the best-matching course record, or nil when no tier
// produces a match. Ties within a tier break by catalog order.
func (r *Resolver) Resolve(query string) *catalog.CourseRecord {
	start := time.Now()
	rec, tier := r.resolve(query)

	if r.met != nil {
		status := "success"
		if rec == nil {
			status = "miss"
		}
		r.met.RecordResolverLookup(tier, status, time.Since(start).Seconds())
	}
	return rec
}

func (r *Resolver) resolve(query string) (*catalog.CourseRecord, string) {
	q := stringutil.Normalize(query)
	// Queries shorter than 2 normalized characters never resolve; a single
	// character would prefix-match essentially anything.
	if len([]rune(q)) < 2 || len(r.candidates) == 0 {
		return nil, TierNone
	}
	qc := strings.ReplaceAll(q, " ", "")

	// Tier 1: exact, ignoring spacing differences.
	for _, c := range r.candidates {
		if c.norm == q || c.collapsed == qc {
			return c.rec, TierExact
		}
	}

	// Tier 2: prefix, either direction.
	for _, c := range r.candidates {
		if strings.HasPrefix(c.norm, q) || strings.HasPrefix(q, c.norm) {
			return c.rec, TierPrefix
		}
	}

	// Tier 3: synonym expansion as a word-boundary substring. A bare
	// substring test would let a short abbreviation match inside an
	// unrelated longer word.
	if expansion, ok := r.syns.Lookup(q); ok && expansion != "" {
		for _, c := range r.candidates {
			if containsWordSeq(c.norm, expansion) {
				return c.rec, TierSynonym
			}
		}
	}

	// Tier 4: substring containment, either direction. The collapsed forms
	// catch queries typed without the name's spacing.
	for _, c := range r.candidates {
		if strings.Contains(c.norm, q) || strings.Contains(q, c.norm) ||
			strings.Contains(c.collapsed, qc) {
			return c.rec, TierSubstring
		}
	}

	// Tier 5: word-overlap scoring.
	qWords := filterWords(strings.Fields(q), r.opts.MinOverlapWordLen)
	if len(qWords) > 0 {
		needed := 2
		if len(qWords) < needed {
			needed = len(qWords)
		}
		for _, c := range r.candidates {
			cWords := filterWords(c.words, r.opts.MinOverlapWordLen)
			if overlapCount(qWords, cWords) >= needed {
				return c.rec, TierOverlap
			}
		}
	}

	// Tier 6: acronym of the display-name initials, short queries only.
	if len([]rune(qc)) <= r.opts.MaxInitialsLen {
		for _, c := range r.candidates {
			if c.acronym == "" {
				continue
			}
			if strings.Contains(c.acronym, qc) || strings.Contains(qc, c.acronym) {
				return c.rec, TierInitials
			}
		}
	}

	// Tier 7: edit-distance fallback, a last resort for typos. Multi-word
	// queries are also compared against the candidate's same-word-count
	// prefix so a misspelled partial title still matches a longer full name.
	// Single-word queries only compare full names; short prefixes would make
	// any 3-letter string a false positive.
	qWordCount := len(strings.Fields(q))
	var best *catalog.CourseRecord
	bestDist := r.opts.MaxEditDistance
	for _, c := range r.candidates {
		d := Distance(q, c.norm)
		if qWordCount >= 2 {
			if prefix := wordPrefix(c.words, qWordCount); prefix != "" {
				if pd := Distance(q, prefix); pd < d {
					d = pd
				}
			}
		}
		if d < bestDist {
			bestDist = d
			best = c.rec
		}
	}
	if best != nil {
		return best, TierFuzzy
	}

	return nil, TierNone
}

// compare splitters mark the boundaries between course mentions in a
// comparison query.
var compareSeparators = map[string]bool{
	"vs": true, "versus": true, "compare": true, "between": true, "and": true,
}

// IsComparison reports whether the text looks like a compare/versus query.
func IsComparison(text string) bool {
	for _, w := range stringutil.NormalizeWords(text) {
		switch w {
		case "vs", "versus", "compare", "between":
			return true
		}
	}
	return false
}

// ResolveAll resolves every distinct course mentioned in a comparison query,
// in mention order, up to max records.
func (r *Resolver) ResolveAll(text string, max int) []*catalog.CourseRecord {
	words := stringutil.NormalizeWords(text)

	var segments []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, w := range words {
		if compareSeparators[w] {
			flush()
			continue
		}
		current = append(current, w)
	}
	flush()

	seen := make(map[string]bool)
	var out []*catalog.CourseRecord
	for _, seg := range segments {
		rec := r.Resolve(seg)
		if rec == nil {
			continue
		}
		key := stringutil.Normalize(rec.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// containsWordSeq reports whether needle appears in haystack aligned on word
// boundaries.
func containsWordSeq(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func filterWords(words []string, minLen int) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) >= minLen {
			out = append(out, w)
		}
	}
	return out
}

func overlapCount(qWords, cWords []string) int {
	count := 0
	for _, qw := range qWords {
		for _, cw := range cWords {
			if strings.Contains(cw, qw) || strings.Contains(qw, cw) {
				count++
				break
			}
		}
	}
	return count
}

func wordPrefix(words []string, n int) string {
	if n <= 0 || n >= len(words) {
		return ""
	}
	return strings.Join(words[:n], " ")
}
