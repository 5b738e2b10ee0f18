package classify

import (
	"errors"
	"log/slog"

	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/taxonomy"
	"github.com/poiesic/grantlens/textproc"
)

var (
	// ErrTaxonomyRequired is returned when a taxonomy is not provided.
	ErrTaxonomyRequired = errors.New("taxonomy required")

	// ErrNormalizerRequired is returned when a normalizer is not provided.
	ErrNormalizerRequired = errors.New("normalizer required")
)

// compiledKeyword is a keyword pushed through the same normalization as
// record text, so token comparison stays symmetric.
type compiledKeyword struct {
	raw    string
	tokens []string
}

type compiledSubtype struct {
	name     string
	keywords []compiledKeyword
}

type compiledCategory struct {
	name     string
	bare     []compiledKeyword
	subtypes []compiledSubtype
}

// Matcher scans normalized record text against a compiled taxonomy and
// produces keyword matches with confidence-scored category assignments.
// Matching is exact token containment only: no fuzzy or typo tolerance,
// so results stay auditable and reproducible.
type Matcher struct {
	categories []compiledCategory
	scorer     Scorer
	logger     *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithScorer sets a custom confidence scorer.
// Default is a WeightedScorer with DefaultWeights.
func WithScorer(scorer Scorer) Option {
	return func(m *Matcher) error {
		if scorer == nil {
			return errors.New("scorer cannot be nil")
		}
		m.scorer = scorer
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher compiles the taxonomy's keywords with the given normalizer.
// Keywords that normalize to nothing (e.g. pure stopwords) are dropped
// with a warning; they could otherwise match every record.
func NewMatcher(tax *taxonomy.Taxonomy, norm *textproc.Normalizer, opts ...Option) (*Matcher, error) {
	if tax == nil {
		return nil, ErrTaxonomyRequired
	}
	if norm == nil {
		return nil, ErrNormalizerRequired
	}

	scorer, err := NewWeightedScorer(DefaultWeights())
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		scorer: scorer,
		logger: slog.Default().With("component", "keyword-matcher"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	compile := func(owner string, keywords []string) []compiledKeyword {
		out := make([]compiledKeyword, 0, len(keywords))
		for _, kw := range keywords {
			tokens := norm.Tokens(kw)
			if len(tokens) == 0 {
				m.logger.Warn("keyword normalizes to nothing, skipping", "keyword", kw, "owner", owner)
				continue
			}
			out = append(out, compiledKeyword{raw: kw, tokens: tokens})
		}
		return out
	}

	m.categories = make([]compiledCategory, 0, len(tax.Categories))
	for _, cat := range tax.Categories {
		compiled := compiledCategory{
			name: cat.Name,
			bare: compile(cat.Name, cat.Keywords),
		}
		for _, sub := range cat.Subtypes {
			compiled.subtypes = append(compiled.subtypes, compiledSubtype{
				name:     sub.Name,
				keywords: compile(cat.Name+"/"+sub.Name, sub.Keywords),
			})
		}
		m.categories = append(m.categories, compiled)
	}

	return m, nil
}

// Match scans one record's token sequence against every category and
// returns the individual keyword hits plus one CategoryAssignment per
// category, in taxonomy order. Matching is pure with respect to the
// immutable taxonomy, so Match may run concurrently across records.
func (m *Matcher) Match(grantID string, tokens []string) ([]core.KeywordMatch, []core.CategoryAssignment) {
	var matches []core.KeywordMatch
	assignments := make([]core.CategoryAssignment, 0, len(m.categories))

	for _, cat := range m.categories {
		bareHits := 0
		for _, kw := range cat.bare {
			if containsTokens(tokens, kw.tokens) {
				bareHits++
				matches = append(matches, core.KeywordMatch{
					GrantID:  grantID,
					Category: cat.name,
					Keyword:  kw.raw,
				})
			}
		}

		var matchedSubtypes []string
		for _, sub := range cat.subtypes {
			subHit := false
			for _, kw := range sub.keywords {
				if containsTokens(tokens, kw.tokens) {
					subHit = true
					matches = append(matches, core.KeywordMatch{
						GrantID:  grantID,
						Category: cat.name,
						Subtype:  sub.name,
						Keyword:  kw.raw,
					})
				}
			}
			if subHit {
				// Each subtype counts once even when several of its
				// keywords match.
				matchedSubtypes = append(matchedSubtypes, sub.name)
			}
		}

		matched := bareHits > 0 || len(matchedSubtypes) > 0
		assignments = append(assignments, core.CategoryAssignment{
			Category:   cat.name,
			Matched:    matched,
			Subtypes:   matchedSubtypes,
			Confidence: m.scorer.Score(bareHits, len(matchedSubtypes)),
		})
	}

	return matches, assignments
}

// containsTokens reports whether needle appears as a contiguous token
// subsequence of haystack.
func containsTokens(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
