package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/taxonomy"
	"github.com/poiesic/grantlens/textproc"
)

func newTestMatcher(t *testing.T, spec taxonomy.Spec, cfg textproc.Config, opts ...Option) (*Matcher, *textproc.Normalizer) {
	t.Helper()
	tax, err := taxonomy.New(spec)
	require.NoError(t, err)
	norm, err := textproc.NewNormalizer(cfg)
	require.NoError(t, err)
	matcher, err := NewMatcher(tax, norm, opts...)
	require.NoError(t, err)
	return matcher, norm
}

func cancerSpec() taxonomy.Spec {
	return taxonomy.Spec{
		Categories: []taxonomy.Category{
			{
				Name:     "Cancer",
				Keywords: []string{"cancer", "tumor", "oncology"},
				Subtypes: []taxonomy.Subtype{
					{Name: "Blood_Cancers", Keywords: []string{"leukemia", "lymphoma"}},
					{Name: "Pediatric_Cancers", Keywords: []string{"pediatric", "childhood cancer"}},
					{Name: "Solid_Tumors", Keywords: []string{"carcinoma", "sarcoma"}},
				},
			},
			{
				Name:     "Genetics",
				Keywords: []string{"genetic", "genomic", "dna"},
				Subtypes: []taxonomy.Subtype{
					{Name: "Gene_Therapy", Keywords: []string{"gene therapy", "crispr"}},
				},
			},
		},
	}
}

func TestMatch_LeukemiaScenario(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.DefaultConfig())

	record := &core.GrantRecord{
		ID:    "g1",
		Title: "Pediatric leukemia treatment outcomes",
		Abstract: "This project studies long-term outcomes of childhood blood cancer " +
			"therapy, following patients treated for acute leukemia across twelve centers.",
	}
	tokens, err := norm.NormalizeRecord(record)
	require.NoError(t, err)

	matches, assignments := matcher.Match(record.ID, tokens)
	require.Len(t, assignments, 2)

	cancer := assignments[0]
	assert.Equal(t, "Cancer", cancer.Category)
	assert.True(t, cancer.Matched)
	assert.Equal(t, []string{"Blood_Cancers", "Pediatric_Cancers"}, cancer.Subtypes)
	// Bare hit ("cancer") plus two distinct subtypes.
	assert.InDelta(t, 0.8, cancer.Confidence, 1e-9)

	genetics := assignments[1]
	assert.False(t, genetics.Matched)
	assert.Zero(t, genetics.Confidence)
	assert.Empty(t, genetics.Subtypes)

	// Every match carries the triggering keyword and the grant id.
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Equal(t, "g1", m.GrantID)
		assert.NotEmpty(t, m.Keyword)
	}
}

func TestMatch_SubtypeHitImpliesCategoryConfidenceFloor(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.Config{})

	// Only a subtype keyword, no bare-category keyword.
	tokens := norm.Tokens("novel lymphoma biomarkers")
	_, assignments := matcher.Match("g1", tokens)

	cancer := assignments[0]
	assert.True(t, cancer.Matched)
	assert.Equal(t, []string{"Blood_Cancers"}, cancer.Subtypes)
	assert.GreaterOrEqual(t, cancer.Confidence, 0.3)
}

func TestMatch_MultiWordKeyword(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.Config{})

	// "gene therapy" must match as a contiguous token sequence.
	tokens := norm.Tokens("advances in gene therapy vectors")
	_, assignments := matcher.Match("g1", tokens)
	assert.True(t, assignments[1].Matched)
	assert.Equal(t, []string{"Gene_Therapy"}, assignments[1].Subtypes)

	// Tokens present but not contiguous do not match.
	tokens = norm.Tokens("gene expression during physical therapy")
	_, assignments = matcher.Match("g1", tokens)
	assert.NotContains(t, assignments[1].Subtypes, "Gene_Therapy")
}

func TestMatch_SubtypeCountedOnce(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.Config{})

	// Both Blood_Cancers keywords hit; the subtype still counts once.
	tokens := norm.Tokens("leukemia and lymphoma incidence")
	matches, assignments := matcher.Match("g1", tokens)

	cancer := assignments[0]
	assert.Equal(t, []string{"Blood_Cancers"}, cancer.Subtypes)

	// Both keyword hits are still reported as evidence.
	keywords := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Subtype == "Blood_Cancers" {
			keywords = append(keywords, m.Keyword)
		}
	}
	assert.ElementsMatch(t, []string{"leukemia", "lymphoma"}, keywords)
}

func TestMatch_StemmingAlignsKeywordsAndText(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.Config{ApplyStemming: true})

	// "tumors" stems to the same form as the keyword "tumor".
	tokens := norm.Tokens("imaging of solid tumors")
	_, assignments := matcher.Match("g1", tokens)
	assert.True(t, assignments[0].Matched)
}

func TestMatch_NoFuzzyTolerance(t *testing.T) {
	matcher, norm := newTestMatcher(t, cancerSpec(), textproc.Config{})

	// A typo does not match; there is no fuzzy tolerance.
	tokens := norm.Tokens("leukemmia misspelled study")
	_, assignments := matcher.Match("g1", tokens)
	assert.False(t, assignments[0].Matched)
}

func TestNewMatcher_Validation(t *testing.T) {
	tax, err := taxonomy.New(cancerSpec())
	require.NoError(t, err)
	norm, err := textproc.NewNormalizer(textproc.Config{})
	require.NoError(t, err)

	_, err = NewMatcher(nil, norm)
	assert.Equal(t, ErrTaxonomyRequired, err)

	_, err = NewMatcher(tax, nil)
	assert.Equal(t, ErrNormalizerRequired, err)

	_, err = NewMatcher(tax, norm, WithScorer(nil))
	assert.Error(t, err)
}

func TestContainsTokens(t *testing.T) {
	haystack := []string{"a", "b", "c", "d"}

	assert.True(t, containsTokens(haystack, []string{"b", "c"}))
	assert.True(t, containsTokens(haystack, []string{"a"}))
	assert.True(t, containsTokens(haystack, []string{"a", "b", "c", "d"}))
	assert.False(t, containsTokens(haystack, []string{"b", "d"}))
	assert.False(t, containsTokens(haystack, []string{"e"}))
	assert.False(t, containsTokens(haystack, nil))
	assert.False(t, containsTokens(nil, []string{"a"}))
}
