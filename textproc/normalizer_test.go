package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grantlens/core"
)

func newTestNormalizer(t *testing.T, cfg Config) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(cfg)
	require.NoError(t, err)
	return n
}

func TestTokens_LowercaseAndBoundaries(t *testing.T) {
	n := newTestNormalizer(t, Config{})

	tokens := n.Tokens("Pediatric CAR-T Therapy, Phase 1!")
	assert.Equal(t, []string{"pediatric", "car", "t", "therapy", "phase", "1"}, tokens)
}

func TestTokens_StopwordRemoval(t *testing.T) {
	n := newTestNormalizer(t, Config{RemoveStopwords: true})

	tokens := n.Tokens("the effect of treatment on patients")
	assert.Equal(t, []string{"effect", "treatment", "patients"}, tokens)
}

func TestTokens_Stemming(t *testing.T) {
	n := newTestNormalizer(t, Config{ApplyStemming: true})

	tokens := n.Tokens("running cats")
	assert.Equal(t, []string{"run", "cat"}, tokens)
}

func TestTokens_StepsToggleIndependently(t *testing.T) {
	plain := newTestNormalizer(t, Config{})
	tokens := plain.Tokens("the running cats")
	assert.Equal(t, []string{"the", "running", "cats"}, tokens)
}

func TestNormalizeRecord_TooShort(t *testing.T) {
	n := newTestNormalizer(t, Config{MinAbstractLength: 100})

	record := &core.GrantRecord{
		ID:       "g1",
		Title:    "Some title",
		Abstract: strings.Repeat("x", 50),
	}

	_, err := n.NormalizeRecord(record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextTooShort)
	assert.ErrorIs(t, err, core.ErrRecordUnclassifiable)
}

func TestNormalizeRecord_EmptyText(t *testing.T) {
	n := newTestNormalizer(t, Config{})

	_, err := n.NormalizeRecord(&core.GrantRecord{ID: "g1"})
	assert.ErrorIs(t, err, core.ErrRecordUnclassifiable)
}

func TestNormalizeRecord_TruncatesAbstractNotTitle(t *testing.T) {
	n := newTestNormalizer(t, Config{MaxAbstractLength: 20})

	record := &core.GrantRecord{
		ID:       "g1",
		Title:    "leukemia outcomes",
		Abstract: "alpha beta gamma del" + strings.Repeat(" overflowing", 50),
	}

	tokens, err := n.NormalizeRecord(record)
	require.NoError(t, err)

	// Title tokens survive, abstract is cut at the byte limit.
	assert.Contains(t, tokens, "leukemia")
	assert.Contains(t, tokens, "outcomes")
	assert.NotContains(t, tokens, "overflowing")
}

func TestNormalizeRecord_TruncationIsStable(t *testing.T) {
	n := newTestNormalizer(t, Config{MaxAbstractLength: 100})

	record := &core.GrantRecord{
		ID:       "g1",
		Title:    "a title",
		Abstract: strings.Repeat("word ", 200),
	}

	first, err := n.NormalizeRecord(record)
	require.NoError(t, err)
	second, err := n.NormalizeRecord(record)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTruncateAtRune(t *testing.T) {
	// The multi-byte rune straddling the limit is dropped whole.
	s := "abcédef" // é is 2 bytes, at offsets 3-4
	assert.Equal(t, "abc", truncateAtRune(s, 4))
	assert.Equal(t, "abcé", truncateAtRune(s, 5))
	assert.Equal(t, s, truncateAtRune(s, 100))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MinAbstractLength: -1}.Validate())
	assert.Error(t, Config{MinAbstractLength: 100, MaxAbstractLength: 50}.Validate())
}
