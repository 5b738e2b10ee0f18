// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package textproc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"

	"github.com/poiesic/grantlens/core"
)

// ErrTextTooShort indicates the record's abstract is below the configured
// minimum length. It wraps core.ErrRecordUnclassifiable.
var ErrTextTooShort = fmt.Errorf("%w: text too short to classify", core.ErrRecordUnclassifiable)

// Config holds the normalization knobs. The zero value disables every
// optional step; DefaultConfig matches the processing defaults shipped
// with the sample taxonomies.
type Config struct {
	RemoveStopwords   bool `yaml:"remove_stopwords"`
	ApplyStemming     bool `yaml:"apply_stemming"`
	MinAbstractLength int  `yaml:"min_abstract_length"`
	MaxAbstractLength int  `yaml:"max_abstract_length"`
}

// DefaultConfig returns the standard processing configuration.
func DefaultConfig() Config {
	return Config{
		RemoveStopwords:   true,
		ApplyStemming:     true,
		MinAbstractLength: 100,
		MaxAbstractLength: 10000,
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.MinAbstractLength < 0 {
		return errors.New("textproc config: min_abstract_length cannot be negative")
	}
	if c.MaxAbstractLength > 0 && c.MaxAbstractLength < c.MinAbstractLength {
		return errors.New("textproc config: max_abstract_length below min_abstract_length")
	}
	return nil
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Normalizer turns raw grant text into a token sequence. It is stateless
// and safe for concurrent use.
type Normalizer struct {
	cfg Config
}

// NewNormalizer creates a Normalizer with the given configuration.
func NewNormalizer(cfg Config) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{cfg: cfg}, nil
}

// NormalizeRecord produces the token sequence for a grant's title and
// abstract. Records whose abstract is shorter than the configured minimum
// are rejected with ErrTextTooShort; the caller keeps the record in the
// batch and flags it unclassifiable. Over-long abstracts are truncated at
// a rune boundary before tokenization, so the result is stable across
// runs. The title is never truncated.
func (n *Normalizer) NormalizeRecord(record *core.GrantRecord) ([]string, error) {
	abstract := record.Abstract
	if len(abstract) < n.cfg.MinAbstractLength {
		return nil, fmt.Errorf("%w: abstract is %d chars, minimum is %d",
			ErrTextTooShort, len(abstract), n.cfg.MinAbstractLength)
	}
	if n.cfg.MaxAbstractLength > 0 && len(abstract) > n.cfg.MaxAbstractLength {
		abstract = truncateAtRune(abstract, n.cfg.MaxAbstractLength)
	}

	text := record.Title
	if abstract != "" {
		text = text + " " + abstract
	}
	tokens := n.Tokens(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens after normalization", ErrTextTooShort)
	}
	return tokens, nil
}

// Tokens normalizes arbitrary text: lowercase, word-boundary tokenization,
// then optional stopword removal and stemming. Taxonomy keywords go
// through this same path so keyword and text tokens stay comparable.
func (n *Normalizer) Tokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if n.cfg.RemoveStopwords && stopwords[tok] {
			continue
		}
		if n.cfg.ApplyStemming {
			if stemmed := english.Stem(tok, false); stemmed != "" {
				tok = stemmed
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// truncateAtRune cuts s to at most max bytes without splitting a rune.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
