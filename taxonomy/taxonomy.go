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


package taxonomy

import (
	"fmt"
	"strings"

	"github.com/poiesic/grantlens/core"
)

// Subtype is a named keyword list nested under a category.
type Subtype struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Category is a top-level classification bucket with bare keywords and
// ordered subtypes.
type Category struct {
	Name     string    `yaml:"name"`
	Keywords []string  `yaml:"keywords"`
	Subtypes []Subtype `yaml:"subtypes"`
}

// Taxonomy is the validated, immutable category tree plus award-size
// tiers. It is safe to share across concurrent workers for the duration
// of a run; nothing mutates it after New returns.
type Taxonomy struct {
	Categories []Category
	AwardTiers []AwardTier

	byName map[string]int
}

// Spec is the plain-data form of a taxonomy, typically decoded from YAML.
// Ordering is significant and preserved.
type Spec struct {
	Categories []Category  `yaml:"categories"`
	AwardSize  []AwardTier `yaml:"award_size"`
}

// New validates a Spec and builds an immutable Taxonomy from it.
// Validation failures are fatal and wrap core.ErrTaxonomyInvalid.
func New(spec Spec) (*Taxonomy, error) {
	if len(spec.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", core.ErrTaxonomyInvalid)
	}

	byName := make(map[string]int, len(spec.Categories))
	for i, cat := range spec.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", core.ErrTaxonomyInvalid, i)
		}
		if _, ok := byName[cat.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate category %q", core.ErrTaxonomyInvalid, cat.Name)
		}
		byName[cat.Name] = i

		// Bare keywords are optional for a category that defines
		// subtypes; it must still be matchable somehow.
		if len(cat.Keywords) == 0 && len(cat.Subtypes) == 0 {
			return nil, fmt.Errorf("%w: category %q has neither keywords nor subtypes", core.ErrTaxonomyInvalid, cat.Name)
		}
		if err := validateKeywords(cat.Name, cat.Keywords); err != nil {
			return nil, err
		}

		subNames := make(map[string]struct{}, len(cat.Subtypes))
		for _, sub := range cat.Subtypes {
			if sub.Name == "" {
				return nil, fmt.Errorf("%w: category %q has an unnamed subtype", core.ErrTaxonomyInvalid, cat.Name)
			}
			if _, ok := subNames[sub.Name]; ok {
				return nil, fmt.Errorf("%w: duplicate subtype %q in category %q", core.ErrTaxonomyInvalid, sub.Name, cat.Name)
			}
			subNames[sub.Name] = struct{}{}
			if len(sub.Keywords) == 0 {
				return nil, fmt.Errorf("%w: empty keyword list for %q", core.ErrTaxonomyInvalid, cat.Name+"/"+sub.Name)
			}
			if err := validateKeywords(cat.Name+"/"+sub.Name, sub.Keywords); err != nil {
				return nil, err
			}
		}
	}

	if err := validateAwardTiers(spec.AwardSize); err != nil {
		return nil, err
	}

	return &Taxonomy{
		Categories: spec.Categories,
		AwardTiers: spec.AwardSize,
		byName:     byName,
	}, nil
}

// validateKeywords enforces the lowercase, non-blank keyword invariant
// on every entry of a keyword list.
func validateKeywords(owner string, keywords []string) error {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: blank keyword in %q", core.ErrTaxonomyInvalid, owner)
		}
		if kw != strings.ToLower(kw) {
			return fmt.Errorf("%w: keyword %q in %q must be lowercase", core.ErrTaxonomyInvalid, kw, owner)
		}
	}
	return nil
}

// Category returns the category with the given name, or nil.
func (t *Taxonomy) Category(name string) *Category {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.Categories[i]
}

// CategoryNames returns category names in taxonomy order.
func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, len(t.Categories))
	for i, cat := range t.Categories {
		names[i] = cat.Name
	}
	return names
}

// AllKeywords returns the deduplicated union of a category's bare and
// subtype keywords.
func (t *Taxonomy) AllKeywords(name string) []string {
	cat := t.Category(name)
	if cat == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(keywords []string) {
		for _, kw := range keywords {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	add(cat.Keywords)
	for _, sub := range cat.Subtypes {
		add(sub.Keywords)
	}
	return out
}
