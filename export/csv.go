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


// Package export renders analysis output as CSV. Three views cover the
// downstream consumers: per-grant results, the similarity edge list, and
// a per-category summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/grantlens/core"
)

// WriteResults writes one row per grant, in result order.
func WriteResults(w io.Writer, results []core.HybridResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"grant_id", "award_size", "categories", "subtypes", "confidences",
		"agreement", "edge_count", "unclassifiable", "embedding_unavailable",
	}); err != nil {
		return err
	}

	for _, result := range results {
		var categories, subtypes, confidences []string
		for _, a := range result.Assignments {
			if !a.Matched {
				continue
			}
			categories = append(categories, a.Category)
			for _, sub := range a.Subtypes {
				subtypes = append(subtypes, a.Category+"/"+sub)
			}
			confidences = append(confidences, formatScore(a.Confidence))
		}

		row := []string{
			result.GrantID,
			result.AwardSize,
			strings.Join(categories, ";"),
			strings.Join(subtypes, ";"),
			strings.Join(confidences, ";"),
			strconv.FormatBool(result.Agreement),
			strconv.Itoa(len(result.Edges)),
			strconv.FormatBool(result.Unclassifiable),
			strconv.FormatBool(result.EmbeddingUnavailable),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEdges writes the similarity edge list, one row per retained pair.
func WriteEdges(w io.Writer, edges []core.SimilarityEdge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"grant_a", "grant_b", "score", "tier"}); err != nil {
		return err
	}

	for _, edge := range edges {
		row := []string{
			edge.A,
			edge.B,
			formatScore(edge.Score),
			string(edge.Tier),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCategorySummary aggregates results per category: how many grants
// matched and the mean confidence among the matches. Categories appear
// in name order.
func WriteCategorySummary(w io.Writer, results []core.HybridResult) error {
	type stats struct {
		matched int
		sum     float64
	}
	byCategory := make(map[string]*stats)
	for _, result := range results {
		for _, a := range result.Assignments {
			if !a.Matched {
				continue
			}
			s := byCategory[a.Category]
			if s == nil {
				s = &stats{}
				byCategory[a.Category] = s
			}
			s.matched++
			s.sum += a.Confidence
		}
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "grants_matched", "mean_confidence"}); err != nil {
		return err
	}
	for _, name := range names {
		s := byCategory[name]
		row := []string{
			name,
			strconv.Itoa(s.matched),
			formatScore(s.sum / float64(s.matched)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
