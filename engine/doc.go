// Package engine orchestrates the hybrid categorization run.
//
// The Engine type joins the two independent pipelines per batch:
//   - Keyword pipeline: text normalization + taxonomy keyword matching
//     (fast, deterministic, fanned out over records)
//   - Semantic pipeline: embedding + pairwise similarity tiers (slower,
//     needs the whole batch's vectors before it can start)
//
// The reconciliation step layers similarity evidence on top of the
// keyword result; it never overrides a keyword assignment. Keyword
// matching is the auditable ground truth, similarity is exploratory
// signal.
//
// Per-record failures degrade rather than abort: an unclassifiable
// record keeps its batch position with empty assignments, and an
// embedding failure leaves the record's keyword results intact with no
// similarity edges.
package engine
