// Package rowmerge reconciles table rows that were split across two physical
// lines, such as a wrapped cell or an OCR line break inside one logical row.
//
// An external classifier scores pairs of vertically adjacent cells with the
// probability that they belong together. The scores for one row pair are
// voted into a [Decision]; positive decisions form a chain map from each row
// to the row that continues it, and [Reconciler.Reconcile] collapses every
// chain into its first row.
//
// # Voting
//
// When the scores cover each column of the upper row exactly once, the pair
// merges if the mean score reaches [Config.Threshold]. Otherwise every blank
// column (counted on the sparser row) is credited with
// [Config.EmptyColumnWeight] and the total is divided by the column count.
//
// # Basic Usage
//
//	scores, err := rowmerge.DecodeScores(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	merged, warnings, err := rowmerge.NewReconciler().Reconcile(table, scores)
//
// A merge map containing a cycle is rejected with
// *model.InvalidMergeGraphError. A row that is the source of more than one
// positive decision keeps the first and produces a warning, or fails with
// [ErrAmbiguousMergeSource] when [Config.StrictSources] is set.
package rowmerge
