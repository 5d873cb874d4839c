// Package score aggregates the five dimension results into the
// composite page score and letter grade.
//
// The weights favor content and user experience over visuals because
// they dominate how useful a page actually is. Weights sum to 1.0, so
// the composite stays on the same 0-100 scale as the dimensions.
package score
