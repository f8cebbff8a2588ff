//
// web service that classifies a student's grade-level standing
// from raw subject scores.
// each score is compared against national end-of-year benchmark
// tables to find the percentile achieved, the highest grade the
// student is performing at, and the score needed to be on track
// for the next grade, so that report generation can quote
// comparable figures for every subject.
//
package otfbenchmark
