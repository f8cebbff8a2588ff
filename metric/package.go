//
// student metric derivation over a benchmark table:
// achieved percentile, performing grade and the
// next grade threshold for a subject score.
//
package metric
