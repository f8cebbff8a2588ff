//
// normative benchmark tables: loads the nested per-subject
// percentile x grade score matrices and flattens them into an
// immutable table of (subject, grade, percentile) -> score records
// that the metric engine queries.
//
package benchmark
