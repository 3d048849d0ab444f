// Package features derives model inputs from a cleaned DataCo order table: label
// encoding of categorical columns, delivery-prediction and fraud-detection flags, and
// the numeric feature matrix with its target vector.
//
// Quantiles interpolate linearly between ranks and ignore nulls. Sales buckets are
// recomputed from the table on every call, so bucket boundaries follow the sample.
package features
