// Package canonical turns a typed table into its canonical form.
//
// Canonicalization has two steps that every caller must apply in order:
//   - Sort: impose a total row order using every column as a composite key
//   - Serialize: render the sorted table into one exact byte sequence
//
// The ordering policy is fixed: nulls sort before present values, NaN sorts
// after +Inf and equal to every other NaN, -0 equals +0, strings compare
// byte-wise and false sorts before true. The serialized form is UTF-8 with
// "\n" line endings and "," delimiters, so two tables holding the same
// multiset of rows always render byte-identically on every platform.
//
// Equal compares two tables after sorting them with the same comparator, so
// it agrees with hash equality of the serialized forms.
package canonical
