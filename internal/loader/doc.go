// Package loader decodes tabular files into typed tables.
//
// Supported inputs:
//   - delimited text (comma by default, tab for .tsv files)
//   - delimited text compressed with gzip or zstd
//   - Parquet files
//
// The container is identified by magic bytes first and the file suffix
// second, so a mislabeled file still loads. Delimited text is decoded from
// the configured character encoding (BOM sniffing by default) before
// parsing, and each column is resolved to the narrowest type that holds
// every present cell: int64, then float64, then bool, then string.
package loader
