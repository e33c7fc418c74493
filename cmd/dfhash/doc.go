// Package main hosts the dfhash CLI entrypoint and command graph.
//
// The root command fingerprints the files named on the command line, or
// with --equals checks that they hold the same data. Subcommands manage the
// configuration file and the on-disk fingerprint cache. Configuration
// resolution and logger construction live in the shared command context so
// each command only wires flags to the internal packages.
package main
