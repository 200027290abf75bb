// Package cli provides the console layer of fitexport.
//
// It holds the typed errors the root command maps to exit codes, validation
// of the positional arguments and flags, and the console helpers for progress
// spinners, status lines and the end-of-run summary table.
package cli
