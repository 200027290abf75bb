// Package flow runs one export: it authorizes the user through the browser,
// fetches the requested time series with the resulting token and writes it
// to the output file.
//
// A run moves through the phases
//
//	Init -> Authorizing -> Authorized -> Fetching -> Done
//
// and stops in AuthFailed or FetchFailed when a step fails. No output file is
// created unless the fetch succeeded.
package flow
