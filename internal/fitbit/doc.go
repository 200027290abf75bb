// Package fitbit is a minimal client for the Fitbit Web API intraday
// time-series endpoint.
//
// The client does not handle authorization itself: it is given an
// *http.Client that already attaches (and refreshes) the bearer token,
// typically the one returned by oauth.Client.HTTPClient.
//
// Responses are returned as json.RawMessage so that callers can persist the
// payload exactly as Fitbit sent it.
package fitbit
