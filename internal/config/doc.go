// Package config loads the fitexport credentials file.
//
// The file is a small JSON document, named .fitbit by default and looked up
// in the working directory, holding the OAuth client registration:
//
//	{
//	  "clientID": "23ABCD",
//	  "clientSecret": "0123456789abcdef"
//	}
//
// Optional keys tune the run: redirectURI (default http://127.0.0.1:8080/),
// scopes, callbackTimeout (a Go duration such as "5m"), logLevel, and the
// endpoint overrides authorizeURL, tokenURL and apiBaseURL.
//
// The document is parsed with sigs.k8s.io/yaml, so YAML is accepted as well.
// A missing or malformed file is reported as a *ConfigurationError before any
// network activity happens.
package config
