package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"golang.org/x/oauth2"
)

// OutcomeKind tags the terminal result of one callback.
type OutcomeKind int

const (
	// OutcomeUnknownError means the redirect carried neither a code nor an error.
	OutcomeUnknownError OutcomeKind = iota
	// OutcomeSuccess means the code was exchanged for a token.
	OutcomeSuccess
	// OutcomeStateMismatch means the anti-forgery state did not match, or the
	// provider rejected the grant as replayed or tampered with.
	OutcomeStateMismatch
	// OutcomeMissingToken means the provider returned no token, usually
	// because the client credentials are wrong.
	OutcomeMissingToken
	// OutcomeProviderError means the provider redirected with an error parameter.
	OutcomeProviderError
	// OutcomeExchangeFault is any other failure during the exchange.
	OutcomeExchangeFault
)

// String returns a short machine-friendly name, used in logs and audit events.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeStateMismatch:
		return "state_mismatch"
	case OutcomeMissingToken:
		return "missing_token"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeExchangeFault:
		return "exchange_fault"
	default:
		return "unknown_error"
	}
}

// ErrMissingToken is reported when an exchange completes without an access token.
var ErrMissingToken = errors.New("token response did not contain an access token")

// AuthOutcome is the result of the single callback a CallbackServer accepts.
type AuthOutcome struct {
	Kind OutcomeKind

	// Token is set only for OutcomeSuccess.
	Token *oauth2.Token

	// Message is the headline shown on the result page.
	Message string

	// Hint is an optional second line telling the user what to check.
	Hint string

	// Diagnostic carries the error chain and stack for OutcomeExchangeFault.
	Diagnostic string

	// Cause is the underlying error, if any.
	Cause error
}

// Succeeded reports whether a token was obtained.
func (o *AuthOutcome) Succeeded() bool {
	return o != nil && o.Kind == OutcomeSuccess && o.Token != nil
}

// Err returns nil on success and an *OutcomeError otherwise.
func (o *AuthOutcome) Err() error {
	if o == nil {
		return &OutcomeError{Kind: OutcomeUnknownError, Message: "no callback received"}
	}
	if o.Succeeded() {
		return nil
	}
	return &OutcomeError{Kind: o.Kind, Message: o.Message, Hint: o.Hint, Cause: o.Cause}
}

// OutcomeError is the error form of a failed AuthOutcome.
type OutcomeError struct {
	Kind    OutcomeKind
	Message string
	Hint    string
	Cause   error
}

// Error implements the error interface.
func (e *OutcomeError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *OutcomeError) Unwrap() error {
	return e.Cause
}

func successOutcome(token *oauth2.Token) *AuthOutcome {
	return &AuthOutcome{
		Kind:    OutcomeSuccess,
		Token:   token,
		Message: "You are now authorized to access the Fitbit API!",
	}
}

func stateMismatchOutcome(cause error) *AuthOutcome {
	return &AuthOutcome{
		Kind:    OutcomeStateMismatch,
		Message: "CSRF Warning! Mismatching state",
		Hint:    "The authorization response did not belong to this request. Start the export again.",
		Cause:   cause,
	}
}

func missingTokenOutcome(cause error) *AuthOutcome {
	return &AuthOutcome{
		Kind:    OutcomeMissingToken,
		Message: "Missing access token parameter",
		Hint:    "Please check that you are using the correct clientSecret",
		Cause:   cause,
	}
}

func providerErrorOutcome(code, description string) *AuthOutcome {
	o := &AuthOutcome{
		Kind:    OutcomeProviderError,
		Message: fmt.Sprintf("Authorization failed: %s", code),
		Hint:    description,
	}
	o.Cause = fmt.Errorf("provider returned error %q", code)
	return o
}

func unknownErrorOutcome() *AuthOutcome {
	return &AuthOutcome{
		Kind:    OutcomeUnknownError,
		Message: "Unknown error while authenticating",
	}
}

// faultOutcome records an unexpected exchange failure together with a
// readable diagnostic. stack may be nil, in which case the current one is used.
func faultOutcome(cause error, stack []byte) *AuthOutcome {
	if stack == nil {
		stack = debug.Stack()
	}
	return &AuthOutcome{
		Kind:       OutcomeExchangeFault,
		Message:    "Unexpected error while exchanging the authorization code",
		Diagnostic: formatDiagnostic(cause, stack),
		Cause:      cause,
	}
}

// classifyExchangeError maps an exchange failure onto an outcome.
func classifyExchangeError(err error) *AuthOutcome {
	if errors.Is(err, ErrMissingToken) {
		return missingTokenOutcome(err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErrorCode(retrieveErr) {
		case "invalid_client", "unauthorized_client":
			return missingTokenOutcome(err)
		case "invalid_grant":
			// Fitbit answers a reused or tampered code this way.
			return stateMismatchOutcome(err)
		}
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == 401 {
			return missingTokenOutcome(err)
		}
		return faultOutcome(err, nil)
	}

	// x/oauth2 reports a 200 response without access_token as a plain error.
	if strings.Contains(err.Error(), "missing access_token") {
		return missingTokenOutcome(err)
	}

	return faultOutcome(err, nil)
}

// retrieveErrorCode returns the OAuth error code of a token endpoint
// rejection. Fitbit reports it as errors[].errorType rather than the standard
// "error" field, so the body is read when ErrorCode is empty.
func retrieveErrorCode(err *oauth2.RetrieveError) string {
	if err.ErrorCode != "" {
		return err.ErrorCode
	}

	var payload struct {
		Errors []struct {
			ErrorType string `json:"errorType"`
		} `json:"errors"`
	}
	if jsonErr := json.Unmarshal(err.Body, &payload); jsonErr != nil {
		return ""
	}
	for _, e := range payload.Errors {
		if e.ErrorType != "" {
			return e.ErrorType
		}
	}
	return ""
}

// formatDiagnostic renders the error chain, outermost first, followed by the stack.
func formatDiagnostic(err error, stack []byte) string {
	var b strings.Builder
	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", depth), e, e)
		depth++
	}
	if len(stack) > 0 {
		b.WriteString("\n")
		b.Write(stack)
	}
	return b.String()
}
