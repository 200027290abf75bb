// Package oauth implements the browser side of the OAuth2 authorization code
// flow against Fitbit.
//
// # Components
//
//   - Client wraps golang.org/x/oauth2 with the Fitbit endpoints. It builds the
//     authorization URL (with a fresh anti-forgery state and a PKCE challenge)
//     and exchanges the returned code for a token.
//   - CallbackServer is a single-use loopback HTTP server. It accepts exactly
//     one redirect, performs the code exchange, renders a result page and then
//     shuts itself down.
//   - AuthOutcome is the tagged result of that one callback: Success,
//     StateMismatch, MissingToken, ProviderError, UnknownError or ExchangeFault.
//   - OpenBrowser launches the system browser.
//
// # Lifecycle
//
// A CallbackServer moves through NotStarted, Listening, ShuttingDown and
// Stopped. Ready is closed once the socket is bound, which is the signal to
// open the browser. Start returns only after the graceful shutdown has
// completed, so the result page is always written before the socket closes.
// Requests arriving after the first callback are rejected, never queued.
//
// # Usage
//
//	client := oauth.NewClient(oauth.ClientConfig{...})
//	req, err := client.NewAuthRequest()
//
//	server, err := oauth.NewCallbackServer(oauth.CallbackConfig{
//	    Addr:          "127.0.0.1:8080",
//	    ExpectedState: req.State,
//	    Exchanger:     client.Exchanger(req),
//	})
//
//	go func() {
//	    <-server.Ready()
//	    _ = oauth.OpenBrowser(req.URL)
//	}()
//
//	outcome, err := server.Start(ctx)
package oauth
