package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"fitexport/pkg/logging"
	pkgstrings "fitexport/pkg/strings"
)

const (
	// DefaultCallbackAddr is where the callback receiver listens by default.
	DefaultCallbackAddr = "127.0.0.1:8080"

	// ExchangeTimeout bounds the token exchange performed inside the callback.
	ExchangeTimeout = 30 * time.Second

	// shutdownTimeout bounds the graceful shutdown that flushes the result page.
	shutdownTimeout = 5 * time.Second
)

var (
	// ErrCallbackTimeout is returned by Start when no callback arrived in time.
	ErrCallbackTimeout = errors.New("timed out waiting for the authorization callback")

	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("callback server already started")

	// ErrStopped is returned by Start when Stop was called before any callback.
	ErrStopped = errors.New("callback server stopped before a callback was received")
)

// ServerState is the lifecycle state of a CallbackServer.
type ServerState int

const (
	StateNotStarted ServerState = iota
	StateListening
	StateShuttingDown
	StateStopped
)

// String makes ServerState satisfy the fmt.Stringer interface.
func (s ServerState) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateListening:
		return "Listening"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// CallbackResult represents the query parameters of an OAuth callback.
type CallbackResult struct {
	// Code is the authorization code from the OAuth provider.
	Code string

	// State is the state parameter to verify against the original request.
	State string

	// Error is the error code if the authorization failed.
	Error string

	// ErrorDescription is a human-readable error description.
	ErrorDescription string
}

// IsError returns true if the callback result represents an error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

func parseCallback(q url.Values) *CallbackResult {
	return &CallbackResult{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// CallbackConfig configures a CallbackServer.
type CallbackConfig struct {
	// Addr is the host:port to bind. Defaults to DefaultCallbackAddr.
	// Port 0 picks a free port, which is only useful in tests since the
	// redirect URI is registered with the provider.
	Addr string

	// Path is the single route served. Defaults to "/".
	Path string

	// ExpectedState is the anti-forgery state sent with the authorization request.
	ExpectedState string

	// Exchanger trades the received code for a token.
	Exchanger Exchanger

	// Timeout bounds the wait for the callback. Zero waits until ctx is done.
	Timeout time.Duration
}

// CallbackServer is a temporary local HTTP server for receiving the OAuth callback.
// It serves exactly one meaningful request, then shuts down.
type CallbackServer struct {
	addr          string
	path          string
	expectedState string
	exchanger     Exchanger
	timeout       time.Duration

	mu       sync.Mutex
	state    ServerState
	claimed  bool
	outcome  *AuthOutcome
	server   *http.Server
	listener net.Listener

	ready    chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	stopOnce sync.Once
}

// NewCallbackServer creates a callback server. It does not bind until Start.
func NewCallbackServer(cfg CallbackConfig) (*CallbackServer, error) {
	if cfg.ExpectedState == "" {
		return nil, errors.New("callback server requires the expected state")
	}
	if cfg.Exchanger == nil {
		return nil, errors.New("callback server requires an exchanger")
	}

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &CallbackServer{
		addr:          addr,
		path:          path,
		expectedState: cfg.ExpectedState,
		exchanger:     cfg.Exchanger,
		timeout:       cfg.Timeout,
		ready:         make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Ready is closed once the listening socket is bound.
func (s *CallbackServer) Ready() <-chan struct{} {
	return s.ready
}

// State returns the current lifecycle state.
func (s *CallbackServer) State() ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// URL returns the callback URL once the server is listening, "" before.
func (s *CallbackServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String() + s.path
}

// Start binds the listener, serves the callback route and blocks until the
// server has shut down. It returns the outcome of the callback, or an error if
// the listener failed, ctx was cancelled, the timeout elapsed or Stop was
// called first. The result page has been fully written when Start returns.
func (s *CallbackServer) Start(ctx context.Context) (*AuthOutcome, error) {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.state = StateStopped
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(routePattern(s.path), s.handleCallback)

	s.listener = listener
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.state = StateListening
	close(s.ready)
	s.mu.Unlock()

	logging.Info("Callback", "Listening for the authorization callback on %s", listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var timeout <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var waitErr error
	select {
	case <-s.done:
	case err := <-serveErr:
		waitErr = fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-timeout:
		waitErr = fmt.Errorf("%w after %s", ErrCallbackTimeout, s.timeout)
	}

	s.Stop()

	if waitErr != nil {
		logging.Warn("Callback", "Stopped without a callback: %v", waitErr)
		return nil, waitErr
	}

	s.mu.Lock()
	outcome := s.outcome
	s.mu.Unlock()
	if outcome == nil {
		return nil, ErrStopped
	}
	return outcome, nil
}

// Stop gracefully shuts down the callback server, waiting for an in-flight
// response to be written. It is idempotent and a no-op if the server is not
// running.
func (s *CallbackServer) Stop() {
	s.mu.Lock()
	if s.state == StateNotStarted || s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateShuttingDown
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(ctx); err != nil {
				logging.Warn("Callback", "Graceful shutdown did not complete: %v", err)
				_ = s.server.Close()
			}
		}

		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()

		s.signalDone()
		logging.Debug("Callback", "Callback server stopped")
	})
}

func (s *CallbackServer) signalDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// claim reserves the single callback slot. Only the first request while
// listening wins.
func (s *CallbackServer) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateListening || s.claimed {
		return false
	}
	s.claimed = true
	return true
}

// finish records the outcome and schedules shutdown.
func (s *CallbackServer) finish(outcome *AuthOutcome) {
	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()
	s.signalDone()
}

// handleCallback handles the OAuth callback request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), ExchangeTimeout)
	defer cancel()

	outcome := s.receive(ctx, parseCallback(r.URL.Query()))

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(outcome))

	if err := renderOutcome(w, outcome); err != nil {
		logging.Error("Callback", err, "Failed to render result page")
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	s.finish(outcome)
}

// receive turns the callback parameters into an outcome, exchanging the code
// when one is present.
func (s *CallbackServer) receive(ctx context.Context, result *CallbackResult) *AuthOutcome {
	var outcome *AuthOutcome

	switch {
	case result.Code != "":
		if subtle.ConstantTimeCompare([]byte(result.State), []byte(s.expectedState)) != 1 {
			logging.Warn("Callback", "OAuth state mismatch detected, possible CSRF attack (expected_len=%d received_len=%d)",
				len(s.expectedState), len(result.State))
			outcome = stateMismatchOutcome(errors.New("state parameter does not match the authorization request"))
		} else {
			outcome = s.exchange(ctx, result.Code)
		}
	case result.IsError():
		logging.Warn("Callback", "Provider returned error %q: %s", result.Error,
			pkgstrings.OneLine(result.ErrorDescription, pkgstrings.DefaultMaxLen))
		outcome = providerErrorOutcome(result.Error, result.ErrorDescription)
	default:
		outcome = unknownErrorOutcome()
	}

	logging.Audit(logging.AuditEvent{
		Action:  "authorization_callback",
		Outcome: outcome.Kind.String(),
		Details: "state=" + logging.TruncateSecret(result.State),
	})
	return outcome
}

// exchange runs the exchanger, converting errors and panics into outcomes.
func (s *CallbackServer) exchange(ctx context.Context, code string) (outcome *AuthOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = faultOutcome(fmt.Errorf("panic during token exchange: %v", r), debug.Stack())
		}
	}()

	token, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		logging.Error("Callback", err, "Token exchange failed")
		return classifyExchangeError(err)
	}
	if token == nil || token.AccessToken == "" {
		return missingTokenOutcome(ErrMissingToken)
	}
	return successOutcome(token)
}

// routePattern registers path for GET only; a trailing slash matches exactly,
// not as a subtree.
func routePattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return "GET " + path + "{$}"
	}
	return "GET " + path
}
