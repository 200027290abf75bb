package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"fitexport/internal/cli"
	"fitexport/internal/config"
	"fitexport/internal/export"
	"fitexport/internal/fitbit"
	"fitexport/internal/oauth"
	"fitexport/pkg/logging"
)

// BrowserOpener opens url in the user's browser.
type BrowserOpener func(url string) error

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBrowserOpener replaces the system browser launcher.
func WithBrowserOpener(open BrowserOpener) Option {
	return func(c *Coordinator) {
		c.openBrowser = open
	}
}

// WithOutput sets where progress lines are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) {
		c.console = cli.NewConsole(w)
	}
}

// WithFitbitOptions passes extra options to the Fitbit API client.
func WithFitbitOptions(opts ...fitbit.ClientOption) Option {
	return func(c *Coordinator) {
		c.fitbitOpts = append(c.fitbitOpts, opts...)
	}
}

// Summary describes a completed run.
type Summary struct {
	RunID       string
	Resource    string
	BaseDate    string
	DetailLevel string
	Window      string
	OutputFile  string
	Bytes       int
	Duration    time.Duration
}

// Rows returns the summary as table rows.
func (s *Summary) Rows() []cli.SummaryRow {
	return []cli.SummaryRow{
		{Key: "Run", Value: s.RunID},
		{Key: "Resource", Value: s.Resource},
		{Key: "Date", Value: s.BaseDate},
		{Key: "Detail level", Value: s.DetailLevel},
		{Key: "Window", Value: s.Window},
		{Key: "Output", Value: s.OutputFile},
		{Key: "Bytes written", Value: fmt.Sprintf("%d", s.Bytes)},
		{Key: "Duration", Value: s.Duration.Round(time.Millisecond).String()},
	}
}

// Coordinator drives a single export run.
type Coordinator struct {
	cfg         *config.Config
	oauth       *oauth.Client
	bindAddr    string
	openBrowser BrowserOpener
	console     *cli.Console
	fitbitOpts  []fitbit.ClientOption
	runID       string

	mu      sync.Mutex
	phase   Phase
	written int
}

// NewCoordinator creates a coordinator for cfg, which must already be
// validated.
func NewCoordinator(cfg *config.Config, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	bindAddr, err := cfg.BindAddress()
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}

	c := &Coordinator{
		cfg: cfg,
		oauth: oauth.NewClient(oauth.ClientConfig{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURI:  cfg.RedirectURI,
			AuthorizeURL: cfg.AuthorizeURL,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}),
		bindAddr:    bindAddr,
		openBrowser: oauth.OpenBrowser,
		console:     cli.NewConsole(os.Stdout),
		runID:       uuid.NewString(),
		phase:       PhaseInit,
	}

	for _, opt := range opts {
		opt(c)
	}

	logging.SetRunID(c.runID)
	return c, nil
}

// RunID returns the identifier attached to every log line of this run.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Phase returns the step the run has reached.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Coordinator) transition(to Phase) {
	c.mu.Lock()
	from := c.phase
	c.phase = to
	c.mu.Unlock()
	logging.Debug("Flow", "Phase %s -> %s", from, to)
	if to.Terminal() {
		logging.Info("Flow", "Run finished: %s", to)
	}
}

// Authorize runs the browser round-trip and returns the access token. The
// browser is opened only once the callback receiver is listening. Any result
// other than a token is returned as *cli.AuthFailedError.
func (c *Coordinator) Authorize(ctx context.Context) (*oauth2.Token, error) {
	c.transition(PhaseAuthorizing)

	token, err := c.authorize(ctx)
	if err != nil {
		c.transition(PhaseAuthFailed)
		return nil, err
	}

	c.transition(PhaseAuthorized)
	return token, nil
}

func (c *Coordinator) authorize(ctx context.Context) (*oauth2.Token, error) {
	req, err := c.oauth.NewAuthRequest()
	if err != nil {
		return nil, &cli.AuthFailedError{Reason: err}
	}

	server, err := oauth.NewCallbackServer(oauth.CallbackConfig{
		Addr:          c.bindAddr,
		Path:          c.cfg.CallbackPath(),
		ExpectedState: req.State,
		Exchanger:     c.oauth.Exchanger(req),
		Timeout:       c.cfg.CallbackTimeout.Std(),
	})
	if err != nil {
		return nil, &cli.AuthFailedError{Reason: err}
	}

	var outcome *oauth.AuthOutcome
	err = c.console.Step("Waiting for authorization in your browser...", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			o, err := server.Start(gctx)
			outcome = o
			return err
		})
		g.Go(func() error {
			select {
			case <-server.Ready():
			case <-gctx.Done():
				return nil
			}
			c.launchBrowser(req.URL)
			return nil
		})
		return g.Wait()
	})
	if err != nil {
		return nil, &cli.AuthFailedError{Reason: err}
	}

	if !outcome.Succeeded() {
		return nil, &cli.AuthFailedError{Kind: outcome.Kind.String(), Reason: outcome.Err()}
	}

	logging.Info("Flow", "Authorization succeeded (token=%s)", logging.TruncateSecret(outcome.Token.AccessToken))
	return outcome.Token, nil
}

// launchBrowser opens the authorization page. Failure is not fatal: the user
// can still paste the URL by hand.
func (c *Coordinator) launchBrowser(url string) {
	logging.Debug("Flow", "Opening authorization URL %s", url)
	if err := c.openBrowser(url); err != nil {
		logging.Warn("Flow", "Failed to open browser: %v", err)
		c.console.Warning(fmt.Sprintf("Could not open a browser: %v", err))
		c.console.Println("Please open this URL to authorize fitexport:")
		c.console.Println(url)
	}
}

// FetchAndSave requests the time series with token and writes it to
// outputPath. Fetch failures are *cli.FetchError and leave outputPath
// untouched; write failures are *cli.WriteError.
func (c *Coordinator) FetchAndSave(ctx context.Context, token *oauth2.Token, params fitbit.IntradayParams, outputPath string) error {
	c.transition(PhaseFetching)

	var opts []fitbit.ClientOption
	if c.cfg.APIBaseURL != "" {
		opts = append(opts, fitbit.WithBaseURL(c.cfg.APIBaseURL))
	}
	opts = append(opts, c.fitbitOpts...)
	api := fitbit.NewClient(c.oauth.HTTPClient(ctx, token), opts...)

	label := resourceLabel(params.Resource)

	var payload json.RawMessage
	err := c.console.Step(fmt.Sprintf("Retrieving %s data...", label), func() error {
		var err error
		payload, err = api.IntradayTimeSeries(ctx, params)
		return err
	})
	if err != nil {
		c.transition(PhaseFetchFailed)
		return &cli.FetchError{Resource: label, Reason: err}
	}

	var n int
	err = c.console.Step(fmt.Sprintf("Writing data to %s...", outputPath), func() error {
		var err error
		n, err = export.WriteJSON(outputPath, payload)
		return err
	})
	if err != nil {
		c.transition(PhaseFetchFailed)
		return &cli.WriteError{Path: outputPath, Reason: err}
	}

	c.mu.Lock()
	c.written = n
	c.mu.Unlock()

	c.transition(PhaseDone)
	return nil
}

// BytesWritten returns the size of the last file written by FetchAndSave.
func (c *Coordinator) BytesWritten() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Run authorizes, fetches and writes in one go.
func (c *Coordinator) Run(ctx context.Context, params fitbit.IntradayParams, outputPath string) (*Summary, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	logging.Info("Flow", "Starting export of %s for %s at %s", resourceLabel(params.Resource), params.BaseDate, params.DetailLevel)

	token, err := c.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.FetchAndSave(ctx, token, params, outputPath); err != nil {
		return nil, err
	}

	c.console.Success("Done.")

	summary := &Summary{
		RunID:       c.runID,
		Resource:    resourceLabel(params.Resource),
		BaseDate:    params.BaseDate,
		DetailLevel: string(params.DetailLevel),
		OutputFile:  outputPath,
		Bytes:       c.BytesWritten(),
		Duration:    time.Since(started),
	}
	if params.StartTime != "" {
		summary.Window = params.StartTime + "-" + params.EndTime
	}
	return summary, nil
}

func resourceLabel(resource string) string {
	switch resource {
	case "", fitbit.ResourceHeart:
		return "heartrate"
	default:
		return resource
	}
}
