package qrlogin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zf1976/pancli/pkg/config"
	"github.com/zf1976/pancli/pkg/httputil"
	"github.com/zf1976/pancli/pkg/logging"
	"go.uber.org/atomic"
)

// State is the progress of an AuthClient through a login.
type State int

const (
	StateUninitialized State = iota
	StateSessionReady
	StateCodeGenerated
	StatePolling
	StateExchanging
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSessionReady:
		return "session_ready"
	case StateCodeGenerated:
		return "code_generated"
	case StatePolling:
		return "polling"
	case StateExchanging:
		return "exchanging"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CodeHandler is called with every generated code before polling starts, typically to show it
// to the user.  Returning an error aborts the login.
type CodeHandler func(ctx context.Context, handle *QRCodeHandle) error

type clientOptions struct {
	transport     Transport
	endpoints     Endpoints
	pollerOpts    []PollerOption
	exchangerOpts []ExchangerOption
	onCode        CodeHandler

	bootstrapper Bootstrapper
	generator    CodeGenerator
	poller       StatusPoller
	exchanger    TokenExchanger
}

type Option func(*clientOptions)

// WithTransport sets the HTTP transport shared by the default stage implementations.
func WithTransport(transport Transport) Option {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

func WithEndpoints(endpoints Endpoints) Option {
	return func(o *clientOptions) {
		o.endpoints = endpoints
	}
}

func WithPollerOptions(opts ...PollerOption) Option {
	return func(o *clientOptions) {
		o.pollerOpts = append(o.pollerOpts, opts...)
	}
}

func WithExchangerOptions(opts ...ExchangerOption) Option {
	return func(o *clientOptions) {
		o.exchangerOpts = append(o.exchangerOpts, opts...)
	}
}

func WithCodeHandler(handler CodeHandler) Option {
	return func(o *clientOptions) {
		o.onCode = handler
	}
}

// WithStages replaces stage implementations.  A nil stage keeps the default.
func WithStages(bootstrapper Bootstrapper, generator CodeGenerator, poller StatusPoller, exchanger TokenExchanger) Option {
	return func(o *clientOptions) {
		if bootstrapper != nil {
			o.bootstrapper = bootstrapper
		}
		if generator != nil {
			o.generator = generator
		}
		if poller != nil {
			o.poller = poller
		}
		if exchanger != nil {
			o.exchanger = exchanger
		}
	}
}

// DefaultEndpoints returns the provider's production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Session:    config.DefaultSessionEndpoint,
		Generate:   config.DefaultGenerateEndpoint,
		Query:      config.DefaultQueryEndpoint,
		TokenLogin: config.DefaultTokenLoginEndpoint,
		WebToken:   config.DefaultWebTokenEndpoint,
	}
}

// OptionsFromConfig translates configuration into client options.
func OptionsFromConfig(c *config.Config) []Option {
	transport := httputil.NewClient(httputil.ClientConfig{
		ConnectTimeout:      c.HTTP.ConnectTimeout,
		Timeout:             c.HTTP.Timeout,
		UserAgent:           c.HTTP.UserAgent,
		MaxIdleConnsPerHost: c.HTTP.MaxIdleConnsPerHost,
	})
	return []Option{
		WithTransport(transport),
		WithEndpoints(Endpoints{
			Session:    c.Endpoints.Session,
			Generate:   c.Endpoints.Generate,
			Query:      c.Endpoints.Query,
			TokenLogin: c.Endpoints.TokenLogin,
			WebToken:   c.Endpoints.WebToken,
		}),
		WithPollerOptions(WithMaxTransientErrors(c.Poll.MaxTransientErrors)),
		WithExchangerOptions(
			WithLoginType(c.Login.LoginType),
			WithDeviceID(c.Login.DeviceID.String()),
		),
	}
}

// AuthClient drives QR logins for a single session.  Logins on one client run one at a time;
// separate clients are independent.
type AuthClient struct {
	bootstrapper Bootstrapper
	generator    CodeGenerator
	poller       StatusPoller
	exchanger    TokenExchanger
	onCode       CodeHandler

	running *atomic.Bool

	mu      sync.Mutex
	session SessionID
	state   State
	err     error
}

// NewAuthClient bootstraps a session and returns a client ready to log in.  A bootstrap failure
// is returned as *AuthError at StageSession and no client is created.
func NewAuthClient(ctx context.Context, opts ...Option) (*AuthClient, error) {
	o := &clientOptions{endpoints: DefaultEndpoints()}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = httputil.NewClient(httputil.ClientConfig{
			ConnectTimeout:      config.DefaultHTTPConnectTimeout,
			Timeout:             config.DefaultHTTPTimeout,
			UserAgent:           config.DefaultHTTPUserAgent,
			MaxIdleConnsPerHost: config.DefaultHTTPMaxIdleConnsPerHost,
		})
	}
	if o.bootstrapper == nil {
		o.bootstrapper = NewSessionBootstrapper(o.transport, o.endpoints.Session)
	}
	if o.generator == nil {
		o.generator = NewGenerator(o.transport, o.endpoints.Generate)
	}
	if o.poller == nil {
		o.poller = NewPoller(o.transport, o.endpoints.Query, o.pollerOpts...)
	}
	if o.exchanger == nil {
		o.exchanger = NewExchanger(o.transport, o.endpoints.TokenLogin, o.endpoints.WebToken, o.exchangerOpts...)
	}

	c := &AuthClient{
		bootstrapper: o.bootstrapper,
		generator:    o.generator,
		poller:       o.poller,
		exchanger:    o.exchanger,
		onCode:       o.onCode,
		running:      atomic.NewBool(false),
		state:        StateUninitialized,
	}
	sessionCtx := logging.AddFields(ctx, logging.Fields{logging.StageFieldKey: StageSession})
	session, err := c.bootstrapper.Bootstrap(sessionCtx)
	if err != nil {
		return nil, &AuthError{Stage: StageSession, Err: err}
	}
	c.session = session
	c.state = StateSessionReady
	return c, nil
}

func (c *AuthClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *AuthClient) Session() SessionID {
	return c.session
}

// Err returns the failure of the last login, if it failed.
func (c *AuthClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *AuthClient) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *AuthClient) begin() error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrLoginInProgress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSessionReady
	c.err = nil
	return nil
}

func (c *AuthClient) end(err error) {
	defer c.running.Store(false)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	if err != nil {
		c.state = StateFailed
	} else {
		c.state = StateAuthenticated
	}
}

// LoginViaQR runs one login: generate a code, wait up to timeout for it to be confirmed while
// querying every interval, then exchange the result for an access token.  The first failing
// stage ends the login with *AuthError.
func (c *AuthClient) LoginViaQR(ctx context.Context, interval, timeout time.Duration) (*AccessToken, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	ctx = logging.AddFields(ctx, logging.Fields{logging.LoginIDFieldKey: uuid.NewString()})
	log := logging.FromContext(ctx)
	log.Debug("qr login started")

	start := time.Now()
	token, err := c.login(ctx, interval, timeout)
	c.end(err)
	if err != nil {
		outcome := "unknown"
		var authErr *AuthError
		if errors.As(err, &authErr) {
			outcome = string(authErr.Stage)
		}
		loginsTotal.WithLabelValues(outcome).Inc()
		log.WithError(err).WithField(logging.StageFieldKey, outcome).Debug("qr login failed")
		return nil, err
	}
	loginsTotal.WithLabelValues(outcomeSuccess).Inc()
	log.WithFields(logging.Fields{
		"user_id":            token.UserID,
		logging.TookFieldKey: time.Since(start),
	}).Info("qr login succeeded")
	return token, nil
}

func (c *AuthClient) login(ctx context.Context, interval, timeout time.Duration) (*AccessToken, error) {
	stageCtx := func(stage Stage) context.Context {
		return logging.AddFields(ctx, logging.Fields{logging.StageFieldKey: stage})
	}

	genCtx := stageCtx(StageGenerate)
	handle, err := c.generator.Generate(genCtx)
	if err != nil {
		return nil, &AuthError{Stage: StageGenerate, Err: err}
	}
	c.setState(StateCodeGenerated)
	if c.onCode != nil {
		if err := c.onCode(genCtx, handle); err != nil {
			return nil, &AuthError{Stage: StageGenerate, Err: err}
		}
	}

	c.setState(StatePolling)
	artifact, err := c.poller.PollUntilResolved(stageCtx(StagePoll), handle, c.session, interval, timeout)
	if err != nil {
		return nil, &AuthError{Stage: StagePoll, Err: err}
	}

	c.setState(StateExchanging)
	target, err := c.exchanger.ExchangeArtifact(stageCtx(StageExchangeArtifact), artifact, c.session)
	if err != nil {
		return nil, &AuthError{Stage: StageExchangeArtifact, Err: err}
	}
	token, err := c.exchanger.ExchangeRedirect(stageCtx(StageExchangeRedirect), target, c.session)
	if err != nil {
		return nil, &AuthError{Stage: StageExchangeRedirect, Err: err}
	}
	return token, nil
}
