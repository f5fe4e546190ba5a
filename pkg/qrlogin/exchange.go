package qrlogin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zf1976/pancli/pkg/config"
	"github.com/zf1976/pancli/pkg/logging"
)

// RedirectTarget is the provider's redirect after the artifact exchange.  Code is the
// authorization code taken from Location's query.
type RedirectTarget struct {
	Location string
	Code     string
}

// Exchanger turns a login artifact into an access token in two session-scoped steps.
type Exchanger struct {
	transport     Transport
	tokenLoginURL string
	webTokenURL   string
	loginType     string
	deviceID      string
}

type ExchangerOption func(*Exchanger)

func WithLoginType(loginType string) ExchangerOption {
	return func(e *Exchanger) {
		e.loginType = loginType
	}
}

func WithDeviceID(deviceID string) ExchangerOption {
	return func(e *Exchanger) {
		e.deviceID = deviceID
	}
}

func NewExchanger(transport Transport, tokenLoginURL, webTokenURL string, opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		transport:     transport,
		tokenLoginURL: tokenLoginURL,
		webTokenURL:   webTokenURL,
		loginType:     config.DefaultLoginType,
		deviceID:      config.DefaultDeviceID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type tokenLoginRequest struct {
	Token string `json:"token"`
}

type tokenLoginResponse struct {
	Goto string `json:"goto"`
}

// ExchangeArtifact trades the mobile token from a confirmed scan for a redirect target.
func (e *Exchanger) ExchangeArtifact(ctx context.Context, artifact LoginArtifact, session SessionID) (RedirectTarget, error) {
	resp, err := e.transport.PostJSON(ctx, EndpointTokenLogin, e.tokenLoginURL, tokenLoginRequest{Token: artifact.Token}, session.cookie())
	if err != nil {
		return RedirectTarget{}, &ExchangeError{Step: StageExchangeArtifact, Err: err}
	}
	if !resp.IsSuccess() {
		return RedirectTarget{}, &ExchangeError{Step: StageExchangeArtifact, StatusCode: resp.StatusCode, Body: resp.Text(), Err: ErrUnexpectedStatus}
	}

	malformed := func(err error) (RedirectTarget, error) {
		return RedirectTarget{}, &ExchangeError{
			Step:       StageExchangeArtifact,
			StatusCode: resp.StatusCode,
			Body:       resp.Text(),
			Err:        fmt.Errorf("%w: %w", ErrMalformedPayload, err),
		}
	}
	var out tokenLoginResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return malformed(err)
	}
	if out.Goto == "" {
		return malformed(errors.New("missing goto"))
	}
	location, err := url.Parse(out.Goto)
	if err != nil {
		return malformed(err)
	}
	code := location.Query().Get("code")
	if code == "" {
		return malformed(fmt.Errorf("no code in goto %q", location.Redacted()))
	}
	logging.FromContext(ctx).Debug("login artifact exchanged for redirect")
	return RedirectTarget{Location: out.Goto, Code: code}, nil
}

type webTokenRequest struct {
	Code      string `json:"code"`
	LoginType string `json:"loginType"`
	DeviceID  string `json:"deviceId"`
}

// ExchangeRedirect trades the redirect's authorization code for the final access token.
func (e *Exchanger) ExchangeRedirect(ctx context.Context, target RedirectTarget, session SessionID) (*AccessToken, error) {
	body := webTokenRequest{
		Code:      target.Code,
		LoginType: e.loginType,
		DeviceID:  e.deviceID,
	}
	resp, err := e.transport.PostJSON(ctx, EndpointWebToken, e.webTokenURL, body, session.cookie())
	if err != nil {
		return nil, &ExchangeError{Step: StageExchangeRedirect, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &ExchangeError{Step: StageExchangeRedirect, StatusCode: resp.StatusCode, Body: resp.Text(), Err: ErrUnexpectedStatus}
	}

	token := &AccessToken{}
	if err := resp.DecodeJSON(token); err != nil {
		return nil, &ExchangeError{
			Step:       StageExchangeRedirect,
			StatusCode: resp.StatusCode,
			Body:       resp.Text(),
			Err:        fmt.Errorf("%w: %w", ErrMalformedPayload, err),
		}
	}
	if token.AccessToken == "" {
		return nil, &ExchangeError{
			Step:       StageExchangeRedirect,
			StatusCode: resp.StatusCode,
			Body:       resp.Text(),
			Err:        fmt.Errorf("%w: missing access_token", ErrMalformedPayload),
		}
	}
	token.ObtainedAt = time.Now()
	logging.FromContext(ctx).WithField("user_id", token.UserID).Debug("access token obtained")
	return token, nil
}
