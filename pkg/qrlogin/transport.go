package qrlogin

import (
	"context"
	"net/url"

	"github.com/zf1976/pancli/pkg/httputil"
)

// Transport is the HTTP surface the login stages need.  *httputil.Client implements it.
type Transport interface {
	Get(ctx context.Context, endpoint, rawURL string, opts ...httputil.RequestOption) (*httputil.Response, error)
	PostForm(ctx context.Context, endpoint, rawURL string, form url.Values, opts ...httputil.RequestOption) (*httputil.Response, error)
	PostJSON(ctx context.Context, endpoint, rawURL string, body interface{}, opts ...httputil.RequestOption) (*httputil.Response, error)
}

// Endpoint names used for logs and metrics.
const (
	EndpointSession    = "session"
	EndpointGenerate   = "generate"
	EndpointQuery      = "query"
	EndpointTokenLogin = "token_login"
	EndpointWebToken   = "web_token"
)

// Endpoints holds the provider URL of every login step.
type Endpoints struct {
	Session    string
	Generate   string
	Query      string
	TokenLogin string
	WebToken   string
}
