package qrlogin

import (
	"context"
	"fmt"

	"github.com/zf1976/pancli/pkg/httputil"
	"github.com/zf1976/pancli/pkg/logging"
)

// SessionCookieName is the correlation cookie the provider sets on the authorize endpoint and
// expects back on session-scoped calls.
const SessionCookieName = "SESSIONID"

// SessionID is the opaque session correlation token.  String elides it; use Value to send it.
type SessionID string

func (s SessionID) String() string {
	const shown = 4
	if len(s) <= shown {
		return "[SESSION]"
	}
	return string(s[:shown]) + "..."
}

func (s SessionID) Value() string {
	return string(s)
}

func (s SessionID) cookie() httputil.RequestOption {
	return httputil.WithCookie(SessionCookieName, s.Value())
}

// SessionBootstrapper obtains a session id with a single unauthenticated request.
type SessionBootstrapper struct {
	transport Transport
	endpoint  string
}

func NewSessionBootstrapper(transport Transport, endpoint string) *SessionBootstrapper {
	return &SessionBootstrapper{transport: transport, endpoint: endpoint}
}

// Bootstrap fetches a new session id.  It is never retried here.
func (b *SessionBootstrapper) Bootstrap(ctx context.Context) (SessionID, error) {
	resp, err := b.transport.Get(ctx, EndpointSession, b.endpoint)
	if err != nil {
		return "", &SessionError{Err: fmt.Errorf("%w: %w", ErrSessionTransport, err)}
	}
	if !resp.IsSuccess() {
		return "", &SessionError{
			StatusCode: resp.StatusCode,
			Body:       resp.Text(),
			Err:        fmt.Errorf("%w: %w", ErrSessionTransport, ErrUnexpectedStatus),
		}
	}
	value, ok := resp.Cookie(SessionCookieName)
	if !ok || value == "" {
		return "", &SessionError{StatusCode: resp.StatusCode, Err: ErrSessionMissing}
	}
	session := SessionID(value)
	logging.FromContext(ctx).WithField("session", session.String()).Debug("session bootstrapped")
	return session, nil
}
