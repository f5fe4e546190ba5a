package qrlogin

//go:generate go run github.com/golang/mock/mockgen@v1.6.0 -source=stages.go -destination=mock/stages.go -package=mock

import (
	"context"
	"time"
)

// Bootstrapper obtains the session id a client uses for its whole lifetime.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (SessionID, error)
}

// CodeGenerator issues QR login codes.
type CodeGenerator interface {
	Generate(ctx context.Context) (*QRCodeHandle, error)
}

// StatusPoller waits for a code to be confirmed and returns its login artifact.
type StatusPoller interface {
	PollUntilResolved(ctx context.Context, handle *QRCodeHandle, session SessionID, interval, timeout time.Duration) (LoginArtifact, error)
}

// TokenExchanger performs the two exchanges that follow a confirmed scan.
type TokenExchanger interface {
	ExchangeArtifact(ctx context.Context, artifact LoginArtifact, session SessionID) (RedirectTarget, error)
	ExchangeRedirect(ctx context.Context, target RedirectTarget, session SessionID) (*AccessToken, error)
}

var (
	_ Bootstrapper   = (*SessionBootstrapper)(nil)
	_ CodeGenerator  = (*Generator)(nil)
	_ StatusPoller   = (*Poller)(nil)
	_ TokenExchanger = (*Exchanger)(nil)
)
