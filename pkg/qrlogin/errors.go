package qrlogin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Stage names one step of a QR login.
type Stage string

const (
	StageSession          Stage = "session"
	StageGenerate         Stage = "generate"
	StagePoll             Stage = "poll"
	StageExchangeArtifact Stage = "exchange_artifact"
	StageExchangeRedirect Stage = "exchange_redirect"
)

var (
	ErrSessionTransport   = errors.New("session request failed")
	ErrSessionMissing     = errors.New("session id missing from response")
	ErrUnexpectedStatus   = errors.New("unexpected status code")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrMalformedArtifact  = fmt.Errorf("%w: login artifact", ErrMalformedPayload)
	ErrUnknownScanStatus  = fmt.Errorf("%w: unknown scan status", ErrMalformedPayload)
	ErrExpired            = errors.New("qr code expired")
	ErrCancelled          = errors.New("qr login cancelled")
	ErrTimeout            = errors.New("timed out waiting for qr code confirmation")
	ErrTransientExhausted = errors.New("too many transient poll failures")
	ErrInvalidPollOptions = errors.New("poll interval and timeout must be positive")
	ErrLoginInProgress    = errors.New("login already in progress")
)

// describeResponse renders the status code and body attached to a stage error.
func describeResponse(statusCode int, body string) string {
	var parts []string
	if statusCode != 0 {
		parts = append(parts, fmt.Sprintf("status %d", statusCode))
	}
	if body != "" {
		parts = append(parts, fmt.Sprintf("body %q", body))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// SessionError reports a failed session bootstrap.  Err is ErrSessionTransport or
// ErrSessionMissing, possibly wrapping the transport error.
type SessionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SessionError) Error() string {
	return "session bootstrap: " + e.Err.Error() + describeResponse(e.StatusCode, e.Body)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failure to obtain a QR code.
type GenerationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	return "generate qr code: " + e.Err.Error() + describeResponse(e.StatusCode, e.Body)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PollError reports why polling stopped without a confirmed login.  Reason is one of
// ErrExpired, ErrCancelled, ErrTimeout, ErrTransientExhausted, ErrInvalidPollOptions,
// ErrMalformedArtifact or a context error.
type PollError struct {
	Reason   error
	Attempts int
	Elapsed  time.Duration
	// Err is the failure that ended polling, when there is one beyond Reason.
	Err error
	// Transient holds every transient query failure seen while polling.
	Transient *multierror.Error
}

func (e *PollError) Error() string {
	var sb strings.Builder
	sb.WriteString("poll scan status: ")
	sb.WriteString(e.Reason.Error())
	fmt.Fprintf(&sb, " after %d attempts in %s", e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if n := e.transientCount(); n > 0 {
		fmt.Fprintf(&sb, " (%d transient failures, last: %s)", n, e.Transient.Errors[n-1])
	}
	return sb.String()
}

func (e *PollError) Unwrap() []error {
	errs := []error{e.Reason}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.transientCount() > 0 {
		errs = append(errs, e.Transient)
	}
	return errs
}

// transientCount is nil safe, unlike (*multierror.Error).Len.
func (e *PollError) transientCount() int {
	return len(e.Transient.WrappedErrors())
}

// ExchangeError reports a failed token exchange.  Body holds the provider's raw response text,
// which is unstructured for most failures.
type ExchangeError struct {
	Step       Stage
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	return string(e.Step) + ": " + e.Err.Error() + describeResponse(e.StatusCode, e.Body)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// AuthError is returned by AuthClient and names the stage that failed.
type AuthError struct {
	Stage Stage
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("qr login failed at %s: %s", e.Stage, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
