package qrlogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/zf1976/pancli/pkg/logging"
)

// Poller queries the scan status of a generated code until the provider resolves it.
type Poller struct {
	transport          Transport
	endpoint           string
	maxTransientErrors int
}

type PollerOption func(*Poller)

// WithMaxTransientErrors stops polling once more than n queries have failed transiently.  Zero
// leaves transient failures bounded only by the poll timeout.
func WithMaxTransientErrors(n int) PollerOption {
	return func(p *Poller) {
		p.maxTransientErrors = n
	}
}

func NewPoller(transport Transport, endpoint string, opts ...PollerOption) *Poller {
	p := &Poller{transport: transport, endpoint: endpoint}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Query performs a single status query.  Any error other than ErrMalformedArtifact is transient.
func (p *Poller) Query(ctx context.Context, handle *QRCodeHandle, session SessionID) (ScanStatus, error) {
	resp, err := p.transport.PostForm(ctx, EndpointQuery, p.endpoint, handle.queryForm(), session.cookie())
	if err != nil {
		return ScanStatus{}, err
	}
	if !resp.IsSuccess() {
		return ScanStatus{}, fmt.Errorf("%w%s", ErrUnexpectedStatus, describeResponse(resp.StatusCode, resp.Text()))
	}
	return decodeScanStatus(resp.Body)
}

// errUnresolved marks a query whose code is still waiting to be scanned or confirmed.
var errUnresolved = errors.New("scan status unresolved")

// PollUntilResolved queries the code's status every interval until it is confirmed, expired or
// cancelled, or until timeout has passed since the first query.  Failures are reported as
// *PollError.
func (p *Poller) PollUntilResolved(ctx context.Context, handle *QRCodeHandle, session SessionID, interval, timeout time.Duration) (LoginArtifact, error) {
	if interval <= 0 || timeout <= 0 {
		return LoginArtifact{}, &PollError{Reason: ErrInvalidPollOptions}
	}

	var (
		start     = time.Now()
		attempts  int
		transient *multierror.Error
		scanned   bool
		log       = logging.FromContext(ctx).WithField("ck", handle.ID())
	)
	fail := func(reason, err error) *PollError {
		return &PollError{
			Reason:    reason,
			Attempts:  attempts,
			Elapsed:   time.Since(start),
			Err:       err,
			Transient: transient,
		}
	}
	if err := ctx.Err(); err != nil {
		return LoginArtifact{}, fail(err, nil)
	}

	deadlineCtx, cancel := context.WithDeadline(ctx, start.Add(timeout))
	defer cancel()

	query := func() (LoginArtifact, error) {
		attempts++
		queryCtx := logging.AddFields(deadlineCtx, logging.Fields{logging.AttemptFieldKey: attempts})
		status, err := p.Query(queryCtx, handle, session)
		switch {
		case errors.Is(err, ErrMalformedArtifact):
			pollAttempts.WithLabelValues(pollResultError).Inc()
			return LoginArtifact{}, backoff.Permanent(fail(ErrMalformedArtifact, err))
		case err != nil:
			if deadlineCtx.Err() != nil {
				// the deadline or the caller ended this query
				return LoginArtifact{}, err
			}
			pollAttempts.WithLabelValues(pollResultError).Inc()
			transient = multierror.Append(transient, fmt.Errorf("attempt %d: %w", attempts, err))
			log.WithError(err).WithField(logging.AttemptFieldKey, attempts).Warn("scan status query failed")
			if p.maxTransientErrors > 0 && len(transient.Errors) > p.maxTransientErrors {
				return LoginArtifact{}, backoff.Permanent(fail(ErrTransientExhausted, nil))
			}
			return LoginArtifact{}, err
		}

		pollAttempts.WithLabelValues(strings.ToLower(status.State.String())).Inc()
		log.WithFields(logging.Fields{
			logging.AttemptFieldKey:  attempts,
			logging.QRStatusFieldKey: status.State.String(),
		}).Trace("scan status")
		switch status.State {
		case StatusConfirmed:
			log.WithField(logging.AttemptFieldKey, attempts).Debug("qr code confirmed")
			return status.Artifact, nil
		case StatusExpired:
			return LoginArtifact{}, backoff.Permanent(fail(ErrExpired, nil))
		case StatusCancelled:
			return LoginArtifact{}, backoff.Permanent(fail(ErrCancelled, nil))
		case StatusScanned:
			if !scanned {
				scanned = true
				log.Info("qr code scanned, waiting for confirmation")
			}
		}
		return LoginArtifact{}, errUnresolved
	}

	// The deadline context stops the constant backoff and clips the last wait to the deadline.
	b := backoff.WithContext(backoff.NewConstantBackOff(interval), deadlineCtx)
	artifact, err := backoff.RetryNotifyWithData(query, b, func(err error, next time.Duration) {
		log.WithError(err).WithField("next", next).Trace("scan status pending")
	})
	if err == nil {
		return artifact, nil
	}
	var pollErr *PollError
	if errors.As(err, &pollErr) {
		return LoginArtifact{}, pollErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return LoginArtifact{}, fail(ctxErr, nil)
	}
	pollAttempts.WithLabelValues(pollResultTimeout).Inc()
	return LoginArtifact{}, fail(ErrTimeout, nil)
}
