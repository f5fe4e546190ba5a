package cmd

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/require"
	"github.com/zf1976/pancli/pkg/qrlogin"
)

func TestColors(t *testing.T) {
	text.EnableColors()
	defer text.DisableColors()
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "plain", template: `abc`, want: "abc"},
		{name: "red", template: `{{"abc" | red}}def`, want: "\x1b[91mabc\x1b[0mdef"},
		{name: "yellow", template: `{{"abc" | yellow}}def`, want: "\x1b[93mabc\x1b[0mdef"},
		{name: "green", template: `{{"abc" | green}}def`, want: "\x1b[92mabc\x1b[0mdef"},
		{name: "blue", template: `{{"abc" | blue}}def`, want: "\x1b[94mabc\x1b[0mdef"},
		{name: "bold", template: `{{"abc" | bold}}def`, want: "\x1b[1mabc\x1b[0mdef"},
		{name: "ljust", template: `{{"abc" | ljust 5}}|`, want: "abc  |"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteTo(tt.template, nil, &buf)
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTokenTemplate(t *testing.T) {
	text.DisableColors()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("unknown to the client"))
	require.NoError(t, err)
	obtained := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	var buf bytes.Buffer
	token := &qrlogin.AccessToken{AccessToken: signed, ExpiresIn: 3600, ObtainedAt: obtained}
	require.NoError(t, WriteFormatted(&buf, OutputText, tokenTemplate, token))
	require.Contains(t, buf.String(), "Expires:      2024-01-01 13:00:00")
	require.Contains(t, buf.String(), "Subject:      user-1")

	buf.Reset()
	require.NoError(t, WriteFormatted(&buf, OutputText, tokenTemplate, &qrlogin.AccessToken{AccessToken: "opaque"}))
	require.Contains(t, buf.String(), "Expires:      unknown")
	require.NotContains(t, buf.String(), "Subject:")
}

func TestWriteFormatted(t *testing.T) {
	token := &qrlogin.AccessToken{
		AccessToken:    "T1",
		UserID:         "user-1",
		NickName:       "tester",
		DefaultDriveID: "drive-1",
		ObtainedAt:     time.Now(),
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFormatted(&buf, OutputJSON, tokenTemplate, token))
		require.Contains(t, buf.String(), `"access_token": "T1"`)
		require.NotContains(t, buf.String(), "ObtainedAt")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFormatted(&buf, OutputYAML, tokenTemplate, token))
		require.Contains(t, buf.String(), "default_drive_id: drive-1\n")
	})

	t.Run("text", func(t *testing.T) {
		text.DisableColors()
		var buf bytes.Buffer
		require.NoError(t, WriteFormatted(&buf, OutputText, tokenTemplate, token))
		require.Contains(t, buf.String(), "tester (user-1)")
		require.Contains(t, buf.String(), "Access token: T1")
	})

	t.Run("unknown", func(t *testing.T) {
		var buf bytes.Buffer
		require.ErrorIs(t, WriteFormatted(&buf, "xml", tokenTemplate, token), ErrUnknownOutput)
	})
}

func TestRenderCode(t *testing.T) {
	DisableColors()
	var buf bytes.Buffer
	renderCode(&buf, &qrlogin.QRCodeHandle{CodeContent: "https://example.com/qr?lgToken=abc"})
	out := buf.String()
	require.Contains(t, out, "https://example.com/qr?lgToken=abc")
	require.True(t, strings.HasPrefix(out, "Scan the QR code"))
}

func TestElideSecrets(t *testing.T) {
	settings := map[string]any{
		"login": map[string]any{"device_id": "device-7", "login_type": "normal"},
		"poll":  map[string]any{"interval": "2s"},
	}
	got := elideSecrets(settings)
	login := got["login"].(map[string]any)
	require.Equal(t, elidedValue, login["device_id"])
	require.Equal(t, "normal", login["login_type"])
	require.Equal(t, "2s", got["poll"].(map[string]any)["interval"])

	require.NotPanics(t, func() { elideSecrets(map[string]any{"poll": map[string]any{}}) })
}

func TestLoginFailure(t *testing.T) {
	wrap := func(reason error) error {
		return &qrlogin.AuthError{Stage: qrlogin.StagePoll, Err: &qrlogin.PollError{Reason: reason, Attempts: 3}}
	}
	require.Contains(t, loginFailure(wrap(qrlogin.ErrExpired), time.Minute), "expired")
	require.Contains(t, loginFailure(wrap(qrlogin.ErrCancelled), time.Minute), "cancelled")
	require.Contains(t, loginFailure(wrap(qrlogin.ErrTimeout), time.Minute), "after 1m0s")
	other := &qrlogin.AuthError{Stage: qrlogin.StageGenerate, Err: qrlogin.ErrUnexpectedStatus}
	require.Equal(t, other.Error(), loginFailure(other, time.Minute))
}

func TestServeMetrics(t *testing.T) {
	ctx := context.Background()
	require.NotPanics(t, serveMetrics(ctx, ""))

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()
	// the address is taken, so serving only warns
	stop := serveMetrics(ctx, busy.Addr().String())
	require.NotNil(t, stop)
	stop()

	stop = serveMetrics(ctx, "127.0.0.1:0")
	stop()
}

func TestConfigInitValidators(t *testing.T) {
	require.NoError(t, validateDuration("2s"))
	require.Error(t, validateDuration("0s"))
	require.Error(t, validateDuration("soon"))
	require.NoError(t, validateListenAddress(""))
	require.NoError(t, validateListenAddress(":9090"))
	require.Error(t, validateListenAddress("9090"))
}

func TestMetricsHandler(t *testing.T) {
	srv := httptest.NewServer(metricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := http.Get(srv.URL + "/_health")
	require.NoError(t, err)
	_ = health.Body.Close()
	require.Equal(t, http.StatusNoContent, health.StatusCode)
}
