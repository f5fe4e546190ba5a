package httputil_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zf1976/pancli/pkg/httputil"
)

const testUserAgent = "pancli-test/1.0"

func newTestClient() *httputil.Client {
	return httputil.NewClient(httputil.ClientConfig{
		ConnectTimeout: time.Second,
		Timeout:        2 * time.Second,
		UserAgent:      testUserAgent,
	})
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, testUserAgent, r.UserAgent())
		http.SetCookie(w, &http.Cookie{Name: "OTHER", Value: "x"})
		http.SetCookie(w, &http.Cookie{Name: "SESSIONID", Value: "abc"})
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	resp, err := newTestClient().Get(context.Background(), "session", srv.URL)
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())
	require.Equal(t, "ok", resp.Text())

	v, ok := resp.Cookie("SESSIONID")
	require.True(t, ok)
	require.Equal(t, "abc", v)
	_, ok = resp.Cookie("MISSING")
	require.False(t, ok)
}

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ck-1", r.PostForm.Get("ck"))
		require.Equal(t, "1700000000000", r.PostForm.Get("t"))
		c, err := r.Cookie("SESSIONID")
		require.NoError(t, err)
		require.Equal(t, "S1", c.Value)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	form := url.Values{"ck": {"ck-1"}, "t": {"1700000000000"}}
	resp, err := newTestClient().PostForm(context.Background(), "query", srv.URL, form, httputil.WithCookie("SESSIONID", "S1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.True(t, resp.IsSuccess())
}

func TestClient_PostJSON(t *testing.T) {
	type payload struct {
		Token string `json:"token"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "yes", r.Header.Get("X-Test"))
		var p payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		_ = json.NewEncoder(w).Encode(map[string]string{"goto": "https://example.com/cb?code=" + p.Token})
	}))
	defer srv.Close()

	resp, err := newTestClient().PostJSON(context.Background(), "token_login", srv.URL, payload{Token: "A1"}, httputil.WithHeader("X-Test", "yes"))
	require.NoError(t, err)

	var out struct {
		Goto string `json:"goto"`
	}
	require.NoError(t, resp.DecodeJSON(&out))
	require.Equal(t, "https://example.com/cb?code=A1", out.Goto)
}

func TestClient_NoRetryOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "try later")
	}))
	defer srv.Close()

	before := promtestutil.ToFloat64(requestsCounter(t, "no_retry", "503"))
	resp, err := newTestClient().Get(context.Background(), "no_retry", srv.URL)
	require.NoError(t, err)
	require.False(t, resp.IsSuccess())
	require.Equal(t, "try later", resp.Text())
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	require.Equal(t, before+1, promtestutil.ToFloat64(requestsCounter(t, "no_retry", "503")))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newTestClient().Get(context.Background(), "closed", addr)
	require.ErrorIs(t, err, httputil.ErrRequest)
}

func TestClient_RequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := httputil.NewClient(httputil.ClientConfig{ConnectTimeout: time.Second, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Get(context.Background(), "slow", srv.URL)
	require.ErrorIs(t, err, httputil.ErrRequest)
	require.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient().Get(ctx, "canceled", srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResponse_DecodeJSON(t *testing.T) {
	resp := &httputil.Response{StatusCode: http.StatusOK, Body: []byte("<html>")}
	var v map[string]interface{}
	require.ErrorIs(t, resp.DecodeJSON(&v), httputil.ErrDecode)
}

func requestsCounter(t *testing.T, endpoint, code string) prometheus.Counter {
	t.Helper()
	c, err := httputil.RequestsTotal.GetMetricWithLabelValues(endpoint, code)
	require.NoError(t, err)
	return c
}
