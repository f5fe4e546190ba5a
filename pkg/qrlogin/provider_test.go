package qrlogin_test

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zf1976/pancli/pkg/httputil"
	"github.com/zf1976/pancli/pkg/qrlogin"
)

const (
	testCK          = "ck-test"
	testT           = int64(1700000000000)
	testCodeContent = "https://passport.aliyundrive.com/qrcodeCheck.htm?lgToken=test"
)

// reply is a scripted provider response.  A zero status means 200.
type reply struct {
	status int
	body   string
}

// recordedRequest is what the fake provider saw on one call.
type recordedRequest struct {
	Session string
	Form    map[string]string
	Body    string
}

// fakeProvider serves the five login endpoints from scripted replies.
type fakeProvider struct {
	srv *httptest.Server

	mu            sync.Mutex
	sessions      []string
	sessionReply  *reply
	generateReply *reply
	queryReplies  []reply
	tokenLogin    *reply
	webToken      *reply
	requests      map[string][]recordedRequest
	queryTimes    []time.Time
}

func newFakeProvider(t testing.TB) *fakeProvider {
	t.Helper()
	p := &fakeProvider{
		requests: make(map[string][]recordedRequest),
	}
	r := chi.NewRouter()
	r.Get("/v2/oauth/authorize", p.handleSession)
	r.Get("/newlogin/qrcode/generate.do", p.handleGenerate)
	r.Post("/newlogin/qrcode/query.do", p.handleQuery)
	r.Post("/v2/oauth/token_login", p.handleTokenLogin)
	r.Post("/token/get", p.handleWebToken)
	p.srv = httptest.NewServer(r)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) Endpoints() qrlogin.Endpoints {
	return qrlogin.Endpoints{
		Session:    p.srv.URL + "/v2/oauth/authorize?client_id=test",
		Generate:   p.srv.URL + "/newlogin/qrcode/generate.do?appName=aliyun_drive",
		Query:      p.srv.URL + "/newlogin/qrcode/query.do?appName=aliyun_drive",
		TokenLogin: p.srv.URL + "/v2/oauth/token_login",
		WebToken:   p.srv.URL + "/token/get",
	}
}

func (p *fakeProvider) Transport() *httputil.Client {
	return httputil.NewClient(httputil.ClientConfig{
		ConnectTimeout: time.Second,
		Timeout:        2 * time.Second,
		UserAgent:      "pancli-test",
	})
}

// ClientOptions wires an AuthClient to the fake provider.
func (p *fakeProvider) ClientOptions() []qrlogin.Option {
	return []qrlogin.Option{
		qrlogin.WithTransport(p.Transport()),
		qrlogin.WithEndpoints(p.Endpoints()),
	}
}

// WithSessions scripts the session ids handed out in order.  Once exhausted, ids are S<n>.
func (p *fakeProvider) WithSessions(ids ...string) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, ids...)
	return p
}

func (p *fakeProvider) WithSessionReply(r reply) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionReply = &r
	return p
}

func (p *fakeProvider) WithGenerateReply(r reply) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generateReply = &r
	return p
}

// WithQueryReplies scripts status query responses.  The last one repeats.
func (p *fakeProvider) WithQueryReplies(replies ...reply) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queryReplies = append(p.queryReplies, replies...)
	return p
}

func (p *fakeProvider) WithTokenLoginReply(r reply) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenLogin = &r
	return p
}

func (p *fakeProvider) WithWebTokenReply(r reply) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.webToken = &r
	return p
}

func (p *fakeProvider) Requests(endpoint string) []recordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedRequest(nil), p.requests[endpoint]...)
}

func (p *fakeProvider) Calls(endpoint string) int {
	return len(p.Requests(endpoint))
}

func (p *fakeProvider) QueryTimes() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.queryTimes...)
}

func (p *fakeProvider) record(endpoint string, r *http.Request) {
	rec := recordedRequest{}
	if c, err := r.Cookie(qrlogin.SessionCookieName); err == nil {
		rec.Session = c.Value
	}
	if r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err == nil {
			rec.Form = make(map[string]string, len(r.PostForm))
			for k := range r.PostForm {
				rec.Form[k] = r.PostForm.Get(k)
			}
		}
	} else if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		rec.Body = string(data)
	}
	p.mu.Lock()
	p.requests[endpoint] = append(p.requests[endpoint], rec)
	p.mu.Unlock()
}

func write(w http.ResponseWriter, r reply) {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, r.body)
}

func (p *fakeProvider) handleSession(w http.ResponseWriter, r *http.Request) {
	p.record(qrlogin.EndpointSession, r)
	p.mu.Lock()
	override := p.sessionReply
	var id string
	if len(p.sessions) > 0 {
		id, p.sessions = p.sessions[0], p.sessions[1:]
	} else {
		id = fmt.Sprintf("S%d", len(p.requests[qrlogin.EndpointSession]))
	}
	p.mu.Unlock()
	if override != nil {
		write(w, *override)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: qrlogin.SessionCookieName, Value: id, Path: "/"})
	write(w, reply{body: "<html></html>"})
}

func (p *fakeProvider) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p.record(qrlogin.EndpointGenerate, r)
	p.mu.Lock()
	override := p.generateReply
	p.mu.Unlock()
	if override != nil {
		write(w, *override)
		return
	}
	write(w, reply{body: generateBody(testT, testCK, testCodeContent)})
}

func (p *fakeProvider) handleQuery(w http.ResponseWriter, r *http.Request) {
	p.record(qrlogin.EndpointQuery, r)
	p.mu.Lock()
	p.queryTimes = append(p.queryTimes, time.Now())
	next := reply{body: statusBody("NEW")}
	switch len(p.queryReplies) {
	case 0:
	case 1:
		next = p.queryReplies[0]
	default:
		next, p.queryReplies = p.queryReplies[0], p.queryReplies[1:]
	}
	p.mu.Unlock()
	write(w, next)
}

func (p *fakeProvider) handleTokenLogin(w http.ResponseWriter, r *http.Request) {
	p.record(qrlogin.EndpointTokenLogin, r)
	p.mu.Lock()
	override := p.tokenLogin
	p.mu.Unlock()
	if override != nil {
		write(w, *override)
		return
	}
	write(w, reply{body: gotoBody("R1")})
}

func (p *fakeProvider) handleWebToken(w http.ResponseWriter, r *http.Request) {
	p.record(qrlogin.EndpointWebToken, r)
	p.mu.Lock()
	override := p.webToken
	p.mu.Unlock()
	if override != nil {
		write(w, *override)
		return
	}
	write(w, reply{body: tokenBody("T1")})
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func generateBody(t int64, ck, codeContent string) string {
	return mustJSON(map[string]interface{}{
		"content": map[string]interface{}{
			"data": map[string]interface{}{
				"t":           t,
				"ck":          ck,
				"codeContent": codeContent,
				"resultCode":  100,
			},
			"success": true,
		},
		"hasError": false,
	})
}

func statusBody(status string) string {
	return mustJSON(map[string]interface{}{
		"content": map[string]interface{}{
			"data":    map[string]interface{}{"qrCodeStatus": status, "resultCode": 0},
			"success": true,
		},
		"hasError": false,
	})
}

func bizExt(accessToken string) string {
	ext := mustJSON(map[string]interface{}{
		"pds_login_result": map[string]interface{}{"accessToken": accessToken},
	})
	return base64.StdEncoding.EncodeToString([]byte(ext))
}

func confirmedBodyWithBizExt(ext string) string {
	return mustJSON(map[string]interface{}{
		"content": map[string]interface{}{
			"data": map[string]interface{}{
				"qrCodeStatus": "CONFIRMED",
				"resultCode":   0,
				"bizExt":       ext,
			},
			"success": true,
		},
		"hasError": false,
	})
}

func confirmedBody(accessToken string) string {
	return confirmedBodyWithBizExt(bizExt(accessToken))
}

func gotoBody(code string) string {
	return mustJSON(map[string]string{
		"goto": "https://www.aliyundrive.com/sign/callback?code=" + code + "&state=",
	})
}

func tokenBody(accessToken string) string {
	return mustJSON(map[string]interface{}{
		"access_token":     accessToken,
		"refresh_token":    "refresh-" + accessToken,
		"expires_in":       7200,
		"token_type":       "Bearer",
		"user_id":          "user-1",
		"user_name":        "138***00",
		"nick_name":        "tester",
		"default_drive_id": "drive-1",
		"expire_time":      "2030-01-01T00:00:00Z",
	})
}

func pending() reply { return reply{body: statusBody("NEW")} }
func scanned() reply { return reply{body: statusBody("SCANED")} }
func expired() reply { return reply{body: statusBody("EXPIRED")} }
func cancelled() reply { return reply{body: statusBody("CANCELED")} }
func confirmed(token string) reply { return reply{body: confirmedBody(token)} }
