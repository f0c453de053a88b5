// internal/poller/poller_test.go
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tamzrod/trainwatch/internal/version"
)

const commit = "75ca755f94be44c06c55fab8e3fccfedb0e4b59e"

type fakeClient struct {
	mu       sync.Mutex
	bodies   map[string]Payload
	delays   map[string]time.Duration
	fail     map[string]error
	agents   []string
	requests []string
}

func (f *fakeClient) GetJSON(ctx context.Context, url, userAgent string, out any) error {
	f.mu.Lock()
	f.agents = append(f.agents, userAgent)
	f.requests = append(f.requests, url)
	delay := f.delays[url]
	failure := f.fail[url]
	body := f.bodies[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failure != nil {
		return failure
	}
	*(out.(*Payload)) = body
	return nil
}

func endpoints() []Endpoint {
	return []Endpoint{
		{Name: "content", URL: "https://content.test/ver.json"},
		{Name: "auth", URL: "https://auth.test/__version__"},
		{Name: "profile", URL: "https://profile.test/__version__"},
		{Name: "oauth", URL: "https://oauth.test/__version__"},
	}
}

func healthyClient() *fakeClient {
	f := &fakeClient{
		bodies: map[string]Payload{},
		delays: map[string]time.Duration{},
		fail:   map[string]error{},
	}
	sources := map[string]string{
		"content": "git://github.com/mozilla/fxa-content-server.git",
		"auth":    "git@github.com:mozilla/fxa-auth-server-private.git",
		"profile": "https://github.com/mozilla/fxa-profile-server",
		"oauth":   "git://github.com/mozilla/fxa-oauth-server.git",
	}
	for _, ep := range endpoints() {
		f.bodies[ep.URL] = Payload{Version: "0.81.1", Source: sources[ep.Name], Commit: commit}
	}
	return f
}

func newPoller(t *testing.T, client Client) *Poller {
	t.Helper()
	p, err := Build(endpoints(), "wibble", "", time.Second, client)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}
	return p
}

func TestPollOnce_Success(t *testing.T) {
	client := healthyClient()
	p := newPoller(t, client)

	res := p.PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if len(res.Versions) != 4 {
		t.Fatalf("expected 4 versions, got %d", len(res.Versions))
	}

	wantRepos := []string{
		"mozilla/fxa-content-server",
		"mozilla/fxa-auth-server-private",
		"mozilla/fxa-profile-server",
		"mozilla/fxa-oauth-server",
	}
	for i, v := range res.Versions {
		if v.Name != endpoints()[i].Name {
			t.Fatalf("versions[%d] name got=%q want=%q", i, v.Name, endpoints()[i].Name)
		}
		if v.Train != 81 || v.Patch != 1 {
			t.Fatalf("versions[%d] got train=%d patch=%d", i, v.Train, v.Patch)
		}
		if v.Tag != "v0.81.1" {
			t.Fatalf("versions[%d] tag got=%q", i, v.Tag)
		}
		if v.Commit != commit {
			t.Fatalf("versions[%d] commit got=%q", i, v.Commit)
		}
		if v.Repo != wantRepos[i] {
			t.Fatalf("versions[%d] repo got=%q want=%q", i, v.Repo, wantRepos[i])
		}
	}

	if len(client.agents) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(client.agents))
	}
	for _, ua := range client.agents {
		if ua != "wibble" {
			t.Fatalf("expected user agent wibble, got %q", ua)
		}
	}
}

func TestPollOnce_PreservesEndpointOrder(t *testing.T) {
	client := healthyClient()
	eps := endpoints()
	// First endpoint answers last.
	for i, ep := range eps {
		client.delays[ep.URL] = time.Duration(len(eps)-i) * 20 * time.Millisecond
		b := client.bodies[ep.URL]
		b.Version = "1.81." + string(rune('0'+i))
		client.bodies[ep.URL] = b
	}

	res := newPoller(t, client).PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	for i, v := range res.Versions {
		if v.Name != eps[i].Name || v.Patch != i {
			t.Fatalf("versions[%d] out of order: %+v", i, v)
		}
	}
}

func TestPollOnce_Failure(t *testing.T) {
	client := healthyClient()
	boom := errors.New("connection refused")
	client.fail[endpoints()[2].URL] = boom

	res := newPoller(t, client).PollOnce(context.Background())
	if res.Err == nil {
		t.Fatalf("expected error, got nil")
	}
	if res.Versions != nil {
		t.Fatalf("failed cycle must not return partial versions, got %d", len(res.Versions))
	}

	var fe *FetchError
	if !errors.As(res.Err, &fe) {
		t.Fatalf("expected FetchError, got %T", res.Err)
	}
	if fe.Endpoint != "profile" {
		t.Fatalf("expected profile endpoint, got %q", fe.Endpoint)
	}
	if !errors.Is(res.Err, boom) {
		t.Fatalf("cause not preserved: %v", res.Err)
	}
}

func TestPollOnce_MalformedVersion(t *testing.T) {
	client := healthyClient()
	b := client.bodies[endpoints()[0].URL]
	b.Version = "0.eighty.1"
	client.bodies[endpoints()[0].URL] = b

	res := newPoller(t, client).PollOnce(context.Background())
	if !errors.Is(res.Err, version.ErrMalformedVersion) {
		t.Fatalf("expected ErrMalformedVersion, got %v", res.Err)
	}
}

func TestPollOnce_RepoMismatch(t *testing.T) {
	client := healthyClient()
	b := client.bodies[endpoints()[1].URL]
	b.Source = "https://example.com/someone/else"
	client.bodies[endpoints()[1].URL] = b

	res := newPoller(t, client).PollOnce(context.Background())

	var nm *version.NoMatchError
	if !errors.As(res.Err, &nm) {
		t.Fatalf("expected NoMatchError, got %v", res.Err)
	}
}

func TestPollOnce_TimeoutBoundsHungEndpoint(t *testing.T) {
	client := healthyClient()
	client.delays[endpoints()[3].URL] = time.Minute

	p, err := Build(endpoints(), "wibble", "", 50*time.Millisecond, client)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}

	start := time.Now()
	res := p.PollOnce(context.Background())
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", res.Err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("hung endpoint stalled the cycle")
	}
}

func TestPollOnce_OverHTTP(t *testing.T) {
	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(Payload{
			Version: "1.82.0",
			Source:  "git://github.com/mozilla/fxa-" + strings.TrimPrefix(r.URL.Path, "/") + "-server.git",
			Commit:  commit,
		})
	}))
	defer srv.Close()

	eps := []Endpoint{
		{Name: "content", URL: srv.URL + "/content"},
		{Name: "auth", URL: srv.URL + "/auth"},
	}
	p, err := Build(eps, "trainwatch-test", "", time.Second, nil)
	if err != nil {
		t.Fatalf("Build() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if res.Versions[1].Repo != "mozilla/fxa-auth-server" {
		t.Fatalf("unexpected repo %q", res.Versions[1].Repo)
	}
	if len(agents) != 2 || agents[0] != "trainwatch-test" {
		t.Fatalf("unexpected user agents %v", agents)
	}
}

func TestNew_Validation(t *testing.T) {
	repo, err := version.NewRepoMatcher("")
	if err != nil {
		t.Fatalf("NewRepoMatcher err=%v", err)
	}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"no endpoints", Config{UserAgent: "ua", Repo: repo}},
		{"unnamed endpoint", Config{Endpoints: []Endpoint{{URL: "http://x"}}, UserAgent: "ua", Repo: repo}},
		{"no user agent", Config{Endpoints: endpoints(), Repo: repo}},
		{"no repo matcher", Config{Endpoints: endpoints(), UserAgent: "ua"}},
	}

	for _, tc := range cases {
		if _, err := New(tc.cfg, healthyClient()); err == nil {
			t.Fatalf("%s: expected error, got nil", tc.name)
		}
	}
}
