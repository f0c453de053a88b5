// internal/watcher/options.go
package watcher

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/tamzrod/trainwatch/internal/poller"
	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/version"
)

const (
	// DefaultRate is the cycle interval used when none is configured.
	DefaultRate = time.Hour

	// MinimumRate is the shortest accepted cycle interval.
	MinimumRate = DefaultRate / 2

	// DefaultTimeout bounds each endpoint request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies trainwatch to the polled services.
	DefaultUserAgent = "trainwatch/1.0 (+https://github.com/tamzrod/trainwatch)"
)

// Options configures a Watcher. Start from DefaultOptions: zero values for
// Rate, UserAgent, Endpoints and Seed are rejected, not defaulted.
type Options struct {
	Rate      time.Duration
	Immediate bool
	UserAgent string
	Seed      status.Status
	Endpoints []poller.Endpoint
	Match     status.Match

	// Timeout bounds each endpoint request. Zero disables the bound.
	Timeout     time.Duration
	RepoPattern string

	// Collaborators. nil selects the default.
	Client    poller.Client
	Scheduler Scheduler
	Clock     func() time.Time
	Logger    *slog.Logger
}

// DefaultEndpoints are the version endpoints of the reference deployment.
func DefaultEndpoints() []poller.Endpoint {
	return []poller.Endpoint{
		{Name: "content", URL: "https://accounts.firefox.com/ver.json"},
		{Name: "auth", URL: "https://api.accounts.firefox.com/__version__"},
		{Name: "profile", URL: "https://profile.accounts.firefox.com/__version__"},
		{Name: "oauth", URL: "https://oauth.accounts.firefox.com/__version__"},
	}
}

// DefaultSeed is the last status known when the reference endpoints were
// first tracked.
func DefaultSeed() status.Status {
	return status.Status{
		Train: 81,
		Time:  time.Date(2017, time.March, 3, 23, 12, 0, 0, time.UTC),
		Versions: []status.Version{
			{Name: "content", Train: 81, Patch: 0},
			{Name: "auth", Train: 81, Patch: 2},
			{Name: "profile", Train: 79, Patch: 0},
			{Name: "oauth", Train: 81, Patch: 0},
		},
	}
}

// DefaultOptions returns a complete, valid option set.
func DefaultOptions() Options {
	return Options{
		Rate:        DefaultRate,
		Immediate:   true,
		UserAgent:   DefaultUserAgent,
		Seed:        DefaultSeed(),
		Endpoints:   DefaultEndpoints(),
		Match:       status.MatchName,
		Timeout:     DefaultTimeout,
		RepoPattern: version.DefaultRepoPattern,
	}
}

// validate checks options declaratively.
// It MUST NOT mutate opts.
func validate(opts Options) error {
	if opts.Rate < MinimumRate {
		return invalid("rate", "%s is below the minimum of %s", opts.Rate, MinimumRate)
	}
	if opts.UserAgent == "" {
		return invalid("userAgent", "must be a non-empty string")
	}
	if opts.Timeout < 0 {
		return invalid("timeout", "must be >= 0, got %s", opts.Timeout)
	}
	if _, err := status.ParseMatch(string(opts.Match)); err != nil {
		return &ConfigurationError{Field: "match", Err: err}
	}
	if _, err := version.NewRepoMatcher(opts.RepoPattern); err != nil {
		return &ConfigurationError{Field: "repoPattern", Err: err}
	}

	if len(opts.Endpoints) == 0 {
		return invalid("endpoints", "at least one endpoint is required")
	}
	names := make(map[string]struct{}, len(opts.Endpoints))
	for i, ep := range opts.Endpoints {
		if ep.Name == "" {
			return invalid("endpoints", "endpoint %d has no name", i)
		}
		if _, dup := names[ep.Name]; dup {
			return invalid("endpoints", "duplicate endpoint name %q", ep.Name)
		}
		names[ep.Name] = struct{}{}

		u, err := url.Parse(ep.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("endpoints", "endpoint %q has invalid url %q", ep.Name, ep.URL)
		}
	}

	if err := status.ValidateSeed(opts.Seed, len(opts.Endpoints)); err != nil {
		return &ConfigurationError{Field: "status", Err: err}
	}
	for i, v := range opts.Seed.Versions {
		if v.Name == "" {
			continue
		}
		if _, ok := names[v.Name]; !ok {
			return invalid("status", "versions[%d].name %q is not a tracked endpoint", i, v.Name)
		}
	}

	return nil
}
