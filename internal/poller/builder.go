// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/tamzrod/trainwatch/internal/poller/httpjson"
	"github.com/tamzrod/trainwatch/internal/version"
)

// Build constructs a Poller and wires the HTTP client.
// client may be nil, in which case an HTTP/2 capable httpjson client is built.
// No retries, no loops, no semantics.
func Build(endpoints []Endpoint, userAgent, repoPattern string, timeout time.Duration, client Client) (*Poller, error) {
	repo, err := version.NewRepoMatcher(repoPattern)
	if err != nil {
		return nil, err
	}

	if client == nil {
		hc, err := httpjson.New(httpjson.Config{DialTimeout: dialTimeout(timeout)})
		if err != nil {
			return nil, err
		}
		client = hc
	}

	return New(
		Config{
			Endpoints: endpoints,
			UserAgent: userAgent,
			Timeout:   timeout,
			Repo:      repo,
		},
		client,
	)
}

func dialTimeout(request time.Duration) time.Duration {
	if request <= 0 || request > 10*time.Second {
		return 10 * time.Second
	}
	return request
}
