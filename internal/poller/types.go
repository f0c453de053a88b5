// internal/poller/types.go
package poller

import (
	"fmt"
	"time"

	"github.com/tamzrod/trainwatch/internal/status"
)

// Endpoint is one tracked service and its version URL.
type Endpoint struct {
	Name string
	URL  string
}

// Payload is the body served by a version endpoint.
// Commit is opaque and not validated.
type Payload struct {
	Version string `json:"version"`
	Source  string `json:"source"`
	Commit  string `json:"commit"`
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At time.Time

	// Versions holds one record per endpoint, in endpoint order.
	// Empty when Err is set.
	Versions []status.Version
	Err      error // non-nil means the poll cycle failed
}

// FetchError reports the endpoint that failed a poll cycle.
type FetchError struct {
	Endpoint string
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("poller: fetch %s (%s): %v", e.Endpoint, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
