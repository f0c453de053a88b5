// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/version"
)

// Client abstracts the HTTP operation the poller needs.
// out is decoded from the JSON response body.
type Client interface {
	GetJSON(ctx context.Context, url, userAgent string, out any) error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Endpoints []Endpoint
	UserAgent string

	// Timeout bounds each endpoint request. Zero means no bound.
	Timeout time.Duration
	Repo    *version.RepoMatcher
}

// Poller fetches every endpoint once per call.
type Poller struct {
	cfg    Config
	client Client
	now    func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, client Client) (*Poller, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("poller: at least one endpoint required")
	}
	for i, ep := range cfg.Endpoints {
		if ep.Name == "" || ep.URL == "" {
			return nil, fmt.Errorf("poller: endpoint %d requires name and url", i)
		}
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("poller: user agent required")
	}
	if cfg.Repo == nil {
		return nil, errors.New("poller: repo matcher required")
	}
	if client == nil {
		return nil, errors.New("poller: client required")
	}

	eps := make([]Endpoint, len(cfg.Endpoints))
	copy(eps, cfg.Endpoints)
	cfg.Endpoints = eps

	return &Poller{cfg: cfg, client: client, now: time.Now}, nil
}

// Endpoints returns the configured endpoints in order.
func (p *Poller) Endpoints() []Endpoint {
	out := make([]Endpoint, len(p.cfg.Endpoints))
	copy(out, p.cfg.Endpoints)
	return out
}

// PollOnce performs exactly one poll cycle.
// Requests run concurrently; results keep endpoint order.
// All-or-nothing: the first failure cancels the rest and aborts the cycle.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{At: p.now()}

	versions := make([]status.Version, len(p.cfg.Endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range p.cfg.Endpoints {
		g.Go(func() error {
			v, err := p.fetch(gctx, ep)
			if err != nil {
				return &FetchError{Endpoint: ep.Name, URL: ep.URL, Err: err}
			}
			versions[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		res.Err = err
		return res
	}

	// Commit only if all fetches succeeded
	res.Versions = versions
	return res
}

func (p *Poller) fetch(ctx context.Context, ep Endpoint) (status.Version, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	var body Payload
	if err := p.client.GetJSON(ctx, ep.URL, p.cfg.UserAgent, &body); err != nil {
		return status.Version{}, err
	}

	n, err := version.Parse(body.Version)
	if err != nil {
		return status.Version{}, err
	}

	repo, err := p.cfg.Repo.Extract(body.Source)
	if err != nil {
		return status.Version{}, err
	}

	return status.Version{
		Name:   ep.Name,
		Train:  n.Train,
		Patch:  n.Patch,
		Tag:    version.Tag(body.Version),
		Commit: body.Commit,
		Repo:   repo,
	}, nil
}
