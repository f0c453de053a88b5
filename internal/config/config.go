// internal/config/config.go
package config

import (
	"time"

	"github.com/tamzrod/trainwatch/internal/poller"
	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/watcher"
)

type Config struct {
	Watcher      WatcherConfig      `yaml:"watcher"`
	Server       ServerConfig       `yaml:"server"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
}

// ---- WATCHER ----

type WatcherConfig struct {
	RateMs      int              `yaml:"rate_ms"`
	Immediate   bool             `yaml:"immediate"`
	UserAgent   string           `yaml:"user_agent"`
	TimeoutMs   int              `yaml:"timeout_ms"` // 0 disables the per-request bound
	Match       string           `yaml:"match"`
	RepoPattern string           `yaml:"repo_pattern"`
	Endpoints   []EndpointConfig `yaml:"endpoints"`

	// Seed status (optional). nil selects the reference seed.
	Status *SeedConfig `yaml:"status"`
}

type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type SeedConfig struct {
	Train    int                 `yaml:"train"`
	Time     time.Time           `yaml:"time"`
	Versions []SeedVersionConfig `yaml:"versions"`
}

type SeedVersionConfig struct {
	Name  string `yaml:"name"`
	Train int    `yaml:"train"`
	Patch int    `yaml:"patch"`
}

// ---- SERVER ----

type ServerConfig struct {
	Listen string `yaml:"listen"` // empty disables the HTTP API
}

// ---- STATUS MEMORY ----

const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

type StatusMemoryConfig struct {
	Transport  string `yaml:"transport"`
	Endpoint   string `yaml:"endpoint"` // empty disables status memory
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	DeviceName string `yaml:"device_name"`
}

// Enabled reports whether status memory was opted into.
func (c StatusMemoryConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Default returns the configuration used for every omitted key.
func Default() Config {
	opts := watcher.DefaultOptions()

	eps := make([]EndpointConfig, 0, len(opts.Endpoints))
	for _, ep := range opts.Endpoints {
		eps = append(eps, EndpointConfig{Name: ep.Name, URL: ep.URL})
	}

	return Config{
		Watcher: WatcherConfig{
			RateMs:      int(opts.Rate / time.Millisecond),
			Immediate:   opts.Immediate,
			UserAgent:   opts.UserAgent,
			TimeoutMs:   int(opts.Timeout / time.Millisecond),
			Match:       string(opts.Match),
			RepoPattern: opts.RepoPattern,
			Endpoints:   eps,
		},
		StatusMemory: StatusMemoryConfig{
			Transport: TransportModbus,
			UnitID:    1,
			TimeoutMs: 2000,
		},
	}
}

// Options converts the watcher section into watcher options.
// Collaborators (client, scheduler, clock, logger) are left to the caller.
func (c WatcherConfig) Options() watcher.Options {
	opts := watcher.DefaultOptions()

	opts.Rate = time.Duration(c.RateMs) * time.Millisecond
	opts.Immediate = c.Immediate
	opts.UserAgent = c.UserAgent
	opts.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	opts.Match = status.Match(c.Match)
	opts.RepoPattern = c.RepoPattern

	opts.Endpoints = make([]poller.Endpoint, 0, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		opts.Endpoints = append(opts.Endpoints, poller.Endpoint{Name: ep.Name, URL: ep.URL})
	}

	if c.Status != nil {
		opts.Seed = c.Status.Status()
	}

	return opts
}

// Status converts the seed section into a status value.
func (c SeedConfig) Status() status.Status {
	s := status.Status{
		Train:    c.Train,
		Time:     c.Time.UTC(),
		Versions: make([]status.Version, 0, len(c.Versions)),
	}
	for _, v := range c.Versions {
		s.Versions = append(s.Versions, status.Version{Name: v.Name, Train: v.Train, Patch: v.Patch})
	}
	return s
}
