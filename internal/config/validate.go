// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tamzrod/trainwatch/internal/status"
	"github.com/tamzrod/trainwatch/internal/watcher"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Semantic watcher checks (minimum rate, seed consistency) belong to watcher.New.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// WATCHER
	// ------------------------------------------------------------

	w := cfg.Watcher

	if w.RateMs <= 0 {
		return fmt.Errorf("watcher: rate_ms must be > 0, got %d", w.RateMs)
	}
	if strings.TrimSpace(w.UserAgent) == "" {
		return fmt.Errorf("watcher: user_agent must not be empty")
	}
	if w.TimeoutMs < 0 {
		return fmt.Errorf("watcher: timeout_ms must be >= 0, got %d", w.TimeoutMs)
	}
	if _, err := status.ParseMatch(strings.ToLower(strings.TrimSpace(w.Match))); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}

	if len(w.Endpoints) == 0 {
		return fmt.Errorf("watcher: at least one endpoint is required")
	}
	names := make(map[string]struct{}, len(w.Endpoints))
	for i, ep := range w.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("watcher: endpoints[%d]: name is required", i)
		}
		if _, dup := names[ep.Name]; dup {
			return fmt.Errorf("watcher: endpoints[%d]: duplicate name %q", i, ep.Name)
		}
		names[ep.Name] = struct{}{}

		u, err := url.Parse(ep.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("watcher: endpoints[%d]: invalid url %q", i, ep.URL)
		}
	}

	// Without a status section the reference seed applies; it only fits
	// the reference endpoints.
	if w.Status == nil {
		seed := watcher.DefaultSeed().Versions
		if len(seed) != len(w.Endpoints) {
			return fmt.Errorf(
				"watcher: status is required: endpoints has %d entries, the default seed has %d",
				len(w.Endpoints),
				len(seed),
			)
		}
		for i, v := range seed {
			if v.Name != w.Endpoints[i].Name {
				return fmt.Errorf(
					"watcher: status is required: endpoints[%d] is %q, the default seed expects %q",
					i,
					w.Endpoints[i].Name,
					v.Name,
				)
			}
		}
	}

	if s := w.Status; s != nil {
		if len(s.Versions) != len(w.Endpoints) {
			return fmt.Errorf(
				"watcher: status.versions has %d entries, endpoints has %d",
				len(s.Versions),
				len(w.Endpoints),
			)
		}
		for i, v := range s.Versions {
			if v.Name == "" {
				continue
			}
			if _, ok := names[v.Name]; !ok {
				return fmt.Errorf("watcher: status.versions[%d]: unknown endpoint %q", i, v.Name)
			}
		}
	}

	// ------------------------------------------------------------
	// STATUS MEMORY (OPT-IN)
	// ------------------------------------------------------------

	sm := cfg.StatusMemory

	// device_name sanity (ASCII only)
	for i := 0; i < len(sm.DeviceName); i++ {
		if sm.DeviceName[i] > 0x7F {
			return fmt.Errorf("status_memory: device_name must contain ASCII characters only")
		}
	}

	if !sm.Enabled() {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(sm.Transport)) {
	case TransportModbus, TransportIngest:
	default:
		return fmt.Errorf("status_memory: unknown transport %q", sm.Transport)
	}

	if sm.TimeoutMs < 0 {
		return fmt.Errorf("status_memory: timeout_ms must be >= 0, got %d", sm.TimeoutMs)
	}

	// The block must fit in the 16-bit register address space.
	if end := int(sm.BaseSlot)*status.SlotsPerBlock + status.SlotsPerBlock; end > 0x10000 {
		return fmt.Errorf("status_memory: base_slot %d puts the block past register 65535", sm.BaseSlot)
	}

	if n := len(w.Endpoints); n > status.MaxServices {
		return fmt.Errorf(
			"status_memory: %d endpoints exceed the %d services a status block holds",
			n,
			status.MaxServices,
		)
	}

	return nil
}
