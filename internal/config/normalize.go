// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/trainwatch/internal/status"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	w := &cfg.Watcher
	w.Match = strings.ToLower(strings.TrimSpace(w.Match))
	if w.Match == "" {
		w.Match = string(status.MatchName)
	}

	// Unnamed seed entries inherit the endpoint name at the same index.
	if w.Status != nil {
		for i := range w.Status.Versions {
			if w.Status.Versions[i].Name == "" && i < len(w.Endpoints) {
				w.Status.Versions[i].Name = w.Endpoints[i].Name
			}
		}
	}

	// ------------------------------------------------------------
	// STATUS MEMORY NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	sm := &cfg.StatusMemory
	if !sm.Enabled() {
		return
	}

	sm.Transport = strings.ToLower(strings.TrimSpace(sm.Transport))

	// ASCII already validated; truncate to the name slots.
	if len(sm.DeviceName) > status.DeviceNameMaxChars {
		sm.DeviceName = sm.DeviceName[:status.DeviceNameMaxChars]
	}
}
