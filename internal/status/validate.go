// internal/status/validate.go
package status

import (
	"fmt"
	"time"
)

// ValidateSeed checks that s can serve as the first previous status for a
// watcher tracking services endpoints.
// It MUST NOT mutate s.
func ValidateSeed(s Status, services int) error {
	if s.Train <= 0 {
		return fmt.Errorf("train must be > 0, got %d", s.Train)
	}
	if s.Time.IsZero() || !s.Time.After(time.Unix(0, 0)) {
		return fmt.Errorf("time must be after the Unix epoch, got %s", s.Time.Format(time.RFC3339))
	}
	if len(s.Versions) != services {
		return fmt.Errorf("versions must hold %d entries, got %d", services, len(s.Versions))
	}

	seen := make(map[string]int)
	for i, v := range s.Versions {
		if v.Train <= 0 {
			return fmt.Errorf("versions[%d].train must be > 0, got %d", i, v.Train)
		}
		if v.Train > s.Train {
			return fmt.Errorf("versions[%d].train %d exceeds status train %d", i, v.Train, s.Train)
		}
		if v.Patch < 0 {
			return fmt.Errorf("versions[%d].patch must be >= 0, got %d", i, v.Patch)
		}
		if v.Name == "" {
			continue
		}
		if j, dup := seen[v.Name]; dup {
			return fmt.Errorf("versions[%d].name %q duplicates versions[%d]", i, v.Name, j)
		}
		seen[v.Name] = i
	}

	return nil
}

// NameSeed returns a copy of s where unnamed entries take the service name
// at the same position.
func NameSeed(s Status, names []string) Status {
	out := s.Clone()
	for i := range out.Versions {
		if out.Versions[i].Name == "" && i < len(names) {
			out.Versions[i].Name = names[i]
		}
	}
	return out
}
