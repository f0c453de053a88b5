// internal/version/parse.go
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedVersion is returned for version strings that are not
// "<major>.<train>.<patch>" with numeric components.
var ErrMalformedVersion = errors.New("version: malformed version string")

// Number is the (train, patch) pair carried by a deployed version.
// Major is not tracked.
type Number struct {
	Train int `json:"train"`
	Patch int `json:"patch"`
}

// Parse splits "<major>.<train>.<patch>" into a Number.
// Every component must be a non-negative integer and train must be > 0.
func Parse(raw string) (Number, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 {
		return Number{}, fmt.Errorf("%w: %q", ErrMalformedVersion, raw)
	}

	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Number{}, fmt.Errorf("%w: %q", ErrMalformedVersion, raw)
		}
		vals[i] = n
	}

	if vals[1] == 0 {
		return Number{}, fmt.Errorf("%w: %q has train 0", ErrMalformedVersion, raw)
	}

	return Number{Train: vals[1], Patch: vals[2]}, nil
}

// Tag is the release tag for a raw version string.
func Tag(raw string) string {
	return "v" + raw
}
