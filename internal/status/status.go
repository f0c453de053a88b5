// internal/status/status.go
package status

import (
	"time"

	"github.com/tamzrod/trainwatch/internal/version"
)

// Version is one service's observed deployment.
// Time is when this service last changed, as stamped by Reduce.
type Version struct {
	Name   string    `json:"name"`
	Train  int       `json:"train"`
	Patch  int       `json:"patch"`
	Tag    string    `json:"tag,omitempty"`
	Commit string    `json:"commit,omitempty"`
	Repo   string    `json:"repo,omitempty"`
	Time   time.Time `json:"time"`
}

// Number returns the (train, patch) pair.
func (v Version) Number() version.Number {
	return version.Number{Train: v.Train, Patch: v.Patch}
}

// Diff records one service whose (train, patch) changed since the last cycle.
// Previous is nil when the service had no previous entry.
type Diff struct {
	Name     string          `json:"name"`
	Current  version.Number  `json:"current"`
	Previous *version.Number `json:"previous,omitempty"`
}

// Patch is a service running a patch release of the current train.
type Patch struct {
	Name  string `json:"name"`
	Train int    `json:"train"`
	Patch int    `json:"patch"`
}

// Status is the aggregate deployment state.
//
// Versions always holds one entry per tracked endpoint, in endpoint order.
// Patches only holds entries whose Train equals Status.Train.
type Status struct {
	Train    int       `json:"train"`
	Time     time.Time `json:"time"`
	Diffs    []Diff    `json:"diffs"`
	Patches  []Patch   `json:"patches"`
	Versions []Version `json:"versions"`
}

// Clone returns a deep copy that shares no memory with s.
func (s Status) Clone() Status {
	out := Status{
		Train: s.Train,
		Time:  s.Time,
	}

	if s.Diffs != nil {
		out.Diffs = make([]Diff, len(s.Diffs))
		for i, d := range s.Diffs {
			out.Diffs[i] = d
			if d.Previous != nil {
				prev := *d.Previous
				out.Diffs[i].Previous = &prev
			}
		}
	}
	if s.Patches != nil {
		out.Patches = make([]Patch, len(s.Patches))
		copy(out.Patches, s.Patches)
	}
	if s.Versions != nil {
		out.Versions = make([]Version, len(s.Versions))
		copy(out.Versions, s.Versions)
	}

	return out
}

// Find returns the entry for a service name.
func (s Status) Find(name string) (Version, bool) {
	for _, v := range s.Versions {
		if v.Name == name {
			return v, true
		}
	}
	return Version{}, false
}

// Numbers lists every service's (train, patch) in entry order.
func (s Status) Numbers() []version.Number {
	out := make([]version.Number, len(s.Versions))
	for i, v := range s.Versions {
		out[i] = v.Number()
	}
	return out
}
