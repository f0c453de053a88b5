// internal/status/reduce.go
package status

import (
	"fmt"
	"time"
)

// Match selects how a fresh record finds its previous entry.
type Match string

const (
	// MatchName looks the previous entry up by service name.
	// Tolerates endpoint reordering between cycles.
	MatchName Match = "name"

	// MatchIndex pairs records and previous entries by position.
	MatchIndex Match = "index"
)

// ParseMatch accepts "name", "index" or "" (name).
func ParseMatch(raw string) (Match, error) {
	switch Match(raw) {
	case "", MatchName:
		return MatchName, nil
	case MatchIndex:
		return MatchIndex, nil
	default:
		return "", fmt.Errorf("status: unknown match mode %q", raw)
	}
}

// Reduce folds one cycle's records (in endpoint order) into a new Status.
// prev is never modified.
func Reduce(prev Status, records []Version, now time.Time, match Match) Status {
	next := Status{
		Train:    prev.Train,
		Time:     prev.Time,
		Diffs:    []Diff{},
		Patches:  []Patch{},
		Versions: make([]Version, 0, len(records)),
	}

	for i, rec := range records {
		cur := rec.Number()

		before, found := previousEntry(prev, i, rec.Name, match)

		if cur.Train > next.Train {
			next.Train = cur.Train
		}

		entry := rec
		if found && before.Number() == cur {
			entry.Time = before.Time
		} else {
			// Bump at most once per cycle.
			if next.Time.Equal(prev.Time) {
				next.Time = now
			}
			entry.Time = next.Time

			d := Diff{Name: rec.Name, Current: cur}
			if found {
				p := before.Number()
				d.Previous = &p
			}
			next.Diffs = append(next.Diffs, d)
		}

		// Tentative: the aggregate train may still rise later in the fold.
		if cur.Patch > 0 && cur.Train == next.Train {
			next.Patches = append(next.Patches, Patch{Name: rec.Name, Train: cur.Train, Patch: cur.Patch})
		}

		next.Versions = append(next.Versions, entry)
	}

	kept := next.Patches[:0]
	for _, p := range next.Patches {
		if p.Train == next.Train {
			kept = append(kept, p)
		}
	}
	next.Patches = kept

	return next
}

func previousEntry(prev Status, i int, name string, match Match) (Version, bool) {
	if match == MatchIndex {
		if i < len(prev.Versions) {
			return prev.Versions[i], true
		}
		return Version{}, false
	}
	return prev.Find(name)
}
