// internal/version/repo.go
package version

import (
	"fmt"
	"regexp"
)

// DefaultRepoPattern matches owner/project[-suffix][-suffix][-private].
const DefaultRepoPattern = `mozilla/fxa(?:-[a-z]+){0,2}(?:-private)?`

// NoMatchError reports a source string the repo pattern did not match.
type NoMatchError struct {
	Source  string
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("version: source %q does not match repo pattern %q", e.Source, e.Pattern)
}

// RepoMatcher extracts a canonical repository identifier from free-form
// source locations (remote URLs, scp-style paths).
type RepoMatcher struct {
	re *regexp.Regexp
}

// NewRepoMatcher compiles pattern. An empty pattern selects DefaultRepoPattern.
func NewRepoMatcher(pattern string) (*RepoMatcher, error) {
	if pattern == "" {
		pattern = DefaultRepoPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("version: compile repo pattern: %w", err)
	}
	return &RepoMatcher{re: re}, nil
}

// Extract returns the leftmost match in source.
func (m *RepoMatcher) Extract(source string) (string, error) {
	loc := m.re.FindStringIndex(source)
	if loc == nil {
		return "", &NoMatchError{Source: source, Pattern: m.re.String()}
	}
	return source[loc[0]:loc[1]], nil
}

// Pattern returns the compiled expression.
func (m *RepoMatcher) Pattern() string {
	return m.re.String()
}
