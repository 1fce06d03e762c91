// Package match evaluates goal and funnel match patterns against paths and
// event names. Patterns are PCRE expressions anchored to the full string; a
// pattern that fails to compile degrades to exact string comparison, so a
// plain path like "/pricing" always works as expected.
package match

import (
	"sync"

	"go.elara.ws/pcre"
)

// Matcher caches compiled patterns so repeated funnel/goal evaluation over
// large event sets compiles each pattern once.
type Matcher struct {
	compiled map[string]*pcre.Regexp
	broken   map[string]bool
	mutex    sync.RWMutex
}

// NewMatcher creates an empty pattern cache.
func NewMatcher() *Matcher {
	return &Matcher{
		compiled: make(map[string]*pcre.Regexp),
		broken:   make(map[string]bool),
	}
}

// Matches reports whether value matches the pattern. The pattern is
// compiled as an anchored PCRE; uncompilable patterns compare literally.
func (m *Matcher) Matches(pattern, value string) bool {
	if pattern == "" {
		return false
	}

	regex, ok := m.get(pattern)
	if !ok {
		return pattern == value
	}
	return regex.MatchString(value)
}

func (m *Matcher) get(pattern string) (*pcre.Regexp, bool) {
	m.mutex.RLock()
	if regex, exists := m.compiled[pattern]; exists {
		m.mutex.RUnlock()
		return regex, true
	}
	if m.broken[pattern] {
		m.mutex.RUnlock()
		return nil, false
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Double-check pattern
	if regex, exists := m.compiled[pattern]; exists {
		return regex, true
	}
	if m.broken[pattern] {
		return nil, false
	}

	regex, err := pcre.Compile("^(?:" + pattern + ")$")
	if err != nil {
		m.broken[pattern] = true
		return nil, false
	}
	m.compiled[pattern] = regex
	return regex, true
}

var defaultMatcher = NewMatcher()

// Matches evaluates a pattern with the shared process-wide cache.
func Matches(pattern, value string) bool {
	return defaultMatcher.Matches(pattern, value)
}
