package search

import (
	"strings"
	"sync"
)

// TermSet is an ordered set of search terms, such as the chips shown
// above a search box. Entries are trimmed, empty entries are ignored, and
// duplicates are rejected. It is safe for concurrent use.
type TermSet struct {
	mu    sync.RWMutex
	terms []string
}

// NewTermSet returns a set seeded with terms, applying Add to each.
func NewTermSet(terms ...string) *TermSet {
	s := &TermSet{}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add appends term and reports whether it was new.
func (s *TermSet) Add(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.terms {
		if t == term {
			return false
		}
	}
	s.terms = append(s.terms, term)
	return true
}

// Remove deletes term and reports whether it was present.
func (s *TermSet) Remove(term string) bool {
	term = strings.TrimSpace(term)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.terms {
		if t == term {
			s.terms = append(s.terms[:i], s.terms[i+1:]...)
			return true
		}
	}
	return false
}

// Terms returns a copy of the terms in insertion order.
func (s *TermSet) Terms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of terms.
func (s *TermSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// Clear removes every term.
func (s *TermSet) Clear() {
	s.mu.Lock()
	s.terms = nil
	s.mu.Unlock()
}

// Query joins the terms back into a single multi-term query string.
func (s *TermSet) Query() string {
	return strings.Join(s.Terms(), Separator+" ")
}
