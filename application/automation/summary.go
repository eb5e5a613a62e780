package automation

import (
	"sort"

	"cabal-assist/core/event"
)

// Summary counts what a run saw, grouped under titles.
// It is owned by the worker goroutine.
type Summary struct {
	rolls  int
	order  []string
	groups map[string]map[string]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{groups: make(map[string]map[string]int)}
}

// Declare fixes the display order of groups. Undeclared groups follow in
// first-use order.
func (s *Summary) Declare(titles ...string) {
	for _, t := range titles {
		s.group(t)
	}
}

// Roll counts one completed read.
func (s *Summary) Roll() {
	s.rolls++
}

// Rolls returns the number of completed reads.
func (s *Summary) Rolls() int {
	return s.rolls
}

// Add counts one occurrence of key under title.
func (s *Summary) Add(title, key string) {
	s.group(title)[key]++
}

// Count returns the count of key under title.
func (s *Summary) Count(title, key string) int {
	return s.groups[title][key]
}

// Empty reports whether nothing was counted.
func (s *Summary) Empty() bool {
	for _, g := range s.groups {
		if len(g) > 0 {
			return false
		}
	}
	return true
}

// Groups returns the non-empty groups, each sorted by count descending and
// then by key.
func (s *Summary) Groups() []event.SummaryGroup {
	var out []event.SummaryGroup
	for _, title := range s.order {
		counts := s.groups[title]
		if len(counts) == 0 {
			continue
		}
		entries := make([]event.SummaryEntry, 0, len(counts))
		for k, n := range counts {
			entries = append(entries, event.SummaryEntry{Key: k, Count: n})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Key < entries[j].Key
		})
		out = append(out, event.SummaryGroup{Title: title, Entries: entries})
	}
	return out
}

func (s *Summary) group(title string) map[string]int {
	g, ok := s.groups[title]
	if !ok {
		g = make(map[string]int)
		s.groups[title] = g
		s.order = append(s.order, title)
	}
	return g
}
