// Package stat holds the stat vocabularies the OCR flows read against.
package stat

import (
	"sort"
	"strings"
)

// Category groups stats in summaries and selection lists.
type Category string

const (
	CategoryOffensive Category = "offensive"
	CategoryDefensive Category = "defensive"
	CategoryOther     Category = "other"
)

// Title returns the heading used in summaries.
func (c Category) Title() string {
	switch c {
	case CategoryOffensive:
		return "Offensive Stats"
	case CategoryDefensive:
		return "Defensive Stats"
	default:
		return "Other Stats"
	}
}

// Option is a selectable stat. Several display options may share one base name
// when the game shows the same stat with different value tables.
type Option struct {
	Display  string
	Base     string
	Category Category
	Values   []string
}

// TruncatedRule recognizes a stat whose name the game cuts off, leaving no
// readable value. The rule fires when every keyword, or the phrase, appears in
// the lowercased text.
type TruncatedRule struct {
	Name         string
	Keywords     []string
	Phrase       string
	LineKeywords []string
}

func (r TruncatedRule) matchesText(lower string) bool {
	if r.Phrase != "" && strings.Contains(lower, r.Phrase) {
		return true
	}
	return len(r.Keywords) > 0 && containsAll(lower, r.Keywords)
}

func (r TruncatedRule) matchesLine(lower string) bool {
	return len(r.LineKeywords) > 0 && containsAll(lower, r.LineKeywords)
}

// NormalizeName lowercases a stat name and drops spaces and dots so OCR output
// and vocabulary entries compare equal.
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, ".", "")
}

// minPartialLen guards partial matching against near-empty OCR names, which
// would otherwise be contained in every known name.
const minPartialLen = 3

// Vocabulary is the set of stats a dual-stat reading can produce.
type Vocabulary struct {
	known      []string
	normalized map[string]string
	category   map[string]Category
	options    []Option
	display    map[string]Option
	truncated  []TruncatedRule
}

// NewVocabulary builds a vocabulary from known base names, selectable options
// and truncated-name rules.
func NewVocabulary(known []string, options []Option, truncated []TruncatedRule) *Vocabulary {
	v := &Vocabulary{
		normalized: make(map[string]string),
		category:   make(map[string]Category),
		display:    make(map[string]Option),
		truncated:  truncated,
	}

	add := func(name string) {
		if name == "" {
			return
		}
		key := NormalizeName(name)
		if _, ok := v.normalized[key]; ok {
			return
		}
		v.normalized[key] = name
		v.known = append(v.known, name)
	}

	for _, name := range known {
		add(name)
	}
	for _, opt := range options {
		if opt.Base == "" {
			opt.Base = opt.Display
		}
		add(opt.Base)
		v.options = append(v.options, opt)
		v.display[opt.Display] = opt
		if _, ok := v.category[opt.Base]; !ok {
			v.category[opt.Base] = opt.Category
		}
	}

	return v
}

// Known returns every base name in load order.
func (v *Vocabulary) Known() []string {
	return append([]string(nil), v.known...)
}

// Options returns the selectable options of one category.
func (v *Vocabulary) Options(c Category) []Option {
	var out []Option
	for _, opt := range v.options {
		if opt.Category == c {
			out = append(out, opt)
		}
	}
	return out
}

// Option looks up a selectable option by its display name.
func (v *Vocabulary) Option(display string) (Option, bool) {
	opt, ok := v.display[display]
	return opt, ok
}

// BaseName maps a display name to the base name used for detection.
func (v *Vocabulary) BaseName(display string) string {
	if opt, ok := v.display[display]; ok {
		return opt.Base
	}
	return display
}

// CategoryOf returns the category of a base name, or CategoryOther.
func (v *Vocabulary) CategoryOf(base string) Category {
	if c, ok := v.category[base]; ok {
		return c
	}
	return CategoryOther
}

// Match resolves an OCR stat name to a known base name. Exact normalized
// matches win; otherwise the longest known name that contains, or is
// contained in, the detected name is chosen.
func (v *Vocabulary) Match(detected string) (string, bool) {
	d := NormalizeName(detected)
	if d == "" {
		return "", false
	}
	if name, ok := v.normalized[d]; ok {
		return name, true
	}
	if len(d) < minPartialLen {
		return "", false
	}

	var candidates []string
	for key := range v.normalized {
		if strings.Contains(key, d) || strings.Contains(d, key) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return v.normalized[candidates[0]], true
}

// MatchTruncated returns the first truncated-name rule that fires on text.
func (v *Vocabulary) MatchTruncated(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range v.truncated {
		if r.matchesText(lower) {
			return r.Name, true
		}
	}
	return "", false
}

// IsTruncatedLine reports whether a line belongs to a truncated-name stat and
// must be skipped by line parsing.
func (v *Vocabulary) IsTruncatedLine(line string) bool {
	lower := strings.ToLower(line)
	for _, r := range v.truncated {
		if r.matchesLine(lower) {
			return true
		}
	}
	return false
}

// StellarOptions is the option list of the single-stat reroll.
type StellarOptions struct {
	Options    []string
	exceptions map[string][]string
}

// NewStellarOptions builds the option list. Exception keys are normalized the
// same way OCR text is.
func NewStellarOptions(options []string, exceptions map[string][]string) *StellarOptions {
	s := &StellarOptions{
		Options:    options,
		exceptions: make(map[string][]string, len(exceptions)),
	}
	for k, v := range exceptions {
		s.exceptions[CompactLower(k)] = v
	}
	return s
}

// ExceptionsFor returns the phrases that veto a keyword match.
func (s *StellarOptions) ExceptionsFor(keyword string) []string {
	if s == nil {
		return nil
	}
	return s.exceptions[CompactLower(keyword)]
}

// CompactLower removes all whitespace and lowercases s.
func CompactLower(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
