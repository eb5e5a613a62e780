package automation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"cabal-assist/domain/stat"
)

var (
	// OCR tends to read a "+" directly after a word as "4".
	plusMisread       = regexp.MustCompile(`([a-z]+)4(\d)`)
	plusMisreadSpaced = regexp.MustCompile(`([A-Za-z\s.]+)\s4(\d)`)
	digitRun          = regexp.MustCompile(`\d+`)
	leadingNumber     = regexp.MustCompile(`\d+(?:[.,]\d{3})*`)
)

// statLinePatterns are tried in order against every panel line.
var statLinePatterns = []struct {
	re      *regexp.Regexp
	percent bool
}{
	{regexp.MustCompile(`(.+?)\s*\+(\d+(?:\.\d{3})*)%`), true},
	{regexp.MustCompile(`(.+?)\s*\+(\d+(?:\.\d{3})*)`), false},
	{regexp.MustCompile(`(.+?)\s*(\d+(?:\.\d{3})*)%`), true},
	{regexp.MustCompile(`(.+?)\s*(\d+(?:\.\d{3})*)`), false},
}

// SingleStatParser normalizes stellar text: whitespace removed, lowercased,
// and misread plus signs restored.
type SingleStatParser struct{}

var _ TextParser = SingleStatParser{}

// Parse implements TextParser.
func (SingleStatParser) Parse(raw string) Detection {
	text := stat.CompactLower(raw)
	text = plusMisread.ReplaceAllString(text, "$1+$2")
	text = strings.ReplaceAll(text, "stellarforce4", "stellarforce+")
	return Detection{
		Text:    text,
		Numbers: digitRun.FindAllString(text, -1),
	}
}

// SingleStatGoal is the stellar success predicate.
type SingleStatGoal struct {
	Keyword    string
	MinValue   string
	Exceptions []string
}

// NewSingleStatGoal normalizes keyword and min the same way the text is
// normalized and attaches the keyword's exception phrases.
func NewSingleStatGoal(keyword, minValue string, options *stat.StellarOptions) SingleStatGoal {
	k := stat.CompactLower(keyword)
	var exceptions []string
	for _, e := range options.ExceptionsFor(k) {
		exceptions = append(exceptions, stat.CompactLower(e))
	}
	return SingleStatGoal{
		Keyword:    k,
		MinValue:   stat.CompactLower(minValue),
		Exceptions: exceptions,
	}
}

// SingleStatVerdict explains a stellar evaluation.
type SingleStatVerdict struct {
	KeywordFound bool
	Vetoed       bool
	MinMet       bool
	Matched      bool
}

// Evaluate checks a parsed stellar read against the goal.
func (g SingleStatGoal) Evaluate(d Detection) SingleStatVerdict {
	var v SingleStatVerdict
	if g.Keyword == "" {
		return v
	}

	if strings.Contains(d.Text, g.Keyword) {
		for _, e := range g.Exceptions {
			if e != "" && strings.Contains(d.Text, e) {
				v.Vetoed = true
				break
			}
		}
		v.KeywordFound = !v.Vetoed
	}

	if g.MinValue != "" {
		if isDigits(g.MinValue) {
			threshold, _ := strconv.Atoi(g.MinValue)
			for _, n := range d.Numbers {
				if val, err := strconv.Atoi(n); err == nil && val >= threshold {
					v.MinMet = true
					break
				}
			}
		} else {
			v.MinMet = strings.Contains(d.Text, g.MinValue)
		}
		v.Matched = v.KeywordFound && v.MinMet
	} else {
		v.Matched = v.KeywordFound
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DualStatParser parses the two-line arrival panel.
type DualStatParser struct {
	vocab *stat.Vocabulary
}

var _ TextParser = (*DualStatParser)(nil)

// NewDualStatParser creates a parser matching names against vocab.
func NewDualStatParser(vocab *stat.Vocabulary) *DualStatParser {
	return &DualStatParser{vocab: vocab}
}

// Parse implements TextParser.
func (p *DualStatParser) Parse(raw string) Detection {
	text := plusMisreadSpaced.ReplaceAllString(raw, "$1 +$2")
	// Dots in values are read as commas.
	text = strings.ReplaceAll(text, ",", ".")

	det := Detection{Text: text, Numbers: digitRun.FindAllString(text, -1)}

	if name, ok := p.vocab.MatchTruncated(text); ok {
		det.setField(Field{Name: name})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || p.vocab.IsTruncatedLine(line) {
			continue
		}

		for _, lp := range statLinePatterns {
			m := lp.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			name := strings.TrimSpace(strings.ReplaceAll(m[1], ".", ""))
			digits := strings.ReplaceAll(m[2], ".", "")
			if !hasLetter(name) {
				break
			}

			if base, ok := p.vocab.Match(name); ok {
				if value, err := strconv.Atoi(digits); err == nil {
					det.setField(Field{Name: base, Value: value, HasValue: true, Percent: lp.percent})
				}
			} else {
				key := name + " +" + digits
				if lp.percent {
					key += "%"
				}
				det.Unmapped = append(det.Unmapped, key)
			}
			break
		}
	}

	return det
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func (d *Detection) setField(f Field) {
	for i := range d.Fields {
		if d.Fields[i].Name == f.Name {
			d.Fields[i] = f
			return
		}
	}
	d.Fields = append(d.Fields, f)
}

// ParseMinValue reads the leading number of an option value such as "45",
// "2%" or "15s". It returns 0 when there is none.
func ParseMinValue(s string) int {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	m = strings.NewReplacer(".", "", ",", "").Replace(m)
	n, _ := strconv.Atoi(m)
	return n
}

// StatGoal is one requested arrival stat.
type StatGoal struct {
	Display string
	Base    string
	Min     int
}

// NewStatGoal resolves a display name to its base name. An empty display
// name yields nil, meaning the slot is not requested.
func NewStatGoal(vocab *stat.Vocabulary, display, minValue string) *StatGoal {
	if strings.TrimSpace(display) == "" {
		return nil
	}
	return &StatGoal{
		Display: display,
		Base:    vocab.BaseName(display),
		Min:     ParseMinValue(minValue),
	}
}

// Verdict is the result of a dual-stat goal check.
type Verdict int

const (
	// VerdictMiss means the roll does not satisfy the goal.
	VerdictMiss Verdict = iota
	// VerdictMatched means every requested stat meets its minimum.
	VerdictMatched
	// VerdictUnverified means a requested stat was found without a readable
	// value and has to be checked by hand.
	VerdictUnverified
)

// DualStatGoal requests an offensive stat, a defensive stat, or both.
type DualStatGoal struct {
	Offensive *StatGoal
	Defensive *StatGoal
}

// Empty reports whether nothing was requested.
func (g DualStatGoal) Empty() bool {
	return g.Offensive == nil && g.Defensive == nil
}

// Evaluate checks a roll. The offensive slot is checked first; a requested
// stat without a value stops evaluation with VerdictUnverified.
func (g DualStatGoal) Evaluate(d Detection) (Verdict, *StatGoal) {
	if g.Empty() {
		return VerdictMatched, nil
	}

	matched := true
	for _, goal := range []*StatGoal{g.Offensive, g.Defensive} {
		if goal == nil {
			continue
		}
		f, ok := d.Field(goal.Base)
		switch {
		case !ok:
			matched = false
		case !f.HasValue:
			return VerdictUnverified, goal
		case f.Value < goal.Min:
			matched = false
		}
	}

	if matched {
		return VerdictMatched, nil
	}
	return VerdictMiss, nil
}
