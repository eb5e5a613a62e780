package presentation

import (
	"fmt"
	"strconv"
	"strings"

	"cabal-assist/core/event"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"
)

const notSet = "not set"

// formatSummary renders an end-of-run summary for the status log.
func formatSummary(title string, rolls int, groups []event.SummaryGroup) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s summary: %d rolls ===", title, rolls)
	for _, g := range groups {
		if len(g.Entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:", g.Title)
		for _, e := range g.Entries {
			fmt.Fprintf(&sb, "\n  %s: %d", e.Key, e.Count)
		}
	}
	return sb.String()
}

// buttonText shows a calibrated button, or notSet.
func buttonText(p *calibration.Profile, role calibration.Role) string {
	if p == nil {
		return notSet
	}
	if pt, ok := p.Button(role); ok {
		return pt.String()
	}
	return notSet
}

// areaText shows a calibrated area, or notSet.
func areaText(p *calibration.Profile, area calibration.Area) string {
	if p == nil {
		return notSet
	}
	if r, ok := p.Area(area); ok {
		return r.String()
	}
	return notSet
}

// parseDelayMs reads a non-negative delay in milliseconds.
func parseDelayMs(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("delay must be a whole number of milliseconds: %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("delay must not be negative: %d", n)
	}
	return n, nil
}

// optionNames lists display names, prefixed by an empty entry meaning "any".
func optionNames(opts []stat.Option) []string {
	names := make([]string, 0, len(opts)+1)
	names = append(names, "")
	for _, o := range opts {
		names = append(names, o.Display)
	}
	return names
}

// valueChoices lists the value variants of one option.
func valueChoices(vocab *stat.Vocabulary, display string) []string {
	if vocab == nil {
		return nil
	}
	opt, ok := vocab.Option(display)
	if !ok {
		return nil
	}
	return append([]string(nil), opt.Values...)
}
