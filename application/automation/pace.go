// Package automation implements the detection-driven retry loop shared by the
// collection, stellar and arrival flows.
package automation

import (
	"context"
	"time"
)

// Pace controls how fast the executor clicks.
type Pace struct {
	// Delay is waited after every click and scroll.
	Delay time.Duration
	// DoubleClickGap separates the two clicks of a double click.
	// It only applies when Delay is non-zero.
	DoubleClickGap time.Duration
}

// Fast reports whether the user asked for no delays at all.
func (p Pace) Fast() bool {
	return p.Delay <= 0
}

// Attempts scales a retry budget to the pace. Without a delay there is no
// time for the UI to change between attempts, so only one is made.
func (p Pace) Attempts(n int) int {
	if p.Fast() || n < 1 {
		return 1
	}
	return n
}

// Timing holds the fixed waits and caps of the flows.
type Timing struct {
	// InitialDelay is waited once before the first stellar roll.
	InitialDelay time.Duration
	// EffectDelay lets the stellar roll animation finish.
	EffectDelay time.Duration
	// Settle is waited after dismissing the stellar effect.
	Settle time.Duration
	// RerollGap separates the two clicks of a stellar reroll.
	RerollGap time.Duration
	// Reschedule is waited after a stellar reroll.
	Reschedule time.Duration
	// BadReadRetry is waited after an unusable stellar read.
	BadReadRetry time.Duration
	// ChangeDelay is waited after clicking the arrival change button.
	ChangeDelay time.Duration
	// ApplyDelay is waited after clicking the arrival apply button.
	ApplyDelay time.Duration
	// CaptureRetry is waited after an arrival capture failure.
	CaptureRetry time.Duration
	// DoubleClickGap is the collection double-click gap.
	DoubleClickGap time.Duration

	// MaxBadReads consecutive unusable reads end an OCR flow.
	MaxBadReads int
	// MaxPageGroups bounds how often the collection flow pages right.
	MaxPageGroups int
	// MaxEntryPasses bounds how many entries are opened per page.
	MaxEntryPasses int
	// TabTolerance is the pixel distance under which a badge is considered
	// to still sit on the tab that was opened.
	TabTolerance float64
}

// DefaultTiming returns the waits the flows were tuned with.
func DefaultTiming() Timing {
	return Timing{
		InitialDelay:   3 * time.Second,
		EffectDelay:    time.Second,
		Settle:         200 * time.Millisecond,
		RerollGap:      300 * time.Millisecond,
		Reschedule:     800 * time.Millisecond,
		BadReadRetry:   700 * time.Millisecond,
		ChangeDelay:    400 * time.Millisecond,
		ApplyDelay:     500 * time.Millisecond,
		CaptureRetry:   500 * time.Millisecond,
		DoubleClickGap: 100 * time.Millisecond,
		MaxBadReads:    3,
		MaxPageGroups:  20,
		MaxEntryPasses: 50,
		TabTolerance:   20,
	}
}

// sleep waits for d or until ctx is done. It returns false when cancelled.
// A non-positive duration never sleeps.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
