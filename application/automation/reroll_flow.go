package automation

import (
	"errors"
	"fmt"
	"time"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"
)

const stellarGroup = "Detected Text"

// ErrNoKeyword is returned when a stellar run has nothing to look for.
var ErrNoKeyword = errors.New("please enter an option to look for")

// StellarParams are the user inputs of a stellar run.
type StellarParams struct {
	Keyword  string
	MinValue string
	// EffectDelay overrides Timing.EffectDelay when positive.
	EffectDelay time.Duration
}

// StellarFlow rerolls a stellar slot until one stat line matches.
type StellarFlow struct {
	detector TargetDetector
	params   StellarParams
	goal     SingleStatGoal
}

var _ Flow = (*StellarFlow)(nil)

// NewStellarFlow creates the single-stat reroll flow.
func NewStellarFlow(detector TargetDetector, options *stat.StellarOptions, params StellarParams) *StellarFlow {
	return &StellarFlow{
		detector: detector,
		params:   params,
		goal:     NewSingleStatGoal(params.Keyword, params.MinValue, options),
	}
}

// Kind implements Flow.
func (f *StellarFlow) Kind() state.FlowKind {
	return state.FlowStellar
}

// Validate implements Flow.
func (f *StellarFlow) Validate(profile *calibration.Profile) error {
	if err := profile.Require([]calibration.Role{calibration.RoleImprint}, []calibration.Area{calibration.AreaStellarText}); err != nil {
		return err
	}
	if f.goal.Keyword == "" {
		return ErrNoKeyword
	}
	return nil
}

// Pace implements Flow. Stellar rolls use fixed waits instead of the
// profile delay.
func (f *StellarFlow) Pace(*calibration.Profile, Timing) Pace {
	return Pace{}
}

// Run implements Flow.
func (f *StellarFlow) Run(rc *RunContext) Outcome {
	ctx := rc.Context()
	exec := rc.Executor()
	t := rc.Timing()
	region := rc.Area(calibration.AreaStellarText)
	rc.Summary().Declare(stellarGroup)

	effect := t.EffectDelay
	if f.params.EffectDelay > 0 {
		effect = f.params.EffectDelay
	}

	rc.Status("Starting stellar automation - option: %s, min value: %s", f.params.Keyword, f.params.MinValue)
	if !rc.Sleep(t.InitialDelay) {
		return rc.Stopped()
	}

	badReads := 0
	for rc.Alive() {
		if !rc.Sleep(effect) {
			break
		}

		// The imprint button closes the roll effect.
		rc.Enter(state.StateActing)
		if !exec.Click(ctx, calibration.RoleImprint, false) && rc.Alive() {
			rc.Status("Close button click failed")
		}
		if !rc.Sleep(t.Settle) {
			break
		}

		rc.Enter(state.StateScanning)
		d := f.detector.Detect(ctx, region)
		if !rc.Alive() {
			break
		}

		if d.Err != nil || len(d.Numbers) != 1 {
			badReads++
			rc.Logger().Warn("Unusable read", "count", badReads, "text", d.Text, "error", d.Err)
			if badReads >= t.MaxBadReads {
				rc.Alert("Error", "Found wrong amount of numbers - stopping.\nMake sure that you've defined the area correctly.")
				return rc.Fault(event.StopReasonReadFailure,
					"More than one (or zero) numbers found in text. Stopping.",
					fmt.Errorf("%d consecutive unusable reads", badReads))
			}
			if !rc.Sleep(t.BadReadRetry) {
				break
			}
			continue
		}
		badReads = 0

		rc.Summary().Roll()
		rc.Summary().Add(stellarGroup, d.Text)
		rc.Status("OCR text: %s", d.Text)

		v := f.goal.Evaluate(d)
		if v.Vetoed {
			rc.Status("Found '%s' but ignoring special exception phrase.", f.goal.Keyword)
		}
		if v.Matched {
			if f.goal.MinValue != "" {
				rc.Alert("Found it!", "Hopefully that's what you have been looking for")
				return rc.Complete("Both option and minimum value found - success!")
			}
			rc.Alert("Found it!", "Option found, minimum value not specified.")
			return rc.Complete("Option found - success!")
		}

		rc.Enter(state.StateActing)
		if !exec.ClickTwice(ctx, calibration.RoleImprint, t.RerollGap) && rc.Alive() {
			rc.Status("Reroll click failed")
		}
		if !rc.Sleep(t.Reschedule) {
			break
		}
	}
	return rc.Stopped()
}
