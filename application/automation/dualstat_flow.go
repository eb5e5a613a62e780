package automation

import (
	"errors"
	"fmt"
	"strings"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"
)

const unmappedGroup = "Unmapped"

// ErrNoGoal is returned when an arrival run has no stat selected.
var ErrNoGoal = errors.New("please select at least one offensive or defensive stat")

// ArrivalFlow rerolls an arrival skill until the requested stats appear.
type ArrivalFlow struct {
	detector TargetDetector
	vocab    *stat.Vocabulary
	goal     DualStatGoal
}

var _ Flow = (*ArrivalFlow)(nil)

// NewArrivalFlow creates the dual-stat reroll flow.
func NewArrivalFlow(detector TargetDetector, vocab *stat.Vocabulary, goal DualStatGoal) *ArrivalFlow {
	return &ArrivalFlow{detector: detector, vocab: vocab, goal: goal}
}

// Kind implements Flow.
func (f *ArrivalFlow) Kind() state.FlowKind {
	return state.FlowArrival
}

// Validate implements Flow.
func (f *ArrivalFlow) Validate(profile *calibration.Profile) error {
	if err := profile.Require(
		[]calibration.Role{calibration.RoleApply, calibration.RoleChange},
		[]calibration.Area{calibration.AreaArrivalText},
	); err != nil {
		return err
	}
	if f.goal.Empty() {
		return ErrNoGoal
	}
	return nil
}

// Pace implements Flow. Arrival rolls use fixed waits instead of the
// profile delay.
func (f *ArrivalFlow) Pace(*calibration.Profile, Timing) Pace {
	return Pace{}
}

// Run implements Flow.
func (f *ArrivalFlow) Run(rc *RunContext) Outcome {
	ctx := rc.Context()
	exec := rc.Executor()
	t := rc.Timing()
	region := rc.Area(calibration.AreaArrivalText)
	rc.Summary().Declare(
		stat.CategoryOffensive.Title(),
		stat.CategoryDefensive.Title(),
		stat.CategoryOther.Title(),
		unmappedGroup,
	)

	rc.Status("Starting arrival skill automation...")

	// Clear the current option first.
	rc.Enter(state.StateActing)
	exec.Click(ctx, calibration.RoleChange, false)
	if !rc.Sleep(t.ChangeDelay) {
		return rc.Stopped()
	}

	roll, badReads := 0, 0
	for rc.Alive() {
		roll++

		rc.Enter(state.StateActing)
		exec.Click(ctx, calibration.RoleApply, false)
		if !rc.Sleep(t.ApplyDelay) {
			break
		}

		rc.Enter(state.StateScanning)
		d := f.detector.Detect(ctx, region)
		if !rc.Alive() {
			break
		}

		if d.Err != nil || (len(d.Fields) == 0 && len(d.Unmapped) == 0) {
			badReads++
			rc.Status("Roll #%d: No stats detected", roll)
			rc.Logger().Warn("Unusable read", "count", badReads, "error", d.Err)
			if badReads >= t.MaxBadReads {
				rc.Alert("Error", "No stats could be read three times in a row - stopping.\nMake sure that you've defined the area correctly.")
				return rc.Fault(event.StopReasonReadFailure,
					"No stats detected. Stopping.",
					fmt.Errorf("%d consecutive unusable reads", badReads))
			}
			if !rc.Sleep(t.CaptureRetry) {
				break
			}
			continue
		}
		badReads = 0

		f.count(rc, d)
		rc.Status("Roll #%d: %s", roll, describeFields(d))

		verdict, goal := f.goal.Evaluate(d)
		switch verdict {
		case VerdictUnverified:
			rc.Status("Note: Cannot verify value due to UI collision - please check manually")
			rc.Alert("Found it!", fmt.Sprintf("%s detected!\n\nNote: Cannot read value due to UI collision.\nPlease verify the value manually.", goal.Display))
			return Outcome{
				State:   state.StateCompleted,
				Reason:  event.StopReasonUnverified,
				Message: fmt.Sprintf("FOUND: %s detected!", goal.Display),
			}
		case VerdictMatched:
			rc.Alert("Success", "Desired stats found! Automation stopped.")
			return rc.Complete("SUCCESS! DESIRED STATS FOUND!")
		}

		rc.Enter(state.StateActing)
		exec.Click(ctx, calibration.RoleChange, false)
		if !rc.Sleep(t.ChangeDelay) {
			break
		}
	}
	return rc.Stopped()
}

func (f *ArrivalFlow) count(rc *RunContext, d Detection) {
	s := rc.Summary()
	s.Roll()
	for _, field := range d.Fields {
		s.Add(f.vocab.CategoryOf(field.Name).Title(), field.Key())
	}
	for _, key := range d.Unmapped {
		s.Add(unmappedGroup, key)
	}
}

func describeFields(d Detection) string {
	parts := make([]string, 0, len(d.Fields)+len(d.Unmapped))
	for _, field := range d.Fields {
		parts = append(parts, field.Name+": "+field.Display())
	}
	for _, key := range d.Unmapped {
		parts = append(parts, "? "+key)
	}
	return strings.Join(parts, " | ")
}
