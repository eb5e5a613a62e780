package automation

import (
	"errors"

	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

// Summary group and keys of the collection flow.
const (
	badgeGroup    = "Collection"
	keyTabs       = "Tabs opened"
	keyEntries    = "Dungeons opened"
	keyRegistered = "Items registered"
	keyAbandoned  = "Items abandoned"
	keyPages      = "Pages turned"
)

// Scroll steps of the item panel, in wheel notches.
const (
	scrollToTop   = 20
	scrollPerStep = 8
)

// ErrTemplateUnavailable is returned when the badge template could not be loaded.
var ErrTemplateUnavailable = errors.New("red dot template not loaded")

var badgeRoles = []calibration.Role{
	calibration.RoleAutoRefill,
	calibration.RoleRegister,
	calibration.RoleYes,
	calibration.RolePage2,
	calibration.RolePage3,
	calibration.RolePage4,
	calibration.RoleArrowRight,
}

var badgeAreas = []calibration.Area{
	calibration.AreaCollectionTabs,
	calibration.AreaDungeonList,
	calibration.AreaCollectionItems,
}

var pageButtons = []calibration.Role{
	calibration.RolePage2,
	calibration.RolePage3,
	calibration.RolePage4,
}

// BadgeFlow clears collection badges: tabs, then dungeons, then items.
type BadgeFlow struct {
	detector TargetDetector
}

var _ Flow = (*BadgeFlow)(nil)

// NewBadgeFlow creates the collection flow.
func NewBadgeFlow(detector TargetDetector) *BadgeFlow {
	return &BadgeFlow{detector: detector}
}

// Kind implements Flow.
func (f *BadgeFlow) Kind() state.FlowKind {
	return state.FlowBadge
}

// Validate implements Flow.
func (f *BadgeFlow) Validate(profile *calibration.Profile) error {
	if err := profile.Require(badgeRoles, badgeAreas); err != nil {
		return err
	}
	if a, ok := f.detector.(interface{ Available() bool }); ok && !a.Available() {
		return ErrTemplateUnavailable
	}
	return nil
}

// Pace implements Flow.
func (f *BadgeFlow) Pace(profile *calibration.Profile, timing Timing) Pace {
	return Pace{Delay: profile.Delay(), DoubleClickGap: timing.DoubleClickGap}
}

// Run implements Flow.
func (f *BadgeFlow) Run(rc *RunContext) Outcome {
	rc.Summary().Declare(badgeGroup)
	tabs := rc.Area(calibration.AreaCollectionTabs)

	for rc.Alive() {
		rc.Enter(state.StateScanning)
		rc.Status("Scanning collection tabs for red dots...")
		found := f.detector.Detect(rc.Context(), tabs)
		if !rc.Alive() {
			break
		}
		if len(found.Points) == 0 {
			return rc.Complete("All collections complete!")
		}

		tab := found.Points[0]
		rc.Enter(state.StateActing)
		if !rc.Executor().ClickAt(rc.Context(), tab, false) {
			rc.Logger().Debug("Tab click failed", "tab", tab.String())
			if !rc.Sleep(rc.Timing().CaptureRetry) {
				break
			}
			continue
		}
		rc.Summary().Add(badgeGroup, keyTabs)

		f.processTab(rc, tab)
	}
	return rc.Stopped()
}

// processTab clears the opened tab until its badge disappears, paging
// through the dungeon list when a page has nothing left.
func (f *BadgeFlow) processTab(rc *RunContext, tab screen.Point) {
	page, group := 1, 0
	maxGroups := rc.Timing().MaxPageGroups

	for rc.Alive() && f.stillFlagged(rc, tab) {
		if f.clearEntries(rc) {
			page, group = 1, 0
			continue
		}
		if !rc.Alive() {
			return
		}

		rc.Enter(state.StatePaginating)
		page++
		if page <= 4 {
			if rc.Executor().Click(rc.Context(), pageButtons[page-2], false) {
				rc.Summary().Add(badgeGroup, keyPages)
			}
			continue
		}

		if !rc.Executor().Click(rc.Context(), calibration.RoleArrowRight, false) {
			return
		}
		rc.Summary().Add(badgeGroup, keyPages)
		group++
		page = 1
		if maxGroups > 0 && group >= maxGroups {
			rc.Status("Stopped paging after %d page groups", group)
			return
		}
	}
}

// stillFlagged reports whether a badge is still shown near the opened tab.
func (f *BadgeFlow) stillFlagged(rc *RunContext, tab screen.Point) bool {
	rc.Enter(state.StateScanning)
	found := f.detector.Detect(rc.Context(), rc.Area(calibration.AreaCollectionTabs))
	for _, p := range found.Points {
		if p.DistanceTo(tab) <= rc.Timing().TabTolerance {
			return true
		}
	}
	return false
}

// clearEntries opens every flagged dungeon on the current page, rescanning
// after each one. It reports whether any item was registered; a page whose
// items were all abandoned counts as empty so paging moves on.
func (f *BadgeFlow) clearEntries(rc *RunContext) bool {
	list := rc.Area(calibration.AreaDungeonList)
	registered := false

	for pass := 0; rc.Alive() && pass < rc.Timing().MaxEntryPasses; pass++ {
		rc.Enter(state.StateScanning)
		found := f.detector.Detect(rc.Context(), list)
		if len(found.Points) == 0 || !rc.Alive() {
			break
		}

		rc.Enter(state.StateActing)
		if !rc.Executor().ClickAt(rc.Context(), found.Points[0], false) {
			continue
		}
		rc.Summary().Add(badgeGroup, keyEntries)
		if f.clearItems(rc) {
			registered = true
		}
	}
	return registered
}

// clearItems sweeps the item panel from the top in a few scroll steps and
// registers every flagged item. It reports whether any item was registered.
func (f *BadgeFlow) clearItems(rc *RunContext) bool {
	exec := rc.Executor()
	fast := exec.Pace().Fast()

	positions, passes := 4, 10
	if fast {
		positions, passes = 3, 5
	}

	rc.Enter(state.StateScrolling)
	exec.Scroll(rc.Context(), calibration.AreaCollectionItems, scrollToTop)

	registered := false
	for pos := 0; pos < positions && rc.Alive(); pos++ {
		if f.clearItemsAtPosition(rc, passes) {
			registered = true
		}

		if pos < positions-1 && rc.Alive() {
			rc.Enter(state.StateScrolling)
			exec.Scroll(rc.Context(), calibration.AreaCollectionItems, -scrollPerStep)
		}
	}
	return registered
}

func (f *BadgeFlow) clearItemsAtPosition(rc *RunContext, passes int) bool {
	items := rc.Area(calibration.AreaCollectionItems)
	registered := false

	for pass := 0; pass < passes && rc.Alive(); pass++ {
		rc.Enter(state.StateScanning)
		found := f.detector.Detect(rc.Context(), items)
		if len(found.Points) == 0 || !rc.Alive() {
			return registered
		}

		item := found.Points[0]
		rc.Enter(state.StateActing)
		if !rc.Executor().ClickAt(rc.Context(), item, false) {
			continue
		}

		if f.register(rc) {
			rc.Summary().Add(badgeGroup, keyRegistered)
			registered = true
			continue
		}
		if !rc.Alive() {
			return registered
		}

		// The item may not have been selected; select it again and retry once.
		rc.Executor().ClickAt(rc.Context(), item, false)
		if f.register(rc) {
			rc.Summary().Add(badgeGroup, keyRegistered)
			registered = true
			continue
		}
		if rc.Alive() {
			rc.Summary().Add(badgeGroup, keyAbandoned)
			rc.Logger().Info("Item abandoned", "item", item.String())
		}
	}
	return registered
}

// register runs auto refill, register and yes on the selected item.
func (f *BadgeFlow) register(rc *RunContext) bool {
	ctx := rc.Context()
	exec := rc.Executor()
	pace := exec.Pace()

	if !WithRetry(ctx, pace.Attempts(3), pace.Delay, func() bool {
		return exec.Click(ctx, calibration.RoleAutoRefill, true)
	}) {
		return false
	}

	if !WithRetry(ctx, pace.Attempts(2), pace.Delay, func() bool {
		if exec.Click(ctx, calibration.RoleRegister, true) {
			return true
		}
		exec.Click(ctx, calibration.RoleAutoRefill, true)
		return false
	}) {
		return false
	}

	return exec.Click(ctx, calibration.RoleYes, true)
}
