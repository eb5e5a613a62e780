package automation

import (
	"strings"
	"testing"
	"time"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

func TestRunner_StartRejects(t *testing.T) {
	tests := []struct {
		name      string
		flow      func(w *fakeWindow) Flow
		profile   *calibration.Profile
		connected bool
		alert     string
	}{
		{
			name:      "incomplete calibration",
			flow:      func(*fakeWindow) Flow { return NewBadgeFlow(newScriptedDetector()) },
			profile:   calibration.NewProfile("empty"),
			connected: true,
			alert:     "Configuration incomplete",
		},
		{
			name:      "no profile",
			flow:      func(*fakeWindow) Flow { return NewBadgeFlow(newScriptedDetector()) },
			connected: true,
			alert:     "Configuration incomplete",
		},
		{
			name: "template missing",
			flow: func(w *fakeWindow) Flow {
				return NewBadgeFlow(NewTemplateDetector(w, &fakeMatcher{}, DefaultTemplateDetectorConfig()))
			},
			profile:   fullProfile(0),
			connected: true,
			alert:     "Cannot start",
		},
		{
			name:      "window not connected",
			flow:      func(*fakeWindow) Flow { return NewBadgeFlow(newScriptedDetector()) },
			profile:   fullProfile(0),
			connected: false,
			alert:     "Game not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFakeWindow()
			w.connected = tt.connected
			slot := NewSlot()
			r, rep := newTestRunner(state.FlowBadge, w, slot)

			if r.Start(tt.flow(w), tt.profile) {
				t.Fatal("Start() = true, want false")
			}
			alerts := rep.alerts()
			if len(alerts) != 1 || alerts[0].Title != tt.alert {
				t.Errorf("alerts = %+v, want one %q", alerts, tt.alert)
			}
			if r.IsRunning() || slot.Owner() != "" {
				t.Error("rejected start must leave the runner idle and the slot free")
			}
			if w.totalClicks() != 0 {
				t.Errorf("clicks = %d, want 0", w.totalClicks())
			}
		})
	}
}

func TestRunner_StartWrongKind(t *testing.T) {
	r, _ := newTestRunner(state.FlowStellar, newFakeWindow(), NewSlot())
	if r.Start(newBlockingFlow(state.FlowBadge), fullProfile(0)) {
		t.Error("Start() accepted a flow of another kind")
	}
}

func TestRunner_SlotExclusion(t *testing.T) {
	w := newFakeWindow()
	slot := NewSlot()
	badge, _ := newTestRunner(state.FlowBadge, w, slot)
	stellar, stellarRep := newTestRunner(state.FlowStellar, w, slot)

	blocking := newBlockingFlow(state.FlowBadge)
	if !badge.Start(blocking, fullProfile(0)) {
		t.Fatal("badge Start() = false")
	}
	<-blocking.started

	if badge.Start(newBlockingFlow(state.FlowBadge), fullProfile(0)) {
		t.Error("second badge Start() = true while running")
	}

	if stellar.Start(newBlockingFlow(state.FlowStellar), fullProfile(0)) {
		t.Fatal("stellar Start() = true while the slot is held")
	}
	if stellarRep.count("FlowStarted") != 0 {
		t.Error("rejected flow published FlowStarted")
	}

	badge.Stop()
	badge.Wait()
	if slot.Owner() != "" {
		t.Fatalf("slot owner = %q after stop, want free", slot.Owner())
	}

	other := newBlockingFlow(state.FlowStellar)
	if !stellar.Start(other, fullProfile(0)) {
		t.Fatal("stellar Start() = false after the slot was released")
	}
	<-other.started
	stellar.Shutdown(time.Second)
	if stellar.IsRunning() {
		t.Error("stellar still running after Shutdown")
	}
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	r, rep := newTestRunner(state.FlowBadge, newFakeWindow(), NewSlot())
	f := newBlockingFlow(state.FlowBadge)
	if !r.Start(f, fullProfile(0)) {
		t.Fatal("Start() = false")
	}
	<-f.started

	r.Stop()
	r.Stop()
	r.Wait()
	r.Stop()

	if got := rep.count("FlowStopped"); got != 1 {
		t.Fatalf("FlowStopped events = %d, want 1", got)
	}
	if got := rep.count("SummaryReady"); got != 1 {
		t.Errorf("SummaryReady events = %d, want 1", got)
	}
	stopped := rep.stopped()
	if stopped.Reason != event.StopReasonManual {
		t.Errorf("Reason = %v, want Manual", stopped.Reason)
	}
	if r.State() != state.StateStopped || r.IsRunning() {
		t.Errorf("State() = %v running=%v, want Stopped and idle", r.State(), r.IsRunning())
	}
}

func TestRunner_EmergencyStop(t *testing.T) {
	r, rep := newTestRunner(state.FlowArrival, newFakeWindow(), NewSlot())

	r.EmergencyStop()
	if len(rep.events) != 0 {
		t.Fatalf("EmergencyStop() while idle published %d events", len(rep.events))
	}

	f := newBlockingFlow(state.FlowArrival)
	if !r.Start(f, fullProfile(0)) {
		t.Fatal("Start() = false")
	}
	<-f.started
	r.EmergencyStop()
	r.Wait()

	if got := rep.stopped(); got == nil || got.Reason != event.StopReasonEmergency {
		t.Errorf("stopped = %+v, want Emergency", got)
	}

	found := false
	rep.mu.Lock()
	for _, e := range rep.events {
		if s, ok := e.(*event.StatusUpdated); ok && strings.HasPrefix(s.Message, "EMERGENCY STOP") {
			found = true
		}
	}
	rep.mu.Unlock()
	if !found {
		t.Error("emergency status line not published")
	}
}

func TestRunner_PanicFaults(t *testing.T) {
	slot := NewSlot()
	r, rep := newTestRunner(state.FlowBadge, newFakeWindow(), slot)

	if !r.Start(panicFlow{}, fullProfile(0)) {
		t.Fatal("Start() = false")
	}
	r.Wait()

	stopped := rep.stopped()
	if stopped == nil || stopped.Reason != event.StopReasonError || stopped.Error == nil {
		t.Fatalf("stopped = %+v, want Error with cause", stopped)
	}
	if r.State() != state.StateFaulted {
		t.Errorf("State() = %v, want Faulted", r.State())
	}
	if slot.Owner() != "" || r.IsRunning() {
		t.Error("panic left the slot held or the runner active")
	}
}

func TestRunner_UsesProfileSnapshot(t *testing.T) {
	r, _ := newTestRunner(state.FlowStellar, newFakeWindow(), NewSlot())
	profile := fullProfile(0)
	f := newBlockingFlow(state.FlowStellar)

	if !r.Start(f, profile) {
		t.Fatal("Start() = false")
	}
	<-f.started

	profile.SetButton(calibration.RoleImprint, screen.Point{X: 1, Y: 1})
	profile.DelayMs = 999

	if pt, _ := f.seen.Button(calibration.RoleImprint); pt != btnImprint {
		t.Errorf("running snapshot button = %v, want %v", pt, btnImprint)
	}
	if f.seen.DelayMs != 0 {
		t.Errorf("running snapshot delay = %d, want 0", f.seen.DelayMs)
	}

	r.Shutdown(time.Second)
}

func TestRunner_StartedPrecedesStopped(t *testing.T) {
	// A badge run with nothing flagged ends at once; the UI relies on seeing
	// FlowStarted before FlowStopped even then.
	for i := 0; i < 200; i++ {
		r, rep := newTestRunner(state.FlowBadge, newFakeWindow(), NewSlot())
		if !r.Start(NewBadgeFlow(newScriptedDetector()), fullProfile(0)) {
			t.Fatal("Start() = false")
		}
		r.Wait()

		started, stopped := rep.index("FlowStarted"), rep.index("FlowStopped")
		if started < 0 || stopped < 0 || started > stopped {
			t.Fatalf("run %d: FlowStarted at %d, FlowStopped at %d", i, started, stopped)
		}
	}
}
