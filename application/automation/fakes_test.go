package automation

import (
	"context"
	"errors"
	"image"
	"sync"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

var errClickFailed = errors.New("click failed")

type scrollCall struct {
	At     screen.Point
	Amount int
}

// fakeWindow is a window at the screen origin, so absolute and relative
// coordinates coincide.
type fakeWindow struct {
	mu         sync.Mutex
	connected  bool
	rectOK     bool
	rect       screen.Region
	clicks     []screen.Point
	scrolls    []scrollCall
	failAt     map[screen.Point]bool
	captureErr error
	// onClick runs on the clicking goroutine after each click is recorded.
	onClick func(n int)
}

var _ screen.Window = (*fakeWindow)(nil)

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		connected: true,
		rectOK:    true,
		rect:      screen.Region{Width: 1920, Height: 1080},
		failAt:    make(map[screen.Point]bool),
	}
}

func (w *fakeWindow) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *fakeWindow) Rect() (screen.Region, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rect, w.rectOK
}

func (w *fakeWindow) Click(ctx context.Context, rel screen.Point) error {
	w.mu.Lock()
	w.clicks = append(w.clicks, rel)
	n, fail, hook := len(w.clicks), w.failAt[rel], w.onClick
	w.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if fail {
		return errClickFailed
	}
	return nil
}

func (w *fakeWindow) Scroll(ctx context.Context, abs screen.Point, amount int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scrolls = append(w.scrolls, scrollCall{At: abs, Amount: amount})
	return nil
}

func (w *fakeWindow) Capture(ctx context.Context, region screen.Region) (image.Image, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.captureErr != nil {
		return nil, w.captureErr
	}
	return image.NewRGBA(image.Rect(0, 0, region.Width, region.Height)), nil
}

func (w *fakeWindow) ToWindowRelative(abs screen.Point) (screen.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.rectOK {
		return screen.Point{}, false
	}
	return screen.RelativeTo(w.rect, abs), true
}

func (w *fakeWindow) clickCount(p screen.Point) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.clicks {
		if c == p {
			n++
		}
	}
	return n
}

func (w *fakeWindow) totalClicks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clicks)
}

// scriptedDetector replays detections per region, then returns empty ones.
type scriptedDetector struct {
	mu      sync.Mutex
	scripts map[screen.Region][]Detection
	calls   map[screen.Region]int
}

func newScriptedDetector() *scriptedDetector {
	return &scriptedDetector{
		scripts: make(map[screen.Region][]Detection),
		calls:   make(map[screen.Region]int),
	}
}

func (d *scriptedDetector) script(region screen.Region, dets ...Detection) {
	d.scripts[region] = append(d.scripts[region], dets...)
}

func (d *scriptedDetector) Detect(ctx context.Context, region screen.Region) Detection {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[region]++
	queue := d.scripts[region]
	if len(queue) == 0 {
		return Detection{}
	}
	d.scripts[region] = queue[1:]
	return queue[0]
}

func points(ps ...screen.Point) Detection {
	return Detection{Points: ps}
}

// fakeMatcher returns fixed top-left matches.
type fakeMatcher struct {
	matches   []screen.Point
	err       error
	available bool
}

func (m *fakeMatcher) FindMatches(ctx context.Context, img image.Image, confidence float64) ([]screen.Point, error) {
	return m.matches, m.err
}

func (m *fakeMatcher) TemplateSize() (int, int) {
	return 10, 10
}

func (m *fakeMatcher) Available() bool {
	return m.available
}

// fakeRecognizer replays texts and repeats the last one.
type fakeRecognizer struct {
	mu    sync.Mutex
	texts []string
	calls int
}

func (r *fakeRecognizer) ExtractText(ctx context.Context, img image.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.texts) == 0 {
		return "", nil
	}
	text := r.texts[0]
	if len(r.texts) > 1 {
		r.texts = r.texts[1:]
	}
	return text, nil
}

// recordingReporter keeps every published event.
type recordingReporter struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingReporter) Publish(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingReporter) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

// index returns the position of the first event with the given name, or -1.
func (r *recordingReporter) index(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.EventName() == name {
			return i
		}
	}
	return -1
}

func (r *recordingReporter) stopped() *event.FlowStopped {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if s, ok := e.(*event.FlowStopped); ok {
			return s
		}
	}
	return nil
}

func (r *recordingReporter) summary() *event.SummaryReady {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if s, ok := e.(*event.SummaryReady); ok {
			return s
		}
	}
	return nil
}

func (r *recordingReporter) alerts() []*event.AlertRaised {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.AlertRaised
	for _, e := range r.events {
		if a, ok := e.(*event.AlertRaised); ok {
			out = append(out, a)
		}
	}
	return out
}

// Calibrated layout used by the flow tests.
var (
	btnAutoRefill = screen.Point{X: 500, Y: 100}
	btnRegister   = screen.Point{X: 500, Y: 150}
	btnYes        = screen.Point{X: 500, Y: 200}
	btnPage2      = screen.Point{X: 300, Y: 400}
	btnPage3      = screen.Point{X: 330, Y: 400}
	btnPage4      = screen.Point{X: 360, Y: 400}
	btnArrowRight = screen.Point{X: 390, Y: 400}
	btnImprint    = screen.Point{X: 600, Y: 600}
	btnApply      = screen.Point{X: 700, Y: 700}
	btnChange     = screen.Point{X: 720, Y: 700}

	areaTabs    = screen.Region{Left: 0, Top: 0, Width: 200, Height: 50}
	areaDungeon = screen.Region{Left: 0, Top: 100, Width: 200, Height: 300}
	areaItems   = screen.Region{Left: 250, Top: 100, Width: 200, Height: 300}
	areaStellar = screen.Region{Left: 600, Top: 500, Width: 200, Height: 50}
	areaArrival = screen.Region{Left: 700, Top: 500, Width: 200, Height: 80}
)

func fullProfile(delayMs int) *calibration.Profile {
	p := calibration.NewProfile("test")
	p.DelayMs = delayMs
	p.SetButton(calibration.RoleAutoRefill, btnAutoRefill)
	p.SetButton(calibration.RoleRegister, btnRegister)
	p.SetButton(calibration.RoleYes, btnYes)
	p.SetButton(calibration.RolePage2, btnPage2)
	p.SetButton(calibration.RolePage3, btnPage3)
	p.SetButton(calibration.RolePage4, btnPage4)
	p.SetButton(calibration.RoleArrowRight, btnArrowRight)
	p.SetButton(calibration.RoleImprint, btnImprint)
	p.SetButton(calibration.RoleApply, btnApply)
	p.SetButton(calibration.RoleChange, btnChange)
	_ = p.SetArea(calibration.AreaCollectionTabs, areaTabs)
	_ = p.SetArea(calibration.AreaDungeonList, areaDungeon)
	_ = p.SetArea(calibration.AreaCollectionItems, areaItems)
	_ = p.SetArea(calibration.AreaStellarText, areaStellar)
	_ = p.SetArea(calibration.AreaArrivalText, areaArrival)
	return p
}

// testTiming removes every fixed wait.
func testTiming() Timing {
	t := DefaultTiming()
	t.InitialDelay = 0
	t.EffectDelay = 0
	t.Settle = 0
	t.RerollGap = 0
	t.Reschedule = 0
	t.BadReadRetry = 0
	t.ChangeDelay = 0
	t.ApplyDelay = 0
	t.CaptureRetry = 0
	t.DoubleClickGap = 0
	return t
}

func newTestRunner(kind state.FlowKind, window *fakeWindow, slot *Slot) (*Runner, *recordingReporter) {
	rep := &recordingReporter{}
	r := NewRunner(RunnerConfig{
		Kind:     kind,
		Slot:     slot,
		Window:   window,
		Reporter: rep,
		Timing:   testTiming(),
	})
	return r, rep
}

// blockingFlow runs until cancelled.
type blockingFlow struct {
	kind    state.FlowKind
	started chan struct{}
	seen    *calibration.Profile
}

func newBlockingFlow(kind state.FlowKind) *blockingFlow {
	return &blockingFlow{kind: kind, started: make(chan struct{})}
}

func (f *blockingFlow) Kind() state.FlowKind                   { return f.kind }
func (f *blockingFlow) Validate(*calibration.Profile) error    { return nil }
func (f *blockingFlow) Pace(*calibration.Profile, Timing) Pace { return Pace{} }

func (f *blockingFlow) Run(rc *RunContext) Outcome {
	f.seen = rc.Profile()
	rc.Summary().Add("Test", "tick")
	close(f.started)
	<-rc.Context().Done()
	return rc.Stopped()
}

// panicFlow panics inside the worker.
type panicFlow struct{}

func (panicFlow) Kind() state.FlowKind                   { return state.FlowBadge }
func (panicFlow) Validate(*calibration.Profile) error    { return nil }
func (panicFlow) Pace(*calibration.Profile, Timing) Pace { return Pace{} }
func (panicFlow) Run(rc *RunContext) Outcome {
	rc.Enter(state.StateScanning)
	panic("boom")
}
