package window

import (
	"context"
	"errors"
	"image"
	"testing"

	"cabal-assist/domain/screen"
)

type scrollCall struct {
	x, y, amount int
}

// fakePlatform is an in-memory desktop.
type fakePlatform struct {
	procs     []process
	alive     map[int]bool
	rects     map[int]screen.Region
	clicks    []screen.Point
	scrolls   []scrollCall
	captures  []image.Rectangle
	activated []int
}

func (f *fakePlatform) processes() ([]process, error) { return f.procs, nil }
func (f *fakePlatform) pidExists(pid int) bool        { return f.alive[pid] }
func (f *fakePlatform) bounds(pid int) screen.Region  { return f.rects[pid] }
func (f *fakePlatform) activate(pid int) error {
	f.activated = append(f.activated, pid)
	return errors.New("no focus")
}
func (f *fakePlatform) click(x, y int) { f.clicks = append(f.clicks, screen.Point{X: x, Y: y}) }
func (f *fakePlatform) scroll(x, y, amount int) {
	f.scrolls = append(f.scrolls, scrollCall{x, y, amount})
}
func (f *fakePlatform) capture(r image.Rectangle) (image.Image, error) {
	f.captures = append(f.captures, r)
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

func newFakeDesktop() *fakePlatform {
	return &fakePlatform{
		procs: []process{{Pid: 7, Name: "explorer.exe"}, {Pid: 42, Name: "CabalMain.exe"}},
		alive: map[int]bool{7: true, 42: true},
		rects: map[int]screen.Region{42: {Left: 100, Top: 50, Width: 1024, Height: 768}},
	}
}

func TestNativeWindow_Connect(t *testing.T) {
	desk := newFakeDesktop()
	w := newNativeWindow(DefaultConfig(), desk)

	if w.IsConnected() {
		t.Fatal("IsConnected() before Connect")
	}
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !w.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if len(desk.activated) != 1 || desk.activated[0] != 42 {
		t.Errorf("activated = %v, want [42]", desk.activated)
	}

	desk.alive[42] = false
	if w.IsConnected() {
		t.Error("IsConnected() = true after the process exited")
	}
}

func TestNativeWindow_ConnectMissing(t *testing.T) {
	desk := newFakeDesktop()
	desk.procs = desk.procs[:1]
	w := newNativeWindow(DefaultConfig(), desk)

	if err := w.Connect(context.Background()); !errors.Is(err, ErrProcessNotFound) {
		t.Errorf("Connect() error = %v, want ErrProcessNotFound", err)
	}
}

func TestNativeWindow_Input(t *testing.T) {
	desk := newFakeDesktop()
	w := newNativeWindow(DefaultConfig(), desk)
	ctx := context.Background()

	if err := w.Click(ctx, screen.Point{X: 1, Y: 1}); !errors.Is(err, screen.ErrNotConnected) {
		t.Errorf("Click() before Connect error = %v", err)
	}
	if err := w.Connect(ctx); err != nil {
		t.Fatal(err)
	}

	if err := w.Click(ctx, screen.Point{X: 10, Y: 20}); err != nil {
		t.Fatal(err)
	}
	if desk.clicks[0] != (screen.Point{X: 110, Y: 70}) {
		t.Errorf("click at %v, want (110,70)", desk.clicks[0])
	}

	rel, ok := w.ToWindowRelative(screen.Point{X: 150, Y: 80})
	if !ok || rel != (screen.Point{X: 50, Y: 30}) {
		t.Errorf("ToWindowRelative() = %v, %v", rel, ok)
	}

	if err := w.Scroll(ctx, screen.Point{X: 300, Y: 300}, -8); err != nil {
		t.Fatal(err)
	}
	if desk.scrolls[0] != (scrollCall{300, 300, -8}) {
		t.Errorf("scroll = %+v", desk.scrolls[0])
	}

	img, err := w.Capture(ctx, screen.Region{Left: 120, Top: 60, Width: 40, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 40 || desk.captures[0] != image.Rect(120, 60, 160, 70) {
		t.Errorf("capture rect = %v", desk.captures[0])
	}

	if _, err := w.Capture(ctx, screen.Region{}); err == nil {
		t.Error("Capture() of an empty region should fail")
	}
}
