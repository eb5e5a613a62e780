package browser

import (
	"context"
	"testing"
	"time"
)

func TestDefaultDriverConfig(t *testing.T) {
	config := DefaultDriverConfig()

	if config == nil {
		t.Fatal("DefaultDriverConfig returned nil")
	}

	if config.Headless != false {
		t.Errorf("Headless = %v, want false", config.Headless)
	}

	if config.ViewportWidth != 1280 {
		t.Errorf("ViewportWidth = %d, want 1280", config.ViewportWidth)
	}

	if config.ViewportHeight != 800 {
		t.Errorf("ViewportHeight = %d, want 800", config.ViewportHeight)
	}

	if config.MuteAudio != true {
		t.Errorf("MuteAudio = %v, want true", config.MuteAudio)
	}

	if config.WheelStep != 100 {
		t.Errorf("WheelStep = %v, want 100", config.WheelStep)
	}
}

func TestNewChromeDPDriver(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		driver := NewChromeDPDriver(nil)
		if driver == nil {
			t.Fatal("NewChromeDPDriver returned nil")
		}
		if driver.config == nil {
			t.Fatal("driver.config is nil")
		}
	})

	t.Run("with custom config", func(t *testing.T) {
		config := &DriverConfig{
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		}
		driver := NewChromeDPDriver(config)
		if w, h := driver.Viewport(); w != 1920 || h != 1080 {
			t.Errorf("Viewport() = %dx%d, want 1920x1080", w, h)
		}
	})
}

func TestChromeDPDriver_NotStarted(t *testing.T) {
	driver := NewChromeDPDriver(nil)

	if driver.IsRunning() {
		t.Error("IsRunning() should return false before Start()")
	}
	if err := driver.Stop(); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if err := driver.Click(context.Background(), 1, 1); err == nil {
		t.Error("Click() should fail before Start()")
	}
	if _, err := driver.CaptureClip(context.Background(), 0, 0, 10, 10); err == nil {
		t.Error("CaptureClip() should fail before Start()")
	}
}

func TestWheelDelta(t *testing.T) {
	if got := wheelDelta(3, 100); got != -300 {
		t.Errorf("wheelDelta(3) = %v, want -300", got)
	}
	if got := wheelDelta(-8, 100); got != 800 {
		t.Errorf("wheelDelta(-8) = %v, want 800", got)
	}
}

func TestChromeDPDriver_RunContextFollowsCaller(t *testing.T) {
	driver := NewChromeDPDriver(nil)
	driver.ctx = context.Background()
	driver.running = true

	caller, cancelCaller := context.WithCancel(context.Background())
	runCtx, cancel, err := driver.runContext(caller, 5*time.Second)
	if err != nil {
		t.Fatalf("runContext() error = %v", err)
	}
	defer cancel()

	if _, ok := runCtx.Deadline(); !ok {
		t.Error("runContext() with a timeout should set a deadline")
	}

	cancelCaller()
	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("cancelling the caller did not cancel the browser operation")
	}
}

func TestChromeDPDriver_RunContextRelease(t *testing.T) {
	driver := NewChromeDPDriver(nil)
	driver.ctx = context.Background()
	driver.running = true

	runCtx, cancel, err := driver.runContext(context.Background(), 0)
	if err != nil {
		t.Fatalf("runContext() error = %v", err)
	}
	if _, ok := runCtx.Deadline(); ok {
		t.Error("runContext() without a timeout should not set a deadline")
	}

	cancel()
	if runCtx.Err() == nil {
		t.Error("release should cancel the operation context")
	}
}
