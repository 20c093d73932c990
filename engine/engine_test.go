package engine

import (
	"testing"
	"time"
)

func TestHandleMarksRunning(t *testing.T) {
	e := NewEngine().(*engine)
	if e.running {
		t.Fatal("engine should not be running before handle")
	}
	e.handle()
	if !e.running {
		t.Error("handle should mark the engine as running")
	}
	e.Quit()
	e.wg.Wait()
	if e.running {
		t.Error("quit should clear the running flag")
	}
}

func TestSetTickRateLiveUpdate(t *testing.T) {
	e := NewEngine(WithTickRate(60)).(*engine)
	e.running = true

	e.SetTickRate(120)
	// A second call before the loop drains the channel replaces the pending value.
	e.SetTickRate(240)

	select {
	case rate := <-e.tickRateChannel:
		if rate != time.Second/240 {
			t.Errorf("pending rate: got %v, want %v", rate, time.Second/240)
		}
	default:
		t.Fatal("expected a pending tick rate update on the channel")
	}
}

func TestSetTickRateStopped(t *testing.T) {
	e := NewEngine().(*engine)
	e.SetTickRate(30)
	if e.engineTickRate != time.Second/30 {
		t.Errorf("tick rate: got %v, want %v", e.engineTickRate, time.Second/30)
	}
	select {
	case <-e.tickRateChannel:
		t.Error("stopped engine should not queue channel updates")
	default:
	}
}
