package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSink struct {
	state atomic.Int32

	mu   sync.Mutex
	sent []CaptureFrame
}

func newFakeSink(s State) *fakeSink {
	sink := &fakeSink{}
	sink.state.Store(int32(s))
	return sink
}

func (f *fakeSink) State() State { return State(f.state.Load()) }

func (f *fakeSink) Send(frame CaptureFrame) error {
	f.mu.Lock()
	f.sent = append(f.sent, frame)
	f.mu.Unlock()
	return nil
}

func (f *fakeSink) sentFrames() []CaptureFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CaptureFrame(nil), f.sent...)
}

func waitSent(t *testing.T, sink *fakeSink, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.sentFrames()) >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("sink never received %d frames, got %d", n, len(sink.sentFrames()))
}

func TestScheduler_TickCapturesAndSends(t *testing.T) {
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		return []byte("jpeg"), nil
	}, sink)

	sched.tick()
	waitSent(t, sink, 1)

	frames := sink.sentFrames()
	if frames[0].Seq != 1 {
		t.Errorf("first frame seq = %d, want 1", frames[0].Seq)
	}
	if string(frames[0].Data) != "jpeg" {
		t.Errorf("frame data = %q", frames[0].Data)
	}
}

func TestScheduler_DropsWhenSinkNotStreaming(t *testing.T) {
	var captures atomic.Int32
	sink := newFakeSink(StateIdle)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		captures.Add(1)
		return []byte("jpeg"), nil
	}, sink)

	for _, st := range []State{StateIdle, StateConnecting, StateOpen, StateClosing, StateClosed, StateFailed} {
		sink.state.Store(int32(st))
		sched.tick()
	}
	time.Sleep(20 * time.Millisecond)

	if captures.Load() != 0 {
		t.Errorf("captured %d frames with non-streaming sink, want 0", captures.Load())
	}
	if len(sink.sentFrames()) != 0 {
		t.Errorf("sent %d frames, want 0", len(sink.sentFrames()))
	}
}

func TestScheduler_AtMostOneInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		started <- struct{}{}
		<-release
		return []byte("jpeg"), nil
	}, sink)

	sched.tick()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first capture never started")
	}

	// While the first frame is in flight every further tick drops.
	sched.tick()
	sched.tick()
	select {
	case <-started:
		t.Fatal("second capture started while first was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	waitSent(t, sink, 1)

	sched.tick()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("capture after release never started")
	}
	waitSent(t, sink, 2)

	frames := sink.sentFrames()
	if frames[0].Seq != 1 || frames[1].Seq != 2 {
		t.Errorf("dropped ticks consumed sequence numbers: %d, %d", frames[0].Seq, frames[1].Seq)
	}
}

func TestScheduler_PeriodicTicking(t *testing.T) {
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		return []byte("jpeg"), nil
	}, sink)

	sched.Start(5)
	defer sched.Stop()

	waitSent(t, sink, 2)
}

func TestScheduler_StartWhileRunningIsNoop(t *testing.T) {
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		return []byte("jpeg"), nil
	}, sink)

	sched.Start(5)
	sched.Start(1) // silently ignored, rate unchanged
	defer sched.Stop()

	waitSent(t, sink, 2)
}

func TestScheduler_StopIdempotent(t *testing.T) {
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		return []byte("jpeg"), nil
	}, sink)

	sched.Stop() // never started
	sched.Start(5)
	sched.Stop()
	sched.Stop()

	n := len(sink.sentFrames())
	time.Sleep(250 * time.Millisecond)
	if len(sink.sentFrames()) != n {
		t.Error("frames sent after Stop")
	}
}

func TestScheduler_SetRateWhileRunning(t *testing.T) {
	sink := newFakeSink(StateStreaming)
	sched := NewScheduler(func(ctx context.Context) ([]byte, error) {
		return []byte("jpeg"), nil
	}, sink)

	sched.Start(1)
	sched.SetRate(5)
	defer sched.Stop()

	// At 1 FPS two frames need two seconds; at 5 FPS well under one.
	waitSent(t, sink, 2)
}
