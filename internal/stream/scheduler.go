package stream

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// CaptureFrame is one encoded still frame. Frames are ephemeral: a
// frame lives from capture to transmission and is never retained past
// its tick.
type CaptureFrame struct {
	Data       []byte
	Seq        uint64
	CapturedAt time.Time
}

// FrameSink receives captured frames. Implemented by Channel.
type FrameSink interface {
	State() State
	Send(CaptureFrame) error
}

// CaptureFunc produces one encoded snapshot from the media source.
type CaptureFunc func(ctx context.Context) ([]byte, error)

// Scheduler drives capture and transmission at a fixed rate with
// at-most-one-frame-in-flight backpressure: when the sink is not
// streaming or the previous frame has not finished sending, the tick
// is dropped, never queued. Freshness over completeness.
type Scheduler struct {
	capture CaptureFunc
	sink    FrameSink

	mu      sync.Mutex
	running bool
	ticker  *time.Ticker
	stop    chan struct{}

	inFlight atomic.Bool
	seq      atomic.Uint64
}

func NewScheduler(capture CaptureFunc, sink FrameSink) *Scheduler {
	return &Scheduler{capture: capture, sink: sink}
}

// Start begins periodic ticking at rateHz frames per second. A no-op
// if the scheduler is already running or the rate is not positive.
func (s *Scheduler) Start(rateHz int) {
	if rateHz <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ticker = time.NewTicker(time.Second / time.Duration(rateHz))
	s.stop = make(chan struct{})
	go s.run(s.ticker, s.stop)
}

// SetRate switches to a new period immediately. Missed periods are not
// replayed; there are no catch-up bursts.
func (s *Scheduler) SetRate(rateHz int) {
	if rateHz <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.ticker.Reset(time.Second / time.Duration(rateHz))
}

// Stop cancels the periodic driver. An in-flight frame is allowed to
// complete; no new ticks fire. Safe to call at any time, idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stop)
}

func (s *Scheduler) run(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	if !s.inFlight.CompareAndSwap(false, true) {
		return // previous frame still in flight, drop
	}
	if s.sink.State() != StateStreaming {
		s.inFlight.Store(false)
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		data, err := s.capture(context.Background())
		if err != nil {
			log.Printf("scheduler: capture failed: %v", err)
			return
		}
		frame := CaptureFrame{Data: data, Seq: s.seq.Add(1), CapturedAt: time.Now()}
		if err := s.sink.Send(frame); err != nil {
			log.Printf("scheduler: %v", err)
		}
	}()
}
