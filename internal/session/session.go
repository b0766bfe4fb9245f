// Package session wires a capture source, the frame scheduler and the
// streaming channel into one live-analysis run. A session owns the
// lifecycle of all three: Start acquires the device and opens the
// stream, Stop releases them in reverse order.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/capture"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/stream"
)

// ErrRunning is returned by Start on a session that is already live.
var ErrRunning = errors.New("session already running")

type Session struct {
	source    capture.Source
	channel   *stream.Channel
	scheduler *stream.Scheduler

	mu      sync.Mutex
	running bool
	stopped bool

	delivered atomic.Uint64

	onResult func(detection.LiveFrameResult)
	onState  func(stream.State)
}

// New builds a session over the given source and dialer. Result and
// state handlers must be registered before Start.
func New(source capture.Source, dial stream.Dialer, normalizer *detection.Normalizer) *Session {
	s := &Session{source: source}
	s.channel = stream.NewChannel(dial, normalizer)
	s.channel.OnResult(func(r detection.LiveFrameResult) {
		s.delivered.Add(1)
		if s.onResult != nil {
			s.onResult(r)
		}
	})
	s.channel.OnStateChange(func(st stream.State) {
		if s.onState != nil {
			s.onState(st)
		}
	})
	s.scheduler = stream.NewScheduler(source.Snapshot, s.channel)
	return s
}

func (s *Session) OnResult(fn func(detection.LiveFrameResult)) {
	s.onResult = fn
}

func (s *Session) OnStateChange(fn func(stream.State)) {
	s.onState = fn
}

// Start acquires the capture device, connects the stream and begins
// ticking at rateHz frames per second. On any failure everything
// acquired so far is released before returning.
func (s *Session) Start(ctx context.Context, endpoint, authToken string, rateHz int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	if s.stopped {
		return errors.New("session already stopped")
	}

	if err := s.source.Open(ctx); err != nil {
		return fmt.Errorf("opening capture source: %w", err)
	}
	if err := s.channel.Connect(ctx, endpoint, authToken); err != nil {
		s.source.Close()
		return fmt.Errorf("connecting stream: %w", err)
	}
	s.scheduler.Start(rateHz)
	s.running = true
	return nil
}

// SetRate changes the capture rate of a running session immediately.
func (s *Session) SetRate(rateHz int) {
	s.scheduler.SetRate(rateHz)
}

// Stop tears the session down: scheduler first so no new frames are
// produced, then the channel, then the capture device. Idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || !s.running {
		s.stopped = true
		return nil
	}
	s.running = false
	s.stopped = true

	s.scheduler.Stop()
	err := s.channel.Close()
	if cerr := s.source.Close(); err == nil {
		err = cerr
	}
	return err
}

// State reports the streaming channel's current state.
func (s *Session) State() stream.State {
	return s.channel.State()
}

// Delivered reports how many frame verdicts have been handed to the
// result handler so far.
func (s *Session) Delivered() uint64 {
	return s.delivered.Load()
}
