package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/capture"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/mockserver"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/storage"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/stream"
)

func liveEndpoint(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	srv := httptest.NewServer(mockserver.NewRouter(mockserver.NewApp(store, dir, 10<<20, "")))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
}

func TestSessionLifecycle(t *testing.T) {
	endpoint := liveEndpoint(t)
	source := capture.NewSyntheticSource(64)

	results := make(chan detection.LiveFrameResult, 32)
	s := New(source, stream.WebsocketDialer(5*time.Second), detection.NewNormalizer(""))
	s.OnResult(func(r detection.LiveFrameResult) { results <- r })

	if err := s.Start(context.Background(), endpoint, "", 5); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.State(); got != stream.StateStreaming {
		t.Fatalf("state after start = %v, want %v", got, stream.StateStreaming)
	}
	if err := s.Start(context.Background(), endpoint, "", 5); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start error = %v, want ErrRunning", err)
	}

	// At 5 fps two verdicts should arrive well within the deadline.
	deadline := time.After(5 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			if r.TrustScore < 0 || r.TrustScore > 100 {
				t.Errorf("trust score %v out of range", r.TrustScore)
			}
			if r.Label == "" {
				t.Error("missing label")
			}
		case <-deadline:
			t.Fatalf("timed out waiting for verdict %d", i)
		}
	}
	if s.Delivered() < 2 {
		t.Errorf("delivered = %d, want >= 2", s.Delivered())
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := s.State(); got != stream.StateClosed {
		t.Errorf("state after stop = %v, want %v", got, stream.StateClosed)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	// The capture device must have been released.
	if _, err := source.Snapshot(context.Background()); !errors.Is(err, capture.ErrNotOpen) {
		t.Errorf("Snapshot after stop error = %v, want ErrNotOpen", err)
	}

	if err := s.Start(context.Background(), endpoint, "", 5); err == nil {
		t.Error("Start after Stop should fail")
	}
}

func TestSessionStartFailureReleasesSource(t *testing.T) {
	source := capture.NewSyntheticSource(64)
	s := New(source, stream.WebsocketDialer(time.Second), detection.NewNormalizer(""))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Start(ctx, "ws://127.0.0.1:1/api/live", "", 5); err == nil {
		t.Fatal("expected connect failure")
	}

	// The source must not be left holding the device.
	if err := source.Open(context.Background()); err != nil {
		t.Errorf("reopening source after failed start: %v", err)
	}
	source.Close()
}

func TestSessionStopBeforeStart(t *testing.T) {
	s := New(capture.NewSyntheticSource(64), stream.WebsocketDialer(time.Second), detection.NewNormalizer(""))
	if err := s.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
}
