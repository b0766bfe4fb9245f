package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// SyntheticSource generates deterministic JPEG frames without touching
// any hardware. Used by tests and demo mode.
type SyntheticSource struct {
	size int

	mu   sync.Mutex
	open bool
	seq  int
}

func NewSyntheticSource(size int) *SyntheticSource {
	if size <= 0 {
		size = 64
	}
	return &SyntheticSource{size: size}
}

func (s *SyntheticSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return ErrDeviceBusy
	}
	s.open = true
	s.seq = 0
	return nil
}

func (s *SyntheticSource) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrNotOpen
	}
	s.seq++

	img := image.NewRGBA(image.Rect(0, 0, s.size, s.size))
	shade := uint8(s.seq * 37) // varies per frame so frames are distinguishable
	for y := 0; y < s.size; y++ {
		for x := 0; x < s.size; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}
