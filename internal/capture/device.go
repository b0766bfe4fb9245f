package capture

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"sync"
)

// DeviceSource captures single frames from a live camera device by
// shelling out to ffmpeg. On Linux the device is a v4l2 path like
// /dev/video0; on macOS an avfoundation index.
type DeviceSource struct {
	device     string
	size       int
	ffmpegPath string

	mu   sync.Mutex
	open bool
}

func NewDeviceSource(device string, size int) *DeviceSource {
	if size <= 0 {
		size = 512
	}
	return &DeviceSource{device: device, size: size}
}

func (d *DeviceSource) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return ErrDeviceBusy
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	d.ffmpegPath = ffmpegPath

	// Grab one frame up front so a missing or permission-denied device
	// fails the session at start, not on the first tick.
	if _, err := d.grab(ctx); err != nil {
		return fmt.Errorf("camera %s unavailable: %w", d.device, err)
	}

	d.open = true
	log.Printf("capture: opened camera %s", d.device)
	return nil
}

func (d *DeviceSource) Snapshot(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, ErrNotOpen
	}
	return d.grab(ctx)
}

// Close releases the camera. Idempotent; the device is free for other
// applications as soon as this returns.
func (d *DeviceSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		d.open = false
		log.Printf("capture: released camera %s", d.device)
	}
	return nil
}

func (d *DeviceSource) grab(ctx context.Context) ([]byte, error) {
	args := []string{
		"-f", inputFormat(),
		"-i", d.device,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':-2", d.size),
		"-q:v", "2",
		"-f", "mjpeg",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg grab failed: %w (%s)", err, lastLine(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame data")
	}
	return stdout.Bytes(), nil
}

func inputFormat() string {
	if runtime.GOOS == "darwin" {
		return "avfoundation"
	}
	return "v4l2"
}

func lastLine(s string) string {
	lines := bytes.Split(bytes.TrimSpace([]byte(s)), []byte("\n"))
	if len(lines) == 0 {
		return ""
	}
	return string(lines[len(lines)-1])
}
