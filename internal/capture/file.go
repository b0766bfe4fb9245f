package capture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// FileSource samples frames from a media file, advancing through it on
// each snapshot and wrapping around at the end. Useful for replaying
// recorded footage through the live pipeline.
type FileSource struct {
	path       string
	size       int
	stepSec    float64
	ffmpegPath string

	mu       sync.Mutex
	open     bool
	duration float64
	position float64
}

func NewFileSource(path string, size int, stepSec float64) *FileSource {
	if size <= 0 {
		size = 512
	}
	if stepSec <= 0 {
		stepSec = 1.0
	}
	return &FileSource{path: path, size: size, stepSec: stepSec}
}

func (f *FileSource) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		return ErrDeviceBusy
	}

	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("media file not accessible: %w", err)
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	f.ffmpegPath = ffmpegPath

	duration, err := f.probeDuration(ctx)
	if err != nil {
		return fmt.Errorf("probing duration of %s: %w", f.path, err)
	}
	if duration <= 0 {
		return fmt.Errorf("invalid media duration: %f", duration)
	}

	f.duration = duration
	f.position = 0
	f.open = true
	return nil
}

func (f *FileSource) Snapshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil, ErrNotOpen
	}

	timestamp := f.position
	f.position += f.stepSec
	if f.position >= f.duration {
		f.position = 0
	}

	args := []string{
		"-ss", fmt.Sprintf("%.2f", timestamp),
		"-i", f.path,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':-2", f.size),
		"-q:v", "2",
		"-f", "mjpeg",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extracting frame at %.2fs: %w", timestamp, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame data at %.2fs", timestamp)
	}
	return stdout.Bytes(), nil
}

func (f *FileSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	return nil
}

func (f *FileSource) probeDuration(ctx context.Context) (float64, error) {
	if ffprobePath, err := exec.LookPath("ffprobe"); err == nil {
		cmd := exec.CommandContext(ctx, ffprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			f.path)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err == nil {
			if duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64); err == nil && duration > 0 {
				return duration, nil
			}
		}
	}

	// Fall back to parsing ffmpeg's own banner output.
	cmd := exec.CommandContext(ctx, f.ffmpegPath, "-i", f.path, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return parseDuration(stderr.String())
}

func parseDuration(output string) (float64, error) {
	const prefix = "Duration: "
	start := strings.Index(output, prefix)
	if start == -1 {
		return 0, fmt.Errorf("duration not found in ffmpeg output")
	}
	start += len(prefix)
	end := strings.Index(output[start:], ",")
	if end == -1 {
		return 0, fmt.Errorf("invalid duration format")
	}

	parts := strings.Split(output[start:start+end], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s", output[start:start+end])
	}

	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		total = total*60 + v
	}
	return total, nil
}
