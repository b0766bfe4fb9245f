package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/capture"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/session"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/stream"
)

var (
	okColor    = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	alertColor = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	var (
		device    = flag.String("device", "", "Capture device (e.g. /dev/video0)")
		file      = flag.String("file", "", "Video file to replay as a live source")
		synthetic = flag.Bool("synthetic", false, "Use a generated test pattern source")
		rate      = flag.Int("rate", 1, "Capture rate in frames per second")
		frameSize = flag.Int("size", 320, "Captured frame width in pixels")
	)
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if !cfg.AllowsFrameRate(*rate) {
		log.Fatalf("Frame rate %d not allowed, accepted rates: %v", *rate, cfg.FrameRates)
	}

	endpoint := cfg.StreamURL
	if endpoint == "" {
		endpoint = "ws://localhost:" + cfg.Port + "/api/live"
	}

	var source capture.Source
	switch {
	case *device != "":
		source = capture.NewDeviceSource(*device, *frameSize)
	case *file != "":
		source = capture.NewFileSource(*file, *frameSize, 1.0)
	case *synthetic:
		source = capture.NewSyntheticSource(*frameSize)
	default:
		log.Fatal("Please choose a source: -device, -file or -synthetic")
	}

	s := session.New(source, stream.WebsocketDialer(cfg.ConnectTimeout), detection.NewNormalizer(cfg.APIBaseURL))
	s.OnResult(printFrame)
	s.OnStateChange(func(st stream.State) {
		log.Printf("stream state: %s", st)
	})

	ctx := context.Background()
	if err := s.Start(ctx, endpoint, cfg.AuthToken, *rate); err != nil {
		log.Fatal("Failed to start session: ", err)
	}
	log.Printf("Streaming to %s at %d fps, Ctrl-C to stop", endpoint, *rate)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := s.Stop(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Printf("Session finished, %d verdicts received", s.Delivered())
}

func printFrame(r detection.LiveFrameResult) {
	verdict := r.Label
	switch r.Status {
	case detection.StatusAuthentic:
		verdict = okColor(r.Label)
	case detection.StatusSuspected:
		verdict = warnColor(r.Label)
	case detection.StatusDeepfake:
		verdict = alertColor(r.Label)
	}
	fmt.Printf("%s  %s  score %6.2f  %s\n",
		r.Timestamp.Format("15:04:05"), r.FrameID, r.TrustScore, verdict)
}
