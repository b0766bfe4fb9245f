package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/fatih/color"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/backend"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/history"
)

var (
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	dangerColor  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	var (
		filePath   = flag.String("file", "", "Path to the media file to analyze")
		mediaType  = flag.String("type", "image", "Media type: image, video or audio")
		withReport = flag.Bool("report", false, "Request a forensic report after analysis")
		limit      = flag.Int("history", 0, "Show the last N analyses instead of analyzing a file")
	)
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := history.NewDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to open history database: ", err)
	}
	defer db.Close()

	repo := history.NewDetectionRepository(db)
	b := backend.New(cfg, repo)
	ctx := context.Background()

	if *limit > 0 {
		printHistory(ctx, b, *limit)
		return
	}

	if *filePath == "" {
		log.Fatal("Please provide a media file with -file")
	}

	mt := detection.MediaType(strings.ToLower(*mediaType))
	switch mt {
	case detection.MediaImage, detection.MediaVideo, detection.MediaAudio:
	default:
		log.Fatalf("Unknown media type %q", *mediaType)
	}

	result, err := b.Analyze(ctx, *filePath, mt)
	if err != nil {
		log.Fatal("Analysis failed: ", err)
	}

	printResult(result)

	if *withReport {
		report, err := b.Report(ctx, result.ID)
		if err != nil {
			log.Fatal("Report request failed: ", err)
		}
		fmt.Printf("\nReport %s generated: %s\n", report.ID, report.PDFURL)
	}
}

func printResult(r *detection.DetectionResult) {
	fmt.Printf("File:        %s (%s)\n", r.FileName, r.FileType)
	fmt.Printf("Detection:   %s\n", r.ID)
	fmt.Printf("Trust score: %.2f\n", r.TrustScore)
	fmt.Printf("Verdict:     %s\n", coloredStatus(r.Status))

	if len(r.Anomalies) == 0 {
		fmt.Println("No anomalies found")
		return
	}
	fmt.Printf("Anomalies (%d):\n", len(r.Anomalies))
	for _, a := range r.Anomalies {
		fmt.Printf("  [%s] %s: %s (confidence %.0f%%)\n", a.Severity, a.Type, a.Description, a.Confidence)
	}
}

func printHistory(ctx context.Context, b backend.Backend, limit int) {
	results, err := b.History(ctx, limit)
	if err != nil {
		log.Fatal("Failed to load history: ", err)
	}
	if len(results) == 0 {
		fmt.Println("No analyses recorded yet")
		return
	}
	for _, r := range results {
		fmt.Printf("%s  %-40s %6.2f  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, r.TrustScore, coloredStatus(r.Status))
	}
}

func coloredStatus(s detection.Status) string {
	switch s {
	case detection.StatusAuthentic:
		return successColor(string(s))
	case detection.StatusSuspected:
		return warningColor(string(s))
	default:
		return dangerColor(string(s))
	}
}
