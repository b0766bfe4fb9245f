package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/client"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/history"
)

// Backend is the capability interface over the detection service. One
// implementation is chosen at startup from configuration; call sites
// never branch on which one they got.
type Backend interface {
	Analyze(ctx context.Context, path string, mediaType detection.MediaType) (*detection.DetectionResult, error)
	Detection(ctx context.Context, id string) (*detection.DetectionResult, error)
	History(ctx context.Context, limit int) ([]detection.DetectionResult, error)
	Delete(ctx context.Context, id string) error
	Report(ctx context.Context, detectionID string) (*client.ReportDescriptor, error)
}

// New selects the backend variant once from configuration: a remote
// analysis service when an API origin is configured, the local mock
// otherwise.
func New(cfg *config.Config, repo *history.DetectionRepository) Backend {
	if cfg.DemoMode() {
		return NewLocalMockBackend(repo, cfg.MaxUploadSize)
	}
	return NewRemoteBackend(
		client.NewClient(cfg.APIBaseURL, cfg.AuthToken, cfg.MaxUploadSize),
		detection.NewNormalizer(cfg.APIBaseURL),
		repo,
	)
}

// RemoteBackend talks to the real analysis service and normalizes its
// payloads into canonical results.
type RemoteBackend struct {
	client     *client.Client
	normalizer *detection.Normalizer
	repo       *history.DetectionRepository
}

func NewRemoteBackend(c *client.Client, n *detection.Normalizer, repo *history.DetectionRepository) *RemoteBackend {
	return &RemoteBackend{client: c, normalizer: n, repo: repo}
}

func (b *RemoteBackend) Analyze(ctx context.Context, path string, mediaType detection.MediaType) (*detection.DetectionResult, error) {
	resp, err := b.client.DetectFile(ctx, path, mediaType)
	if err != nil {
		return nil, err
	}

	payload, err := b.client.GetDetection(ctx, resp.DetectionID)
	if err != nil {
		return nil, fmt.Errorf("fetching detection %s: %w", resp.DetectionID, err)
	}

	result := b.normalizer.NormalizePayload(payload)
	if err := b.repo.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("saving detection %s: %w", result.ID, err)
	}
	return result, nil
}

func (b *RemoteBackend) Detection(ctx context.Context, id string) (*detection.DetectionResult, error) {
	payload, err := b.client.GetDetection(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.normalizer.NormalizePayload(payload), nil
}

func (b *RemoteBackend) History(ctx context.Context, limit int) ([]detection.DetectionResult, error) {
	return b.repo.List(ctx, limit)
}

func (b *RemoteBackend) Delete(ctx context.Context, id string) error {
	return b.repo.Delete(ctx, id)
}

func (b *RemoteBackend) Report(ctx context.Context, detectionID string) (*client.ReportDescriptor, error) {
	report, err := b.client.RequestReport(ctx, detectionID)
	if err != nil {
		return nil, err
	}
	report.PDFURL = b.normalizer.ResolveURL(report.PDFURL)
	return report, nil
}

// LocalMockBackend serves demo mode: the deterministic analyzer runs
// locally and results flow through the same normalizer and history
// store as the remote path.
type LocalMockBackend struct {
	analyzer      *MockAnalyzer
	normalizer    *detection.Normalizer
	repo          *history.DetectionRepository
	maxUploadSize int64
}

func NewLocalMockBackend(repo *history.DetectionRepository, maxUploadSize int64) *LocalMockBackend {
	return &LocalMockBackend{
		analyzer:      NewMockAnalyzer(),
		normalizer:    detection.NewNormalizer(""),
		repo:          repo,
		maxUploadSize: maxUploadSize,
	}
}

func (b *LocalMockBackend) Analyze(ctx context.Context, path string, mediaType detection.MediaType) (*detection.DetectionResult, error) {
	if err := client.ValidateUpload(path, mediaType, b.maxUploadSize); err != nil {
		return nil, err
	}

	payload, err := b.analyzer.Analyze(path, mediaType)
	if err != nil {
		return nil, err
	}

	result := b.normalizer.NormalizePayload(payload)
	if err := b.repo.Insert(ctx, result); err != nil {
		return nil, fmt.Errorf("saving detection %s: %w", result.ID, err)
	}
	return result, nil
}

func (b *LocalMockBackend) Detection(ctx context.Context, id string) (*detection.DetectionResult, error) {
	return b.repo.GetByID(ctx, id)
}

func (b *LocalMockBackend) History(ctx context.Context, limit int) ([]detection.DetectionResult, error) {
	return b.repo.List(ctx, limit)
}

func (b *LocalMockBackend) Delete(ctx context.Context, id string) error {
	return b.repo.Delete(ctx, id)
}

func (b *LocalMockBackend) Report(ctx context.Context, detectionID string) (*client.ReportDescriptor, error) {
	if _, err := b.repo.GetByID(ctx, detectionID); err != nil {
		return nil, err
	}

	reportID := uuid.New().String()
	return &client.ReportDescriptor{
		ID:          reportID,
		DetectionID: detectionID,
		CaseID:      newCaseID(),
		PDFURL:      fmt.Sprintf("/api/report/%s/download", reportID),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// newCaseID mints the human-facing case reference printed on reports.
func newCaseID() string {
	return "CASE-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
