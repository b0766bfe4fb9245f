package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(config.DBConfig{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "history_test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult() *detection.DetectionResult {
	return &detection.DetectionResult{
		ID:         uuid.New().String(),
		FileName:   "clip.mp4",
		FileType:   detection.MediaVideo,
		FileURL:    "https://api.example.com/api/detect/x/file",
		FileSize:   2048,
		TrustScore: 55,
		Status:     detection.StatusSuspected,
		Anomalies: []detection.Anomaly{
			{Type: "compression", Severity: detection.SeverityLow, Description: "recompression traces", Confidence: 60},
		},
		SyncAnalysis: &detection.SyncAnalysis{
			LipSyncMismatch: true,
			MismatchScore:   70,
			Details:         []string{"audio onsets lag mouth motion"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestDetectionRepository_InsertAndGet(t *testing.T) {
	repo := NewDetectionRepository(setupTestDB(t))
	ctx := context.Background()

	result := sampleResult()
	if err := repo.Insert(ctx, result); err != nil {
		t.Fatalf("Failed to insert detection: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, result.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve detection: %v", err)
	}

	if retrieved.TrustScore != result.TrustScore {
		t.Errorf("Expected trust score %v, got %v", result.TrustScore, retrieved.TrustScore)
	}
	if retrieved.Status != detection.StatusSuspected {
		t.Errorf("Expected status suspected, got %s", retrieved.Status)
	}
	if len(retrieved.Anomalies) != 1 || retrieved.Anomalies[0].Confidence != 60 {
		t.Errorf("Anomalies did not round trip: %+v", retrieved.Anomalies)
	}

	// Present modality comes back, absent ones stay absent.
	if retrieved.SyncAnalysis == nil || !retrieved.SyncAnalysis.LipSyncMismatch {
		t.Errorf("SyncAnalysis did not round trip: %+v", retrieved.SyncAnalysis)
	}
	if retrieved.AudioAnalysis != nil {
		t.Error("Absent audioAnalysis came back non-nil")
	}
}

func TestDetectionRepository_GetByID_NotFound(t *testing.T) {
	repo := NewDetectionRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Error("Expected error for non-existent detection, got nil")
	}
}

func TestDetectionRepository_List(t *testing.T) {
	repo := NewDetectionRepository(setupTestDB(t))
	ctx := context.Background()

	older := sampleResult()
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleResult()
	newer.CreatedAt = time.Now().UTC()

	for _, r := range []*detection.DetectionResult{older, newer} {
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("Failed to insert detection: %v", err)
		}
	}

	results, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list detections: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 detections, got %d", len(results))
	}
	if results[0].ID != newer.ID {
		t.Errorf("Expected most recent detection first, got %s", results[0].ID)
	}
}

func TestDetectionRepository_Delete(t *testing.T) {
	repo := NewDetectionRepository(setupTestDB(t))
	ctx := context.Background()

	result := sampleResult()
	if err := repo.Insert(ctx, result); err != nil {
		t.Fatalf("Failed to insert detection: %v", err)
	}

	if err := repo.Delete(ctx, result.ID); err != nil {
		t.Fatalf("Failed to delete detection: %v", err)
	}
	if _, err := repo.GetByID(ctx, result.ID); err == nil {
		t.Error("Detection still retrievable after delete")
	}
	if err := repo.Delete(ctx, result.ID); err == nil {
		t.Error("Expected error deleting a missing detection")
	}
}
