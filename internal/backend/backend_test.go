package backend

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/config"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/history"
)

func writeTempMedia(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func testRepo(t *testing.T) *history.DetectionRepository {
	t.Helper()
	db, err := history.NewDB(config.DBConfig{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "backend_test.db"),
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return history.NewDetectionRepository(db)
}

func TestScorer_Deterministic(t *testing.T) {
	path := writeTempMedia(t, "sample.jpg", []byte("not really a jpeg but stable bytes"))

	d1, err := digestFile(path)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	d2, err := digestFile(path)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}

	if d1.baseScore() != d2.baseScore() {
		t.Errorf("same file scored %v then %v", d1.baseScore(), d2.baseScore())
	}
	if s := d1.baseScore(); s < 0 || s > 100 {
		t.Errorf("score %v outside [0,100]", s)
	}
}

func TestScoreFrame_Range(t *testing.T) {
	for _, data := range [][]byte{[]byte("a"), []byte("frame bytes"), make([]byte, 100000)} {
		s := ScoreFrame(data)
		if s < 0 || s > 100 {
			t.Errorf("frame score %v outside [0,100]", s)
		}
		if s != ScoreFrame(data) {
			t.Error("frame scoring is not deterministic")
		}
	}
}

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]float64
		want   float64
	}{
		{"empty falls back to neutral", map[string]float64{}, 75},
		{"single modality", map[string]float64{"model": 80}, 80},
		{"uniform scores stay put", map[string]float64{"model": 60, "metadata": 60, "audio": 60}, 60},
		{"unknown modality ignored", map[string]float64{"astrology": 100}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compositeScore(tt.scores); got != tt.want {
				t.Errorf("compositeScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMockAnalyzer_ModalityPresence(t *testing.T) {
	analyzer := NewMockAnalyzer()

	imagePath := writeTempMedia(t, "photo.jpg", []byte("image-bytes"))
	videoPath := writeTempMedia(t, "clip.mp4", []byte("video-bytes"))

	img, err := analyzer.Analyze(imagePath, detection.MediaImage)
	if err != nil {
		t.Fatalf("analyze image: %v", err)
	}
	if img.AudioAnalysis != nil || img.EmotionMismatch != nil || img.SyncAnalysis != nil {
		t.Error("image analysis must not include audio/emotion/sync modalities")
	}
	if img.MetadataAnalysis == nil || img.Fingerprint == nil || img.CompressionInfo == nil {
		t.Error("image analysis missing always-on modalities")
	}

	vid, err := analyzer.Analyze(videoPath, detection.MediaVideo)
	if err != nil {
		t.Fatalf("analyze video: %v", err)
	}
	if vid.AudioAnalysis == nil || vid.EmotionMismatch == nil || vid.SyncAnalysis == nil {
		t.Error("video analysis missing audio/emotion/sync modalities")
	}

	if vid.TrustScore == nil {
		t.Fatal("missing trust score")
	}
	if vid.Label != detection.LabelForScore(*vid.TrustScore) {
		t.Errorf("label %q inconsistent with score %v", vid.Label, *vid.TrustScore)
	}
}

func TestLocalMockBackend_AnalyzeStoresCanonicalResult(t *testing.T) {
	repo := testRepo(t)
	b := NewLocalMockBackend(repo, 1<<20)
	ctx := context.Background()

	path := writeTempMedia(t, "clip.mp4", []byte("deterministic video bytes"))

	result, err := b.Analyze(ctx, path, detection.MediaVideo)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Status != detection.Classify(result.TrustScore).Status {
		t.Errorf("status %s inconsistent with score %v", result.Status, result.TrustScore)
	}

	// Fingerprint probability left the analyzer as a fraction; the
	// canonical record must carry a percentage.
	if result.Fingerprint == nil {
		t.Fatal("missing fingerprint record")
	}
	if p := result.Fingerprint.Probability; p != 0 && p <= 1 {
		t.Errorf("fingerprint probability %v still fraction-scaled", p)
	}

	stored, err := b.Detection(ctx, result.ID)
	if err != nil {
		t.Fatalf("reading back result: %v", err)
	}
	if !reflect.DeepEqual(stored.Anomalies, result.Anomalies) {
		t.Errorf("anomalies changed across persistence:\n%+v\n%+v", result.Anomalies, stored.Anomalies)
	}

	list, err := b.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(list) != 1 || list[0].ID != result.ID {
		t.Errorf("history = %+v", list)
	}
}

func TestLocalMockBackend_RejectsInvalidUpload(t *testing.T) {
	b := NewLocalMockBackend(testRepo(t), 16)
	ctx := context.Background()

	big := writeTempMedia(t, "big.mp4", make([]byte, 64))
	if _, err := b.Analyze(ctx, big, detection.MediaVideo); err == nil {
		t.Error("oversize upload accepted")
	}

	wrongType := writeTempMedia(t, "notes.txt", []byte("x"))
	if _, err := b.Analyze(ctx, wrongType, detection.MediaImage); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestLocalMockBackend_Report(t *testing.T) {
	repo := testRepo(t)
	b := NewLocalMockBackend(repo, 1<<20)
	ctx := context.Background()

	if _, err := b.Report(ctx, "missing-id"); err == nil {
		t.Error("report for unknown detection should fail")
	}

	path := writeTempMedia(t, "photo.png", []byte("png-ish"))
	result, err := b.Analyze(ctx, path, detection.MediaImage)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	report, err := b.Report(ctx, result.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.DetectionID != result.ID || report.PDFURL == "" {
		t.Errorf("report descriptor incomplete: %+v", report)
	}
	if !strings.HasPrefix(report.CaseID, "CASE-") || len(report.CaseID) != len("CASE-")+8 {
		t.Errorf("case id = %q, want CASE-XXXXXXXX", report.CaseID)
	}
}
