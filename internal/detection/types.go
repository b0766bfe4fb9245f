package detection

import "time"

// Status is the three-level verdict for a piece of media.
type Status string

const (
	StatusAuthentic Status = "authentic"
	StatusSuspected Status = "suspected"
	StatusDeepfake  Status = "deepfake"
)

// Tier is the presentation level matching a Status.
type Tier string

const (
	TierSuccess Tier = "success"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// MediaType identifies the kind of media submitted for analysis.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// LiveFrameResult is one verdict for a single streamed frame.
type LiveFrameResult struct {
	FrameID    string    `json:"frameId"`
	Timestamp  time.Time `json:"timestamp"`
	TrustScore float64   `json:"trustScore"`
	Label      string    `json:"label"`
	Status     Status    `json:"status"`
	Message    string    `json:"message,omitempty"`
}

// Anomaly is a single normalized finding. Confidence is always a
// percentage in [0,100].
type Anomaly struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
}

// Canonical per-modality records. All scores and probabilities are
// percentages in [0,100]. A nil record means the modality was not
// analyzed, which is not the same as a record with a zero score.

type AudioAnalysis struct {
	Cloned  bool     `json:"cloned"`
	Score   float64  `json:"score"`
	Details []string `json:"details"`
}

type MetadataAnalysis struct {
	MissingCamera         bool              `json:"missingCamera"`
	SuspiciousCompression bool              `json:"suspiciousCompression"`
	Exif                  map[string]string `json:"exif,omitempty"`
	Details               []string          `json:"details"`
}

type Fingerprint struct {
	Source      string  `json:"source,omitempty"`
	Probability float64 `json:"probability"`
}

type CompressionInfo struct {
	Platform         string   `json:"platform,omitempty"`
	CompressionRatio float64  `json:"compressionRatio"`
	Evidence         []string `json:"evidence"`
}

type EmotionMismatch struct {
	FaceEmotion  string  `json:"faceEmotion,omitempty"`
	AudioEmotion string  `json:"audioEmotion,omitempty"`
	Score        float64 `json:"score"`
}

type SyncAnalysis struct {
	LipSyncMismatch bool     `json:"lipSyncMismatch"`
	MismatchScore   float64  `json:"mismatchScore"`
	Details         []string `json:"details"`
}

// DetectionResult is the canonical, scale-consistent record produced by
// the Normalizer. It is the only detection entity intended for
// persistence; it is never mutated after creation except to patch in
// resolved display URLs.
type DetectionResult struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   MediaType `json:"fileType"`
	FileURL    string    `json:"fileUrl,omitempty"`
	HeatmapURL string    `json:"heatmapUrl,omitempty"`
	FileSize   int64     `json:"fileSize"`
	TrustScore float64   `json:"trustScore"`
	Status     Status    `json:"status"`
	Anomalies  []Anomaly `json:"anomalies"`
	CreatedAt  time.Time `json:"createdAt"`

	AudioAnalysis    *AudioAnalysis    `json:"audioAnalysis,omitempty"`
	MetadataAnalysis *MetadataAnalysis `json:"metadataAnalysis,omitempty"`
	Fingerprint      *Fingerprint      `json:"fingerprint,omitempty"`
	CompressionInfo  *CompressionInfo  `json:"compressionInfo,omitempty"`
	EmotionMismatch  *EmotionMismatch  `json:"emotionMismatch,omitempty"`
	SyncAnalysis     *SyncAnalysis     `json:"syncAnalysis,omitempty"`
}
