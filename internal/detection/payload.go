package detection

// AnalysisPayload is the raw record returned by the analysis service
// for one completed detection. It is partial by construction: any
// modality sub-record may be absent, and confidence values arrive
// either as fractions in [0,1] or as backend-native percentages.
// Optional fields are pointers so that "missing" survives decoding.
type AnalysisPayload struct {
	ID         string       `json:"id"`
	FileName   string       `json:"fileName"`
	FileType   string       `json:"fileType"`
	FileURL    string       `json:"fileUrl"`
	HeatmapURL string       `json:"heatmapUrl,omitempty"`
	TrustScore *float64     `json:"trustScore"`
	Label      string       `json:"label,omitempty"`
	Status     string       `json:"status,omitempty"`
	Anomalies  []RawAnomaly `json:"anomalies"`
	CreatedAt  string       `json:"createdAt,omitempty"`

	Metadata         *RawFileMetadata     `json:"metadata,omitempty"`
	AudioAnalysis    *RawAudioAnalysis    `json:"audioAnalysis,omitempty"`
	MetadataAnalysis *RawMetadataAnalysis `json:"metadataAnalysis,omitempty"`
	Fingerprint      *RawFingerprint      `json:"fingerprint,omitempty"`
	CompressionInfo  *RawCompressionInfo  `json:"compressionInfo,omitempty"`
	EmotionMismatch  *RawEmotionMismatch  `json:"emotionMismatch,omitempty"`
	SyncAnalysis     *RawSyncAnalysis     `json:"syncAnalysis,omitempty"`
}

type RawAnomaly struct {
	Type        *string  `json:"type"`
	Severity    *string  `json:"severity"`
	Description *string  `json:"description"`
	Confidence  *float64 `json:"confidence"`
}

type RawFileMetadata struct {
	FileSize int64 `json:"fileSize"`
}

type RawAudioAnalysis struct {
	Cloned  bool     `json:"cloned"`
	Score   *float64 `json:"score"`
	Details []string `json:"details"`
}

type RawMetadataAnalysis struct {
	MissingCamera         bool              `json:"missingCamera"`
	SuspiciousCompression bool              `json:"suspiciousCompression"`
	Exif                  map[string]string `json:"exif,omitempty"`
	Details               []string          `json:"details"`
}

type RawFingerprint struct {
	Source      *string  `json:"source"`
	Probability *float64 `json:"probability"`
}

type RawCompressionInfo struct {
	Platform         *string  `json:"platform"`
	CompressionRatio *float64 `json:"compressionRatio"`
	Evidence         []string `json:"evidence"`
}

type RawEmotionMismatch struct {
	FaceEmotion  *string  `json:"faceEmotion"`
	AudioEmotion *string  `json:"audioEmotion"`
	Score        *float64 `json:"score"`
}

type RawSyncAnalysis struct {
	LipSyncMismatch bool     `json:"lipSyncMismatch"`
	MismatchScore   *float64 `json:"mismatchScore"`
	Details         []string `json:"details"`
}

// RawLiveFrame is the wire form of one streamed frame verdict.
type RawLiveFrame struct {
	FrameID    string   `json:"frameId"`
	Timestamp  string   `json:"timestamp"`
	TrustScore *float64 `json:"trustScore"`
	Label      string   `json:"label"`
	Status     string   `json:"status,omitempty"`
	Message    string   `json:"message,omitempty"`
}
