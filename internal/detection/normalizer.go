package detection

import (
	"math"
	"net/url"
	"strings"
	"time"
)

// Normalizer converts raw analysis payloads into canonical
// DetectionResults and raw live frames into LiveFrameResults. Raw
// payloads are partial by construction, so every field is defaulted
// explicitly; absent modality records stay absent.
type Normalizer struct {
	// BaseURL is the analysis-service origin used to resolve relative
	// resource URLs. Empty leaves relative URLs unchanged.
	BaseURL string
}

func NewNormalizer(baseURL string) *Normalizer {
	return &Normalizer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// NormalizePayload produces the canonical result for a raw detection
// payload. Normalizing an already-canonical payload yields the same
// result: scale detection never double-scales a percentage.
func (n *Normalizer) NormalizePayload(p *AnalysisPayload) *DetectionResult {
	if p == nil {
		return nil
	}

	result := &DetectionResult{
		ID:         p.ID,
		FileName:   p.FileName,
		FileType:   mediaTypeOrDefault(p.FileType),
		FileURL:    n.ResolveURL(p.FileURL),
		HeatmapURL: n.ResolveURL(p.HeatmapURL),
		TrustScore: clampScore(floatOrZero(p.TrustScore)),
		Status:     resolveStatus(p.Label, p.Status),
		Anomalies:  n.normalizeAnomalies(p.Anomalies),
		CreatedAt:  parseTimestamp(p.CreatedAt),
	}

	if p.Metadata != nil {
		result.FileSize = p.Metadata.FileSize
	}

	if p.AudioAnalysis != nil {
		result.AudioAnalysis = &AudioAnalysis{
			Cloned:  p.AudioAnalysis.Cloned,
			Score:   normalizeConfidence(floatOrZero(p.AudioAnalysis.Score)),
			Details: stringsOrEmpty(p.AudioAnalysis.Details),
		}
	}
	if p.MetadataAnalysis != nil {
		result.MetadataAnalysis = &MetadataAnalysis{
			MissingCamera:         p.MetadataAnalysis.MissingCamera,
			SuspiciousCompression: p.MetadataAnalysis.SuspiciousCompression,
			Exif:                  p.MetadataAnalysis.Exif,
			Details:               stringsOrEmpty(p.MetadataAnalysis.Details),
		}
	}
	if p.Fingerprint != nil {
		result.Fingerprint = &Fingerprint{
			Source:      stringOrEmpty(p.Fingerprint.Source),
			Probability: normalizeConfidence(floatOrZero(p.Fingerprint.Probability)),
		}
	}
	if p.CompressionInfo != nil {
		// Compression ratio is a size ratio, not a confidence; it is
		// legitimately below 1 and must not be rescaled.
		result.CompressionInfo = &CompressionInfo{
			Platform:         stringOrEmpty(p.CompressionInfo.Platform),
			CompressionRatio: floatOrZero(p.CompressionInfo.CompressionRatio),
			Evidence:         stringsOrEmpty(p.CompressionInfo.Evidence),
		}
	}
	if p.EmotionMismatch != nil {
		result.EmotionMismatch = &EmotionMismatch{
			FaceEmotion:  stringOrEmpty(p.EmotionMismatch.FaceEmotion),
			AudioEmotion: stringOrEmpty(p.EmotionMismatch.AudioEmotion),
			Score:        normalizeConfidence(floatOrZero(p.EmotionMismatch.Score)),
		}
	}
	if p.SyncAnalysis != nil {
		result.SyncAnalysis = &SyncAnalysis{
			LipSyncMismatch: p.SyncAnalysis.LipSyncMismatch,
			MismatchScore:   normalizeConfidence(floatOrZero(p.SyncAnalysis.MismatchScore)),
			Details:         stringsOrEmpty(p.SyncAnalysis.Details),
		}
	}

	return result
}

// NormalizeLiveFrame produces the canonical per-frame verdict for one
// streamed result.
func (n *Normalizer) NormalizeLiveFrame(raw RawLiveFrame) LiveFrameResult {
	return LiveFrameResult{
		FrameID:    raw.FrameID,
		Timestamp:  parseTimestamp(raw.Timestamp),
		TrustScore: clampScore(floatOrZero(raw.TrustScore)),
		Label:      raw.Label,
		Status:     resolveStatus(raw.Label, raw.Status),
		Message:    raw.Message,
	}
}

func (n *Normalizer) normalizeAnomalies(raw []RawAnomaly) []Anomaly {
	anomalies := make([]Anomaly, 0, len(raw))
	for _, a := range raw {
		anomaly := Anomaly{
			Type:        "general",
			Severity:    SeverityMedium,
			Description: stringOrEmpty(a.Description),
			Confidence:  50,
		}
		if a.Type != nil && *a.Type != "" {
			anomaly.Type = *a.Type
		}
		if a.Severity != nil {
			switch Severity(strings.ToLower(*a.Severity)) {
			case SeverityLow, SeverityMedium, SeverityHigh:
				anomaly.Severity = Severity(strings.ToLower(*a.Severity))
			}
		}
		if a.Confidence != nil {
			anomaly.Confidence = normalizeConfidence(*a.Confidence)
		}
		anomalies = append(anomalies, anomaly)
	}
	return anomalies
}

// ResolveURL resolves a relative resource URL against the configured
// base origin. Absolute URLs pass through unchanged. Pure string
// transform, no I/O.
func (n *Normalizer) ResolveURL(ref string) string {
	if ref == "" || n.BaseURL == "" {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if parsed.IsAbs() {
		return ref
	}
	base, err := url.Parse(n.BaseURL)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// normalizeConfidence converts a confidence value to the canonical
// [0,100] percentage scale. Values strictly below 1 are treated as
// fractions and scaled; values in [1,100] pass through. Exactly 1
// reads as one percent: canonical outputs are rounded integers, so
// every value a normalization can produce, including 1, passes back
// through unchanged.
func normalizeConfidence(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v < 1 {
		v = math.Round(v * 100)
	}
	return clampScore(v)
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func resolveStatus(label, status string) Status {
	if label != "" {
		return StatusForLabel(label)
	}
	switch Status(status) {
	case StatusAuthentic, StatusSuspected, StatusDeepfake:
		return Status(status)
	}
	return StatusDeepfake
}

func mediaTypeOrDefault(t string) MediaType {
	switch MediaType(t) {
	case MediaImage, MediaVideo, MediaAudio:
		return MediaType(t)
	}
	return MediaImage
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stringsOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
