package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

// DetectionRepository stores canonical DetectionResults. Modality
// sub-records travel together in one JSON column so that "absent"
// survives a round trip unchanged.
type DetectionRepository struct {
	db *DB
}

func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// modalityColumns groups the optional sub-records for storage.
type modalityColumns struct {
	AudioAnalysis    *detection.AudioAnalysis    `json:"audioAnalysis,omitempty"`
	MetadataAnalysis *detection.MetadataAnalysis `json:"metadataAnalysis,omitempty"`
	Fingerprint      *detection.Fingerprint      `json:"fingerprint,omitempty"`
	CompressionInfo  *detection.CompressionInfo  `json:"compressionInfo,omitempty"`
	EmotionMismatch  *detection.EmotionMismatch  `json:"emotionMismatch,omitempty"`
	SyncAnalysis     *detection.SyncAnalysis     `json:"syncAnalysis,omitempty"`
}

func (r *DetectionRepository) Insert(ctx context.Context, result *detection.DetectionResult) error {
	anomalies, err := json.Marshal(result.Anomalies)
	if err != nil {
		return fmt.Errorf("failed to marshal anomalies: %w", err)
	}

	modalities, err := json.Marshal(modalityColumns{
		AudioAnalysis:    result.AudioAnalysis,
		MetadataAnalysis: result.MetadataAnalysis,
		Fingerprint:      result.Fingerprint,
		CompressionInfo:  result.CompressionInfo,
		EmotionMismatch:  result.EmotionMismatch,
		SyncAnalysis:     result.SyncAnalysis,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal modalities: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO detections (
			id, file_name, file_type, file_url, heatmap_url, file_size,
			trust_score, status, anomalies, modalities, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if r.db.dbType == "postgres" {
		query = `
		INSERT INTO detections (
			id, file_name, file_type, file_url, heatmap_url, file_size,
			trust_score, status, anomalies, modalities, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	}

	_, err = r.db.conn.ExecContext(ctx, query,
		result.ID,
		result.FileName,
		string(result.FileType),
		result.FileURL,
		result.HeatmapURL,
		result.FileSize,
		result.TrustScore,
		string(result.Status),
		string(anomalies),
		string(modalities),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert detection: %w", err)
	}
	return nil
}

func (r *DetectionRepository) GetByID(ctx context.Context, id string) (*detection.DetectionResult, error) {
	query := `
		SELECT id, file_name, file_type, file_url, heatmap_url, file_size,
		       trust_score, status, anomalies, modalities, created_at
		FROM detections WHERE id = ?`
	if r.db.dbType == "postgres" {
		query = `
		SELECT id, file_name, file_type, file_url, heatmap_url, file_size,
		       trust_score, status, anomalies, modalities, created_at
		FROM detections WHERE id = $1`
	}

	result, err := scanDetection(r.db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("detection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection: %w", err)
	}
	return result, nil
}

func (r *DetectionRepository) List(ctx context.Context, limit int) ([]detection.DetectionResult, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, file_name, file_type, file_url, heatmap_url, file_size,
		       trust_score, status, anomalies, modalities, created_at
		FROM detections ORDER BY created_at DESC LIMIT ?`
	if r.db.dbType == "postgres" {
		query = `
		SELECT id, file_name, file_type, file_url, heatmap_url, file_size,
		       trust_score, status, anomalies, modalities, created_at
		FROM detections ORDER BY created_at DESC LIMIT $1`
	}

	rows, err := r.db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	var results []detection.DetectionResult
	for rows.Next() {
		result, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

func (r *DetectionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM detections WHERE id = ?`
	if r.db.dbType == "postgres" {
		query = `DELETE FROM detections WHERE id = $1`
	}

	res, err := r.db.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete detection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("detection not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDetection(row rowScanner) (*detection.DetectionResult, error) {
	var result detection.DetectionResult
	var fileType, status, anomaliesJSON, modalitiesJSON string
	var fileURL, heatmapURL sql.NullString

	err := row.Scan(
		&result.ID,
		&result.FileName,
		&fileType,
		&fileURL,
		&heatmapURL,
		&result.FileSize,
		&result.TrustScore,
		&status,
		&anomaliesJSON,
		&modalitiesJSON,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	result.FileType = detection.MediaType(fileType)
	result.Status = detection.Status(status)
	result.FileURL = fileURL.String
	result.HeatmapURL = heatmapURL.String

	if err := json.Unmarshal([]byte(anomaliesJSON), &result.Anomalies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal anomalies: %w", err)
	}

	var modalities modalityColumns
	if err := json.Unmarshal([]byte(modalitiesJSON), &modalities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal modalities: %w", err)
	}
	result.AudioAnalysis = modalities.AudioAnalysis
	result.MetadataAnalysis = modalities.MetadataAnalysis
	result.Fingerprint = modalities.Fingerprint
	result.CompressionInfo = modalities.CompressionInfo
	result.EmotionMismatch = modalities.EmotionMismatch
	result.SyncAnalysis = modalities.SyncAnalysis

	return &result, nil
}
