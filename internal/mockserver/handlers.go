package mockserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/backend"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/storage"
)

// UploadDir is needed alongside Storage so the analyzer can reach the
// saved file on disk.
func (app *App) uploadPath(filename string) string {
	return filepath.Join(app.UploadDir, filename)
}

func (app *App) DetectHandler(mediaType detection.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

		if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "File too large")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to get file")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, string(mediaType)+"/") && contentType != "application/octet-stream" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("File must be %s", mediaType))
			return
		}

		filename, err := app.Storage.SaveFile(file, storage.FileInfo{
			Filename:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save file")
			return
		}

		payload, err := app.analyzer.Analyze(app.uploadPath(filename), mediaType)
		if err != nil {
			app.Storage.DeleteFile(filename)
			writeError(w, http.StatusInternalServerError, "Analysis failed")
			return
		}
		payload.FileName = header.Filename
		app.storeDetection(payload, filename)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "success",
			"mediaType":   string(mediaType),
			"trustScore":  payload.TrustScore,
			"label":       payload.Label,
			"anomalies":   payload.Anomalies,
			"heatmapUrl":  nil,
			"fileUrl":     payload.FileURL,
			"reportId":    "",
			"detectionId": payload.ID,
		})
	}
}

func (app *App) GetDetectionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, _, ok := app.detection(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Detection not found")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (app *App) GetDetectionFileHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, filename, ok := app.detection(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Detection not found")
		return
	}

	file, err := app.Storage.OpenFile(filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()

	contentTypes := map[string]string{"image": "image/jpeg", "video": "video/mp4", "audio": "audio/mpeg"}
	if ct, ok := contentTypes[payload.FileType]; ok {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, payload.FileName, time.Now(), file)
}

func (app *App) ReportHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, _, ok := app.detection(id); !ok {
		writeError(w, http.StatusNotFound, "Detection not found")
		return
	}

	reportID := uuid.New().String()
	writeJSON(w, http.StatusOK, map[string]string{
		"id":          reportID,
		"detectionId": id,
		"caseId":      "CASE-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8]),
		"pdfUrl":      fmt.Sprintf("/api/report/%s/download", reportID),
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler upgrades to a websocket and answers each received frame
// with one verdict message, in receive order.
func (app *App) LiveHandler(w http.ResponseWriter, r *http.Request) {
	if app.AuthToken != "" {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+app.AuthToken {
			writeError(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mockserver: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		score := backend.ScoreFrame(data)
		result := detection.RawLiveFrame{
			FrameID:    "frame_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			TrustScore: &score,
			Label:      detection.LabelForScore(score),
			Status:     "monitoring",
		}
		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("mockserver: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
