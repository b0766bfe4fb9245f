package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestValidateUpload(t *testing.T) {
	small := writeTempFile(t, "photo.jpg", 100)
	big := writeTempFile(t, "movie.mp4", 2048)

	cases := []struct {
		name      string
		path      string
		mediaType detection.MediaType
		maxSize   int64
		wantErr   bool
	}{
		{"accepted image", small, detection.MediaImage, 1024, false},
		{"wrong extension for audio", small, detection.MediaAudio, 1024, true},
		{"oversize file", big, detection.MediaVideo, 1024, true},
		{"no limit", big, detection.MediaVideo, 0, false},
		{"missing file", filepath.Join(t.TempDir(), "nope.jpg"), detection.MediaImage, 1024, true},
		{"directory", t.TempDir(), detection.MediaImage, 1024, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.path, tc.mediaType, tc.maxSize)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := []struct {
		path      string
		mediaType detection.MediaType
		want      string
	}{
		{"a.jpg", detection.MediaImage, "image/jpeg"},
		{"a.mov", detection.MediaVideo, "video/quicktime"},
		{"a.flac", detection.MediaAudio, "audio/flac"},
		{"a.raw", detection.MediaVideo, "video/mp4"},
		{"a.raw", detection.MediaImage, "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := ContentTypeFor(tc.path, tc.mediaType); got != tc.want {
			t.Errorf("ContentTypeFor(%q, %s) = %q, want %q", tc.path, tc.mediaType, got, tc.want)
		}
	}
}

func TestDetectFileSendsMultipart(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotContentType = header.Header.Get("Content-Type")

		json.NewEncoder(w).Encode(DetectResponse{
			Status:      "success",
			MediaType:   "image",
			TrustScore:  81.5,
			Label:       "Authentic",
			DetectionID: "det-1",
		})
	}))
	defer srv.Close()

	path := writeTempFile(t, "photo.jpg", 64)
	c := NewClient(srv.URL, "token-123", 1<<20)

	resp, err := c.DetectFile(context.Background(), path, detection.MediaImage)
	if err != nil {
		t.Fatalf("DetectFile: %v", err)
	}
	if resp.DetectionID != "det-1" || resp.TrustScore != 81.5 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("part content type = %q", gotContentType)
	}
}

func TestDetectFileRejectsBeforeUpload(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	path := writeTempFile(t, "notes.txt", 64)
	c := NewClient(srv.URL, "", 1<<20)

	if _, err := c.DetectFile(context.Background(), path, detection.MediaImage); !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if called {
		t.Error("validation failure must not reach the network")
	}
}

func TestGetDetectionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Detection not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 1<<20)
	if _, err := c.GetDetection(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
