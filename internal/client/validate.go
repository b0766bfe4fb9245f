package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/venkatnarayankaranam/mediaguardx-sub000/internal/detection"
)

// ErrValidation marks an upload rejected before any network call. The
// wrapped message is the human-readable reason.
var ErrValidation = errors.New("upload validation failed")

var allowedExtensions = map[detection.MediaType][]string{
	detection.MediaImage: {".jpg", ".jpeg", ".png", ".webp", ".bmp"},
	detection.MediaVideo: {".mp4", ".mov", ".webm", ".avi", ".mkv"},
	detection.MediaAudio: {".mp3", ".wav", ".m4a", ".ogg", ".flac"},
}

// ValidateUpload rejects oversize or wrong-type files synchronously,
// before any bytes leave the machine.
func ValidateUpload(path string, mediaType detection.MediaType, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read file: %v", ErrValidation, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrValidation, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", ErrValidation, info.Size(), maxSize)
	}

	exts, ok := allowedExtensions[mediaType]
	if !ok {
		return fmt.Errorf("%w: unsupported media type %q", ErrValidation, mediaType)
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range exts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s files are not accepted for %s detection", ErrValidation, ext, mediaType)
}

// ContentTypeFor returns the MIME type sent for a media file.
func ContentTypeFor(path string, mediaType detection.MediaType) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	}
	switch mediaType {
	case detection.MediaVideo:
		return "video/mp4"
	case detection.MediaAudio:
		return "audio/mpeg"
	}
	return "application/octet-stream"
}
