package selection

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

var allowedTypes = []string{
	// Images
	"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp", "image/svg+xml", "image/bmp", "image/tiff",
	// Videos
	"video/mp4", "video/avi", "video/mov", "video/wmv", "video/webm", "video/mkv", "video/flv", "video/3gp",
	// Audio
	"audio/mp3", "audio/wav", "audio/ogg", "audio/aac", "audio/flac", "audio/m4a", "audio/wma",
	// Documents
	"application/pdf", "text/plain", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint", "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/csv", "application/rtf",
	// Archives
	"application/zip", "application/x-rar-compressed", "application/x-7z-compressed", "application/gzip",
	// Code
	"text/html", "text/css", "text/javascript", "application/javascript", "text/x-python", "text/x-java-source",
	"application/json", "text/xml", "application/xml",
}

// AllowedTypes returns a copy of the MIME allow-list.
func AllowedTypes() []string {
	out := make([]string, len(allowedTypes))
	copy(out, allowedTypes)
	return out
}

// FromPath builds a SelectableFile for a local file, sniffing its MIME type
// from content. The Handle is the cleaned path.
func FromPath(path string) (SelectableFile, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return SelectableFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SelectableFile{}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return SelectableFile{}, fmt.Errorf("detecting type of %s: %w", path, err)
	}

	return SelectableFile{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: BaseType(mtype.String()),
		Handle:   path,
	}, nil
}

// BaseType strips parameters such as "; charset=utf-8" from a media type.
func BaseType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mediaType
}
