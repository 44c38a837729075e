// Package classifier maps file names to display categories.
package classifier

import "strings"

type Category int

const (
	Other Category = iota
	Image
	Video
	Audio
)

func (c Category) String() string {
	return [...]string{
		"other",
		"image",
		"video",
		"audio",
	}[c]
}

// Previewable reports whether the category gets an inline viewer.
func (c Category) Previewable() bool {
	return c != Other
}

// Action is the caption of the primary button shown for a file.
func (c Category) Action() string {
	switch c {
	case Image:
		return "View"
	case Video, Audio:
		return "Play"
	default:
		return "Download"
	}
}

var categories = map[string]Category{
	"jpg": Image, "jpeg": Image, "png": Image, "gif": Image,
	"bmp": Image, "webp": Image, "svg": Image, "tiff": Image,

	"mp4": Video, "avi": Video, "mov": Video, "wmv": Video,
	"flv": Video, "webm": Video, "mkv": Video, "3gp": Video,

	"mp3": Audio, "wav": Audio, "ogg": Audio, "aac": Audio,
	"flac": Audio, "m4a": Audio, "wma": Audio,
}

type Classification struct {
	Category  Category
	Extension string
}

// Classify looks only at the text after the last dot. A name without a dot
// is its own extension, which never matches a known one.
func Classify(filename string) Classification {
	ext := filename
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		ext = filename[i+1:]
	}
	ext = strings.ToLower(ext)

	return Classification{
		Category:  categories[ext],
		Extension: ext,
	}
}
