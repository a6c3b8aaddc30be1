package scan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/mde/internal/phash"
)

// MediaFilter restricts which file types a scan considers.
type MediaFilter string

const (
	MediaAll    MediaFilter = "all"
	MediaImages MediaFilter = "images"
	MediaVideos MediaFilter = "videos"
)

// videoExtensions lists container formats that participate in exact matching
// only; there is no perceptual fingerprint for video.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// ParseMediaFilter validates a --media flag value.
func ParseMediaFilter(s string) (MediaFilter, error) {
	switch MediaFilter(strings.ToLower(s)) {
	case MediaAll:
		return MediaAll, nil
	case MediaImages:
		return MediaImages, nil
	case MediaVideos:
		return MediaVideos, nil
	default:
		return "", fmt.Errorf("unknown media filter %q (want all, images or videos)", s)
	}
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// matches reports whether a path passes the filter. MediaAll admits every
// supported media type; videos only ever participate in exact matching.
func (f MediaFilter) matches(path string) bool {
	switch f {
	case MediaImages:
		return phash.IsImageFile(path)
	case MediaVideos:
		return IsVideoFile(path)
	default:
		return phash.IsImageFile(path) || IsVideoFile(path)
	}
}
