// package youtube parses YouTube URLs and builds watch, embed, and thumbnail
// URLs from video ids. Everything here is a pure string transformation; no
// network calls.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

// URL kinds accepted by [URL].
const (
	KindVideo    = "video"
	KindShort    = "short"
	KindEmbed    = "embed"
	KindNoCookie = "nocookie"
)

// DefaultQuality is the thumbnail quality used when none is given.
const DefaultQuality = "hqdefault"

// Recognized URL shapes, tried in order. The anchored bare-id pattern comes
// last so full URLs never fall through to it.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube-nocookie\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

var baseURLs = map[string]string{
	KindVideo:    "https://www.youtube.com/watch?v=",
	KindShort:    "https://youtu.be/",
	KindEmbed:    "https://www.youtube.com/embed/",
	KindNoCookie: "https://www.youtube-nocookie.com/embed/",
}

const thumbnailBase = "https://img.youtube.com/vi/"

// Thumbnail qualities YouTube serves, smallest to largest. maxresdefault is
// not available for every video.
var thumbnailQualities = []string{"default", "mqdefault", "hqdefault", "sddefault", "maxresdefault"}

// Video aggregates every derived form for one video id.
type Video struct {
	ID           string            `json:"video_id"`
	WatchURL     string            `json:"video_url"`
	ShortURL     string            `json:"short_url"`
	EmbedURL     string            `json:"embed_url"`
	NoCookieURL  string            `json:"nocookie_url"`
	ThumbnailURL string            `json:"thumbnail_url"`
	Thumbnails   map[string]string `json:"all_thumbnails"`
}

// ExtractVideoID pulls the 11 character video id out of a watch, short,
// embed, or nocookie URL, or accepts a bare id. It returns the empty string
// when nothing matches.
func ExtractVideoID(urlOrID string) string {
	urlOrID = strings.TrimSpace(urlOrID)
	if urlOrID == "" {
		return ""
	}

	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(urlOrID); match != nil {
			return match[1]
		}
	}
	return ""
}

// IsValidVideoID reports whether s is exactly an 11 character video id.
func IsValidVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// URL builds the URL of the given kind for a video id. Invalid ids and
// unknown kinds return the empty string.
func URL(videoID, kind string) string {
	if !IsValidVideoID(videoID) {
		return ""
	}
	base, ok := baseURLs[kind]
	if !ok {
		return ""
	}
	return base + videoID
}

// ThumbnailURL builds the thumbnail URL for a video id. Unknown or empty
// qualities fall back to [DefaultQuality]; an invalid id returns the empty
// string.
func ThumbnailURL(videoID, quality string) string {
	if !IsValidVideoID(videoID) {
		return ""
	}
	if !validQuality(quality) {
		quality = DefaultQuality
	}
	return thumbnailBase + videoID + "/" + quality + ".jpg"
}

// AllThumbnailURLs returns every quality to URL pair for a video id, or nil
// when the id is invalid.
func AllThumbnailURLs(videoID string) map[string]string {
	if !IsValidVideoID(videoID) {
		return nil
	}
	urls := make(map[string]string, len(thumbnailQualities))
	for _, quality := range thumbnailQualities {
		urls[quality] = thumbnailBase + videoID + "/" + quality + ".jpg"
	}
	return urls
}

func validQuality(quality string) bool {
	for _, q := range thumbnailQualities {
		if q == quality {
			return true
		}
	}
	return false
}

// Parse extracts the video id from a URL and derives every URL form and
// thumbnail for it. It returns nil when no id can be extracted.
func Parse(rawURL string) *Video {
	videoID := ExtractVideoID(rawURL)
	if videoID == "" {
		return nil
	}

	return &Video{
		ID:           videoID,
		WatchURL:     URL(videoID, KindVideo),
		ShortURL:     URL(videoID, KindShort),
		EmbedURL:     URL(videoID, KindEmbed),
		NoCookieURL:  URL(videoID, KindNoCookie),
		ThumbnailURL: ThumbnailURL(videoID, DefaultQuality),
		Thumbnails:   AllThumbnailURLs(videoID),
	}
}

// VideoParams returns the query parameters of a YouTube URL. Non YouTube
// hosts and unparseable URLs return nil; a YouTube URL without a query
// returns an empty set.
func VideoParams(rawURL string) url.Values {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	if !strings.Contains(parsed.Host, "youtube.com") && !strings.Contains(parsed.Host, "youtu.be") {
		return nil
	}
	if parsed.RawQuery == "" {
		return url.Values{}
	}
	return parsed.Query()
}
