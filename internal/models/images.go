package models

import "strings"

// DefaultImageBaseURL is TMDB's image CDN root.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// ImageSize is a TMDB image size segment.
type ImageSize string

const (
	PosterSmall  ImageSize = "w200"
	PosterMedium ImageSize = "w500"
	PosterLarge  ImageSize = "original"

	BackdropSmall    ImageSize = "w300"
	BackdropMedium   ImageSize = "w780"
	BackdropLarge    ImageSize = "w1280"
	BackdropOriginal ImageSize = "original"
)

// ImageURL joins base, size and path into a full image URL, or returns "" when path is missing.
func ImageURL(base string, size ImageSize, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + string(size) + "/" + strings.TrimLeft(*path, "/")
}

// PosterURL returns the poster URL for m at size.
func (m MovieSummary) PosterURL(base string, size ImageSize) string {
	return ImageURL(base, size, m.PosterPath)
}

// BackdropURL returns the backdrop URL for m at size.
func (m MovieSummary) BackdropURL(base string, size ImageSize) string {
	return ImageURL(base, size, m.BackdropPath)
}
