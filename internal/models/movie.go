package models

import (
	"fmt"
	"strings"
	"time"
)

// MovieSummary is a movie or TV title as returned by listing and search endpoints.
//
// Movies carry Title/ReleaseDate while TV results carry Name/FirstAirDate; use [MovieSummary.DisplayTitle] and [MovieSummary.Date].
type MovieSummary struct {
	ID           int      `json:"id"`
	Title        *string  `json:"title,omitempty"`
	Name         *string  `json:"name,omitempty"`
	Overview     string   `json:"overview"`
	PosterPath   *string  `json:"poster_path"`
	BackdropPath *string  `json:"backdrop_path"`
	ReleaseDate  *string  `json:"release_date,omitempty"`
	FirstAirDate *string  `json:"first_air_date,omitempty"`
	VoteAverage  *float64 `json:"vote_average,omitempty"`
	VoteCount    *int     `json:"vote_count,omitempty"`
	Popularity   *float64 `json:"popularity,omitempty"`
	GenreIDs     []int    `json:"genre_ids,omitempty"`
	MediaType    *string  `json:"media_type,omitempty"`
}

func (m *MovieSummary) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("missing id")
	}
	return nil
}

// DisplayTitle returns the movie title, the TV name, or "Untitled".
func (m MovieSummary) DisplayTitle() string {
	if m.Title != nil && *m.Title != "" {
		return *m.Title
	}
	if m.Name != nil && *m.Name != "" {
		return *m.Name
	}
	return "Untitled"
}

// Date returns the release or first-air date, or "" when unknown.
func (m MovieSummary) Date() string {
	if m.ReleaseDate != nil && *m.ReleaseDate != "" {
		return *m.ReleaseDate
	}
	if m.FirstAirDate != nil {
		return *m.FirstAirDate
	}
	return ""
}

// Year returns the first four characters of [MovieSummary.Date], or "N/A".
func (m MovieSummary) Year() string {
	if d := m.Date(); len(d) >= 4 {
		return d[:4]
	}
	return "N/A"
}

// Rating formats the vote average with one decimal, or "N/A" when there are no votes.
func (m MovieSummary) Rating() string {
	if m.VoteAverage == nil || (m.VoteCount != nil && *m.VoteCount == 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *m.VoteAverage)
}

// Kind returns the media type, defaulting to "movie" for endpoints that omit it.
func (m MovieSummary) Kind() string {
	if m.MediaType == nil || *m.MediaType == "" {
		return "movie"
	}
	return *m.MediaType
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a studio credited on a title.
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// MovieDetails is the full record from GET /movie/{id}?append_to_response=videos,credits,reviews.
type MovieDetails struct {
	MovieSummary
	Genres              []Genre             `json:"genres"`
	Runtime             *int                `json:"runtime,omitempty"`
	Budget              *int64              `json:"budget,omitempty"`
	Revenue             *int64              `json:"revenue,omitempty"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage,omitempty"`
	IMDbID              *string             `json:"imdb_id,omitempty"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	Credits             *Credits            `json:"credits,omitempty"`
	Videos              *VideoResults       `json:"videos,omitempty"`
	Reviews             *Page[Review]       `json:"reviews,omitempty"`
}

func (m *MovieDetails) Validate() error {
	if err := m.MovieSummary.Validate(); err != nil {
		return err
	}
	if m.Reviews != nil {
		return m.Reviews.Validate()
	}
	return nil
}

// GenreNames returns the genre names joined with ", ".
func (m MovieDetails) GenreNames() string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// RuntimeString formats runtime as "2h 15m", or "N/A".
func (m MovieDetails) RuntimeString() string {
	if m.Runtime == nil || *m.Runtime <= 0 {
		return "N/A"
	}
	h, mins := *m.Runtime/60, *m.Runtime%60
	if h == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", h, mins)
}

// Trailers returns the YouTube trailers and teasers among the appended videos.
func (m MovieDetails) Trailers() []Video {
	if m.Videos == nil {
		return []Video{}
	}
	return YouTubeTrailers(m.Videos.Results)
}

// Cast is a credited performer.
type Cast struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// Crew is a credited crew member.
type Crew struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

// Credits holds cast and crew.
type Credits struct {
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

// Directors returns crew members whose job is Director.
func (c Credits) Directors() []Crew {
	var out []Crew
	for _, cr := range c.Crew {
		if cr.Job == "Director" {
			out = append(out, cr)
		}
	}
	return out
}

// TopCast returns at most n cast members in billing order.
func (c Credits) TopCast(n int) []Cast {
	if n >= len(c.Cast) {
		return c.Cast
	}
	return c.Cast[:n]
}

// Video is a clip attached to a title.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// URL returns a watch link for YouTube videos, or "".
func (v Video) URL() string {
	if !strings.EqualFold(v.Site, "youtube") || v.Key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + v.Key
}

// VideoResults is the body of GET /movie/{id}/videos.
type VideoResults struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

func (v *VideoResults) Validate() error { return nil }

// YouTubeTrailers keeps videos hosted on YouTube whose type is Trailer or Teaser.
func YouTubeTrailers(videos []Video) []Video {
	out := []Video{}
	for _, v := range videos {
		if !strings.EqualFold(v.Site, "youtube") {
			continue
		}
		if strings.EqualFold(v.Type, "trailer") || strings.EqualFold(v.Type, "teaser") {
			out = append(out, v)
		}
	}
	return out
}

// Review is a user review of a title.
type Review struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url,omitempty"`
}

func (r *Review) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("review missing id")
	}
	return nil
}

// FormatReviewDate renders an RFC 3339 timestamp as "January 2, 2006", returning the input unchanged when it cannot be parsed.
func FormatReviewDate(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}

// GenreList is the body of GET /genre/movie/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

func (g *GenreList) Validate() error { return nil }
