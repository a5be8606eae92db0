package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMovieSummary(t *testing.T) {
	t.Run("Decode Movie", func(t *testing.T) {
		body := `{"id":550,"title":"Fight Club","poster_path":"/p.jpg","backdrop_path":null,"release_date":"1999-10-15","vote_average":8.4,"vote_count":100,"genre_ids":[18]}`
		var m MovieSummary
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		if m.DisplayTitle() != "Fight Club" {
			t.Errorf("expected Fight Club, got %s", m.DisplayTitle())
		}
		if m.Year() != "1999" {
			t.Errorf("expected 1999, got %s", m.Year())
		}
		if m.Rating() != "8.4" {
			t.Errorf("expected 8.4, got %s", m.Rating())
		}
		if m.BackdropPath != nil {
			t.Error("expected null backdrop to decode as nil")
		}
		if m.Kind() != "movie" {
			t.Errorf("expected movie kind, got %s", m.Kind())
		}
	})

	t.Run("Decode TV", func(t *testing.T) {
		body := `{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","media_type":"tv"}`
		var m MovieSummary
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		if m.DisplayTitle() != "Game of Thrones" {
			t.Errorf("expected Game of Thrones, got %s", m.DisplayTitle())
		}
		if m.Date() != "2011-04-17" {
			t.Errorf("expected 2011-04-17, got %s", m.Date())
		}
		if m.Rating() != "N/A" {
			t.Errorf("expected N/A rating, got %s", m.Rating())
		}
		if m.Kind() != "tv" {
			t.Errorf("expected tv kind, got %s", m.Kind())
		}
	})

	t.Run("Fallbacks", func(t *testing.T) {
		m := MovieSummary{ID: 1}
		if m.DisplayTitle() != "Untitled" {
			t.Errorf("expected Untitled, got %s", m.DisplayTitle())
		}
		if m.Year() != "N/A" {
			t.Errorf("expected N/A year, got %s", m.Year())
		}
		if m.PosterURL("", PosterSmall) != "" {
			t.Error("expected empty poster URL without a path")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (&MovieSummary{}).Validate(); err == nil {
			t.Error("expected error for missing id")
		}
		if err := (&MovieSummary{ID: 3}).Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestPage(t *testing.T) {
	t.Run("Validate Rejects Bad Result", func(t *testing.T) {
		body := `{"page":1,"total_pages":5,"total_results":90,"results":[{"id":1},{"title":"no id"}]}`
		var p Page[MovieSummary]
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if err := p.Validate(); err == nil {
			t.Error("expected validation error for result without id")
		}
	})

	t.Run("Validate Accepts Good Page", func(t *testing.T) {
		p := Page[MovieSummary]{Page: 1, TotalPages: 5, Results: []MovieSummary{{ID: 1}, {ID: 2}}}
		if err := p.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestMovieDetails(t *testing.T) {
	body := `{
		"id": 550, "title": "Fight Club", "runtime": 139, "budget": 63000000, "revenue": 100853753,
		"status": "Released", "tagline": "Mischief. Mayhem. Soap.",
		"genres": [{"id": 18, "name": "Drama"}, {"id": 53, "name": "Thriller"}],
		"credits": {"cast": [{"id": 819, "name": "Edward Norton", "character": "The Narrator"}], "crew": [{"id": 7467, "name": "David Fincher", "job": "Director"}]},
		"videos": {"results": [
			{"id": "a", "key": "k1", "site": "YouTube", "type": "Trailer"},
			{"id": "b", "key": "k2", "site": "Vimeo", "type": "Trailer"},
			{"id": "c", "key": "k3", "site": "YouTube", "type": "Featurette"},
			{"id": "d", "key": "k4", "site": "youtube", "type": "teaser"}
		]},
		"reviews": {"page": 1, "total_pages": 1, "results": [{"id": "r1", "author": "bob", "content": "great", "created_at": "2020-01-02T10:00:00.000Z"}]}
	}`

	var d MovieDetails
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid details, got %v", err)
	}

	t.Run("Embedded Summary", func(t *testing.T) {
		if d.DisplayTitle() != "Fight Club" {
			t.Errorf("expected Fight Club, got %s", d.DisplayTitle())
		}
	})

	t.Run("GenreNames", func(t *testing.T) {
		if d.GenreNames() != "Drama, Thriller" {
			t.Errorf("expected 'Drama, Thriller', got %s", d.GenreNames())
		}
	})

	t.Run("RuntimeString", func(t *testing.T) {
		if d.RuntimeString() != "2h 19m" {
			t.Errorf("expected 2h 19m, got %s", d.RuntimeString())
		}
	})

	t.Run("Trailers", func(t *testing.T) {
		trailers := d.Trailers()
		if len(trailers) != 2 {
			t.Fatalf("expected 2 trailers, got %d", len(trailers))
		}
		if trailers[0].Key != "k1" || trailers[1].Key != "k4" {
			t.Errorf("unexpected trailers: %+v", trailers)
		}
		if trailers[0].URL() != "https://www.youtube.com/watch?v=k1" {
			t.Errorf("unexpected trailer URL %s", trailers[0].URL())
		}
	})

	t.Run("Directors", func(t *testing.T) {
		directors := d.Credits.Directors()
		if len(directors) != 1 || directors[0].Name != "David Fincher" {
			t.Errorf("expected David Fincher, got %+v", directors)
		}
	})

	t.Run("Reviews", func(t *testing.T) {
		if d.Reviews == nil || len(d.Reviews.Results) != 1 {
			t.Fatal("expected one appended review")
		}
		if got := FormatReviewDate(d.Reviews.Results[0].CreatedAt); got != "January 2, 2020" {
			t.Errorf("expected January 2, 2020, got %s", got)
		}
	})
}

func TestYouTubeTrailers(t *testing.T) {
	if got := YouTubeTrailers(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestImageURL(t *testing.T) {
	tc := []struct {
		name string
		base string
		size ImageSize
		path *string
		want string
	}{
		{"default base", "", PosterMedium, Ptr("/abc.jpg"), "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"custom base with slash", "http://img/", BackdropLarge, Ptr("/b.jpg"), "http://img/w1280/b.jpg"},
		{"nil path", "", PosterSmall, nil, ""},
		{"empty path", "", PosterSmall, Ptr(""), ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageURL(tt.base, tt.size, tt.path); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Run("ListID Accepts Number And String", func(t *testing.T) {
		var a, b List
		if err := json.Unmarshal([]byte(`{"id": 42, "name": "a"}`), &a); err != nil {
			t.Fatalf("failed to decode numeric id: %v", err)
		}
		if err := json.Unmarshal([]byte(`{"id": "42", "name": "b"}`), &b); err != nil {
			t.Fatalf("failed to decode string id: %v", err)
		}
		if a.ID != 42 || b.ID != 42 {
			t.Errorf("expected both ids 42, got %d and %d", a.ID, b.ID)
		}
	})

	t.Run("ListID Rejects Garbage", func(t *testing.T) {
		var l List
		if err := json.Unmarshal([]byte(`{"id": "abc"}`), &l); err == nil {
			t.Error("expected error for non-numeric id")
		}
	})

	t.Run("MovieList Contains", func(t *testing.T) {
		ml := MovieList{List: List{ID: 1, Name: "x"}, Items: []MovieSummary{{ID: 99}}}
		if !ml.Contains(99) || ml.Contains(100) {
			t.Error("unexpected Contains result")
		}
		if err := ml.Validate(); err != nil {
			t.Errorf("expected valid list, got %v", err)
		}
	})

	t.Run("ListRequest Validate", func(t *testing.T) {
		if err := (ListRequest{}).Validate(); err == nil {
			t.Error("expected error for empty name")
		}
		if err := (ListRequest{Name: "   "}).Validate(); err == nil {
			t.Error("expected error for blank name")
		}
		if err := (ListRequest{Name: strings.Repeat("a", MaxListNameLength+1)}).Validate(); err == nil {
			t.Error("expected error for long name")
		}
		if err := (ListRequest{Name: "ok", Description: strings.Repeat("d", MaxListDescriptionLength+1)}).Validate(); err == nil {
			t.Error("expected error for long description")
		}
		if err := (ListRequest{Name: strings.Repeat("é", MaxListNameLength)}).Validate(); err != nil {
			t.Errorf("expected limit to count runes, got %v", err)
		}
	})
}

func TestAccount(t *testing.T) {
	t.Run("Profile Maps Avatar", func(t *testing.T) {
		body := `{"id": 7, "username": "alice", "name": "", "avatar": {"tmdb": {"avatar_path": "/a.png"}}}`
		var a Account
		if err := json.Unmarshal([]byte(body), &a); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		p := a.Profile()
		if p.Username != "alice" || p.Name != "alice" {
			t.Errorf("expected alice/alice, got %s/%s", p.Username, p.Name)
		}
		if p.Avatar == nil || *p.Avatar != "/a.png" {
			t.Errorf("expected avatar /a.png, got %v", p.Avatar)
		}
	})

	t.Run("Profile Defaults", func(t *testing.T) {
		p := Account{ID: 1}.Profile()
		if p.Username != "User" || p.Name != "User" {
			t.Errorf("expected User/User, got %s/%s", p.Username, p.Name)
		}
		if p.Avatar != nil {
			t.Error("expected nil avatar")
		}
	})
}

func TestAuthResponses(t *testing.T) {
	if err := (&RequestTokenResponse{}).Validate(); err == nil {
		t.Error("expected error for missing request token")
	}
	if err := (&SessionResponse{Success: true}).Validate(); err == nil {
		t.Error("expected error for missing session id")
	}
	if err := (&SessionResponse{SessionID: "s"}).Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStatusResponse(t *testing.T) {
	if !(&StatusResponse{}).Succeeded() {
		t.Error("expected absent flag to count as success")
	}
	if (&StatusResponse{Success: Ptr(false)}).Succeeded() {
		t.Error("expected explicit false to fail")
	}
}
