package models

import "fmt"

// Account is the raw body of GET /account.
type Account struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	IncludeAdult bool   `json:"include_adult"`
	ISO6391      string `json:"iso_639_1"`
	ISO31661     string `json:"iso_3166_1"`
	Avatar       struct {
		Gravatar struct {
			Hash string `json:"hash"`
		} `json:"gravatar"`
		TMDB struct {
			AvatarPath *string `json:"avatar_path"`
		} `json:"tmdb"`
	} `json:"avatar"`
}

func (a *Account) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("account missing id")
	}
	return nil
}

// Profile maps the account onto a [UserProfile].
//
// Username falls back to "User"; name falls back to the username.
func (a Account) Profile() UserProfile {
	username := a.Username
	if username == "" {
		username = "User"
	}
	name := a.Name
	if name == "" {
		name = username
	}
	return UserProfile{
		ID:       a.ID,
		Username: username,
		Name:     name,
		Avatar:   a.Avatar.TMDB.AvatarPath,
	}
}

// UserProfile is the signed-in user held in session state and persisted under the tmdbUser key.
type UserProfile struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar,omitempty"`
}

func (u *UserProfile) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("user missing id")
	}
	return nil
}
