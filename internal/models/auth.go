package models

import "fmt"

// RequestTokenResponse is the body of GET /authentication/token/new and validate_with_login.
type RequestTokenResponse struct {
	Success      bool   `json:"success"`
	ExpiresAt    string `json:"expires_at"`
	RequestToken string `json:"request_token"`
}

func (r *RequestTokenResponse) Validate() error {
	if r.RequestToken == "" {
		return fmt.Errorf("missing request_token")
	}
	return nil
}

// SessionResponse is the body of POST /authentication/session/new.
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
}

func (r *SessionResponse) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("missing session_id")
	}
	return nil
}

// LoginRequest is the body of POST /authentication/token/validate_with_login.
type LoginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	RequestToken string `json:"request_token"`
}

// SessionRequest is the body of POST /authentication/session/new.
type SessionRequest struct {
	RequestToken string `json:"request_token"`
}

// DeleteSessionRequest is the body of DELETE /authentication/session.
type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}
