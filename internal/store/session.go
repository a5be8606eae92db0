package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/repositories"
	"github.com/desertthunder/tmdbx/internal/services"
)

const (
	msgTokenFailed    = "Failed to get request token"
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgSessionInvalid = "Session expired or invalid"
)

// AuthPhase is a step of the authentication state machine.
type AuthPhase string

const (
	PhaseAnonymous      AuthPhase = "anonymous"
	PhaseTokenRequested AuthPhase = "token_requested"
	PhaseLoggingIn      AuthPhase = "logging_in"
	PhaseRestoring      AuthPhase = "restoring"
	PhaseAuthenticated  AuthPhase = "authenticated"
)

// Session is the authentication slice.
//
// IsAuthenticated is true exactly when SessionID is set.
type Session struct {
	SessionID       *string
	RequestToken    *string
	User            *models.UserProfile
	IsAuthenticated bool
	Loading         bool
	Phase           AuthPhase
	Error           *string
}

func (s Session) clone() Session {
	s.SessionID = clonePtr(s.SessionID)
	s.RequestToken = clonePtr(s.RequestToken)
	if s.User != nil {
		u := *s.User
		u.Avatar = clonePtr(u.Avatar)
		s.User = &u
	}
	s.Error = clonePtr(s.Error)
	return s
}

// setSession keeps IsAuthenticated in step with SessionID. Callers hold mu.
func (s *State) setSession(id *string, user *models.UserProfile) {
	s.session.SessionID = id
	s.session.User = user
	s.session.IsAuthenticated = id != nil
	if id != nil {
		s.session.Phase = PhaseAuthenticated
	} else {
		s.session.Phase = PhaseAnonymous
	}
}

// Hydrate loads the persisted session and user.
//
// It returns the stored session id, or "" when none is persisted. The session counts as
// authenticated until [State.RestoreSession] proves otherwise.
func (s *State) Hydrate() (string, error) {
	if s.storage == nil {
		return "", nil
	}

	id, ok, err := s.storage.Get(repositories.SessionKey)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return "", nil
	}

	var user *models.UserProfile
	raw, ok, err := s.storage.Get(repositories.UserKey)
	if err != nil {
		return "", err
	}
	if ok {
		var u models.UserProfile
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn("ignoring malformed persisted user", "error", err)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.setSession(&id, user)
	s.mu.Unlock()

	s.logger.Debug("hydrated session", "has_user", user != nil)
	return id, nil
}

// GetRequestToken requests a new token and stores it on the session.
func (s *State) GetRequestToken(ctx context.Context) {
	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.mu.Unlock()

	token, err := s.requestToken(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Loading = false
	if err != nil {
		s.session.Error = errMessage(err, msgTokenFailed)
		return
	}
	s.session.RequestToken = &token
	if !s.session.IsAuthenticated {
		s.session.Phase = PhaseTokenRequested
	}
}

func (s *State) requestToken(ctx context.Context) (string, error) {
	resp, err := s.svc.RequestToken(ctx)
	if err != nil {
		s.logger.Warn("request token failed", "error", err)
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Status != 500 {
			return "", apiErr
		}
		return "", errors.New(msgTokenFailed)
	}
	return resp.RequestToken, nil
}

// Login runs the token, validate, session, account chain.
//
// An existing request token is reused. Any failure aborts the chain with a single message
// and keeps the token obtained so far.
func (s *State) Login(ctx context.Context, username, password string) {
	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.session.Phase = PhaseLoggingIn
	token := ""
	if s.session.RequestToken != nil {
		token = *s.session.RequestToken
	}
	s.mu.Unlock()

	fail := func(msg string) {
		s.forgetIfSignedIn()
		s.mu.Lock()
		defer s.mu.Unlock()
		s.session.Loading = false
		s.session.Error = &msg
		s.setSession(nil, nil)
		if s.session.RequestToken != nil {
			s.session.Phase = PhaseTokenRequested
		}
	}

	if token == "" {
		t, err := s.requestToken(ctx)
		if err != nil {
			fail(msgTokenFailed)
			return
		}
		token = t
		s.mu.Lock()
		s.session.RequestToken = &token
		s.mu.Unlock()
	}

	validated, err := s.svc.ValidateWithLogin(ctx, username, password, token)
	if err != nil {
		s.logger.Warn("login validation failed", "username", username, "error", err)
		fail(loginMessage(err))
		return
	}

	if err := s.completeSession(ctx, validated.RequestToken); err != nil {
		fail(loginMessage(err))
	}
}

// CompleteApproval exchanges a token approved in the browser for a session.
func (s *State) CompleteApproval(ctx context.Context, token string) {
	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.session.Phase = PhaseLoggingIn
	s.session.RequestToken = &token
	s.mu.Unlock()

	if err := s.completeSession(ctx, token); err != nil {
		s.forgetIfSignedIn()
		msg := loginMessage(err)
		s.mu.Lock()
		s.session.Loading = false
		s.session.Error = &msg
		s.setSession(nil, nil)
		s.session.Phase = PhaseTokenRequested
		s.mu.Unlock()
	}
}

// completeSession creates a session from an approved token, fetches the account, persists both and
// marks the session authenticated.
func (s *State) completeSession(ctx context.Context, token string) error {
	sess, err := s.svc.CreateSession(ctx, token)
	if err != nil {
		s.logger.Warn("create session failed", "error", err)
		return err
	}

	account, err := s.svc.AccountDetails(ctx, sess.SessionID)
	if err != nil {
		s.logger.Warn("account lookup failed", "error", err)
		return err
	}

	profile := account.Profile()
	s.persist(sess.SessionID, &profile)

	id := sess.SessionID
	s.mu.Lock()
	s.session.Loading = false
	s.setSession(&id, &profile)
	s.verified = true
	s.mu.Unlock()

	s.logger.Info("logged in", "username", profile.Username)
	return nil
}

// Logout deletes the remote session on a best-effort basis and always clears local state.
func (s *State) Logout(ctx context.Context) {
	s.mu.Lock()
	var id string
	if s.session.SessionID != nil {
		id = *s.session.SessionID
	}
	s.mu.Unlock()

	if id != "" {
		if err := s.svc.DeleteSession(ctx, id); err != nil {
			s.logger.Warn("remote session delete failed", "error", err)
		}
	}

	s.forget()

	s.mu.Lock()
	s.session.RequestToken = nil
	s.session.Loading = false
	s.setSession(nil, nil)
	s.verified = false
	s.lists = newListState()
	s.mu.Unlock()
}

// RestoreSession confirms a persisted session id by fetching its account.
//
// It is a no-op while another auth action is loading or once the session has been confirmed.
// Transient failures are retried with exponential backoff; rejections evict immediately.
func (s *State) RestoreSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	if s.session.Loading || (s.session.IsAuthenticated && s.verified) || sessionID == "" {
		s.mu.Unlock()
		return
	}
	s.session.Loading = true
	s.session.Phase = PhaseRestoring
	s.mu.Unlock()

	account, err := s.fetchAccountWithRetry(ctx, sessionID)
	if err != nil && abandoned(ctx, err) {
		s.logger.Debug("session restore abandoned", "error", err)
		s.mu.Lock()
		s.session.Loading = false
		s.setSession(s.session.SessionID, s.session.User)
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logger.Warn("session restore failed", "error", err)
		s.forget()

		msg := msgSessionInvalid
		s.mu.Lock()
		s.session.Loading = false
		s.session.Error = &msg
		s.setSession(nil, nil)
		s.verified = false
		s.mu.Unlock()
		return
	}

	profile := account.Profile()
	s.persist(sessionID, &profile)

	s.mu.Lock()
	s.session.Loading = false
	s.setSession(&sessionID, &profile)
	s.verified = true
	s.mu.Unlock()
}

// abandoned reports whether err comes from the caller giving up rather than from the API.
func abandoned(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// loginMessage prefers the API's status_message over the generic failure text.
func loginMessage(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.StatusMessage() != "" {
		return apiErr.StatusMessage()
	}
	return msgLoginFailed
}

func (s *State) fetchAccountWithRetry(ctx context.Context, sessionID string) (*models.Account, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.restore.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = s.restore.MaxInterval
	exp.Reset()

	attempts := 0
	for {
		account, err := s.svc.AccountDetails(ctx, sessionID)
		if err == nil {
			return account, nil
		}
		if !services.IsTransient(err) {
			return nil, err
		}

		attempts++
		if attempts >= s.restore.Attempts {
			return nil, err
		}

		wait := exp.NextBackOff()
		s.logger.Debug("retrying session restore", "attempt", attempts, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// ClearError resets the session error.
func (s *State) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Error = nil
}

func (s *State) persist(sessionID string, user *models.UserProfile) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("failed to encode user", "error", err)
		return
	}
	if err := s.storage.SetMany(map[string]string{
		repositories.SessionKey: sessionID,
		repositories.UserKey:    string(data),
	}); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}
}

func (s *State) forget() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(repositories.SessionKey, repositories.UserKey); err != nil {
		s.logger.Error("failed to clear persisted session", "error", err)
	}
}

// forgetIfSignedIn drops the persisted keys when a session is held, so a failed sign-in
// does not come back on the next start.
func (s *State) forgetIfSignedIn() {
	s.mu.Lock()
	held := s.session.SessionID != nil
	s.mu.Unlock()
	if held {
		s.forget()
	}
}

// sessionUser returns the session id and account id, or ok=false when either is missing.
func (s *State) sessionUser() (sessionID string, accountID int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.SessionID == nil || s.session.User == nil {
		return "", 0, false
	}
	return *s.session.SessionID, s.session.User.ID, true
}
