package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/server"
	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/desertthunder/tmdbx/internal/store"
	"github.com/urfave/cli/v3"
)

const approvalTimeout = 2 * time.Minute

// AuthLogin runs the three-step username/password login and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	username := cmd.String("username")
	password := cmd.String("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password (or TMDBX_PASSWORD) are required", shared.ErrMissingArgument)
	}

	r.logger.Info("signing in", "username", username)
	r.state.Login(ctx, username, password)

	return r.reportSignIn(r.state.Snapshot().Session)
}

// AuthApprove signs in through TMDB's browser approval page.
//
// A local callback server receives the redirect, so the request token never has to be pasted back.
func (r *Runner) AuthApprove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	r.state.GetRequestToken(ctx)
	snap := r.state.Snapshot().Session
	if snap.Error != nil {
		return stateError(shared.ErrAuthFailed, snap.Error)
	}
	if snap.RequestToken == nil {
		return fmt.Errorf("%w: no request token issued", shared.ErrAuthFailed)
	}
	token := *snap.RequestToken

	handler := server.NewApprovalHandler(token)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	cb, err := server.Listen(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return fmt.Errorf("%w: failed to start callback server: %v", shared.ErrServiceUnavailable, err)
	}
	defer cb.Shutdown()

	approvalURL := services.ApprovalURL(token, fmt.Sprintf("http://%s%s", cb.Addr(), server.ApprovalPath))

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to approve tmdbx:\n%s\n", approvalURL)
	} else if err := r.openURL(approvalURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to approve tmdbx:\n%s\n", approvalURL)
	} else {
		r.writePlain("Waiting for approval in your browser...\n")
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = approvalTimeout
	}

	select {
	case res := <-handler.Result():
		if err := res.Error(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		r.state.CompleteApproval(ctx, res.RequestToken)
	case err := <-cb.Errors():
		return fmt.Errorf("%w: callback server failed: %v", shared.ErrServiceUnavailable, err)
	case <-time.After(timeout):
		return fmt.Errorf("%w: no approval after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	return r.reportSignIn(r.state.Snapshot().Session)
}

func (r *Runner) reportSignIn(s store.Session) error {
	if !s.IsAuthenticated {
		return stateError(shared.ErrAuthFailed, s.Error)
	}
	name := "User"
	if s.User != nil {
		name = s.User.Username
	}
	return r.writePlain("✓ Signed in as %s\n", name)
}

// AuthLogout deletes the session remotely (best effort) and forgets it locally.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	if !r.state.Snapshot().Session.IsAuthenticated {
		return r.writePlain("Not signed in\n")
	}

	r.state.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

type authStatus struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.UserProfile `json:"user,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// AuthStatus verifies the stored session against the API and prints the signed-in user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}

	id := r.state.Snapshot().Session.SessionID
	stored := id != nil
	if stored {
		r.state.RestoreSession(ctx, *id)
	}

	snap := r.state.Snapshot().Session
	status := authStatus{Authenticated: snap.IsAuthenticated, User: snap.User}
	if snap.Error != nil {
		status.Error = *snap.Error
	}

	if ok, err := r.asJSON(cmd, status); ok {
		return err
	}

	if !snap.IsAuthenticated {
		r.writePlain("Authentication: ✗ Not signed in\n")
		if status.Error != "" {
			r.writePlain("Reason: %s\n", status.Error)
		}
		if stored {
			return stateError(shared.ErrSessionExpired, snap.Error)
		}
		return nil
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	if u := snap.User; u != nil {
		r.writePlain("User: %s (%s)\n", u.Username, u.Name)
		r.writePlain("Account ID: %d\n", u.ID)
	}
	return nil
}
