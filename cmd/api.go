package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// parseParams turns repeated key=value flags into query parameters.
func parseParams(raw []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: --param %q must be key=value", shared.ErrInvalidFlag, p)
		}
		params.Add(strings.TrimSpace(k), v)
	}
	return params, nil
}

// withSession adds the stored session_id when --session is set.
func (r *Runner) withSession(cmd *cli.Command, params url.Values) error {
	if !cmd.Bool("session") {
		return nil
	}
	if r.state == nil {
		return fmt.Errorf("%w: --session needs a stored session", shared.ErrNotAuthenticated)
	}
	s := r.state.Snapshot().Session
	if s.SessionID == nil {
		return fmt.Errorf("%w: --session needs a stored session", shared.ErrNotAuthenticated)
	}
	params.Set("session_id", *s.SessionID)
	return nil
}

func apiPath(cmd *cli.Command) (string, error) {
	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return "", fmt.Errorf("%w: <path>", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// writeResult prints a result body, indented unless compact is set.
func (r *Runner) writeResult(res *services.Result, compact bool) error {
	if !res.OK() {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, res.Status, res.Error)
	}

	var data any
	if err := json.Unmarshal(res.Data, &data); err != nil {
		r.output.Write(res.Data)
		r.output.Write([]byte("\n"))
		return nil
	}
	return r.writeJSON(data, !compact)
}

// APIGet makes a direct GET request to TMDB
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}
	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}
	if err := r.withSession(cmd, params); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)
	return r.writeResult(r.client.Get(ctx, path, params), cmd.Bool("json"))
}

// APIPost makes a direct POST request to TMDB
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	path, err := apiPath(cmd)
	if err != nil {
		return err
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	var body any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	params := url.Values{}
	if err := r.withSession(cmd, params); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)
	return r.writeResult(r.client.Post(ctx, path, params, body), false)
}

type dumpEntry struct {
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

// apiDump is the combined output of [Runner.APIDump].
type apiDump struct {
	Configuration any         `json:"configuration,omitempty"`
	Genres        any         `json:"genres,omitempty"`
	Account       any         `json:"account,omitempty"`
	Lists         any         `json:"lists,omitempty"`
	Errors        []dumpEntry `json:"errors,omitempty"`
}

// APIDump fetches the API configuration, the genre catalogue and, when signed in, the account and its lists.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	r.logger.Info("dumping API state")
	dump := apiDump{Errors: []dumpEntry{}}

	fetch := func(label, path string, params url.Values, dst *any) {
		r.writePlain("Fetching %s...\n", label)
		res := r.client.Get(ctx, path, params)
		if !res.OK() {
			dump.Errors = append(dump.Errors, dumpEntry{Endpoint: path, Error: res.Error})
			r.logger.Warn("dump request failed", "path", path, "status", res.Status, "error", res.Error)
			return
		}
		var v any
		if err := json.Unmarshal(res.Data, &v); err != nil {
			dump.Errors = append(dump.Errors, dumpEntry{Endpoint: path, Error: err.Error()})
			return
		}
		*dst = v
	}

	fetch("configuration", "/configuration", nil, &dump.Configuration)
	fetch("genres", "/genre/movie/list", nil, &dump.Genres)

	if r.state != nil {
		s := r.state.Snapshot().Session
		if s.SessionID != nil {
			params := url.Values{"session_id": {*s.SessionID}}
			fetch("account", "/account", params, &dump.Account)
			if s.User != nil {
				fetch("lists", fmt.Sprintf("/account/%d/lists", s.User.ID), params, &dump.Lists)
			}
		}
	}

	r.writePlain("\n✓ Dump complete\n\n")

	if cmd.Bool("save") {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, cmd.Bool("pretty"))
}

func (r *Runner) requireClient() error {
	if r.client == nil {
		return fmt.Errorf("%w: TMDB client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}
