package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tmdbx/internal/formatter"
	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/desertthunder/tmdbx/internal/tasks"
	"github.com/desertthunder/tmdbx/internal/ui"
	"github.com/urfave/cli/v3"
)

func listIDArg(cmd *cli.Command, name string) (models.ListID, error) {
	id, err := intArg(cmd, name)
	return models.ListID(id), err
}

// requireSession fails locally when no signed-in user is present.
func (r *Runner) requireSession() error {
	if err := r.requireState(); err != nil {
		return err
	}
	s := r.state.Snapshot().Session
	if !s.IsAuthenticated || s.SessionID == nil || s.User == nil {
		return fmt.Errorf("%w: run `tmdbx auth login` or `tmdbx auth approve` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// reportOperation prints the outcome of a list mutation and converts a failure into an error.
func (r *Runner) reportOperation(opID, success string) error {
	op, ok := r.state.Operation(opID)
	if !ok {
		return fmt.Errorf("%w: operation %s not recorded", shared.ErrInvalidResponse, opID)
	}
	defer r.state.ClearOperation(opID)

	if !op.Success {
		if op.Error != nil && *op.Error == "not authenticated" {
			return shared.ErrNotAuthenticated
		}
		return stateError(shared.ErrAPIRequest, op.Error)
	}
	return r.writePlain("✓ %s\n", success)
}

// ListsLs prints the signed-in user's lists.
func (r *Runner) ListsLs(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	r.state.GetUserLists(ctx)
	ul := r.state.Snapshot().Lists.UserLists
	if ul.Error != nil {
		return stateError(shared.ErrAPIRequest, ul.Error)
	}
	if ok, err := r.asJSON(cmd, ul.Items); ok {
		return err
	}

	r.writePlainHeader("Your Lists")
	if len(ul.Items) == 0 {
		return r.writePlain("No lists yet. Create one with `tmdbx lists create <name>`\n")
	}
	for _, l := range ul.Items {
		r.writePlain("%8s  %s (%d items)\n", l.ID, l.Name, l.ItemCount)
		if l.Description != "" {
			r.writePlain("          %s\n", l.Description)
		}
	}
	return r.writePlainln("Total: %d lists", ul.TotalResults)
}

// ListsShow prints one list's items, optionally narrowed with a fuzzy --filter.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	id, err := listIDArg(cmd, "id")
	if err != nil {
		return err
	}

	r.state.GetListDetails(ctx, id)
	snap := r.state.Snapshot().Lists
	if snap.CurrentList == nil {
		return stateError(shared.ErrListNotFound, snap.CurrentError)
	}
	list := *snap.CurrentList

	if q := strings.TrimSpace(cmd.String("filter")); q != "" {
		list.Items = ui.FilterMovies(q, list.Items)
	}
	if ok, err := r.asJSON(cmd, list); ok {
		return err
	}

	r.writePlainHeader(list.Name)
	if list.Description != "" {
		r.writePlain("%s\n\n", list.Description)
	}
	if len(list.Items) == 0 {
		return r.writePlain("No items\n")
	}
	for i, m := range list.Items {
		r.writePlain("%3d. %s (%s)  ★ %s  [id %d]\n", i+1, m.DisplayTitle(), m.Year(), m.Rating(), m.ID)
	}
	return nil
}

// ListsCreate creates a list.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: <name>", shared.ErrMissingArgument)
	}

	opID := r.state.CreateList(ctx, name, cmd.String("description"))
	op, _ := r.state.Operation(opID)
	return r.reportOperation(opID, fmt.Sprintf("Created list %q (id %s)", name, op.ListID))
}

// ListsUpdate renames a list or changes its description. Unset flags keep the current values.
func (r *Runner) ListsUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	id, err := listIDArg(cmd, "id")
	if err != nil {
		return err
	}
	if !cmd.IsSet("name") && !cmd.IsSet("description") {
		return fmt.Errorf("%w: pass --name or --description", shared.ErrMissingArgument)
	}

	r.state.GetListDetails(ctx, id)
	snap := r.state.Snapshot().Lists
	if snap.CurrentList == nil {
		return stateError(shared.ErrListNotFound, snap.CurrentError)
	}

	name, description := snap.CurrentList.Name, snap.CurrentList.Description
	if cmd.IsSet("name") {
		name = cmd.String("name")
	}
	if cmd.IsSet("description") {
		description = cmd.String("description")
	}

	opID := r.state.UpdateList(ctx, id, name, description)
	return r.reportOperation(opID, fmt.Sprintf("Updated list %s", id))
}

// ListsDelete deletes a list.
func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	id, err := listIDArg(cmd, "id")
	if err != nil {
		return err
	}

	opID := r.state.DeleteList(ctx, id)
	return r.reportOperation(opID, fmt.Sprintf("Deleted list %s", id))
}

// ListsAdd adds a movie to a list.
func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	listID, err := listIDArg(cmd, "list-id")
	if err != nil {
		return err
	}
	movieID, err := intArg(cmd, "movie-id")
	if err != nil {
		return err
	}

	opID := r.state.AddMovieToList(ctx, listID, movieID)
	return r.reportOperation(opID, fmt.Sprintf("Added movie %d to list %s", movieID, listID))
}

// ListsRemove removes a movie from a list.
func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	listID, err := listIDArg(cmd, "list-id")
	if err != nil {
		return err
	}
	movieID, err := intArg(cmd, "movie-id")
	if err != nil {
		return err
	}

	opID := r.state.RemoveMovieFromList(ctx, listID, movieID)
	return r.reportOperation(opID, fmt.Sprintf("Removed movie %d from list %s", movieID, listID))
}

// ListsExport writes one list to disk in the chosen format.
func (r *Runner) ListsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireState(); err != nil {
		return err
	}
	id, err := listIDArg(cmd, "id")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	r.state.GetListDetails(ctx, id)
	snap := r.state.Snapshot().Lists
	if snap.CurrentList == nil {
		return stateError(shared.ErrListNotFound, snap.CurrentError)
	}

	files, err := formatter.Write(snap.CurrentList, format, cmd.String("output"), r.config.TMDB.ImageBaseURL)
	if err != nil {
		return fmt.Errorf("failed to export list %s: %w", id, err)
	}

	r.writePlain("✓ Exported %q (%d items)\n", snap.CurrentList.Name, len(snap.CurrentList.Items))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// ListsExportAll exports every list of the signed-in user concurrently.
func (r *Runner) ListsExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	session := r.state.Snapshot().Session
	opts := tasks.BulkExportOpts{
		Format:       format,
		OutputDir:    cmd.String("output"),
		NumWorkers:   int(cmd.Int("workers")),
		RateLimit:    cmd.Float("rate"),
		ImageBaseURL: r.config.TMDB.ImageBaseURL,
		AccountID:    session.User.ID,
		SessionID:    *session.SessionID,
	}

	var recorder tasks.ExportRecorder
	if r.exports != nil {
		recorder = r.exports
	}
	exporter := tasks.NewListExporter(r.service, recorder, r.logger)

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if u.Total > 0 {
				r.writePlain("[%d/%d] %s\n", u.Step, u.Total, u.Message)
			} else {
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	result, err := exporter.ExportAll(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d lists to %s", result.SuccessfulExports, result.TotalLists, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %v\n", res.ListName, res.Error)
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d lists failed to export", shared.ErrAPIRequest, result.FailedExports)
	}
	return nil
}

// ListsHistory prints recorded bulk export runs for the signed-in account.
func (r *Runner) ListsHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if r.exports == nil {
		return errors.New("export history requires a database; run `tmdbx setup database`")
	}

	records, err := r.exports.ListByAccount(r.state.Snapshot().Session.User.ID, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load export history: %w", err)
	}
	if ok, err := r.asJSON(cmd, records); ok {
		return err
	}

	r.writePlainHeader("Export History")
	if len(records) == 0 {
		return r.writePlain("No exports yet\n")
	}
	for _, rec := range records {
		r.writePlain("%s  %-8s %d/%d lists  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Format, rec.Successful, rec.TotalLists, rec.OutputDir)
	}
	return nil
}
