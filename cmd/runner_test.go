package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tmdbx/internal/repositories"
	"github.com/desertthunder/tmdbx/internal/services"
	"github.com/desertthunder/tmdbx/internal/shared"
	"github.com/desertthunder/tmdbx/internal/store"
	tu "github.com/desertthunder/tmdbx/internal/testing"
)

const (
	popularBody = `{"page":1,"total_pages":3,"total_results":41,"results":[
		{"id":348,"title":"Alien","release_date":"1979-05-25","vote_average":8.1,"vote_count":14000},
		{"id":949,"title":"Heat","release_date":"1995-12-15","vote_average":7.9,"vote_count":7000}]}`
	listBody = `{"id":3,"name":"Faves","description":"Best of","item_count":2,"created_by":"alice","items":[
		{"id":348,"title":"Alien","release_date":"1979-05-25","vote_average":8.1},
		{"id":949,"title":"Heat","release_date":"1995-12-15","vote_average":7.9}]}`
	accountBody = `{"id":7,"username":"alice","name":"Alice"}`
)

type cliFixture struct {
	runner  *Runner
	fake    *tu.FakeTMDB
	output  *bytes.Buffer
	storage *repositories.StorageRepository
}

// newCLIFixture wires a runner to a fake TMDB server and an in-memory database.
// With signedIn set, a session for user 7 is persisted and hydrated.
func newCLIFixture(t *testing.T, signedIn bool) *cliFixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := tu.NewFakeTMDB(t)
	logger := shared.NewLogger(io.Discard)
	client := services.NewClient(services.ClientOpts{BaseURL: fake.URL, APIKey: "test-key", Logger: logger})
	storage := repositories.NewStorageRepository(db)

	if signedIn {
		if err := storage.SetMany(map[string]string{
			repositories.SessionKey: "sess-1",
			repositories.UserKey:    `{"id":7,"username":"alice","name":"Alice"}`,
		}); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}

	state := store.New(store.Opts{
		Service: client,
		Storage: storage,
		Restore: store.RestoreOpts{Attempts: 1, BaseBackoff: time.Millisecond, MaxInterval: time.Millisecond},
		Logger:  logger,
	})
	if _, err := state.Hydrate(); err != nil {
		t.Fatalf("failed to hydrate: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Client:  client,
		State:   state,
		Exports: repositories.NewExportRepository(db),
		Logger:  logger,
		Output:  output,
		OpenURL: func(string) error { return errors.New("no browser in tests") },
	})
	return &cliFixture{runner: runner, fake: fake, output: output, storage: storage}
}

func (f *cliFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp(f.runner).Run(context.Background(), append([]string{"tmdbx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			client := services.NewClient(services.ClientOpts{})
			state := store.New(store.Opts{Service: client})

			runner := NewRunner(RunnerOpts{
				Config: config,
				Client: client,
				State:  state,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.service == nil {
				t.Error("expected service to default to the client")
			}
			if runner.state != state {
				t.Error("expected state to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without state commands fail", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			err := runner.requireState()
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "movies", "search", "lists", "api", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected command %d to be %q, got %q", i, want[i], cmd.Name)
			}
		}
	})

	t.Run("stateError", func(t *testing.T) {
		if err := stateError(shared.ErrAPIRequest, nil); err != shared.ErrAPIRequest {
			t.Errorf("expected bare sentinel, got %v", err)
		}

		msg := "Invalid API key"
		err := stateError(shared.ErrAPIRequest, &msg)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected wrapped ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("expected message %q in %v", msg, err)
		}
	})
}

func TestMoviesCommands(t *testing.T) {
	t.Run("Popular", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/movie/popular", 200, popularBody)

		if err := f.run(t, "movies", "popular"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "Popular Movies")
		tu.AssertContains(t, out, "Alien (1979)  ★ 8.1")
		tu.AssertContains(t, out, "Page 1 of 3 (41 results)")
	})

	t.Run("Popular JSON", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/movie/popular", 200, popularBody)

		if err := f.run(t, "movies", "popular", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var page struct {
			Results []struct {
				ID int `json:"id"`
			}
			TotalResults int
		}
		if err := json.Unmarshal(f.output.Bytes(), &page); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", f.output.String(), err)
		}
		if len(page.Results) != 2 || page.TotalResults != 41 {
			t.Errorf("expected 2 results of 41, got %+v", page)
		}
	})

	t.Run("API Error", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/movie/popular", 401, `{"success":false,"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`)

		err := f.run(t, "movies", "popular")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		tu.AssertContains(t, err.Error(), "Invalid API key")
	})

	t.Run("Genre", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.Handle("GET", "/discover/movie", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("with_genres"); got != "28" {
				t.Errorf("expected with_genres 28, got %q", got)
			}
			io.WriteString(w, popularBody)
		})

		if err := f.run(t, "movies", "genre", "28"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertContains(t, f.output.String(), "Genre 28")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "movies", "show", "abc")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if n := len(f.fake.Calls()); n != 0 {
			t.Errorf("expected no requests, got %d", n)
		}
	})

	t.Run("Missing ID", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "movies", "reviews")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Show", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/movie/348", 200, `{"id":348,"title":"Alien","release_date":"1979-05-25","vote_average":8.1,
			"runtime":117,"tagline":"In space no one can hear you scream.","genres":[{"id":27,"name":"Horror"}],
			"credits":{"cast":[{"id":10205,"name":"Sigourney Weaver","character":"Ripley"}],
			"crew":[{"id":578,"name":"Ridley Scott","job":"Director"}]}}`)
		f.fake.JSON("GET", "/movie/348/videos", 200, `{"id":348,"results":[
			{"id":"v1","key":"LjLamj-b0I8","name":"Trailer","site":"YouTube","type":"Trailer"},
			{"id":"v2","key":"x","name":"Featurette","site":"Vimeo","type":"Featurette"}]}`)

		if err := f.run(t, "movies", "show", "348"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "Alien (1979)")
		tu.AssertContains(t, out, "In space no one can hear you scream.")
		tu.AssertContains(t, out, "Runtime:  1h 57m")
		tu.AssertContains(t, out, "Directed by Ridley Scott")
		tu.AssertContains(t, out, "Sigourney Weaver as Ripley")
		tu.AssertContains(t, out, "https://www.youtube.com/watch?v=LjLamj-b0I8")
		if strings.Contains(out, "Featurette") {
			t.Errorf("expected only YouTube trailers, got %q", out)
		}
	})

	t.Run("Show Not Found", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "movies", "show", "999")
		if !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Reviews", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/movie/348/reviews", 200, `{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":"r1","author":"bob","content":"  A classic.  ","created_at":"2021-03-04T10:00:00.000Z"}]}`)

		if err := f.run(t, "movies", "reviews", "348"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "bob, March 4, 2021")
		tu.AssertContains(t, out, "A classic.\n")
	})

	t.Run("Search Multi", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/search/multi", 200, `{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":2316,"name":"The Office","first_air_date":"2005-03-24","media_type":"tv"}]}`)

		if err := f.run(t, "search", "--multi", "office"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, `Results for "office"`)
		tu.AssertContains(t, out, "The Office (2005)")
		tu.AssertContains(t, out, "[tv]")
	})

	t.Run("Search Requires Query", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestListsCommands(t *testing.T) {
	t.Run("Requires Session", func(t *testing.T) {
		f := newCLIFixture(t, false)

		for _, args := range [][]string{
			{"lists", "ls"},
			{"lists", "create", "Faves"},
			{"lists", "add", "3", "348"},
			{"lists", "export-all"},
		} {
			err := f.run(t, args...)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("%v: expected ErrNotAuthenticated, got %v", args, err)
			}
		}
		if n := len(f.fake.Calls()); n != 0 {
			t.Errorf("expected no requests, got %v", f.fake.Calls())
		}
	})

	t.Run("Ls", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.Handle("GET", "/account/7/lists", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("session_id"); got != "sess-1" {
				t.Errorf("expected session_id sess-1, got %q", got)
			}
			io.WriteString(w, `{"page":1,"total_pages":1,"total_results":1,"results":[{"id":3,"name":"Faves","description":"Best of","item_count":2}]}`)
		})

		if err := f.run(t, "lists", "ls"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "Faves (2 items)")
		tu.AssertContains(t, out, "Total: 1 lists")
	})

	t.Run("Show Filter", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/list/3", 200, listBody)

		if err := f.run(t, "lists", "show", "--filter", "ALN", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "Faves")
		tu.AssertContains(t, out, "Alien (1979)")
		if strings.Contains(out, "Heat") {
			t.Errorf("expected Heat to be filtered out, got %q", out)
		}
	})

	t.Run("Show Not Found", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run(t, "lists", "show", "404")
		if !errors.Is(err, shared.ErrListNotFound) {
			t.Errorf("expected ErrListNotFound, got %v", err)
		}
	})

	t.Run("Create", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("POST", "/list", 201, `{"success":true,"status_code":1,"status_message":"The item/record was created successfully.","list_id":99}`)
		f.fake.JSON("GET", "/account/7/lists", 200, `{"page":1,"total_pages":1,"total_results":0,"results":[]}`)

		if err := f.run(t, "lists", "create", "-d", "Short ones", "Weekend"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertContains(t, f.output.String(), `✓ Created list "Weekend" (id 99)`)
		if ops := f.runner.state.Snapshot().Lists.Operations; len(ops) != 0 {
			t.Errorf("expected reported operation to be cleared, got %d", len(ops))
		}
	})

	t.Run("Create Name Too Long", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run(t, "lists", "create", strings.Repeat("x", 51))
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if n := f.fake.Count("POST", "/list"); n != 0 {
			t.Errorf("expected no create request, got %d", n)
		}
	})

	t.Run("Add Failure", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("POST", "/list/3/add_item", 403, `{"success":false,"status_code":8,"status_message":"Duplicate entry: The data you tried to submit already exists."}`)

		err := f.run(t, "lists", "add", "3", "348")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		tu.AssertContains(t, err.Error(), "Duplicate entry")
	})

	t.Run("Update Keeps Unset Fields", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/list/3", 200, listBody)
		f.fake.JSON("GET", "/account/7/lists", 200, `{"page":1,"total_pages":1,"total_results":0,"results":[]}`)
		body := make(chan map[string]string, 1)
		f.fake.Handle("POST", "/list/3", func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			body <- req
			io.WriteString(w, `{"success":true,"status_code":12,"status_message":"The item/record was updated successfully."}`)
		})

		if err := f.run(t, "lists", "update", "--name", "Favourites", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := <-body
		if req["name"] != "Favourites" || req["description"] != "Best of" {
			t.Errorf("expected renamed list keeping its description, got %v", req)
		}
	})

	t.Run("Export", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/list/3", 200, listBody)
		dir := t.TempDir()

		if err := f.run(t, "lists", "export", "--format", "csv", "--output", dir, "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertContains(t, f.output.String(), `✓ Exported "Faves" (2 items)`)
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) == 0 {
			t.Errorf("expected exported files in %s, got %d (%v)", dir, len(entries), err)
		}
	})

	t.Run("Export Bad Format", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run(t, "lists", "export", "--format", "xml", "3")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Export All And History", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/account/7/lists", 200, `{"page":1,"total_pages":1,"total_results":1,"results":[{"id":3,"name":"Faves","item_count":2}]}`)
		f.fake.JSON("GET", "/list/3", 200, listBody)
		dir := filepath.Join(t.TempDir(), "out")

		if err := f.run(t, "lists", "export-all", "--output", dir, "--rate", "100"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertContains(t, f.output.String(), "Exported 1 of 1 lists")
		tu.AssertDirExists(t, dir)

		f.output.Reset()
		if err := f.run(t, "lists", "history", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var records []struct {
			AccountID  int    `json:"account_id"`
			OutputDir  string `json:"output_dir"`
			Successful int    `json:"successful"`
		}
		if err := json.Unmarshal(f.output.Bytes(), &records); err != nil {
			t.Fatalf("expected JSON history, got %q: %v", f.output.String(), err)
		}
		if len(records) != 1 || records[0].AccountID != 7 || records[0].Successful != 1 || records[0].OutputDir != dir {
			t.Errorf("expected one recorded run for account 7, got %+v", records)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Status Anonymous", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run(t, "auth", "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var status authStatus
		if err := json.Unmarshal(f.output.Bytes(), &status); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", f.output.String(), err)
		}
		if status.Authenticated || status.User != nil {
			t.Errorf("expected anonymous status, got %+v", status)
		}
	})

	t.Run("Status Verifies Session", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/account", 200, accountBody)

		if err := f.run(t, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, "✓ Signed in")
		tu.AssertContains(t, out, "User: alice (Alice)")
		if n := f.fake.Count("GET", "/account"); n != 1 {
			t.Errorf("expected 1 account request, got %d", n)
		}
	})

	t.Run("Status Expired Session", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("GET", "/account", 401, `{"success":false,"status_code":3,"status_message":"Authentication failed: You do not have permissions to access the service."}`)

		err := f.run(t, "auth", "status")
		if !errors.Is(err, shared.ErrSessionExpired) {
			t.Errorf("expected ErrSessionExpired, got %v", err)
		}

		tu.AssertContains(t, f.output.String(), "✗ Not signed in")
		if _, ok, _ := f.storage.Get(repositories.SessionKey); ok {
			t.Error("expected persisted session to be removed")
		}
	})

	t.Run("Login", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/authentication/token/new", 200, `{"success":true,"request_token":"tok-1"}`)
		f.fake.JSON("POST", "/authentication/token/validate_with_login", 200, `{"success":true,"request_token":"tok-1"}`)
		f.fake.JSON("POST", "/authentication/session/new", 200, `{"success":true,"session_id":"sess-2"}`)
		f.fake.JSON("GET", "/account", 200, accountBody)

		if err := f.run(t, "auth", "login", "-u", "alice", "--password", "secret"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertContains(t, f.output.String(), "✓ Signed in as alice")
		if v, _, _ := f.storage.Get(repositories.SessionKey); v != "sess-2" {
			t.Errorf("expected persisted session sess-2, got %q", v)
		}
	})

	t.Run("Login Failure", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/authentication/token/new", 200, `{"success":true,"request_token":"tok-1"}`)
		f.fake.JSON("POST", "/authentication/token/validate_with_login", 401, `{"success":false,"status_code":30,"status_message":"Invalid username and/or password: You did not provide a valid login."}`)

		err := f.run(t, "auth", "login", "-u", "alice", "--password", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.JSON("DELETE", "/authentication/session", 200, `{"success":true}`)

		if err := f.run(t, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertContains(t, f.output.String(), "✓ Signed out")
		if _, ok, _ := f.storage.Get(repositories.SessionKey); ok {
			t.Error("expected persisted session to be removed")
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("Get With Params And Session", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fake.Handle("GET", "/account", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("session_id") != "sess-1" || q.Get("language") != "fr" {
				t.Errorf("expected session and language params, got %v", q)
			}
			io.WriteString(w, accountBody)
		})

		if err := f.run(t, "api", "get", "-q", "language=fr", "--session", "account"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertContains(t, f.output.String(), `"username": "alice"`)
	})

	t.Run("Get Bad Param", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "api", "get", "-q", "novalue", "/configuration")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Get Error Status", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "api", "get", "/nope")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		tu.AssertContains(t, err.Error(), "status 404")
	})

	t.Run("Post Invalid JSON", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run(t, "api", "post", "--data", "{nope", "/list")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Dump", func(t *testing.T) {
		f := newCLIFixture(t, false)
		f.fake.JSON("GET", "/configuration", 200, `{"images":{"secure_base_url":"https://image.tmdb.org/t/p/"}}`)

		if err := f.run(t, "api", "dump", "--pretty=false"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		tu.AssertContains(t, out, `"configuration":{"images"`)
		tu.AssertContains(t, out, `"endpoint":"/genre/movie/list"`)
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("Config", func(t *testing.T) {
		f := newCLIFixture(t, false)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := f.run(t, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		err := f.run(t, "--config", path, "setup", "config")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig when file exists, got %v", err)
		}
	})

	t.Run("Database", func(t *testing.T) {
		f := newCLIFixture(t, false)
		dir := t.TempDir()
		t.Setenv("TMDBX_DB_PATH", filepath.Join(dir, "tmdbx.db"))
		path := filepath.Join(dir, "config.toml")

		if err := f.run(t, "--config", path, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		tu.AssertFileExists(t, filepath.Join(dir, "tmdbx.db"))
		tu.AssertContains(t, f.output.String(), "✓ Database ready")
	})
}
