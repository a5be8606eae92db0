package store

import (
	"context"
	"errors"

	"github.com/desertthunder/tmdbx/internal/models"
	"github.com/desertthunder/tmdbx/internal/shared"
)

const (
	keyUserLists   = "user_lists"
	keyCurrentList = "current_list"

	msgNotAuthenticated = "not authenticated"
)

// OperationKind names a list mutation.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
	OpAdd    OperationKind = "add_item"
	OpRemove OperationKind = "remove_item"
)

var opFallback = map[OperationKind]string{
	OpCreate: "Failed to create list",
	OpUpdate: "Failed to update list",
	OpDelete: "Failed to delete list",
	OpAdd:    "Failed to add movie to list",
	OpRemove: "Failed to remove movie from list",
}

// Operation is the status of one list mutation, keyed by its id.
type Operation struct {
	ID      string
	Kind    OperationKind
	Loading bool
	Error   *string
	Success bool
	Message string
	ListID  models.ListID
	MovieID int
}

// UserLists is the signed-in user's list summaries.
type UserLists struct {
	Items        []models.List
	Page         int
	TotalPages   int
	TotalResults int
	Loading      bool
	Error        *string
}

// ListState holds the user's lists, the open list and mutation statuses.
type ListState struct {
	UserLists      UserLists
	CurrentList    *models.MovieList
	CurrentLoading bool
	CurrentError   *string
	Operations     map[string]Operation
	LastOperation  string
}

func newListState() ListState {
	return ListState{
		UserLists:  UserLists{Items: []models.List{}, Page: 1},
		Operations: map[string]Operation{},
	}
}

func (l ListState) clone() ListState {
	out := l
	out.UserLists.Items = cloneSlice(l.UserLists.Items)
	out.UserLists.Error = clonePtr(l.UserLists.Error)
	if l.CurrentList != nil {
		c := *l.CurrentList
		c.Items = cloneSlice(c.Items)
		out.CurrentList = &c
	}
	out.CurrentError = clonePtr(l.CurrentError)
	out.Operations = make(map[string]Operation, len(l.Operations))
	for k, v := range l.Operations {
		v.Error = clonePtr(v.Error)
		out.Operations[k] = v
	}
	return out
}

// Last returns the most recently started operation.
func (l ListState) Last() (Operation, bool) {
	op, ok := l.Operations[l.LastOperation]
	return op, ok
}

// GetUserLists loads the user's lists. It fails locally without a session or user.
func (s *State) GetUserLists(ctx context.Context) {
	sessionID, accountID, ok := s.sessionUser()

	s.mu.Lock()
	n := s.begin(keyUserLists)
	if !ok {
		msg := msgNotAuthenticated
		s.lists.UserLists.Loading = false
		s.lists.UserLists.Error = &msg
		s.mu.Unlock()
		return
	}
	s.lists.UserLists.Loading = true
	s.lists.UserLists.Error = nil
	s.mu.Unlock()

	page, err := s.svc.UserLists(ctx, accountID, sessionID, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(keyUserLists, n) {
		return
	}
	ul := &s.lists.UserLists
	ul.Loading = false
	if err != nil {
		s.logger.Warn("user lists fetch failed", "error", err)
		ul.Error = errMessage(err, "Failed to fetch lists")
		return
	}
	ul.Items = page.Results
	if ul.Items == nil {
		ul.Items = []models.List{}
	}
	ul.Page = page.Page
	ul.TotalPages = page.TotalPages
	ul.TotalResults = page.TotalResults
}

// GetListDetails loads list id into CurrentList.
func (s *State) GetListDetails(ctx context.Context, id models.ListID) {
	s.mu.Lock()
	n := s.begin(keyCurrentList)
	s.lists.CurrentLoading = true
	s.lists.CurrentError = nil
	var sessionID string
	if s.session.SessionID != nil {
		sessionID = *s.session.SessionID
	}
	s.mu.Unlock()

	list, err := s.svc.ListDetails(ctx, id, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latest(keyCurrentList, n) {
		return
	}
	s.lists.CurrentLoading = false
	if err != nil {
		s.logger.Warn("list fetch failed", "list_id", id, "error", err)
		s.lists.CurrentError = errMessage(err, "Failed to fetch list details")
		return
	}
	s.lists.CurrentList = list
}

// CreateList creates a list and returns the operation id. The new id is on the operation's ListID.
func (s *State) CreateList(ctx context.Context, name, description string) string {
	req := models.ListRequest{Name: name, Description: description}
	return s.mutate(ctx, OpCreate, 0, 0, req.Validate,
		func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error) {
			return s.svc.CreateList(ctx, sessionID, req)
		}, nil)
}

// UpdateList renames or re-describes list id.
func (s *State) UpdateList(ctx context.Context, id models.ListID, name, description string) string {
	req := models.ListRequest{Name: name, Description: description}
	return s.mutate(ctx, OpUpdate, id, 0, req.Validate,
		func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error) {
			return s.svc.UpdateList(ctx, sessionID, id, req)
		},
		func() {
			for i := range s.lists.UserLists.Items {
				if s.lists.UserLists.Items[i].ID == id {
					s.lists.UserLists.Items[i].Name = name
					s.lists.UserLists.Items[i].Description = description
				}
			}
			if cl := s.lists.CurrentList; cl != nil && cl.ID == id {
				cl.Name = name
				cl.Description = description
			}
		})
}

// DeleteList deletes list id and drops it from local state.
func (s *State) DeleteList(ctx context.Context, id models.ListID) string {
	return s.mutate(ctx, OpDelete, id, 0, nil,
		func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error) {
			return s.svc.DeleteList(ctx, sessionID, id)
		},
		func() {
			items := s.lists.UserLists.Items[:0:0]
			for _, l := range s.lists.UserLists.Items {
				if l.ID != id {
					items = append(items, l)
				}
			}
			s.lists.UserLists.Items = items
			if s.lists.CurrentList != nil && s.lists.CurrentList.ID == id {
				s.lists.CurrentList = nil
			}
		})
}

// AddMovieToList adds movieID to list listID.
func (s *State) AddMovieToList(ctx context.Context, listID models.ListID, movieID int) string {
	return s.mutate(ctx, OpAdd, listID, movieID, validMovie(movieID),
		func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error) {
			return s.svc.AddItem(ctx, sessionID, listID, movieID)
		}, nil)
}

// RemoveMovieFromList removes movieID from list listID.
func (s *State) RemoveMovieFromList(ctx context.Context, listID models.ListID, movieID int) string {
	return s.mutate(ctx, OpRemove, listID, movieID, validMovie(movieID),
		func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error) {
			return s.svc.RemoveItem(ctx, sessionID, listID, movieID)
		}, nil)
}

func validMovie(id int) func() error {
	return func() error {
		if id <= 0 {
			return errors.New("movie id must be positive")
		}
		return nil
	}
}

type mutationFunc func(ctx context.Context, sessionID string) (*models.ListMutationResponse, error)

// mutate records an operation, performs call and applies patch on success.
//
// After a successful mutation the user's lists are re-fetched, and the open list when it was affected.
func (s *State) mutate(ctx context.Context, kind OperationKind, listID models.ListID, movieID int, validate func() error, call mutationFunc, patch func()) string {
	id := shared.GenerateID()
	op := Operation{ID: id, Kind: kind, Loading: true, ListID: listID, MovieID: movieID}

	sessionID, _, ok := s.sessionUser()

	s.mu.Lock()
	s.lists.LastOperation = id
	switch {
	case !ok:
		op.Loading = false
		op.Error = errMessage(errors.New(msgNotAuthenticated), "")
	case validate != nil:
		if err := validate(); err != nil {
			op.Loading = false
			op.Error = errMessage(err, opFallback[kind])
		}
	}
	s.lists.Operations[id] = op
	s.mu.Unlock()

	if !op.Loading {
		return id
	}

	resp, err := call(ctx, sessionID)

	s.mu.Lock()
	op, tracked := s.lists.Operations[id]
	if !tracked {
		op = Operation{ID: id, Kind: kind, ListID: listID, MovieID: movieID}
	}
	op.Loading = false
	if err != nil {
		s.logger.Warn("list operation failed", "kind", kind, "list_id", listID, "error", err)
		op.Error = errMessage(err, opFallback[kind])
	} else {
		op.Success = true
		op.Message = resp.StatusMessage
		if kind == OpCreate {
			op.ListID = resp.ListID
		}
		if patch != nil {
			patch()
		}
	}
	if tracked {
		s.lists.Operations[id] = op
	}
	refreshCurrent := s.lists.CurrentList != nil && listID != 0 && s.lists.CurrentList.ID == listID
	s.mu.Unlock()

	if err != nil {
		return id
	}

	s.GetUserLists(ctx)
	if refreshCurrent {
		s.GetListDetails(ctx, listID)
	}
	return id
}

// Operation returns the status of operation id.
func (s *State) Operation(id string) (Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.lists.Operations[id]
	if ok {
		op.Error = clonePtr(op.Error)
	}
	return op, ok
}

// ClearOperation removes operation id.
func (s *State) ClearOperation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists.Operations, id)
	if s.lists.LastOperation == id {
		s.lists.LastOperation = ""
	}
}

// ClearOperations removes every operation.
func (s *State) ClearOperations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists.Operations = map[string]Operation{}
	s.lists.LastOperation = ""
}
