package server

import (
	"fmt"
	"html"
	"net/http"
	"sync"

	"github.com/desertthunder/tmdbx/internal/shared"
)

// ApprovalPath is the route TMDB redirects to after the user approves or denies a request token.
const ApprovalPath = "/approved"

// ApprovalResult carries the approved request token or the reason approval failed.
type ApprovalResult struct {
	RequestToken string
	err          error
}

func (a *ApprovalResult) Error() error {
	return a.err
}

// ApprovalHandler receives the redirect for a single request token.
type ApprovalHandler struct {
	token       string
	resultChan  chan ApprovalResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewApprovalHandler creates a handler that only accepts token.
func NewApprovalHandler(token string) *ApprovalHandler {
	return &ApprovalHandler{
		token:      token,
		resultChan: make(chan ApprovalResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ApprovalHandler) Routes() []string {
	return []string{ApprovalPath}
}

// ServeHTTP handles the approval redirect.
func (h *ApprovalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("request_token") != h.token {
		h.Send(ApprovalResult{err: fmt.Errorf("%w: request token mismatch", shared.ErrInvalidResponse)})
		writePage(w, http.StatusBadRequest, "Invalid Request Token", "This approval does not belong to the running login.")
		return
	}

	if q.Get("approved") != "true" {
		h.Send(ApprovalResult{err: shared.ErrApprovalDenied})
		writePage(w, http.StatusForbidden, "Access Denied", "tmdbx was not approved. You can close this window.")
		return
	}

	h.Send(ApprovalResult{RequestToken: h.token})
	writePage(w, http.StatusOK, "✓ Approved", "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *ApprovalHandler) Send(result ApprovalResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one result and is then closed.
func (h *ApprovalHandler) Result() <-chan ApprovalResult {
	return h.resultChan
}

func writePage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>tmdbx</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #0d253f; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.2); }
        h1 { color: #01b4e4; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message))
}
