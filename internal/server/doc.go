// Package server hosts the local HTTP callback used by the browser approval login.
//
// # Router
//
// [BasicRouter] implements [Router] on top of [http.ServeMux] with method filtering.
// [Middleware] is applied in reverse order, so the last one added runs first.
//
// # Approval callback
//
// TMDB redirects the browser to redirect_to with request_token and either approved=true or denied=true.
// [ApprovalHandler] accepts the first callback only, rejects a token other than the one it was created
// for, and delivers exactly one [ApprovalResult] on its channel.
//
// The tmdbx "auth approve" command serves the handler on the configured host and port until a result
// arrives or the wait times out, then exchanges the approved token for a session.
package server
