// Package gitcgi bridges HTTP gateway requests to git's http-backend CGI
// subprocess. This is the main entry point for library users.
//
// The package exposes a Backend facade that owns the tuning options and the
// CGI transport, plus an http.Handler that translates gateway requests into
// CGI environments and relays the backend's streamed response. Request
// routing, authentication, and repository-path resolution are the caller's
// responsibility: the handler expects the project root and user identity to
// be already resolved.
package gitcgi
