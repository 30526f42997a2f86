package ports

import "sort"

// Environ is the CGI environment handed verbatim to the backend subprocess.
// Insertion order is irrelevant; all values are textual.
type Environ map[string]string

// Standard CGI keys the gateway passes through from request metadata.
const (
	EnvContentType   = "CONTENT_TYPE"
	EnvContentLength = "CONTENT_LENGTH"
	EnvPathInfo      = "PATH_INFO"
	EnvQueryString   = "QUERY_STRING"
	EnvRemoteAddr    = "REMOTE_ADDR"
	EnvRemoteUser    = "REMOTE_USER"
	EnvRequestMethod = "REQUEST_METHOD"
)

// Keys specific to git http-backend.
const (
	EnvGitHTTPExportAll = "GIT_HTTP_EXPORT_ALL"
	EnvGitProjectRoot   = "GIT_PROJECT_ROOT"
)

// OSEnviron renders the environment in the "KEY=value" form expected by
// exec.Cmd. Keys are sorted so the rendering is deterministic.
func (e Environ) OSEnviron() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rendered := make([]string, 0, len(e))
	for _, k := range keys {
		rendered = append(rendered, k+"="+e[k])
	}

	return rendered
}
