package gitcgi

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// anonymousUser is the REMOTE_USER fallback when no identity was supplied.
const anonymousUser = "unknown"

// BuildEnviron produces the CGI environment for one gateway request.
//
// GIT_HTTP_EXPORT_ALL is set unconditionally; projectRoot becomes
// GIT_PROJECT_ROOT, which git combines with PATH_INFO to locate the bare
// repository. REMOTE_USER is the supplied user identity, falling back to
// "unknown" so the backend always sees a value. The standard CGI keys are
// passed through from the request unchanged.
func BuildEnviron(r *http.Request, projectRoot, user string) ports.Environ {
	env := ports.Environ{
		ports.EnvGitHTTPExportAll: "1",
		ports.EnvGitProjectRoot:   projectRoot,
		ports.EnvRequestMethod:    r.Method,
		ports.EnvPathInfo:         r.URL.Path,
		ports.EnvQueryString:      r.URL.RawQuery,
	}

	if user == "" {
		user = anonymousUser
	}
	env[ports.EnvRemoteUser] = user

	if ct := r.Header.Get("Content-Type"); ct != "" {
		env[ports.EnvContentType] = ct
	}

	if r.ContentLength >= 0 {
		env[ports.EnvContentLength] = strconv.FormatInt(r.ContentLength, 10)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env[ports.EnvRemoteAddr] = host
	} else if r.RemoteAddr != "" {
		env[ports.EnvRemoteAddr] = r.RemoteAddr
	}

	return env
}
