package gitcgi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// UserFunc resolves the authenticated user identity for a request.
// Returning the empty string means anonymous.
type UserFunc func(*http.Request) string

// Handler relays gateway requests to a CGI transport.
type Handler struct {
	transport   ports.Transport
	projectRoot string
	userFn      UserFunc
	log         logr.Logger
}

// Verify interface compliance at compile time.
var _ http.Handler = (*Handler)(nil)

// NewHandler creates an http.Handler that serves requests through the given
// transport. projectRoot must point at the directory containing the bare
// repositories addressed by the request path.
func NewHandler(transport ports.Transport, projectRoot string, userFn UserFunc, log logr.Logger) *Handler {
	return &Handler{
		transport:   transport,
		projectRoot: projectRoot,
		userFn:      userFn,
		log:         log.WithName("git-gateway"),
	}
}

// ServeHTTP builds the CGI environment, runs the backend, and relays the
// parsed head plus the streamed body to the client. Adapter failures map to
// 502: the backend has already been spawned and partially consumed, so no
// failure is retried here.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithValues("request_id", uuid.NewString(), "method", r.Method, "path", r.URL.Path)

	var user string
	if h.userFn != nil {
		user = h.userFn(r)
	}

	env := BuildEnviron(r, h.projectRoot, user)

	resp, err := h.transport.Run(r.Context(), env, r.Body)
	if err != nil {
		log.Error(err, "backend request failed")
		http.Error(w, "backend request failed", http.StatusBadGateway)

		return
	}
	defer func() { _ = resp.Body.Close() }()

	code, ok := statusCode(resp.Head.StatusLine)
	if !ok {
		log.Error(nil, "backend returned malformed status line", "status_line", resp.Head.StatusLine)
		http.Error(w, "backend returned malformed status line", http.StatusBadGateway)

		return
	}

	for _, f := range resp.Head.Headers {
		w.Header().Add(f.Name, f.Value)
	}
	w.WriteHeader(code)

	h.relayBody(w, resp.Body, log)
}

// relayBody drains the body stream into the response writer, flushing after
// each chunk so pack data reaches the client as the backend produces it.
func (h *Handler) relayBody(w http.ResponseWriter, body ports.BodyStream, log logr.Logger) {
	flusher, _ := w.(http.Flusher)

	for {
		chunk, err := body.Next()
		if len(chunk) > 0 {
			if _, werr := w.Write(chunk); werr != nil {
				log.V(1).Info("client write failed", "error", werr.Error())

				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			// The head is already on the wire; all that is left is to stop
			// relaying and record why the stream ended early.
			log.Error(err, "body stream terminated early")

			return
		}
	}
}

// statusCode extracts the integer code from a CGI status line such as
// "404 Not Found".
func statusCode(statusLine string) (int, bool) {
	first, _, _ := strings.Cut(statusLine, " ")

	code, err := strconv.Atoi(first)
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}

	return code, true
}
