package cgi

import (
	"strings"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// statusField is the CGI pseudo-header carrying the HTTP status line.
const statusField = "Status"

// parseHead parses raw CGI header bytes into a status line and an ordered
// list of header fields.
//
// Every line must be "Name: value" with the first colon as the separator;
// names and values are trimmed of surrounding whitespace. The Status
// pseudo-header becomes the status line and is excluded from the field list
// (defaulting to "200 OK" when absent). Duplicate names overwrite the stored
// value but keep the position of first appearance.
func parseHead(raw []byte) (ports.ResponseHead, error) {
	head := ports.ResponseHead{StatusLine: ports.DefaultStatusLine}

	lines := strings.Split(string(raw), "\r\n")
	if lines[len(lines)-1] != "" {
		return head, cgierrs.NewProtocolError(
			cgierrs.ErrCodeHeaderParseFailed,
			"header section does not end with CRLF",
			nil,
			len(raw),
		)
	}

	position := make(map[string]int)
	for _, line := range lines[:len(lines)-1] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			err := cgierrs.NewProtocolError(
				cgierrs.ErrCodeHeaderParseFailed,
				"header line has no colon separator",
				nil,
				len(raw),
			)
			_ = err.WithMetadata("line", line)

			return head, err
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if name == statusField {
			head.StatusLine = value

			continue
		}

		if i, seen := position[name]; seen {
			head.Headers[i].Value = value

			continue
		}

		position[name] = len(head.Headers)
		head.Headers = append(head.Headers, ports.HeaderField{Name: name, Value: value})
	}

	return head, nil
}
