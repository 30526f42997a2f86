package ports

// DefaultStatusLine is assumed when the backend emits no Status field.
const DefaultStatusLine = "200 OK"

// HeaderField is a single response header. Fields are kept as an ordered
// list rather than a map so the gateway can relay them in the order the
// backend produced them.
type HeaderField struct {
	Name  string
	Value string
}

// ResponseHead is the parsed CGI header section: the HTTP status line
// (without protocol version) and the header fields in order of first
// appearance, with the Status pseudo-header already extracted.
type ResponseHead struct {
	StatusLine string
	Headers    []HeaderField
}

// Get returns the value of the first header field with the given name and
// whether it is present.
func (h ResponseHead) Get(name string) (string, bool) {
	for _, f := range h.Headers {
		if f.Name == name {
			return f.Value, true
		}
	}

	return "", false
}
