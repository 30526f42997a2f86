package cgi

import (
	"testing"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

func TestParseHead(t *testing.T) {
	t.Run("status pseudo-header becomes status line", func(t *testing.T) {
		head, err := parseHead([]byte("Status: 404 Not Found\r\nContent-Type: text/plain\r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if head.StatusLine != "404 Not Found" {
			t.Errorf("status line = %q, want %q", head.StatusLine, "404 Not Found")
		}
		if len(head.Headers) != 1 {
			t.Fatalf("headers = %v, want exactly Content-Type", head.Headers)
		}
		if head.Headers[0] != (ports.HeaderField{Name: "Content-Type", Value: "text/plain"}) {
			t.Errorf("header = %+v", head.Headers[0])
		}
	})

	t.Run("missing status defaults to 200 OK", func(t *testing.T) {
		head, err := parseHead([]byte("Content-Type: application/x-git-upload-pack-result\r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if head.StatusLine != "200 OK" {
			t.Errorf("status line = %q, want %q", head.StatusLine, "200 OK")
		}
	})

	t.Run("duplicate names overwrite value but keep position", func(t *testing.T) {
		head, err := parseHead([]byte("A: 1\r\nB: 2\r\nA: 3\r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []ports.HeaderField{{Name: "A", Value: "3"}, {Name: "B", Value: "2"}}
		if len(head.Headers) != len(want) {
			t.Fatalf("headers = %v, want %v", head.Headers, want)
		}
		for i := range want {
			if head.Headers[i] != want[i] {
				t.Errorf("headers[%d] = %+v, want %+v", i, head.Headers[i], want[i])
			}
		}
	})

	t.Run("splits on first colon only", func(t *testing.T) {
		head, err := parseHead([]byte("Location: http://example.com/repo.git\r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := head.Get("Location"); got != "http://example.com/repo.git" {
			t.Errorf("Location = %q", got)
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		head, err := parseHead([]byte("  Content-Type  :   text/html  \r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := head.Get("Content-Type"); got != "text/html" {
			t.Errorf("Content-Type = %q", got)
		}
	})

	t.Run("line without colon is malformed", func(t *testing.T) {
		_, err := parseHead([]byte("no colon here\r\n"))
		if !cgierrs.IsHeaderParseFailure(err) {
			t.Errorf("expected header_parse_failed, got %v", err)
		}
	})

	t.Run("missing trailing CRLF is malformed", func(t *testing.T) {
		_, err := parseHead([]byte("Content-Type: text/plain"))
		if !cgierrs.IsHeaderParseFailure(err) {
			t.Errorf("expected header_parse_failed, got %v", err)
		}
	})
}
