package cgi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/options"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// fakeBackend writes a shell script standing in for git http-backend and
// returns options pointing the adapter at it.
func fakeBackend(t *testing.T, script string, opts *options.BackendOptions) *options.BackendOptions {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake backend requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-git")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing fake backend: %v", err)
	}

	if opts == nil {
		opts = &options.BackendOptions{}
	}
	opts.GitPath = &path

	return opts
}

// testEnviron carries PATH through so the fake scripts can find coreutils.
func testEnviron(extra ports.Environ) ports.Environ {
	env := ports.Environ{"PATH": os.Getenv("PATH")}
	for k, v := range extra {
		env[k] = v
	}

	return env
}

// drain consumes the body stream to exhaustion and closes it.
func drain(t *testing.T, body ports.BodyStream) []byte {
	t.Helper()

	var buf bytes.Buffer
	for {
		chunk, err := body.Next()
		buf.Write(chunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("body stream failed: %v", err)
		}
	}

	if err := body.Close(); err != nil {
		t.Fatalf("closing body: %v", err)
	}

	return buf.Bytes()
}

func TestRunEndToEnd(t *testing.T) {
	// The backend emits the response in two writes that split the header
	// terminator across reads.
	script := `printf 'Status: 200 OK\r\nContent-Type: text/html\r'
sleep 0.1
printf '\n\r\n<html></html>'`

	adapter := NewAdapter(fakeBackend(t, script, nil), logr.Discard())

	resp, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if resp.Head.StatusLine != "200 OK" {
		t.Errorf("status line = %q, want %q", resp.Head.StatusLine, "200 OK")
	}
	if len(resp.Head.Headers) != 1 || resp.Head.Headers[0] != (ports.HeaderField{Name: "Content-Type", Value: "text/html"}) {
		t.Errorf("headers = %+v", resp.Head.Headers)
	}
	if body := drain(t, resp.Body); string(body) != "<html></html>" {
		t.Errorf("body = %q, want %q", body, "<html></html>")
	}
}

func TestRunEchoesBoundedInput(t *testing.T) {
	script := `printf 'Status: 200 OK\r\n\r\n'
cat`

	adapter := NewAdapter(fakeBackend(t, script, nil), logr.Discard())

	env := testEnviron(ports.Environ{ports.EnvContentLength: "5"})
	body := strings.NewReader("hello world") // more on offer than declared

	resp, err := adapter.Run(context.Background(), env, body)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := drain(t, resp.Body); string(got) != "hello" {
		t.Errorf("body = %q, want %q", got, "hello")
	}
}

func TestRunEmptyBody(t *testing.T) {
	script := `printf 'Status: 204 No Content\r\n\r\n'`

	adapter := NewAdapter(fakeBackend(t, script, nil), logr.Discard())

	resp, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The remainder is the first element even when empty; an empty chunk is
	// not a termination signal.
	first, err := resp.Body.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if len(first) != 0 {
		t.Errorf("first chunk = %q, want empty", first)
	}

	for {
		chunk, err := resp.Body.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if len(chunk) != 0 {
			t.Errorf("unexpected body data %q", chunk)
		}
	}

	if err := resp.Body.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRunBodyCompleteness(t *testing.T) {
	// Many small reads; concatenating the stream must reproduce everything
	// the backend wrote after the terminator, with no loss or duplication.
	script := `printf 'Status: 200 OK\r\n\r\n'
seq 1 5000`

	chunk := 1024
	opts := fakeBackend(t, script, &options.BackendOptions{ChunkSize: &chunk})
	adapter := NewAdapter(opts, logr.Discard())

	resp, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var want bytes.Buffer
	for i := 1; i <= 5000; i++ {
		fmt.Fprintf(&want, "%d\n", i)
	}

	if got := drain(t, resp.Body); !bytes.Equal(got, want.Bytes()) {
		t.Errorf("body mismatch: got %d bytes, want %d", len(got), want.Len())
	}
}

func TestRunSpawnFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-git")
	adapter := NewAdapter(&options.BackendOptions{GitPath: &missing}, logr.Discard())

	_, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if !cgierrs.IsSpawnFailure(err) {
		t.Errorf("expected process_spawn_failed, got %v", err)
	}
}

func TestRunBackendDiesBeforeHeader(t *testing.T) {
	script := `printf 'Status'`

	adapter := NewAdapter(fakeBackend(t, script, nil), logr.Discard())

	_, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if !cgierrs.IsHeaderNotFound(err) {
		t.Errorf("expected header_not_found, got %v", err)
	}
}

func TestRunHeaderTooLarge(t *testing.T) {
	script := `dd if=/dev/zero bs=1024 count=64 2>/dev/null | tr '\0' 'a'`

	maxHeader := 1024
	opts := fakeBackend(t, script, &options.BackendOptions{MaxHeaderSize: &maxHeader})
	adapter := NewAdapter(opts, logr.Discard())

	_, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if !cgierrs.IsHeaderTooLarge(err) {
		t.Errorf("expected header_too_large, got %v", err)
	}
}

func TestRunStderrCallback(t *testing.T) {
	script := `echo 'fatal: repository not exported' >&2
printf 'Status: 200 OK\r\n\r\n'`

	lines := make(chan string, 4)
	opts := fakeBackend(t, script, &options.BackendOptions{
		StderrCallback: func(line string) { lines <- line },
	})
	adapter := NewAdapter(opts, logr.Discard())

	resp, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	drain(t, resp.Body)

	select {
	case line := <-lines:
		if line != "fatal: repository not exported" {
			t.Errorf("stderr line = %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Error("stderr line never reached the callback")
	}
}

func TestBodyStreamCloseKillsBackend(t *testing.T) {
	script := `printf 'Status: 200 OK\r\n\r\nearly'
sleep 30`

	adapter := NewAdapter(fakeBackend(t, script, nil), logr.Discard())

	resp, err := adapter.Run(context.Background(), testEnviron(nil), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	start := time.Now()
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Close took %v; the backend was not killed", elapsed)
	}

	// Close is idempotent and Next after Close reports end of stream.
	if err := resp.Body.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := resp.Body.Next(); err != io.EOF {
		t.Errorf("Next after Close = %v, want io.EOF", err)
	}
}
