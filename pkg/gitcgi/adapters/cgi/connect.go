package cgi

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/gitcgi/gitcgi/pkg/cgierrs"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/ports"
)

// backendMode is the git subcommand that speaks CGI over stdin/stdout.
const backendMode = "http-backend"

// process bundles a running backend with its pipes. Only the input pump
// writes stdin; only the header scanner and body stream read stdout.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	// stderrDone is closed once the stderr pump has drained the pipe.
	// Nil when stderr is inherited.
	stderrDone chan struct{}

	waitOnce sync.Once
	waitErr  error
}

// wait reaps the backend exactly once; later calls return the same result.
// The stderr pump must finish first: Wait closes the pipe it is reading.
func (p *process) wait() error {
	p.waitOnce.Do(func() {
		if p.stderrDone != nil {
			<-p.stderrDone
		}
		p.waitErr = p.cmd.Wait()
	})

	return p.waitErr
}

// kill forcefully terminates the backend. Safe to call after exit.
func (p *process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// resolveGit locates the git binary, preferring the configured path.
func (a *Adapter) resolveGit() (string, error) {
	if a.opts.GitPath != nil && *a.opts.GitPath != "" {
		return *a.opts.GitPath, nil
	}

	path, err := exec.LookPath("git")
	if err != nil {
		return "", err
	}

	return path, nil
}

// spawn starts "git http-backend" with the given CGI environment and
// stdin/stdout connected as pipes. Stderr is inherited or drained by a
// goroutine depending on options.
func (a *Adapter) spawn(ctx context.Context, env ports.Environ) (*process, error) {
	gitPath, err := a.resolveGit()
	if err != nil {
		return nil, cgierrs.NewProcessError(
			cgierrs.ErrCodeProcessSpawnFailed,
			"git executable not found",
			err,
			"git",
		)
	}

	merged := make(ports.Environ, len(env)+len(a.opts.Env))
	for k, v := range env {
		merged[k] = v
	}
	for k, v := range a.opts.Env {
		merged[k] = v
	}

	cmd := exec.CommandContext(ctx, gitPath, backendMode)
	cmd.Env = merged.OSEnviron()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, cgierrs.NewProcessError(
			cgierrs.ErrCodeProcessSpawnFailed, "stdin pipe failed", err, gitPath,
		)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, cgierrs.NewProcessError(
			cgierrs.ErrCodeProcessSpawnFailed, "stdout pipe failed", err, gitPath,
		)
	}

	var stderr io.ReadCloser
	if a.opts.InheritStderr {
		cmd.Stderr = os.Stderr
	} else {
		stderr, err = cmd.StderrPipe()
		if err != nil {
			return nil, cgierrs.NewProcessError(
				cgierrs.ErrCodeProcessSpawnFailed, "stderr pipe failed", err, gitPath,
			)
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, cgierrs.NewProcessError(
			cgierrs.ErrCodeProcessSpawnFailed, "process start failed", err, gitPath,
		)
	}

	proc := &process{cmd: cmd, stdin: stdin, stdout: stdout}
	if stderr != nil {
		proc.stderrDone = make(chan struct{})
		go func() {
			defer close(proc.stderrDone)
			a.pumpStderr(stderr)
		}()
	}

	return proc, nil
}

// pumpStderr drains the backend's stderr line by line. Runs in its own
// goroutine so stderr backpressure cannot stall the backend.
func (a *Adapter) pumpStderr(stderr io.Reader) {
	sink := a.opts.StderrCallback
	if sink == nil {
		sink = func(line string) {
			a.log.Info("backend stderr", "line", line)
		}
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		sink(scanner.Text())
	}
}
