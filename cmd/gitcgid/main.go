// Command gitcgid serves git smart HTTP for a directory of bare
// repositories by relaying requests to git http-backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/gitcgi/gitcgi/internal/logging"
	"github.com/gitcgi/gitcgi/pkg/gitcgi"
	"github.com/gitcgi/gitcgi/pkg/gitcgi/options"
)

const shutdownGrace = 10 * time.Second

type serveConfig struct {
	addr          string
	projectRoot   string
	gitPath       string
	chunkSize     int
	maxHeaderSize int
	inheritStderr bool
}

func main() {
	log, verbosity, flush := logging.New("gitcgid")
	defer flush()

	cfg := &serveConfig{}

	rootCmd := &cobra.Command{
		Use:          "gitcgid",
		Short:        "git smart HTTP gateway backed by git http-backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbosity.Apply()

			return serve(cmd.Context(), cfg, log)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.addr, "addr", ":8080", "listen address")
	flags.StringVar(&cfg.projectRoot, "project-root", "", "directory containing the bare repositories (required)")
	flags.StringVar(&cfg.gitPath, "git-path", "", "git executable (default: resolved from PATH)")
	flags.IntVar(&cfg.chunkSize, "chunk-size", 0, "pipe read/write granularity in bytes")
	flags.IntVar(&cfg.maxHeaderSize, "max-header-size", 0, "maximum CGI header size in bytes")
	flags.BoolVar(&cfg.inheritStderr, "inherit-stderr", false, "pass backend stderr through instead of logging it")
	verbosity.RegisterFlag(flags)
	_ = rootCmd.MarkFlagRequired("project-root")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err, "gitcgid exited with error")
		flush()
		os.Exit(1)
	}
}

func (c *serveConfig) backendOptions() *options.BackendOptions {
	opts := &options.BackendOptions{
		InheritStderr: c.inheritStderr,
	}
	if c.gitPath != "" {
		opts.GitPath = &c.gitPath
	}
	if c.chunkSize > 0 {
		opts.ChunkSize = &c.chunkSize
	}
	if c.maxHeaderSize > 0 {
		opts.MaxHeaderSize = &c.maxHeaderSize
	}

	return opts
}

func serve(ctx context.Context, cfg *serveConfig, log logr.Logger) error {
	info, err := os.Stat(cfg.projectRoot)
	if err != nil {
		return fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %q is not a directory", cfg.projectRoot)
	}

	backend := gitcgi.New(cfg.backendOptions(), log)

	server := &http.Server{
		Addr:    cfg.addr,
		Handler: backend.Handler(cfg.projectRoot, nil),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info("serving git smart HTTP", "addr", cfg.addr, "project_root", cfg.projectRoot)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
