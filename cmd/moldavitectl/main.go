package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/auth"
	"github.com/elskow/moldavite/internal/build"
	"github.com/elskow/moldavite/internal/cluster"
	"github.com/elskow/moldavite/internal/server"
)

type options struct {
	command string
	kind    string
	id      string
	subject string
	ttl     time.Duration
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.command, "command", "status", "command to run (status/delete/token)")
	flag.StringVar(&opts.kind, "kind", "book", "build kind (book/notebook)")
	flag.StringVar(&opts.id, "id", "", "build id for status and delete")
	flag.StringVar(&opts.subject, "subject", "operator", "token subject")
	flag.DurationVar(&opts.ttl, "ttl", 24*time.Hour, "token lifetime")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "cluster call timeout")
	flag.Parse()

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", "development")
	}

	// Deferred cleanup in run happens before the process exits.
	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("%s failed: %v", opts.command, err)
	}
}

func run(opts options, out io.Writer) error {
	// Load config
	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.command == "token" {
		token, err := auth.GenerateToken(cfg.Auth.AppSecretKey, opts.subject, opts.ttl)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		_, err = fmt.Fprintln(out, token)
		return err
	}

	if opts.id == "" {
		return errors.New("-id is required")
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dyn, err := cluster.NewDynamicInterface(&cfg.Cluster, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}
	client := cluster.NewDynamicClient(dyn, &cfg.Storage, logger.Named("cluster"))
	books := build.NewBookService(&cfg.Build, client, build.SystemClock{}, logger.Named("books"))
	notebooks := build.NewNotebookService(&cfg.Build, client, logger.Named("notebooks"))

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	// Run command
	switch opts.command {
	case "status":
		var status any
		switch opts.kind {
		case string(build.KindBook):
			status, err = books.BookStatus(ctx, opts.id)
		case string(build.KindNotebook):
			status, err = notebooks.NotebookStatus(ctx, opts.id)
		default:
			return fmt.Errorf("unknown kind: %s", opts.kind)
		}
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)

	case "delete":
		switch opts.kind {
		case string(build.KindBook):
			err = books.DeleteBook(ctx, opts.id)
		case string(build.KindNotebook):
			err = notebooks.DeleteNotebook(ctx, opts.id)
		default:
			return fmt.Errorf("unknown kind: %s", opts.kind)
		}
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", opts.id, err)
		}
		logger.Info("deleted", zap.String("build_id", opts.id), zap.String("kind", opts.kind))
		return nil

	default:
		return fmt.Errorf("unknown command: %s", opts.command)
	}
}
