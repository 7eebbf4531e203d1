// Command schemadump exports a database's catalog snapshot as JSON,
// Markdown, and SQL DDL artifacts.
//
// Full export:
//
//	SCHEMADUMP_URL=https://example.supabase.co \
//	SCHEMADUMP_SERVICE_KEY=... \
//	schemadump
//
// Single table:
//
//	schemadump table users
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/schemadump/schemadump/internal/config"
	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/export"
	"github.com/schemadump/schemadump/internal/fetch"
	fetchpg "github.com/schemadump/schemadump/internal/fetch/postgres"
	"github.com/schemadump/schemadump/internal/fetch/rest"
	"github.com/schemadump/schemadump/internal/filestore/minio"
	"github.com/schemadump/schemadump/internal/logger"
	"github.com/schemadump/schemadump/internal/retry"
)

type tableCmd struct {
	Name string `arg:"positional,required" help:"name of the table to export"`
}

type cliArgs struct {
	Table  *tableCmd `arg:"subcommand:table" help:"export a single table instead of the full schema"`
	Config string    `arg:"--config,-c" help:"path to YAML config file"`
	Out    string    `arg:"--out,-o" help:"output directory (overrides config)"`
}

func (cliArgs) Description() string {
	return "schemadump exports database catalog metadata to JSON, Markdown and SQL files"
}

func main() {
	var args cliArgs
	parser, err := arg.NewParser(arg.Config{Program: "schemadump"}, &args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := parser.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		parser.WriteUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if args.Out != "" {
		cfg.OutputDir = args.Out
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Fail fast on missing endpoint/credential, before any network activity.
	if err := cfg.Validate(); err != nil {
		log.ErrorWith("invalid configuration", err, nil)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, &args, log); err != nil {
		if errs.IsNotFound(err) {
			// Unknown table names are reported, not fatal.
			log.Warnf("%v", err)
			os.Exit(0)
		}
		log.ErrorWith("export failed", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args *cliArgs, log *logger.Logger) error {
	client, closeClient, err := buildClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	fetcher := fetch.New(client, log).
		WithPolicy(retry.Policy{
			MaxAttempts: cfg.Fetch.MaxAttempts,
			Backoff:     retry.ExponentialBackoff(cfg.Fetch.BackoffBase()),
		})
	if cfg.DebugDump {
		fetcher = fetcher.WithDebugDump(filepath.Join(cfg.OutputDir, "schema_raw.json"))
	}

	exporter := export.New(fetcher, cfg.OutputDir, log)

	if cfg.Publish != nil {
		store, err := minio.New(ctx, cfg.Publish)
		if err != nil {
			return err
		}
		defer store.Close()
		exporter = exporter.WithStore(store, cfg.Publish.Bucket, cfg.Publish.Prefix)
	}

	if args.Table != nil {
		return exporter.RunTable(ctx, args.Table.Name)
	}
	return exporter.Run(ctx)
}

// buildClient picks the fetch backend from the config.
func buildClient(ctx context.Context, cfg *config.Config) (fetch.Client, func(), error) {
	switch cfg.Source {
	case config.SourcePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		client, err := fetchpg.New(connectCtx, cfg.URL, cfg.RPCFunction)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		client := rest.New(cfg.URL, cfg.ServiceKey, cfg.RPCFunction)
		return client, func() {}, nil
	}
}
