// Package export wires the pipeline together: fetch the snapshot, write
// the three artifacts, optionally publish them to object storage.
package export

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/fetch"
	"github.com/schemadump/schemadump/internal/filestore"
	"github.com/schemadump/schemadump/internal/logger"
	"github.com/schemadump/schemadump/internal/render"
)

// Exporter runs one export: fetch, render, write, publish.
type Exporter struct {
	fetcher *fetch.Fetcher
	outDir  string
	log     *logger.Logger

	store  filestore.Store
	bucket string
	prefix string
}

// New returns an Exporter writing artifacts into outDir.
func New(f *fetch.Fetcher, outDir string, log *logger.Logger) *Exporter {
	return &Exporter{fetcher: f, outDir: outDir, log: log}
}

// WithStore enables publishing written artifacts to object storage.
func (e *Exporter) WithStore(s filestore.Store, bucket, prefix string) *Exporter {
	e.store = s
	e.bucket = bucket
	e.prefix = prefix
	return e
}

// Run exports the full schema.
func (e *Exporter) Run(ctx context.Context) error {
	info, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	artifacts, err := render.WriteArtifacts(e.outDir, info)
	if err != nil {
		return err
	}
	e.report(artifacts)

	return e.publish(ctx, artifacts, "")
}

// RunTable exports a single table into <outDir>/<name>/. An unknown table
// surfaces as a not-found error for the caller to soften.
func (e *Exporter) RunTable(ctx context.Context, name string) error {
	t, err := e.fetcher.FetchTable(ctx, name)
	if err != nil {
		return err
	}

	dir := filepath.Join(e.outDir, name)
	artifacts, err := render.WriteTableArtifacts(dir, t)
	if err != nil {
		return err
	}
	e.report(artifacts)

	return e.publish(ctx, artifacts, name)
}

func (e *Exporter) report(artifacts []render.Artifact) {
	for _, a := range artifacts {
		e.log.InfoWith("artifact written", map[string]interface{}{
			"path":  a.Path,
			"bytes": a.Size,
		})
	}
}

// publish uploads each written artifact to <prefix>/<subdir>/<name>.
// Local artifacts stay in place when an upload fails.
func (e *Exporter) publish(ctx context.Context, artifacts []render.Artifact, subdir string) error {
	if e.store == nil {
		return nil
	}

	if err := e.store.EnsureBucket(ctx, e.bucket); err != nil {
		return err
	}

	for _, a := range artifacts {
		f, err := os.Open(a.Path)
		if err != nil {
			return errs.Wrap(errs.ErrKindWriteFailed, "reopen artifact "+a.Path, err)
		}

		key := path.Join(e.prefix, subdir, a.Name)
		err = e.store.PutObject(ctx, e.bucket, key, f, int64(a.Size), contentType(a.Name))
		f.Close()
		if err != nil {
			return err
		}

		e.log.InfoWith("artifact published", map[string]interface{}{
			"bucket": e.bucket,
			"key":    key,
		})
	}
	return nil
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".md"):
		return "text/markdown"
	default:
		return "text/plain"
	}
}
