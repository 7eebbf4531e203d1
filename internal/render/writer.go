package render

import (
	"os"
	"path/filepath"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/schema"
)

// Artifact file names, in write order.
const (
	FileJSON     = "schema_info.json"
	FileMarkdown = "schema_docs.md"
	FileSQL      = "schema.sql"
)

// Artifact describes one written output file.
type Artifact struct {
	Name string
	Path string
	Size int
}

// WriteArtifacts renders the snapshot and writes the three artifacts into
// dir, creating it recursively first. Files are written in the order JSON,
// Markdown, SQL; the first failure aborts the remaining writes and is
// surfaced with the failing path. Files already written stay in place.
func WriteArtifacts(dir string, info *schema.Info) ([]Artifact, error) {
	jsonOut, err := JSON(info)
	if err != nil {
		return nil, err
	}
	return writeAll(dir, []pending{
		{FileJSON, jsonOut},
		{FileMarkdown, []byte(Markdown(info))},
		{FileSQL, []byte(SQL(info))},
	})
}

// WriteTableArtifacts is the single-table variant: the same trio, rendered
// from one table, written into dir (conventionally <out>/<table-name>).
func WriteTableArtifacts(dir string, t *schema.Table) ([]Artifact, error) {
	jsonOut, err := JSON(t)
	if err != nil {
		return nil, err
	}
	return writeAll(dir, []pending{
		{FileJSON, jsonOut},
		{FileMarkdown, []byte(TableMarkdown(t))},
		{FileSQL, []byte(TableSQL(t))},
	})
}

type pending struct {
	name string
	data []byte
}

func writeAll(dir string, files []pending) ([]Artifact, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrKindWriteFailed, "create output dir "+dir, err)
	}

	written := make([]Artifact, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, errs.Wrap(errs.ErrKindWriteFailed, "write "+path, err)
		}
		written = append(written, Artifact{Name: f.name, Path: path, Size: len(f.data)})
	}
	return written, nil
}
