// Package fetch retrieves the catalog snapshot from the remote
// introspection procedure, with bounded retry and null-payload
// normalization. All layers above this package talk only to the Client
// interface — they never import the rest or postgres packages directly.
package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/logger"
	"github.com/schemadump/schemadump/internal/retry"
	"github.com/schemadump/schemadump/internal/schema"
)

// Client is the contract every introspection backend implements. It issues
// the no-argument procedure call once and returns the typed snapshot plus
// the raw response bytes for diagnostics. A nil Info with a nil error means
// the procedure succeeded but returned a null payload.
type Client interface {
	FetchSchema(ctx context.Context) (*schema.Info, []byte, error)
}

// Fetcher wraps a Client with the retry policy and the best-effort raw
// debug dump.
type Fetcher struct {
	client    Client
	policy    retry.Policy
	log       *logger.Logger
	debugPath string // empty disables the dump
}

// New returns a Fetcher using the default retry policy.
func New(client Client, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		policy: retry.DefaultPolicy(),
		log:    log,
	}
}

// WithPolicy overrides the retry policy.
func (f *Fetcher) WithPolicy(p retry.Policy) *Fetcher {
	f.policy = p
	return f
}

// WithDebugDump enables writing the raw procedure response to path after a
// successful fetch.
func (f *Fetcher) WithDebugDump(path string) *Fetcher {
	f.debugPath = path
	return f
}

// Fetch calls the introspection procedure, retrying per the policy. A null
// payload on a successful call is legal and normalizes to an empty
// snapshot. When the budget is exhausted the last cause is preserved in the
// returned error.
func (f *Fetcher) Fetch(ctx context.Context) (*schema.Info, error) {
	attempt := 0
	type result struct {
		info *schema.Info
		raw  []byte
	}

	res, err := retry.DoWithResult(f.policy, func() (result, error) {
		attempt++
		info, raw, err := f.client.FetchSchema(ctx)
		if err != nil {
			f.log.WarnWith("schema fetch attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			return result{}, err
		}
		return result{info: info, raw: raw}, nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, "all fetch attempts failed", err)
	}

	info := res.info
	if info == nil {
		// Partial success: the procedure ran but produced no payload.
		f.log.Warn("introspection returned a null payload, using empty schema")
		info = schema.Empty()
	}
	info.Normalize()

	f.dumpRaw(res.raw)

	f.log.InfoWith("schema fetched", map[string]interface{}{
		"tables":    len(info.Tables),
		"functions": len(info.Functions),
	})
	return info, nil
}

// FetchTable performs a full fetch and selects one table by exact name.
// An unknown name is a soft not-found, never a crash.
func (f *Fetcher) FetchTable(ctx context.Context, name string) (*schema.Table, error) {
	info, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	t := info.FindTable(name)
	if t == nil {
		return nil, errs.New(errs.ErrKindNotFound, "table "+name+" not found in schema")
	}
	return t, nil
}

// dumpRaw persists the raw procedure response for diagnostics. Failure is
// logged and otherwise ignored — the dump never affects the fetch result.
func (f *Fetcher) dumpRaw(raw []byte) {
	if f.debugPath == "" || raw == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.debugPath), 0o755); err != nil {
		f.log.Warnf("could not create debug dump dir: %v", err)
		return
	}
	if err := os.WriteFile(f.debugPath, raw, 0o644); err != nil {
		f.log.Warnf("could not write debug dump: %v", err)
		return
	}
	f.log.Debugf("raw payload dumped to %s", f.debugPath)
}
