package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/logger"
	"github.com/schemadump/schemadump/internal/retry"
	"github.com/schemadump/schemadump/internal/schema"
)

// fakeClient fails its first `failures` calls, then returns info/raw.
type fakeClient struct {
	failures int
	calls    int
	info     *schema.Info
	raw      []byte
	err      error
}

func (c *fakeClient) FetchSchema(ctx context.Context) (*schema.Info, []byte, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, nil, c.err
	}
	return c.info, c.raw, nil
}

func testPolicy(delays *[]time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(time.Second),
		Sleep:       func(d time.Duration) { *delays = append(*delays, d) },
	}
}

func TestFetch_RetriesThenSucceeds(t *testing.T) {
	var delays []time.Duration
	client := &fakeClient{
		failures: 2,
		err:      errors.New("connection refused"),
		info:     &schema.Info{Tables: []schema.Table{{Name: "users"}}},
	}
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

	info, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, delays,
		"exactly two backoff delays before the third attempt")
	require.Len(t, info.Tables, 1)
	assert.Equal(t, "users", info.Tables[0].Name)
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	var delays []time.Duration
	cause := errors.New("connection refused")
	client := &fakeClient{failures: 100, err: cause}
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

	info, err := f.Fetch(context.Background())

	require.Error(t, err)
	assert.Nil(t, info)
	assert.Equal(t, 3, client.calls, "never more than the attempt budget")
	assert.True(t, errs.IsFetchFailed(err))
	assert.ErrorIs(t, err, cause, "last observed error is preserved")
}

func TestFetch_NullPayloadNormalizes(t *testing.T) {
	var delays []time.Duration
	client := &fakeClient{info: nil, raw: []byte("null")}
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

	info, err := f.Fetch(context.Background())

	require.NoError(t, err, "a null payload is partial success, not failure")
	assert.NotNil(t, info.Tables)
	assert.NotNil(t, info.Functions)
	assert.Empty(t, info.Tables)
	assert.Empty(t, info.Functions)
}

func TestFetch_NormalizesNilCollections(t *testing.T) {
	var delays []time.Duration
	client := &fakeClient{
		info: &schema.Info{Tables: []schema.Table{{Name: "orders"}}},
	}
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

	info, err := f.Fetch(context.Background())

	require.NoError(t, err)
	require.NotNil(t, info.Functions)
	tbl := info.Tables[0]
	assert.NotNil(t, tbl.Columns)
	assert.NotNil(t, tbl.Constraints)
	assert.NotNil(t, tbl.ForeignKeys)
	assert.NotNil(t, tbl.Indexes)
	assert.NotNil(t, tbl.Triggers)
	assert.NotNil(t, tbl.Policies)
}

func TestFetch_WritesDebugDump(t *testing.T) {
	var delays []time.Duration
	raw := []byte(`{"tables":null,"functions":null}`)
	client := &fakeClient{info: &schema.Info{}, raw: raw}

	path := filepath.Join(t.TempDir(), "dump", "schema_raw.json")
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays)).WithDebugDump(path)

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestFetch_DebugDumpFailureIsIgnored(t *testing.T) {
	var delays []time.Duration
	client := &fakeClient{info: &schema.Info{}, raw: []byte("{}")}

	// A dump path whose parent is a regular file cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	path := filepath.Join(blocker, "schema_raw.json")

	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays)).WithDebugDump(path)

	_, err := f.Fetch(context.Background())
	assert.NoError(t, err, "debug dump failures never affect the fetch result")
}

func TestFetchTable(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		wantFound bool
	}{
		{name: "existing table", table: "users", wantFound: true},
		{name: "second table", table: "orders", wantFound: true},
		{name: "ghost table", table: "ghost_table", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delays []time.Duration
			client := &fakeClient{
				info: &schema.Info{Tables: []schema.Table{{Name: "users"}, {Name: "orders"}}},
			}
			f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

			tbl, err := f.FetchTable(context.Background(), tt.table)
			if tt.wantFound {
				require.NoError(t, err)
				assert.Equal(t, tt.table, tbl.Name)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsNotFound(err), "unknown tables are a soft not-found")
			assert.Nil(t, tbl)
		})
	}
}

func TestFetchTable_FetchErrorPropagates(t *testing.T) {
	var delays []time.Duration
	client := &fakeClient{failures: 100, err: errors.New("down")}
	f := New(client, logger.Nop()).WithPolicy(testPolicy(&delays))

	_, err := f.FetchTable(context.Background(), "users")

	require.Error(t, err)
	assert.True(t, errs.IsFetchFailed(err))
	assert.False(t, errs.IsNotFound(err))
}
