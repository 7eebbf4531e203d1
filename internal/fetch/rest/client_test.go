package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadump/schemadump/internal/errs"
)

const payload = `{
  "tables": [
    {
      "table_name": "users",
      "columns": [
        {"column_name": "id", "data_type": "integer", "is_nullable": "NO", "column_default": null, "description": null}
      ],
      "constraints": null,
      "foreign_keys": null,
      "indexes": null,
      "triggers": null,
      "policies": null
    }
  ],
  "functions": null
}`

func TestFetchSchema(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := New(srv.URL, "service-role-key", "get_schema_info")
	info, raw, err := c.FetchSchema(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/rpc/get_schema_info", gotPath)
	assert.Equal(t, "service-role-key", gotAPIKey)
	assert.Equal(t, "Bearer service-role-key", gotAuth)
	assert.JSONEq(t, payload, string(raw))
	require.Len(t, info.Tables, 1)
	assert.Equal(t, "users", info.Tables[0].Name)
	assert.Equal(t, "integer", info.Tables[0].Columns[0].DataType)
	assert.Nil(t, info.Tables[0].Columns[0].Default)
}

func TestFetchSchema_NullPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "get_schema_info")
	info, raw, err := c.FetchSchema(context.Background())

	require.NoError(t, err, "a null payload is a successful call")
	assert.Nil(t, info)
	assert.Equal(t, []byte("null"), raw)
}

func TestFetchSchema_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied for function get_schema_info", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-key", "get_schema_info")
	_, _, err := c.FetchSchema(context.Background())

	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestFetchSchema_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	c := New(srv.URL, "key", "get_schema_info")
	_, _, err := c.FetchSchema(context.Background())

	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestFetchSchema_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tables": "oops"`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", "get_schema_info")
	_, _, err := c.FetchSchema(context.Background())

	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err), "malformed payloads stay retryable")
}

func TestFetchSchema_TrailingSlashBase(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "key", "get_schema_info")
	_, _, err := c.FetchSchema(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/rpc/get_schema_info", gotPath)
}
