package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mxcd/apod-web/pkg/apod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/apod", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date":"2024-01-01","title":"Galaxy","media_type":"image","url":"https://x/a.png","explanation":"A galaxy."}`))
	})
	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"saved":true,"filename":"APOD_2024-01-01_Galaxy.png","path":"/srv/APOD_2024-01-01_Galaxy.png"}`))
	})
	mux.HandleFunc("/downloads/APOD_2024-01-01_Galaxy.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunShowAndSave(t *testing.T) {
	client := apod.NewClient(fakeServer(t).URL)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), client, []string{"show", "2024-01-01"}, "", &out))
	assert.Contains(t, out.String(), "2024-01-01  Galaxy")
	assert.Contains(t, out.String(), "A galaxy.")

	out.Reset()
	require.NoError(t, run(context.Background(), client, []string{"save"}, "", &out))
	assert.Equal(t, "APOD_2024-01-01_Galaxy.png\n", out.String())
}

func TestRunGet(t *testing.T) {
	client := apod.NewClient(fakeServer(t).URL)
	target := filepath.Join(t.TempDir(), "galaxy.png")

	require.NoError(t, run(context.Background(), client, []string{"get", "APOD_2024-01-01_Galaxy.png"}, target, &bytes.Buffer{}))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	missing := filepath.Join(t.TempDir(), "missing.png")
	err = run(context.Background(), client, []string{"get", "nope.png"}, missing, &bytes.Buffer{})
	assert.ErrorIs(t, err, apod.ErrNotFound)
	assert.NoFileExists(t, missing)
}

func TestRunRejectsBadInvocations(t *testing.T) {
	client := apod.NewClient("http://127.0.0.1:1")
	assert.Error(t, run(context.Background(), client, nil, "", &bytes.Buffer{}))
	assert.Error(t, run(context.Background(), client, []string{"dance"}, "", &bytes.Buffer{}))
	assert.Error(t, run(context.Background(), client, []string{"get"}, "", &bytes.Buffer{}))
}
