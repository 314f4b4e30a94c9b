package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug("hidden")
	log.Info("movie created", "op", "movies.MovieService.Create")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "movie created", record["msg"])
	assert.Equal(t, "movies.MovieService.Create", record["op"])
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true).With("request_id", "abc")
	log.Debug("resolving session", "user_id", "u-1")
	assert.Contains(t, buf.String(), "resolving session")
	assert.Contains(t, buf.String(), "u-1")
	assert.Contains(t, buf.String(), "abc")
}

func TestLogAdapter(t *testing.T) {
	var buf bytes.Buffer
	LogAdapter(New(&buf, false)).Print("http: TLS handshake error")
	assert.Contains(t, buf.String(), "TLS handshake error")
}
