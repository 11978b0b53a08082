package webutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestEncodeZstdYaml(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeZstdYaml(&buf, sample{Name: "set", Count: 3}))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()
	var got sample
	require.NoError(t, yaml.NewDecoder(zr).Decode(&got))
	assert.Equal(t, sample{Name: "set", Count: 3}, got)
}

func TestWriteZstd(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteZstd(rec, sample{Name: "x"}, "registry")
	assert.Equal(t, "attachment; filename=\"registry.yaml.zst\"", rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorStatus(rec, http.StatusNotFound, errors.New("no such module"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no such module", body["error"])
}
