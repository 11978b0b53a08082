package web

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/loader"
	"github.com/mogaika/newgrf_browser/vfs"
)

const webGRFID uint32 = 0x44434241

func testModule() []byte {
	info := []byte{0x08, 0x08}
	info = binary.LittleEndian.AppendUint32(info, webGRFID)
	info = append(info, "Web set\x00"...)
	// one train with speed 200
	train := []byte{0x00, 0x00, 0x01, 0x01, 0x00, 0x09, 200, 0}
	return grf.NewWriter(2).AddPseudo(info).AddPseudo(train).Bytes()
}

func setup(t *testing.T) http.Handler {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "web.grf"), testModule(), 0644))

	Configure(config.DefaultSettings(), vfs.NewContent(vfs.NewDirectoryDriver(root)),
		[]config.ModuleEntry{{Path: "web.grf"}, {Path: "missing.grf"}})
	_, err := Reload(context.Background())
	require.NoError(t, err)
	return NewRouter("")
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func getJson(t *testing.T, h http.Handler, url string, v interface{}) {
	t.Helper()
	rec := get(t, h, url)
	require.Equal(t, http.StatusOK, rec.Code, "%s: %s", url, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestModules(t *testing.T) {
	h := setup(t)

	var list []struct {
		Path   string
		GRFID  string
		Name   string
		Status string
		Error  map[string]interface{}
	}
	getJson(t, h, "/json/modules", &list)
	require.Len(t, list, 2)
	assert.Equal(t, "web.grf", list[0].Path)
	assert.Equal(t, "Web set", list[0].Name)
	assert.Equal(t, "41424344", list[0].GRFID)
	assert.Equal(t, loader.StatusActivated.String(), list[0].Status)
	assert.Equal(t, loader.StatusNotFound.String(), list[1].Status)
	assert.NotNil(t, list[1].Error)

	var m map[string]interface{}
	getJson(t, h, "/json/modules/0", &m)
	assert.Equal(t, "Web set", m["Name"])

	assert.Equal(t, http.StatusNotFound, get(t, h, "/json/modules/7").Code)
}

func TestContent(t *testing.T) {
	h := setup(t)
	var files []string
	getJson(t, h, "/json/content", &files)
	assert.Equal(t, []string{"web.grf"}, files)
}

func TestRegistry(t *testing.T) {
	h := setup(t)

	var summary map[string]int
	getJson(t, h, "/json/registry", &summary)
	assert.NotZero(t, summary["trains"])

	var trains []struct {
		ID      uint16
		Defined bool
		Spec    struct {
			Rail struct{ MaxSpeed uint16 }
		}
	}
	getJson(t, h, "/json/registry/trains", &trains)
	found := false
	for _, e := range trains {
		if e.Defined {
			found = true
			assert.EqualValues(t, 200, e.Spec.Rail.MaxSpeed)
		}
	}
	assert.True(t, found)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/json/registry/spaceships").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/json/registry/global_settings").Code)
}

func TestStrings(t *testing.T) {
	h := setup(t)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/json/strings/abc").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/json/strings/0xFFFFFF").Code)
}

func TestNfoAndDumps(t *testing.T) {
	h := setup(t)

	rec := get(t, h, "/nfo/modules/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"Web set"`), rec.Body.String())

	rec = get(t, h, "/dump/modules/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testModule(), rec.Body.Bytes())

	rec = get(t, h, "/dump/registry")
	require.Equal(t, http.StatusOK, rec.Code)
	zr, err := zstd.NewReader(rec.Body)
	require.NoError(t, err)
	defer zr.Close()
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engines:")
}

func TestTownNames(t *testing.T) {
	h := setup(t)

	var gens []interface{}
	getJson(t, h, "/json/townnames", &gens)
	assert.Empty(t, gens)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/json/townnames/41424344/0/1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/json/townnames/nothex/0/1").Code)
}

func TestLoadWhileLoading(t *testing.T) {
	h := setup(t)

	stateLock.Lock()
	loading = true
	stateLock.Unlock()
	defer func() {
		stateLock.Lock()
		loading = false
		stateLock.Unlock()
	}()

	_, err := Reload(context.Background())
	assert.Equal(t, ErrLoading, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/action/load", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
