package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	if _, err := io.Copy(w, in); err != nil {
		log.Printf("[web] Error when writing file %q: %v", name, err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, err)
	} else {
		w.Header().Set("Content-Type", "application/json")
		WriteResult(w, res)
	}
}

func WriteJsonFile(w http.ResponseWriter, v interface{}, fileName string) {
	if data, err := json.MarshalIndent(v, "", "  "); err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		WriteFile(w, bytes.NewReader(data), fileName+".json")
	}
}

func WriteText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	WriteResult(w, []byte(text))
}

// WriteZstd encodes v as yaml and sends it compressed as a download.
func WriteZstd(w http.ResponseWriter, v interface{}, fileName string) {
	var buf bytes.Buffer
	if err := EncodeZstdYaml(&buf, v); err != nil {
		WriteError(w, err)
		return
	}
	WriteFile(w, &buf, fileName+".yaml.zst")
}

// EncodeZstdYaml writes v as zstd compressed yaml.
func EncodeZstdYaml(out io.Writer, v interface{}) error {
	zw, err := zstd.NewWriter(out)
	if err != nil {
		return errors.Wrapf(err, "Failed to create compressor")
	}
	enc := yaml.NewEncoder(zw)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		zw.Close()
		return errors.Wrapf(err, "Failed to marshal")
	}
	if err := enc.Close(); err != nil {
		zw.Close()
		return errors.Wrapf(err, "Failed to marshal")
	}
	return errors.Wrapf(zw.Close(), "Failed to compress")
}

func WriteResult(w http.ResponseWriter, data []byte) {
	_, err := w.Write(data)
	if err != nil {
		log.Printf("[web] Error when writing response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, http.StatusInternalServerError, err)
}

func WriteErrorStatus(w http.ResponseWriter, code int, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		log.Printf("[web] Error marshaling error '%v': %v", err, merr)
		return
	}
	log.Printf("[web] HERR: %v", string(data))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	WriteResult(w, data)
}
