package vfs

import (
	"archive/tar"
	"bytes"
	"io"
	"log"
	"os"
	path_ "path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TarDriver exposes the content of a tar archive as a read-only
// directory. Content packages are distributed this way.
type TarDriver struct {
	f      File
	prefix string
	files  map[string]*TarDriverFile
}

func (td *TarDriver) Init(parent Directory) {}
func (td *TarDriver) IsDirectory() bool     { return true }

func (td *TarDriver) Name() string {
	if td.prefix == "" {
		return td.f.Name()
	}
	return path_.Base(td.prefix)
}

func (td *TarDriver) List() ([]string, error) {
	seen := make(map[string]bool)
	result := make([]string, 0, 16)
	for name := range td.files {
		if !strings.HasPrefix(name, td.prefix) {
			continue
		}
		first := strings.SplitN(name[len(td.prefix):], "/", 2)[0]
		if !seen[first] {
			seen[first] = true
			result = append(result, first)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (td *TarDriver) GetElement(name string) (Element, error) {
	full := td.prefix + name
	if f, ok := td.files[full]; ok {
		return f, nil
	}
	for other := range td.files {
		if strings.HasPrefix(other, full+"/") {
			return &TarDriver{f: td.f, prefix: full + "/", files: td.files}, nil
		}
	}
	return nil, os.ErrNotExist
}

func (td *TarDriver) Add(e Element) error      { return errors.Errorf("[vfs] [tar] Archive is read-only") }
func (td *TarDriver) Remove(name string) error { return errors.Errorf("[vfs] [tar] Archive is read-only") }

func (td *TarDriver) readIndex() error {
	r, err := OpenFileAndGetReader(td.f, true)
	if err != nil {
		return err
	}
	defer td.f.Close()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "Failed to read tar header of '%s'", td.f.Name())
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := strings.TrimPrefix(path_.Clean(hdr.Name), "./")
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tr); err != nil {
			return errors.Wrapf(err, "Failed to read '%s' of '%s'", name, td.f.Name())
		}
		td.files[name] = &TarDriverFile{name: name, data: buf.Bytes()}
	}
}

func NewTarDriver(f File) (*TarDriver, error) {
	td := &TarDriver{f: f, files: make(map[string]*TarDriverFile)}
	if err := td.readIndex(); err != nil {
		return nil, err
	}
	log.Printf("[vfs] [tar] Mounted '%s' with %d files", f.Name(), len(td.files))
	return td, nil
}

type TarDriverFile struct {
	name string
	data []byte
}

func (f *TarDriverFile) Init(parent Directory)    {}
func (f *TarDriverFile) Name() string             { return path_.Base(f.name) }
func (f *TarDriverFile) IsDirectory() bool        { return false }
func (f *TarDriverFile) Size() int64              { return int64(len(f.data)) }
func (f *TarDriverFile) Open(readonly bool) error { return nil }
func (f *TarDriverFile) Close() error             { return nil }
func (f *TarDriverFile) Reader() (*io.SectionReader, error) {
	return io.NewSectionReader(bytes.NewReader(f.data), 0, int64(len(f.data))), nil
}
func (f *TarDriverFile) Copy(src io.Reader) error {
	return errors.Errorf("[vfs] [tar] Archive is read-only")
}
