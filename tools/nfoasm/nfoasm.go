package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/nfo"
	"github.com/mogaika/newgrf_browser/vfs"
)

// save writes data through the directory driver, creating the file.
func save(path string, data []byte) error {
	dir := vfs.NewDirectoryDriver(filepath.Dir(path))
	if err := dir.Add(vfs.NewDirectoryDriverFile(path)); err != nil {
		return err
	}
	f, err := vfs.DirectoryGetFile(dir, filepath.Base(path))
	if err != nil {
		return err
	}
	return vfs.OpenFileAndCopy(f, bytes.NewReader(data))
}

func assemble(in, out string, version int) error {
	text, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	w, err := nfo.Assemble(text, version)
	if err != nil {
		return err
	}
	log.Printf("[nfoasm] %s: %d records", in, w.Len())
	return save(out, w.Bytes())
}

func disassemble(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	f, err := grf.Parse(filepath.Base(in), data)
	if err != nil {
		return err
	}
	log.Printf("[nfoasm] %v", f)
	return save(out, []byte(nfo.Render(nfo.Disassemble(f))))
}

func main() {
	var in, out string
	var version int
	var decode bool
	flag.StringVar(&in, "i", "", "Input nfo, or grf with -d")
	flag.StringVar(&out, "o", "", "Output file, defaults to the input name with a new extension")
	flag.IntVar(&version, "container", 2, "Container version of the produced grf")
	flag.BoolVar(&decode, "d", false, "Disassemble a grf into nfo")
	flag.Parse()

	if in == "" {
		flag.PrintDefaults()
		return
	}
	if out == "" {
		ext := ".grf"
		if decode {
			ext = ".nfo"
		}
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ext
	}

	var err error
	if decode {
		err = disassemble(in, out)
	} else {
		err = assemble(in, out, version)
	}
	if err != nil {
		log.Fatal(err)
	}
}
