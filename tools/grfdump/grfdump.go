package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/newgrf_browser/config"
	"github.com/mogaika/newgrf_browser/grf"
	"github.com/mogaika/newgrf_browser/grf/loader"
	"github.com/mogaika/newgrf_browser/nfo"
	"github.com/mogaika/newgrf_browser/utils"
	"github.com/mogaika/newgrf_browser/vfs"
)

func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "spew":
		utils.FDump(w, v)
		return nil
	}
	return fmt.Errorf("Unknown format %q", format)
}

// output opens the destination, compressing when the name ends with .zst.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{Encoder: zw, f: f}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdFile) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

func dumpRecords(w io.Writer, f *grf.File) {
	for i, r := range f.Records {
		kind := "pseudo"
		if !r.IsPseudo() {
			kind = fmt.Sprintf("<0x%.2x>", r.Type)
		}
		fmt.Fprintf(w, "%5d %-6s %s\n", i, kind, utils.DumpToOneLineString(r.Data))
	}
}

func main() {
	var settingsPath, modulesPath, dir, format, out, what string
	var module int
	flag.StringVar(&settingsPath, "settings", "", "Path to settings yaml")
	flag.StringVar(&modulesPath, "modules", "", "Path to module list ini, overrides settings")
	flag.StringVar(&dir, "dir", "", "Content directory, overrides settings")
	flag.StringVar(&format, "format", "yaml", "yaml, json or spew")
	flag.StringVar(&out, "o", "", "Output file, compressed when ending with .zst")
	flag.StringVar(&what, "dump", "registry", "registry, modules, strings, townnames, nfo or records")
	flag.IntVar(&module, "module", 0, "Module index for nfo and records")
	flag.Parse()

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatal(err)
	}
	if modulesPath == "" {
		modulesPath = settings.ModuleList
	}
	if dir == "" {
		dir = settings.ContentDir
	}
	list, err := config.ParseModules(modulesPath)
	if err != nil {
		log.Fatal(err)
	}

	content := vfs.NewContent(vfs.NewDirectoryDriver(dir))
	l := loader.New(settings, content, loader.NewLogger(os.Stderr, settings.DebugLevel))
	res, err := l.Load(context.Background(), list)
	if err != nil {
		log.Fatal(err)
	}

	w, err := output(out)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Fatal(err)
		}
	}()

	var v interface{}
	switch what {
	case "registry":
		v = res.Registry
	case "modules":
		v = res.Modules
	case "strings":
		v = res.Strings.Strings()
	case "townnames":
		v = res.TownNames.Generators()
	case "nfo", "records":
		if module < 0 || module >= len(res.Modules) || res.Modules[module].Container() == nil {
			log.Fatalf("Module %d was not read", module)
		}
		c := res.Modules[module].Container()
		var buf bytes.Buffer
		if what == "nfo" {
			buf.WriteString(nfo.Render(nfo.Disassemble(c)))
		} else {
			dumpRecords(&buf, c)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Fatal(err)
		}
		return
	default:
		log.Fatalf("Unknown dump %q", what)
	}
	if err := encode(w, format, v); err != nil {
		log.Fatal(err)
	}
}
