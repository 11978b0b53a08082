package vfs

import (
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
)

// Module files and the archives that may hold them.
const (
	ModuleExt  = ".grf"
	ArchiveExt = ".tar"
)

// Content opens module files by slash separated paths relative to the
// content root. Tar archives on the way are entered like directories.
type Content struct {
	root Directory
}

func NewContent(root Directory) *Content {
	return &Content{root: root}
}

func (c *Content) Root() Directory { return c.root }

func isArchive(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ArchiveExt)
}

func isModule(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ModuleExt)
}

// enter returns the directory view of an element: directories as they
// are, archives mounted.
func enter(e Element) (Directory, bool, error) {
	if d, ok := e.(Directory); ok {
		return d, true, nil
	}
	if f, ok := e.(File); ok && isArchive(f.Name()) {
		td, err := NewTarDriver(f)
		if err != nil {
			return nil, false, err
		}
		return td, true, nil
	}
	return nil, false, nil
}

// Lookup resolves a content path to a file.
func (c *Content) Lookup(path string) (File, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	dir := c.root
	for i, part := range parts {
		e, err := dir.GetElement(part)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot find '%s'", path)
		}
		if i == len(parts)-1 {
			f, ok := e.(File)
			if !ok {
				return nil, errors.Errorf("'%s' is not a file", path)
			}
			return f, nil
		}
		next, ok, err := enter(e)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot open '%s'", path)
		}
		if !ok {
			return nil, errors.Errorf("'%s' is not a directory", strings.Join(parts[:i+1], "/"))
		}
		dir = next
	}
	return nil, errors.Errorf("Empty path")
}

// Open implements the module source of the loader.
func (c *Content) Open(path string) (io.ReadCloser, error) {
	f, err := c.Lookup(path)
	if err != nil {
		return nil, err
	}
	r, err := OpenFileAndGetReader(f, true)
	if err != nil {
		return nil, err
	}
	return &readCloser{SectionReader: r, f: f}, nil
}

// Scan lists the paths of all modules under the root, archives included,
// in directory order.
func (c *Content) Scan() ([]string, error) {
	var result []string
	if err := scan(c.root, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func scan(d Directory, prefix string, result *[]string) error {
	names, err := d.List()
	if err != nil {
		return errors.Wrapf(err, "Cannot list '%s'", prefix)
	}
	for _, name := range names {
		e, err := d.GetElement(name)
		if err != nil {
			log.Printf("[vfs] Skipping '%s%s': %v", prefix, name, err)
			continue
		}
		if !e.IsDirectory() && isModule(name) {
			*result = append(*result, prefix+name)
			continue
		}
		sub, ok, err := enter(e)
		if err != nil {
			log.Printf("[vfs] Skipping '%s%s': %v", prefix, name, err)
			continue
		}
		if ok {
			if err := scan(sub, prefix+name+"/", result); err != nil {
				return err
			}
		}
	}
	return nil
}
