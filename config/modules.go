package config

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

const (
	sectionModules       = "newgrf"
	sectionStaticModules = "newgrf-static"
)

// ModuleEntry is one line of the module list: a file with its parameters.
type ModuleEntry struct {
	Path   string
	Params []uint32
	Static bool
}

func parseParams(value string) ([]uint32, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	params := make([]uint32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 0, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad parameter %q", f)
		}
		params = append(params, uint32(v))
	}
	return params, nil
}

// ParseModules reads the module list. Regular modules come first in file
// order, static modules are appended after them.
func ParseModules(source interface{}) ([]ModuleEntry, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
		KeyValueDelimiters:      "=",
	}, source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load module list")
	}

	list := make([]ModuleEntry, 0)
	for _, sec := range []string{sectionModules, sectionStaticModules} {
		section, err := f.GetSection(sec)
		if err != nil {
			continue
		}
		for _, key := range section.Keys() {
			params, err := parseParams(key.Value())
			if err != nil {
				return nil, errors.Wrapf(err, "Module %q", key.Name())
			}
			list = append(list, ModuleEntry{
				Path:   key.Name(),
				Params: params,
				Static: sec == sectionStaticModules,
			})
		}
	}
	return list, nil
}

// WriteModules writes a module list readable by ParseModules.
func WriteModules(w io.Writer, list []ModuleEntry) error {
	f := ini.Empty()
	for _, sec := range []string{sectionModules, sectionStaticModules} {
		section, err := f.NewSection(sec)
		if err != nil {
			return err
		}
		for _, m := range list {
			if m.Static != (sec == sectionStaticModules) {
				continue
			}
			params := make([]string, len(m.Params))
			for i, p := range m.Params {
				params[i] = strconv.FormatUint(uint64(p), 10)
			}
			if _, err := section.NewKey(m.Path, strings.Join(params, " ")); err != nil {
				return errors.Wrapf(err, "Module %q", m.Path)
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}
