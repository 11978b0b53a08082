package config

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Module strings without the UTF-8 marker are decoded with this charmap.
var currentCharMap *charmap.Charmap = charmap.ISO8859_1

// LookupEncoding finds a single byte charmap by the name x/text gives it,
// such as "Windows 1252".
func LookupEncoding(name string) (*charmap.Charmap, error) {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && cm.String() == name {
			return cm, nil
		}
	}
	return nil, errors.Errorf("Failed to find encoding %q", name)
}

// SetEncoding selects the charmap used for legacy module strings of the
// next load.
func SetEncoding(name string) error {
	cm, err := LookupEncoding(name)
	if err != nil {
		return err
	}
	currentCharMap = cm
	return nil
}

// ListEncodings names every charmap SetEncoding accepts.
func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
