package utils

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	DisableMethods:          true,
	SortKeys:                true,
}

// FDump writes a structural dump of the values, following pointers but
// hiding their addresses so two dumps of equal data compare equal.
func FDump(w io.Writer, a ...interface{}) {
	spewConfig.Fdump(w, a...)
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// DumpToOneLineString escapes everything but printable ascii.
func DumpToOneLineString(buf []byte) string {
	out := make([]byte, 0, len(buf))
	for _, b := range buf {
		if b >= 0x20 && b < 0x7f && b != '\\' {
			out = append(out, b)
		} else {
			out = append(out, fmt.Sprintf("\\x%.2x", b)...)
		}
	}
	return string(out)
}
