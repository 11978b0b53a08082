// Package text decodes module strings and keeps the string and town name
// tables modules install.
package text

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// UTF8Marker is the thorn prefix of strings stored as UTF-8.
const UTF8Marker = "Þ"

// controlCode describes a string control byte and the number of inline
// argument bytes following it.
type controlCode struct {
	name string
	args int
}

var controlCodes = map[byte]controlCode{
	0x01: {"SETX", 1},
	0x0D: {"NL", 0},
	0x0E: {"TINY_FONT", 0},
	0x0F: {"BIG_FONT", 0},
	0x1F: {"SETXY", 2},
	0x7B: {"SIGNED_DWORD", 0},
	0x7C: {"SIGNED_WORD", 0},
	0x7D: {"SIGNED_BYTE", 0},
	0x7E: {"UNSIGNED_WORD", 0},
	0x7F: {"CURRENCY_DWORD", 0},
	0x80: {"STRING", 0},
	0x81: {"STRING_INLINE", 2},
	0x82: {"DATE_LONG", 0},
	0x83: {"DATE_SHORT", 0},
	0x84: {"VELOCITY", 0},
	0x85: {"SKIP", 0},
	0x86: {"ROTATE", 0},
	0x87: {"VOLUME", 0},
	0x88: {"BLUE", 0},
	0x89: {"SILVER", 0},
	0x8A: {"GOLD", 0},
	0x8B: {"RED", 0},
	0x8C: {"PURPLE", 0},
	0x8D: {"LTBROWN", 0},
	0x8E: {"ORANGE", 0},
	0x8F: {"GREEN", 0},
	0x90: {"YELLOW", 0},
	0x91: {"DKGREEN", 0},
	0x92: {"CREAM", 0},
	0x93: {"BROWN", 0},
	0x94: {"WHITE", 0},
	0x95: {"LTBLUE", 0},
	0x96: {"GRAY", 0},
	0x97: {"DKBLUE", 0},
	0x98: {"BLACK", 0},
	0x9A: {"EXT", 1},
}

// Extended control codes with inline arguments beyond their sub code.
var extendedArgs = map[byte]int{
	0x03: 2, // push word
	0x0E: 1, // set gender
	0x0F: 1, // set case
}

// Decode turns a raw module string into text. Strings with the thorn
// prefix are UTF-8, others use the legacy charmap. Control codes are
// rendered as {NAME} tokens.
func Decode(raw []byte, cm *charmap.Charmap) string {
	unicode := false
	if strings.HasPrefix(string(raw), UTF8Marker) {
		unicode = true
		raw = raw[len(UTF8Marker):]
	}
	if cm == nil {
		cm = charmap.ISO8859_1
	}

	var sb strings.Builder
	for i := 0; i < len(raw); {
		c := raw[i]
		if unicode && c >= 0x80 {
			r, size := utf8.DecodeRune(raw[i:])
			i += size
			if r>>8 == 0xE0 {
				i += writeControl(&sb, byte(r), raw[i:])
				continue
			}
			if r == utf8.RuneError {
				r = '?'
			}
			sb.WriteRune(r)
			continue
		}
		i++
		if c == 0x9E && !unicode {
			sb.WriteRune('€')
			continue
		}
		if c == 0x9F && !unicode {
			sb.WriteRune('Ÿ')
			continue
		}
		if unicode {
			if c < 0x20 {
				i += writeControl(&sb, c, raw[i:])
			} else {
				sb.WriteByte(c)
			}
			continue
		}
		if _, ok := controlCodes[c]; ok || c < 0x20 {
			i += writeControl(&sb, c, raw[i:])
			continue
		}
		sb.WriteRune(cm.DecodeByte(c))
	}
	return sb.String()
}

// writeControl renders one control code and returns the argument bytes used.
func writeControl(sb *strings.Builder, c byte, rest []byte) int {
	cc, ok := controlCodes[c]
	if !ok {
		fmt.Fprintf(sb, "{%02X}", c)
		return 0
	}
	if c == 0x0D {
		sb.WriteByte('\n')
		return 0
	}
	args := cc.args
	if c == 0x9A && len(rest) > 0 {
		args += extendedArgs[rest[0]]
	}
	if args > len(rest) {
		args = len(rest)
	}
	if args == 0 {
		fmt.Fprintf(sb, "{%s}", cc.name)
		return 0
	}
	fmt.Fprintf(sb, "{%s %X}", cc.name, rest[:args])
	return args
}
