// Package nfo reads and writes the text form of NewGRF containers.
package nfo

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/newgrf_browser/grf"
)

type Sprite struct {
	// Number as written, -1 lets the assembler number the sprite
	Number int
	Line   int
	Size   int
	// Data of a pseudo sprite
	Data []byte
	// Real holds the file name and fields of a real sprite
	Real    []string
	Comment string
}

func (s *Sprite) IsPseudo() bool { return s.Real == nil }

func (s *Sprite) String() string {
	if !s.IsPseudo() {
		return fmt.Sprintf("%5d %s", s.Number, strings.Join(s.Real, " "))
	}
	return fmt.Sprintf("%5d * %d\t %s", s.Number, len(s.Data), renderData(s.Data))
}

// isCount tells whether a sprite is the leading sprite count record.
func (s *Sprite) isCount(i int) bool {
	return i == 0 && s.Number == 0 && s.IsPseudo() && len(s.Data) == 4
}

// Build makes a container writer from parsed sprites. The sprite count
// record is always recomputed. Real sprites carry their fields as an
// opaque payload.
func Build(sprites []*Sprite, version int) (*grf.Writer, error) {
	if version != 1 && version != 2 {
		return nil, errors.Errorf("Unknown container version %d", version)
	}
	w := grf.NewWriter(version)
	for i, s := range sprites {
		if s.isCount(i) {
			continue
		}
		if s.IsPseudo() {
			w.AddPseudo(s.Data)
		} else {
			w.AddReal([]byte(strings.Join(s.Real, " ")))
		}
	}
	return w, nil
}

// Assemble parses text and builds a container of the given version.
func Assemble(text []byte, version int) (*grf.Writer, error) {
	sprites, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Build(sprites, version)
}

// Disassemble converts the records of a container to sprites. Real sprites
// become references by sprite id or by record type and size.
func Disassemble(f *grf.File) []*Sprite {
	result := make([]*Sprite, 0, len(f.Records))
	for i := range f.Records {
		rec := &f.Records[i]
		s := &Sprite{Number: rec.Index}
		switch {
		case rec.IsPseudo():
			s.Data = rec.Data
			s.Size = len(rec.Data)
		default:
			if id, ok := rec.SpriteRef(); ok {
				s.Real = []string{fmt.Sprintf("sprite%d.bin", id), "ref"}
				s.Comment = fmt.Sprintf("%d entries", len(f.Sprites[id]))
			} else {
				s.Real = []string{fmt.Sprintf("record%d.bin", rec.Index), fmt.Sprintf("%d", len(rec.Data))}
				s.Comment = fmt.Sprintf("type 0x%.2x", rec.Type)
			}
		}
		result = append(result, s)
	}
	return result
}

// Runs of printable characters at least this long are written as strings.
const minStringRun = 4

// Pseudo sprite bytes per line before continuing on the next one.
const bytesPerLine = 32

func printable(b byte) bool {
	return b >= 0x20 && b < 0x7F && b != '"' && b != '\\'
}

func renderData(data []byte) string {
	var sb strings.Builder
	written := 0
	for i := 0; i < len(data); {
		if written >= bytesPerLine {
			sb.WriteString("\n\t")
			written = 0
		} else if i != 0 {
			sb.WriteByte(' ')
		}
		j := i
		for j < len(data) && printable(data[j]) {
			j++
		}
		if j-i >= minStringRun {
			fmt.Fprintf(&sb, "\"%s\"", data[i:j])
			written += j - i
			i = j
			continue
		}
		fmt.Fprintf(&sb, "%.2X", data[i])
		written++
		i++
	}
	return sb.String()
}

func RenderLines(sprites []*Sprite) []string {
	result := make([]string, 0, len(sprites)+1)
	result = append(result, "// Escapes: \\b \\w \\d, x for hex values")
	for _, s := range sprites {
		if s.Comment == "" {
			result = append(result, s.String())
		} else {
			result = append(result, fmt.Sprintf("%-20s // %s", s.String(), s.Comment))
		}
	}
	return result
}

func Render(sprites []*Sprite) string {
	return strings.Join(RenderLines(sprites), "\n") + "\n"
}
