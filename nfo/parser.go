package nfo

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
)

// Parse reads the text form of a container. A line starting with a
// sprite number opens a sprite: "<n> * <size> <data>" is a pseudo sprite,
// "<n> <file> <fields>" a real one. Other lines continue the data of the
// current pseudo sprite.
func Parse(text []byte) ([]*Sprite, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	p := &parser{}
	var line []*lexmachine.Token
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)
		if tok.Type == tokenNewline {
			if err := p.line(line); err != nil {
				return nil, err
			}
			line = line[:0]
			continue
		}
		line = append(line, tok)
	}
	if err := p.line(line); err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.sprites, nil
}

type parser struct {
	sprites []*Sprite
	current *Sprite
}

// opensSprite tells whether a line starts a new sprite rather than
// continuing pseudo sprite data.
func opensSprite(line []*lexmachine.Token) bool {
	if len(line) < 2 || line[0].Type != tokenWord {
		return false
	}
	if _, err := strconv.Atoi(string(line[0].Lexeme)); err != nil {
		return false
	}
	switch line[1].Type {
	case tokenStar:
		return true
	case tokenWord:
		return strings.Contains(string(line[1].Lexeme), ".")
	}
	return false
}

func (p *parser) line(line []*lexmachine.Token) error {
	if len(line) == 0 {
		return nil
	}
	if line[0].Type == tokenComment {
		return nil
	}

	if !opensSprite(line) {
		if p.current == nil || !p.current.IsPseudo() {
			return errors.Errorf("Data outside of a pseudo sprite on line %v (%q)", line[0].StartLine, line[0].Lexeme)
		}
		return p.data(line)
	}

	if err := p.finish(); err != nil {
		return err
	}
	num, _ := strconv.Atoi(string(line[0].Lexeme))
	s := &Sprite{Number: num, Line: line[0].StartLine}
	p.current = s
	p.sprites = append(p.sprites, s)

	if line[1].Type == tokenWord {
		for _, tok := range line[1:] {
			switch tok.Type {
			case tokenWord:
				s.Real = append(s.Real, string(tok.Lexeme))
			case tokenComment:
				s.Comment = comment(tok)
			default:
				return errors.Errorf("Unexpected %q in real sprite on line %v", tok.Lexeme, tok.StartLine)
			}
		}
		return nil
	}

	if len(line) < 3 || line[2].Type != tokenWord {
		return errors.Errorf("Missed pseudo sprite size on line %v", s.Line)
	}
	size, err := strconv.Atoi(string(line[2].Lexeme))
	if err != nil || size < 0 {
		return errors.Errorf("Unknown size format on line %v (%q)", s.Line, line[2].Lexeme)
	}
	s.Size = size
	s.Data = []byte{}
	return p.data(line[3:])
}

func (p *parser) data(line []*lexmachine.Token) error {
	s := p.current
	for _, tok := range line {
		lexeme := string(tok.Lexeme)
		switch tok.Type {
		case tokenWord:
			b, err := hex.DecodeString(lexeme)
			if err != nil {
				return errors.Errorf("Unknown byte format on line %v (%q)", tok.StartLine, lexeme)
			}
			s.Data = append(s.Data, b...)
		case tokenString:
			s.Data = append(s.Data, lexeme[1:len(lexeme)-1]...)
		case tokenEscape:
			b, err := escape(lexeme)
			if err != nil {
				return errors.Wrapf(err, "Line %v", tok.StartLine)
			}
			s.Data = append(s.Data, b...)
		case tokenComment:
			if s.Comment == "" {
				s.Comment = comment(tok)
			}
		case tokenStar:
			return errors.Errorf("Unexpected '*' on line %v", tok.StartLine)
		}
	}
	return nil
}

// finish checks the declared size of the sprite being parsed.
func (p *parser) finish() error {
	s := p.current
	if s == nil || !s.IsPseudo() {
		return nil
	}
	if len(s.Data) != s.Size {
		return errors.Errorf("Sprite %d on line %v declares %d bytes but has %d", s.Number, s.Line, s.Size, len(s.Data))
	}
	return nil
}

func comment(tok *lexmachine.Token) string {
	return strings.TrimSpace(string(tok.Lexeme[2:]))
}

// escape decodes \b, \w and \d values. An x selects hex digits, \b* is
// an extended byte.
func escape(lexeme string) ([]byte, error) {
	kind := lexeme[1]
	digits := lexeme[2:]
	base, extended := 10, false
	switch {
	case strings.HasPrefix(digits, "x"):
		base, digits = 16, digits[1:]
	case strings.HasPrefix(digits, "*"):
		extended, digits = true, digits[1:]
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return nil, errors.Errorf("Unknown escape format %q", lexeme)
	}

	switch kind {
	case 'b':
		if extended && (v >= 0xFF || v < 0) {
			return binary.LittleEndian.AppendUint16([]byte{0xFF}, uint16(v)), nil
		}
		if v > 0xFF || v < -0x80 {
			return nil, errors.Errorf("Value of %q does not fit a byte", lexeme)
		}
		return []byte{byte(v)}, nil
	case 'w':
		if v > 0xFFFF || v < -0x8000 {
			return nil, errors.Errorf("Value of %q does not fit a word", lexeme)
		}
		return binary.LittleEndian.AppendUint16(nil, uint16(v)), nil
	default:
		if v > 0xFFFFFFFF || v < -0x80000000 {
			return nil, errors.Errorf("Value of %q does not fit a dword", lexeme)
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil
	}
}
