package nfo

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	tokenComment = iota
	tokenWord
	tokenStar
	tokenString
	tokenEscape
	tokenNewline
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`//[^\n]*`), token(tokenComment))
	lexer.Add([]byte(`[a-zA-Z0-9_\.\-/:]+`), token(tokenWord))
	lexer.Add([]byte(`\*`), token(tokenStar))
	lexer.Add([]byte(`"[^"\n]*"`), token(tokenString))
	lexer.Add([]byte(`\\[bwd](\*|x)?\-?[0-9A-Fa-f]+`), token(tokenEscape))
	lexer.Add([]byte(`(\n|\r|\n\r)+`), token(tokenNewline))
	lexer.Add([]byte(`( |\t)+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func token(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}
